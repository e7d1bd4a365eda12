package publish

import "testing"

func TestMessage(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		caption string
		want    string
	}{
		{"title and caption", "Launch", "Big news", "Launch\n\nBig news"},
		{"caption only", "", "Big news", "Big news"},
		{"title only", "Launch", "", "Launch"},
		{"whitespace title", "  ", "Big news", "Big news"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{Title: tt.title, Caption: tt.caption}
			if got := req.Message(); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsVideo(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want bool
	}{
		{"mp4 attachment", Request{AttachmentURL: "https://cdn.test/clip.mp4"}, true},
		{"mov with query string", Request{AttachmentURL: "https://cdn.test/clip.MOV?sig=abc"}, true},
		{"jpeg attachment", Request{AttachmentURL: "https://cdn.test/pic.jpg"}, false},
		{"reel format forces video", Request{AttachmentURL: "https://cdn.test/pic.jpg", Format: FormatReel}, true},
		{"no attachment", Request{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.IsVideo(); got != tt.want {
				t.Errorf("IsVideo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildReport(t *testing.T) {
	report := buildReport([]AttemptResult{
		{Platform: "facebook", Success: true, PostID: "1"},
		{Platform: "instagram", Success: false, Error: "attachment required"},
	})
	if !report.Success {
		t.Fatal("any success must make the report successful")
	}
	if report.Message != "Post publicado em 1/2 plataformas" {
		t.Fatalf("unexpected message: %q", report.Message)
	}
	if len(report.Results) != 2 {
		t.Fatalf("failed attempts must be included, got %d results", len(report.Results))
	}

	allFailed := buildReport([]AttemptResult{{Platform: "linkedin", Success: false, Error: "rejected"}})
	if allFailed.Success {
		t.Fatal("total failure must report success=false")
	}
}
