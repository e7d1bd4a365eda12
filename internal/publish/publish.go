package publish

import (
	"fmt"
	"path"
	"strings"
)

// Post formats accepted on the inbound request.
const (
	FormatPost     = "post"
	FormatStory    = "story"
	FormatReel     = "reel"
	FormatCarousel = "carousel"
)

// Request is one authored post to distribute. Field names follow the wire
// contract of the surrounding application.
type Request struct {
	Title         string   `json:"titulo"`
	Caption       string   `json:"legenda"`
	AttachmentURL string   `json:"anexo_url,omitempty"`
	Format        string   `json:"formato"`
	Platforms     []string `json:"platforms"`
	ClientID      string   `json:"cliente_id,omitempty"`
	OwnerID       string   `json:"responsavel_id,omitempty"`
	ScheduledDate string   `json:"data_agendamento,omitempty"`
	ScheduledTime string   `json:"hora_agendamento,omitempty"`
}

// Message renders the text body shared by all providers: title, blank
// line, caption. A missing title collapses to the caption alone.
func (r Request) Message() string {
	title := strings.TrimSpace(r.Title)
	caption := strings.TrimSpace(r.Caption)
	if title == "" {
		return caption
	}
	if caption == "" {
		return title
	}
	return title + "\n\n" + caption
}

// HasAttachment reports whether the request carries a media URL.
func (r Request) HasAttachment() bool {
	return strings.TrimSpace(r.AttachmentURL) != ""
}

// IsVideo reports whether the attachment should be treated as video,
// either by file extension or because the requested format is a reel.
func (r Request) IsVideo() bool {
	if r.Format == FormatReel {
		return true
	}
	return hasVideoExtension(r.AttachmentURL)
}

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".m4v":  {},
	".avi":  {},
	".webm": {},
}

func hasVideoExtension(rawURL string) bool {
	trimmed := rawURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	ext := strings.ToLower(path.Ext(trimmed))
	_, ok := videoExtensions[ext]
	return ok
}

// AttemptResult is the outcome of one adapter invocation for one platform.
type AttemptResult struct {
	Platform string `json:"platform"`
	Success  bool   `json:"success"`
	PostID   string `json:"post_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Report is the aggregate outcome of one publish call. Success is true
// when at least one attempt succeeded; Results holds every attempt,
// failures included.
type Report struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Results []AttemptResult `json:"results"`
}

func buildReport(results []AttemptResult) Report {
	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	return Report{
		Success: succeeded > 0,
		Message: fmt.Sprintf("Post publicado em %d/%d plataformas", succeeded, len(results)),
		Results: results,
	}
}
