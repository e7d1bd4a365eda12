package instagram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"socialcast/internal/integrations"
	"socialcast/internal/publish"
)

func testIntegration() integrations.Integration {
	return integrations.Integration{
		Provider:    Provider,
		AccessToken: "tok-ig",
		AccountID:   "page-42",
		AccountData: map[string]interface{}{
			"instagram_business_account": map[string]interface{}{"id": "ig-77"},
		},
	}
}

func newTestAdapter(srv *httptest.Server) *Adapter {
	a := New(srv.URL, srv.Client(), nil)
	a.pollInterval = time.Millisecond
	a.maxPollInterval = time.Millisecond
	a.maxPollAttempts = 3
	return a
}

func TestPublishMissingAttachmentSkipsNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	adapter := newTestAdapter(srv)
	_, err := adapter.Publish(context.Background(), testIntegration(), publish.Request{Caption: "hi"})
	if !errors.Is(err, ErrAttachmentRequired) {
		t.Fatalf("expected ErrAttachmentRequired, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("expected zero network calls, got %d", got)
	}
}

func TestPublishMissingBusinessAccountSkipsNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	adapter := newTestAdapter(srv)
	integ := testIntegration()
	integ.AccountData = nil
	_, err := adapter.Publish(context.Background(), integ, publish.Request{
		Caption:       "hi",
		AttachmentURL: "https://cdn.test/pic.jpg",
	})
	if err == nil {
		t.Fatal("expected error for unlinked business account")
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("expected zero network calls, got %d", got)
	}
}

func TestPublishTwoPhaseImageFlow(t *testing.T) {
	var createCalls, statusCalls, publishCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/ig-77/media":
			atomic.AddInt32(&createCalls, 1)
			_ = r.ParseForm()
			if r.PostFormValue("image_url") == "" {
				t.Error("expected image_url for image attachment")
			}
			if r.PostFormValue("video_url") != "" {
				t.Error("unexpected video_url for image attachment")
			}
			_, _ = w.Write([]byte(`{"id":"container-1"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/container-1":
			n := atomic.AddInt32(&statusCalls, 1)
			if n == 1 {
				_, _ = w.Write([]byte(`{"id":"container-1","status_code":"IN_PROGRESS"}`))
			} else {
				_, _ = w.Write([]byte(`{"id":"container-1","status_code":"FINISHED"}`))
			}
		case r.Method == http.MethodPost && r.URL.Path == "/ig-77/media_publish":
			atomic.AddInt32(&publishCalls, 1)
			_ = r.ParseForm()
			if r.PostFormValue("creation_id") != "container-1" {
				t.Errorf("expected creation_id container-1, got %q", r.PostFormValue("creation_id"))
			}
			_, _ = w.Write([]byte(`{"id":"ig-post-9"}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	adapter := newTestAdapter(srv)
	postID, err := adapter.Publish(context.Background(), testIntegration(), publish.Request{
		Caption:       "hello",
		AttachmentURL: "https://cdn.test/pic.jpg",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if postID != "ig-post-9" {
		t.Fatalf("unexpected post id: %q", postID)
	}
	if atomic.LoadInt32(&createCalls) != 1 || atomic.LoadInt32(&publishCalls) != 1 {
		t.Fatalf("expected exactly one create and one publish call, got %d/%d", createCalls, publishCalls)
	}
	if atomic.LoadInt32(&statusCalls) != 2 {
		t.Fatalf("expected poll to repeat until FINISHED, got %d status calls", statusCalls)
	}
}

func TestPublishReelUsesVideoURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ig-77/media":
			_ = r.ParseForm()
			if r.PostFormValue("video_url") == "" {
				t.Error("expected video_url for reel")
			}
			if r.PostFormValue("media_type") != "REELS" {
				t.Errorf("expected media_type REELS, got %q", r.PostFormValue("media_type"))
			}
			_, _ = w.Write([]byte(`{"id":"container-2"}`))
		case "/container-2":
			_, _ = w.Write([]byte(`{"id":"container-2","status_code":"FINISHED"}`))
		case "/ig-77/media_publish":
			_, _ = w.Write([]byte(`{"id":"ig-reel-1"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	adapter := newTestAdapter(srv)
	_, err := adapter.Publish(context.Background(), testIntegration(), publish.Request{
		Caption:       "watch",
		AttachmentURL: "https://cdn.test/pic.jpg",
		Format:        publish.FormatReel,
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestPublishPhaseOneFailureSkipsPhaseTwo(t *testing.T) {
	var publishCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ig-77/media":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Media download failed","code":9004}}`))
		case "/ig-77/media_publish":
			atomic.AddInt32(&publishCalls, 1)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	adapter := newTestAdapter(srv)
	_, err := adapter.Publish(context.Background(), testIntegration(), publish.Request{
		Caption:       "hello",
		AttachmentURL: "https://cdn.test/pic.jpg",
	})
	if err == nil {
		t.Fatal("expected phase 1 failure")
	}
	var perr *publish.ProviderError
	if !errors.As(err, &perr) || perr.Message != "Media download failed" {
		t.Fatalf("expected provider error from phase 1, got %v", err)
	}
	if atomic.LoadInt32(&publishCalls) != 0 {
		t.Fatal("phase 2 must never run after a phase 1 failure")
	}
}

func TestPublishProcessingTimeout(t *testing.T) {
	var publishCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ig-77/media":
			_, _ = w.Write([]byte(`{"id":"container-3"}`))
		case "/container-3":
			_, _ = w.Write([]byte(`{"id":"container-3","status_code":"IN_PROGRESS"}`))
		case "/ig-77/media_publish":
			atomic.AddInt32(&publishCalls, 1)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	adapter := newTestAdapter(srv)
	_, err := adapter.Publish(context.Background(), testIntegration(), publish.Request{
		Caption:       "hello",
		AttachmentURL: "https://cdn.test/pic.jpg",
	})
	if !errors.Is(err, ErrMediaProcessingTimeout) {
		t.Fatalf("expected ErrMediaProcessingTimeout, got %v", err)
	}
	if atomic.LoadInt32(&publishCalls) != 0 {
		t.Fatal("publish must not run after a processing timeout")
	}
}

func TestPublishProcessingRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ig-77/media":
			_, _ = w.Write([]byte(`{"id":"container-4"}`))
		case "/container-4":
			_, _ = w.Write([]byte(`{"id":"container-4","status_code":"ERROR"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	adapter := newTestAdapter(srv)
	_, err := adapter.Publish(context.Background(), testIntegration(), publish.Request{
		Caption:       "hello",
		AttachmentURL: "https://cdn.test/pic.jpg",
	})
	if errors.Is(err, ErrMediaProcessingTimeout) {
		t.Fatal("a rejected container is not a timeout")
	}
	var perr *publish.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected provider error for rejected media, got %v", err)
	}
}

func TestPublishCancelDuringPoll(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ig-77/media":
			_, _ = w.Write([]byte(`{"id":"container-5"}`))
		case "/container-5":
			cancel()
			_, _ = w.Write([]byte(`{"id":"container-5","status_code":"IN_PROGRESS"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	adapter := newTestAdapter(srv)
	adapter.pollInterval = time.Minute
	_, err := adapter.Publish(ctx, testIntegration(), publish.Request{
		Caption:       "hello",
		AttachmentURL: "https://cdn.test/pic.jpg",
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation to interrupt the poll, got %v", err)
	}
}
