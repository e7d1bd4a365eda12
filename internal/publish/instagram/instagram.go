// Package instagram publishes posts to Instagram business accounts via
// the Graph API two-phase media flow: create a media container, wait for
// the platform to process it, then publish the container.
package instagram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"

	"socialcast/internal/integrations"
	"socialcast/internal/publish"
	"socialcast/internal/publish/graph"
)

const Provider = "instagram"

// Media formats are attachment-mandatory on this platform.
var ErrAttachmentRequired = errors.New("attachment required")

// ErrMediaProcessingTimeout means the media container never reached the
// FINISHED state within the polling budget. Distinct from a provider
// rejection: the media may still be processing.
var ErrMediaProcessingTimeout = errors.New("media processing timeout")

// Container processing states returned by the status poll.
const (
	statusFinished   = "FINISHED"
	statusError      = "ERROR"
	statusExpired    = "EXPIRED"
	statusInProgress = "IN_PROGRESS"
)

const (
	defaultPollInterval    = 2 * time.Second
	defaultMaxPollInterval = 16 * time.Second
	defaultMaxPollAttempts = 8
)

type Adapter struct {
	baseURL         string
	client          *graph.Client
	pollInterval    time.Duration
	maxPollInterval time.Duration
	maxPollAttempts int
	sleep           func(ctx context.Context, d time.Duration) error
}

// New builds an Instagram adapter against the given Graph API base URL.
// httpClient and executor may be nil to use defaults.
func New(baseURL string, httpClient *http.Client, executor failsafe.Executor[*http.Response]) *Adapter {
	return &Adapter{
		baseURL:         strings.TrimRight(baseURL, "/"),
		client:          graph.NewClient(httpClient, executor),
		pollInterval:    defaultPollInterval,
		maxPollInterval: defaultMaxPollInterval,
		maxPollAttempts: defaultMaxPollAttempts,
		sleep:           sleepCtx,
	}
}

func (a *Adapter) Provider() string { return Provider }

// Publish runs the two-phase flow. Preconditions (attachment present,
// business account linked) fail before any network call. Phase 2 is
// never attempted when phase 1 fails.
func (a *Adapter) Publish(ctx context.Context, integ integrations.Integration, req publish.Request) (string, error) {
	if !req.HasAttachment() {
		return "", ErrAttachmentRequired
	}
	businessID := integ.InstagramBusinessAccountID()
	if businessID == "" {
		return "", errors.New("instagram business account not linked")
	}

	containerID, err := a.createContainer(ctx, businessID, integ.AccessToken, req)
	if err != nil {
		return "", err
	}

	if err := a.waitForProcessing(ctx, containerID, integ.AccessToken); err != nil {
		return "", err
	}

	return a.publishContainer(ctx, businessID, integ.AccessToken, containerID)
}

func (a *Adapter) createContainer(ctx context.Context, businessID, token string, req publish.Request) (string, error) {
	form := url.Values{}
	form.Set("access_token", token)
	form.Set("caption", req.Message())
	if req.IsVideo() {
		form.Set("video_url", req.AttachmentURL)
		form.Set("media_type", "REELS")
	} else {
		form.Set("image_url", req.AttachmentURL)
	}

	result, err := a.client.PostForm(ctx, fmt.Sprintf("%s/%s/media", a.baseURL, businessID), form)
	if err != nil {
		return "", err
	}
	if !result.OK() {
		return "", &publish.ProviderError{
			Provider:   Provider,
			StatusCode: result.HTTPStatus,
			Message:    result.ErrMessage,
		}
	}
	return result.ID, nil
}

// waitForProcessing polls the container status with exponential backoff
// until it reaches FINISHED, is rejected, or the attempt budget runs out.
func (a *Adapter) waitForProcessing(ctx context.Context, containerID, token string) error {
	query := url.Values{}
	query.Set("fields", "status_code")
	query.Set("access_token", token)
	endpoint := fmt.Sprintf("%s/%s", a.baseURL, containerID)

	interval := a.pollInterval
	for attempt := 0; attempt < a.maxPollAttempts; attempt++ {
		result, err := a.client.Get(ctx, endpoint, query)
		if err != nil {
			return err
		}
		switch result.Status {
		case statusFinished:
			return nil
		case statusError, statusExpired:
			msg := result.ErrMessage
			if msg == "" {
				msg = "media processing failed"
			}
			return &publish.ProviderError{Provider: Provider, StatusCode: result.HTTPStatus, Message: msg}
		}

		if err := a.sleep(ctx, interval); err != nil {
			return err
		}
		interval *= 2
		if interval > a.maxPollInterval {
			interval = a.maxPollInterval
		}
	}
	return ErrMediaProcessingTimeout
}

func (a *Adapter) publishContainer(ctx context.Context, businessID, token, containerID string) (string, error) {
	form := url.Values{}
	form.Set("access_token", token)
	form.Set("creation_id", containerID)

	result, err := a.client.PostForm(ctx, fmt.Sprintf("%s/%s/media_publish", a.baseURL, businessID), form)
	if err != nil {
		return "", err
	}
	if !result.OK() {
		return "", &publish.ProviderError{
			Provider:   Provider,
			StatusCode: result.HTTPStatus,
			Message:    result.ErrMessage,
		}
	}
	return result.ID, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
