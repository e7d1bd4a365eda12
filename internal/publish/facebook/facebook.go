// Package facebook publishes posts to Facebook pages through the Graph
// API. Single-phase: one POST against the feed, photo, or video edge
// depending on the content.
package facebook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/failsafe-go/failsafe-go"

	"socialcast/internal/integrations"
	"socialcast/internal/publish"
	"socialcast/internal/publish/graph"
)

const Provider = "facebook"

type Adapter struct {
	baseURL string
	client  *graph.Client
}

// New builds a Facebook adapter against the given Graph API base URL.
// httpClient and executor may be nil to use defaults.
func New(baseURL string, httpClient *http.Client, executor failsafe.Executor[*http.Response]) *Adapter {
	return &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  graph.NewClient(httpClient, executor),
	}
}

func (a *Adapter) Provider() string { return Provider }

// Publish posts to the page identified by the integration's account id.
// Endpoint selection follows the content: text-only goes to the feed,
// video attachments (or reel format) to the video edge, anything else to
// the photo edge.
func (a *Adapter) Publish(ctx context.Context, integ integrations.Integration, req publish.Request) (string, error) {
	pageID := integ.AccountID
	if pageID == "" {
		return "", errors.New("facebook page id missing")
	}

	form := url.Values{}
	form.Set("access_token", integ.AccessToken)

	var edge string
	switch {
	case !req.HasAttachment():
		edge = "feed"
		form.Set("message", req.Message())
	case req.IsVideo():
		edge = "videos"
		form.Set("description", req.Message())
		form.Set("file_url", req.AttachmentURL)
	default:
		edge = "photos"
		form.Set("caption", req.Message())
		form.Set("url", req.AttachmentURL)
	}

	endpoint := fmt.Sprintf("%s/%s/%s", a.baseURL, pageID, edge)
	result, err := a.client.PostForm(ctx, endpoint, form)
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
