// Package linkedin publishes posts through the LinkedIn UGC API.
// Single-phase, token-authenticated via Authorization header.
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"

	"socialcast/internal/integrations"
	"socialcast/internal/publish"
	"socialcast/pkg/clients"
)

const Provider = "linkedin"

const restliProtocolVersion = "2.0.0"

type Adapter struct {
	baseURL  string
	http     *http.Client
	executor failsafe.Executor[*http.Response]
}

// New builds a LinkedIn adapter against the given API base URL.
// httpClient and executor may be nil to use defaults.
func New(baseURL string, httpClient *http.Client, executor failsafe.Executor[*http.Response]) *Adapter {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: clients.DefaultTransport(),
			Timeout:   30 * time.Second,
		}
	}
	if executor == nil {
		executor = clients.NewHTTPExecutor(clients.DefaultHTTPExecutorConfig())
	}
	return &Adapter{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     httpClient,
		executor: executor,
	}
}

func (a *Adapter) Provider() string { return Provider }

type shareContent struct {
	ShareCommentary    textBlock         `json:"shareCommentary"`
	ShareMediaCategory string            `json:"shareMediaCategory"`
	Media              []mediaDescriptor `json:"media,omitempty"`
}

type textBlock struct {
	Text string `json:"text"`
}

type mediaDescriptor struct {
	Status      string `json:"status"`
	OriginalURL string `json:"originalUrl"`
}

type ugcPost struct {
	Author          string                  `json:"author"`
	LifecycleState  string                  `json:"lifecycleState"`
	SpecificContent map[string]shareContent `json:"specificContent"`
	Visibility      map[string]string       `json:"visibility"`
}

type ugcResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Publish posts a UGC share authored by the stored provider user id.
// Attachments use the image media category; text-only shares use NONE.
func (a *Adapter) Publish(ctx context.Context, integ integrations.Integration, req publish.Request) (string, error) {
	if integ.AccountID == "" {
		return "", errors.New("linkedin member id missing")
	}

	content := shareContent{
		ShareCommentary:    textBlock{Text: req.Message()},
		ShareMediaCategory: "NONE",
	}
	if req.HasAttachment() {
		content.ShareMediaCategory = "IMAGE"
		content.Media = []mediaDescriptor{{Status: "READY", OriginalURL: req.AttachmentURL}}
	}

	payload := ugcPost{
		Author:         "urn:li:person:" + integ.AccountID,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]shareContent{
			"com.linkedin.ugc.ShareContent": content,
		},
		Visibility: map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode ugc payload: %w", err)
	}

	endpoint := a.baseURL + "/v2/ugcPosts"
	resp, err := clients.ExecuteHTTP(ctx, a.executor, func() (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+integ.AccessToken)
		httpReq.Header.Set("X-Restli-Protocol-Version", restliProtocolVersion)
		return a.http.Do(httpReq)
	})
	if err != nil {
		return "", fmt.Errorf("linkedin request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read linkedin response: %w", err)
	}

	var decoded ugcResponse
	_ = json.Unmarshal(raw, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || decoded.ID == "" {
		return "", &publish.ProviderError{
			Provider:   Provider,
			StatusCode: resp.StatusCode,
			Message:    decoded.Message,
		}
	}
	return decoded.ID, nil
}
