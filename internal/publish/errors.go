package publish

import (
	"errors"
	"fmt"
)

// ErrNoActiveIntegration means none of the requested platforms has an
// active integration for the calling user. This is a caller error and no
// publish attempt is made.
var ErrNoActiveIntegration = errors.New("no active integration for requested platforms")

// ProviderError carries a provider-side rejection back through the
// adapter boundary. It is reported per attempt and never aborts sibling
// attempts.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s returned status %d", e.Provider, e.StatusCode)
}
