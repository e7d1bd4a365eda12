package publish

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"socialcast/internal/audit"
	"socialcast/internal/integrations"
	"socialcast/pkg/logging"
)

// IntegrationSource resolves a user's active integrations for a provider
// set. Backed by the Postgres credential store in production.
type IntegrationSource interface {
	GetActive(ctx context.Context, userID string, providers []string) ([]integrations.Integration, error)
}

const defaultMaxConcurrent = 4

// Orchestrator fans one request out to every requested platform with an
// active integration and aggregates the per-attempt outcomes. It holds no
// state between calls.
type Orchestrator struct {
	registry      *Registry
	source        IntegrationSource
	auditor       audit.Logger
	logger        logging.Logger
	maxConcurrent int
}

func NewOrchestrator(registry *Registry, source IntegrationSource, auditor audit.Logger, logger logging.Logger) *Orchestrator {
	return &Orchestrator{
		registry:      registry,
		source:        source,
		auditor:       auditor,
		logger:        logger,
		maxConcurrent: defaultMaxConcurrent,
	}
}

// Publish resolves the caller's active integrations for the requested
// platforms, runs one adapter attempt per integration concurrently, and
// returns the aggregate report. Attempts are isolated: no attempt's
// failure, panic, or slowness affects any other.
func (o *Orchestrator) Publish(ctx context.Context, userID string, req Request) (Report, error) {
	targets := o.registry.Known(req.Platforms)
	resolved, err := o.source.GetActive(ctx, userID, targets)
	if err != nil {
		return Report{}, fmt.Errorf("resolve integrations: %w", err)
	}
	if len(resolved) == 0 {
		return Report{}, ErrNoActiveIntegration
	}

	results := make([]AttemptResult, len(resolved))

	var g errgroup.Group
	g.SetLimit(o.maxConcurrent)
	for i, integ := range resolved {
		i, integ := i, integ
		g.Go(func() error {
			results[i] = o.attempt(ctx, integ, req)
			return nil
		})
	}
	_ = g.Wait()

	// Stable report order regardless of completion order.
	sort.Slice(results, func(a, b int) bool { return results[a].Platform < results[b].Platform })

	for _, r := range results {
		o.auditor.Record(ctx, audit.Entry{
			UserID:   userID,
			ClientID: req.ClientID,
			OwnerID:  req.OwnerID,
			Provider: r.Platform,
			Success:  r.Success,
			PostID:   r.PostID,
			Error:    r.Error,
		})
	}

	report := buildReport(results)
	o.logger.WithFields(logging.Fields{
		"user_id":   userID,
		"platforms": len(results),
		"success":   report.Success,
	}).Info("Publish completed")

	return report, nil
}

// attempt runs one adapter invocation. Panics and errors both collapse
// into a failed result so per-attempt isolation holds even for a buggy
// adapter. Token values are scrubbed from error text before it leaves
// this boundary.
func (o *Orchestrator) attempt(ctx context.Context, integ integrations.Integration, req Request) (result AttemptResult) {
	result = AttemptResult{Platform: integ.Provider}

	defer func() {
		if r := recover(); r != nil {
			o.logger.WithFields(logging.Fields{
				"provider": integ.Provider,
				"panic":    fmt.Sprintf("%v", r),
			}).Error("Adapter panicked")
			result.Success = false
			result.PostID = ""
			result.Error = "internal adapter error"
		}
	}()

	if err := ctx.Err(); err != nil {
		result.Error = "publish cancelled"
		return result
	}

	adapter, ok := o.registry.Lookup(integ.Provider)
	if !ok {
		result.Error = "no adapter registered"
		return result
	}

	postID, err := adapter.Publish(ctx, integ, req)
	if err != nil {
		if ctx.Err() != nil {
			result.Error = "publish cancelled"
			return result
		}
		result.Error = audit.RedactToken(err.Error(), integ.AccessToken)
		return result
	}

	result.Success = true
	result.PostID = postID
	return result
}
