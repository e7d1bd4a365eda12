package publish

import (
	"context"
	"strings"

	"socialcast/internal/integrations"
)

// Adapter is the uniform publish contract implemented once per provider.
// Publish returns the provider-assigned post id on success. Adapters
// report provider rejections as errors; the orchestrator converts them
// into per-attempt results.
type Adapter interface {
	Provider() string
	Publish(ctx context.Context, integ integrations.Integration, req Request) (string, error)
}

// Registry maps provider names to adapters. It is built once at startup;
// lookups are read-only afterwards.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	m := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Provider()] = a
	}
	return &Registry{adapters: m}
}

// Lookup returns the adapter registered for a provider name.
func (r *Registry) Lookup(provider string) (Adapter, bool) {
	a, ok := r.adapters[normalizeProvider(provider)]
	return a, ok
}

// Known filters a requested platform list down to providers with a
// registered adapter, normalized and deduplicated. Unknown entries are
// dropped per-entry, not rejected wholesale.
func (r *Registry) Known(platforms []string) []string {
	seen := make(map[string]struct{}, len(platforms))
	var known []string
	for _, p := range platforms {
		name := normalizeProvider(p)
		if _, ok := r.adapters[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		known = append(known, name)
	}
	return known
}

func normalizeProvider(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}
