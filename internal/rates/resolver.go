package rates

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound is returned by a Source when a service has no active remote config.
var ErrNotFound = errors.New("no active config")

// Source fetches the active remote config of a service. The returned map is the partial config
// object itself, not an envelope around it.
type Source interface {
	ActiveConfig(ctx context.Context, serviceID string) (map[string]any, error)
}

// Resolver fetches remote configs and resolves them against service schemas. Fetch failures
// never surface as errors: they degrade to static defaults with UsingDefaults set.
type Resolver struct {
	source Source
	logger *zap.Logger
	group  singleflight.Group
	now    func() time.Time
}

// NewResolver creates a resolver over source. A nil source always yields defaults.
func NewResolver(source Source, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// Fetch resolves the effective config of serviceID. Concurrent fetches for the same service
// share one call to the source.
func (r *Resolver) Fetch(ctx context.Context, serviceID string, schema Schema) Effective {
	remote, err := r.fetchRemote(ctx, serviceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			r.logger.Info("no active remote config, using defaults", zap.String("service", serviceID))
		} else {
			r.logger.Warn("remote config fetch failed, using defaults",
				zap.String("service", serviceID),
				zap.Error(err),
			)
		}
		remote = nil
	}

	eff := Resolve(serviceID, remote, schema)
	eff.ResolvedAt = r.now()
	if !eff.UsingDefaults {
		r.logger.Debug("resolved remote config",
			zap.String("service", serviceID),
			zap.Int("leaves", len(eff.Config)),
			zap.Int("defaulted", countOrigin(eff, OriginDefault)),
		)
	}
	return eff
}

func (r *Resolver) fetchRemote(ctx context.Context, serviceID string) (map[string]any, error) {
	if r.source == nil {
		return nil, ErrNotFound
	}
	v, err, _ := r.group.Do(serviceID, func() (any, error) {
		cfg, err := r.source.ActiveConfig(ctx, serviceID)
		if err != nil {
			return nil, err
		}
		if cfg == nil {
			return nil, ErrNotFound
		}
		return cfg, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch active config for %s: %w", serviceID, err)
	}
	return v.(map[string]any), nil
}

// FetchAll resolves several services in parallel.
func (r *Resolver) FetchAll(ctx context.Context, schemas map[string]Schema) map[string]Effective {
	var (
		mu  sync.Mutex
		out = make(map[string]Effective, len(schemas))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for id, schema := range schemas {
		g.Go(func() error {
			eff := r.Fetch(gctx, id, schema)
			mu.Lock()
			out[id] = eff
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func countOrigin(eff Effective, o Origin) int {
	n := 0
	for _, got := range eff.Origins {
		if got == o {
			n++
		}
	}
	return n
}

// StaticSource serves configs from memory.
type StaticSource map[string]map[string]any

// ActiveConfig implements Source.
func (s StaticSource) ActiveConfig(_ context.Context, serviceID string) (map[string]any, error) {
	cfg, ok := s[serviceID]
	if !ok {
		return nil, ErrNotFound
	}
	return cfg, nil
}
