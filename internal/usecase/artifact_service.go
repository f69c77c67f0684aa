package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/chart"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/cache"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/logging"
)

// ChartRenderer turns a chart spec into a servable artifact.
type ChartRenderer interface {
	Render(ctx context.Context, spec chart.Spec) (chart.Artifact, error)
}

// ArtifactRequest identifies one logical artifact: a registered kind plus
// its parameters.
type ArtifactRequest struct {
	Kind   string
	Params map[string]string
}

// BuilderFunc produces one artifact from source data. Builders run inside
// the cache's bounded compute, so they must honor ctx cancellation.
type BuilderFunc func(ctx context.Context, params map[string]string) (chart.Artifact, error)

type registration struct {
	build BuilderFunc
	warm  []ArtifactRequest
}

// HealthStatus reports the cache side of service health.
type HealthStatus struct {
	CacheEnabled bool      `json:"cacheEnabled"`
	CacheEntries int       `json:"cacheEntries"`
	LastStored   time.Time `json:"lastStored"`
	Reachable    bool      `json:"reachable"`
}

// ArtifactService serves every dashboard artifact through the cache:
// fresh hits return stored bytes, stale hits return stored bytes while a
// background recompute runs, absent or invalidated keys block on one
// shared compute.
type ArtifactService struct {
	store    *cache.Store
	enabled  bool
	builders map[string]registration
	kinds    []string
	logger   *logging.Logger
}

func NewArtifactService(store *cache.Store, enabled bool, logger *logging.Logger) *ArtifactService {
	return &ArtifactService{
		store:    store,
		enabled:  enabled,
		builders: map[string]registration{},
		logger:   logger,
	}
}

// Register binds an artifact kind to its builder. The warm requests are
// recomputed eagerly after every forced refresh. Registration happens at
// wiring time, before any Fetch.
func (s *ArtifactService) Register(kind string, build BuilderFunc, warm ...ArtifactRequest) {
	s.builders[kind] = registration{build: build, warm: warm}
	s.kinds = append(s.kinds, kind)
	sort.Strings(s.kinds)
}

// keyEscaper keeps the composite key collision-free: a separator inside
// a parameter value must never read as a separator of the key itself.
var keyEscaper = strings.NewReplacer("%", "%25", "|", "%7C", "=", "%3D")

// CacheKey derives the stable cache key for a request: the kind followed
// by the sorted k=v parameter pairs, with separators escaped inside each
// component.
func CacheKey(req ArtifactRequest) string {
	if len(req.Params) == 0 {
		return req.Kind
	}

	keys := make([]string, 0, len(req.Params))
	for k := range req.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(req.Kind)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(keyEscaper.Replace(k))
		b.WriteByte('=')
		b.WriteString(keyEscaper.Replace(req.Params[k]))
	}

	return b.String()
}

// Fetch returns the artifact for a request, computing it on demand.
func (s *ArtifactService) Fetch(ctx context.Context, req ArtifactRequest) (chart.Artifact, error) {
	ctx, span := startSpan(ctx, "ArtifactService.Fetch")
	defer span.End()

	reg, ok := s.builders[req.Kind]
	if !ok {
		return chart.Artifact{}, errors.Mark(fmt.Errorf("unknown artifact kind %q", req.Kind), ErrNotFound)
	}

	if !s.enabled {
		return reg.build(ctx, req.Params)
	}

	value, err := s.store.GetOrLoad(ctx, CacheKey(req), func(ctx context.Context) (any, error) {
		return reg.build(ctx, req.Params)
	})
	if err != nil {
		if errors.Is(err, cache.ErrTimeout) {
			return chart.Artifact{}, errors.Mark(err, ErrTimeout)
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrDataUnavailable) {
			return chart.Artifact{}, err
		}
		return chart.Artifact{}, errors.Mark(err, ErrComputeFailure)
	}

	artifact, ok := value.(chart.Artifact)
	if !ok {
		return chart.Artifact{}, errors.Mark(fmt.Errorf("cache entry for %q is not an artifact", req.Kind), ErrComputeFailure)
	}

	return artifact, nil
}

// ForceRefresh invalidates cached artifacts and eagerly recomputes the
// registered warm set. Scope is an artifact kind prefix; empty or "all"
// refreshes everything. It returns the number of artifacts warmed;
// individual warm failures are logged, not fatal, so one broken source
// cannot block the rest of the dashboard.
func (s *ArtifactService) ForceRefresh(ctx context.Context, scope string) (int, error) {
	ctx, span := startSpan(ctx, "ArtifactService.ForceRefresh")
	defer span.End()

	scope = strings.TrimSpace(scope)
	all := scope == "" || scope == "all"

	if s.enabled {
		if all {
			s.store.InvalidateAll()
		} else {
			s.store.InvalidatePrefix(scope)
		}
	}

	var warm []ArtifactRequest
	for _, kind := range s.kinds {
		if !all && !strings.HasPrefix(kind, scope) {
			continue
		}
		warm = append(warm, s.builders[kind].warm...)
	}
	if !all && len(warm) == 0 {
		return 0, errors.Mark(fmt.Errorf("unknown refresh scope %q", scope), ErrNotFound)
	}

	var warmed atomic.Int64
	p := pool.New().WithMaxGoroutines(4).WithContext(ctx)
	for _, req := range warm {
		p.Go(func(ctx context.Context) error {
			if _, err := s.Fetch(ctx, req); err != nil {
				s.logger.WarnContext(ctx, "warmup failed", "kind", req.Kind, "error", err)
				return nil
			}
			warmed.Add(1)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return int(warmed.Load()), errors.Mark(err, ErrComputeFailure)
	}

	s.logger.InfoContext(ctx, "refresh completed", "scope", scope, "warmed", warmed.Load(), "requested", len(warm))

	return int(warmed.Load()), nil
}

// Health reports cache reachability and the age marker of the last
// successful store.
func (s *ArtifactService) Health(ctx context.Context) HealthStatus {
	_, span := startSpan(ctx, "ArtifactService.Health")
	defer span.End()

	status := HealthStatus{CacheEnabled: s.enabled, Reachable: true}
	if !s.enabled {
		return status
	}

	status.CacheEntries = s.store.Len()
	if last, ok := s.store.LastStored(); ok {
		status.LastStored = last
	}

	return status
}

// SweepExpired drops expired cache entries, returning how many were
// removed.
func (s *ArtifactService) SweepExpired() int {
	if !s.enabled {
		return 0
	}

	return s.store.SweepExpired()
}

// jsonArtifact encodes a data payload as an application/json artifact so
// data endpoints flow through the same cache as rendered charts.
func jsonArtifact(v any) (chart.Artifact, error) {
	payload, err := sonic.Marshal(v)
	if err != nil {
		return chart.Artifact{}, errors.Wrap(err, "encode json artifact")
	}

	return chart.Artifact{ContentType: "application/json", Payload: payload}, nil
}
