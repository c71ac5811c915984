package soil

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kmurflow98/landsage-app/internal/arcgis"
	"github.com/kmurflow98/landsage-app/internal/cache"
	"github.com/kmurflow98/landsage-app/internal/cache/keys"
	"github.com/kmurflow98/landsage-app/internal/geometry"
	"github.com/kmurflow98/landsage-app/internal/observability"
)

// Querier is the slice of the feature-service client the pipeline needs.
type Querier interface {
	QueryFeatures(ctx context.Context, geom arcgis.Geometry, outFields []string) ([]arcgis.Feature, error)
	URL() string
}

// Service runs the AOI query pipeline: adapt geometry, fetch all
// intersecting records, summarize, shape, and optionally cache the
// serialized response.
type Service struct {
	logger *slog.Logger
	client Querier
	cache  cache.Interface // nil disables caching
	ttl    time.Duration
}

func NewService(logger *slog.Logger, client Querier, c cache.Interface, ttl time.Duration) *Service {
	return &Service{logger: logger, client: client, cache: c, ttl: ttl}
}

// URL reports the resolved upstream query endpoint.
func (s *Service) URL() string { return s.client.URL() }

// Query returns the serialized response payload for one AOI geometry.
// Cache reads and writes are best-effort; any cache failure falls through
// to the upstream fetch.
func (s *Service) Query(ctx context.Context, rawGeom json.RawMessage) ([]byte, error) {
	geom, err := geometry.ToQueryGeometry(rawGeom)
	if err != nil {
		return nil, err
	}

	var cacheKey string
	if s.cache != nil {
		geomJSON, err := json.Marshal(geom)
		if err == nil {
			cacheKey = keys.ResponseKey(Layer, geomJSON)
			if val, ok, err := s.cache.Get(ctx, cacheKey); err != nil {
				s.logger.Warn("cache get failed", "key", cacheKey, "err", err)
			} else if ok {
				observability.IncCacheHit()
				return val, nil
			} else {
				observability.IncCacheMiss()
			}
		}
	}

	feats, err := s.client.QueryFeatures(ctx, geom, OutFields)
	if err != nil {
		return nil, err
	}

	payload := BuildPayload(s.client.URL(), feats)
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal response payload: %w", err)
	}

	if cacheKey != "" {
		if err := s.cache.Set(ctx, cacheKey, body, s.ttl); err != nil {
			s.logger.Warn("cache set failed", "key", cacheKey, "err", err)
		}
	}

	s.logger.Info("soils query done",
		"records", payload.Count,
		"distinct_units", payload.DistinctMapUnits)
	return body, nil
}
