package flood

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	h3 "github.com/uber/h3-go/v4"

	"github.com/kmurflow98/landsage-app/internal/arcgis"
	"github.com/kmurflow98/landsage-app/internal/observability"
)

// OutFields are the attributes requested from the NFHL layer.
var OutFields = []string{"FLD_ZONE", "ZONE_SUBTY"}

// memoRes is the H3 resolution for memoization keys: ~66 m cells, small
// enough that all points in one cell share a flood zone in practice.
const memoRes = 10

var ErrInvalidPoint = errors.New("invalid point: lon must be in [-180,180] and lat in [-90,90]")

type PointQuerier interface {
	QueryPoint(ctx context.Context, lon, lat float64, outFields []string) ([]arcgis.Feature, error)
	URL() string
}

type Result struct {
	FloodZone    string   `json:"floodZone"`
	ZoneSubtype  string   `json:"zoneSubtype,omitempty"`
	RiskCategory Category `json:"riskCategory"`
	Source       string   `json:"source"`
}

type Service struct {
	logger *slog.Logger
	client PointQuerier
	memo   *lru.Cache[string, Result]
}

func NewService(logger *slog.Logger, client PointQuerier, memoSize int) *Service {
	if memoSize <= 0 {
		memoSize = 2048
	}
	memo, _ := lru.New[string, Result](memoSize)
	return &Service{logger: logger, client: client, memo: memo}
}

// Lookup resolves the flood zone containing the point. Results are
// memoized per H3 cell, so repeated lookups around the same spot skip the
// upstream call.
func (s *Service) Lookup(ctx context.Context, lon, lat float64) (Result, error) {
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return Result{}, ErrInvalidPoint
	}

	var memoKey string
	if cell, err := h3.LatLngToCell(h3.LatLng{Lat: lat, Lng: lon}, memoRes); err == nil {
		memoKey = cell.String()
		if res, ok := s.memo.Get(memoKey); ok {
			observability.IncFloodMemo("hit")
			return res, nil
		}
		observability.IncFloodMemo("miss")
	}

	feats, err := s.client.QueryPoint(ctx, lon, lat, OutFields)
	if err != nil {
		return Result{}, fmt.Errorf("flood zone lookup: %w", err)
	}

	res := Result{
		RiskCategory: CategoryUndetermined,
		Source:       s.client.URL(),
	}
	if len(feats) > 0 {
		zone := attrText(feats[0].Attributes, "FLD_ZONE")
		sub := attrText(feats[0].Attributes, "ZONE_SUBTY")
		res.FloodZone = zone
		res.ZoneSubtype = sub
		res.RiskCategory = CategoryForZone(zone, sub)
	}

	if memoKey != "" {
		s.memo.Add(memoKey, res)
	}
	s.logger.Debug("flood lookup",
		"zone", res.FloodZone,
		"category", string(res.RiskCategory))
	return res, nil
}

func attrText(attrs map[string]any, key string) string {
	if attrs == nil {
		return ""
	}
	v, ok := attrs[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
