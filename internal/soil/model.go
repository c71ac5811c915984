// Package soil implements the SSURGO map-unit query pipeline: attribute
// classification, deduplication, aggregation, and response shaping.
package soil

import (
	"github.com/kmurflow98/landsage-app/internal/geometry"
)

// Layer is the fixed layer name reported in every response.
const Layer = "SSURGO Soil Map Units"

// MaxUnitsInResponse truncates the unique unit list; distinctMapUnits still
// reports the true total.
const MaxUnitsInResponse = 50

// OutFields are the attribute fields requested from the soils service.
var OutFields = []string{
	"musym", "muname", "mukey",
	"drclassdcd", "hydgrpdcd", "hydclprs",
	"flodfreqdcd", "pondfreqprs",
	"wtdepannmin", "wtdepaprjunmin",
}

// RiskFlags are four independent heuristic booleans derived from map-unit
// attribute text. False negatives are expected when upstream wording
// diverges from the matched vocabulary.
type RiskFlags struct {
	PoorDrainage bool `json:"poorDrainage"`
	HydricLikely bool `json:"hydricLikely"`
	FloodingRisk bool `json:"floodingRisk"`
	PondingRisk  bool `json:"pondingRisk"`
}

// MapUnit is the deduplicated, display-ready soil map unit.
type MapUnit struct {
	MapUnitSymbol    string    `json:"musym"`
	MapUnitName      string    `json:"muname"`
	MapUnitKey       string    `json:"mukey"`
	DrainageClass    string    `json:"drainageClass"`
	HydrologicGroup  string    `json:"hydrologicGroup"`
	HydricRating     string    `json:"hydricRating"`
	FloodFrequency   string    `json:"floodFrequency"`
	PondingFrequency string    `json:"pondingFrequency"`
	WaterTableAnnual string    `json:"waterTableDepthAnnualMin"`
	WaterTableAprJun string    `json:"waterTableDepthAprJunMin"`
	Link             string    `json:"link"`
	Flags            RiskFlags `json:"flags"`
}

// Summary counts distinct map units per risk flag. Counters never exceed
// the distinct-unit count because they increment once per unit, not once
// per raw record.
type Summary struct {
	PoorDrainage int `json:"poorDrainage"`
	HydricLikely int `json:"hydricLikely"`
	FloodingRisk int `json:"floodingRisk"`
	PondingRisk  int `json:"pondingRisk"`
}

// Payload is the response body for a successful soils query.
type Payload struct {
	Layer                   string                     `json:"layer"`
	Source                  string                     `json:"source"`
	Count                   int                        `json:"count"`
	DistinctMapUnits        int                        `json:"distinctMapUnits"`
	AggregateFlagsByMapUnit Summary                    `json:"aggregateFlagsByMapUnit"`
	UniqueMapUnits          []MapUnit                  `json:"uniqueMapUnits"`
	GeoJSON                 geometry.FeatureCollection `json:"geojson"`
}
