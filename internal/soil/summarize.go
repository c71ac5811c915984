package soil

import (
	"github.com/kmurflow98/landsage-app/internal/arcgis"
	"github.com/kmurflow98/landsage-app/internal/geometry"
)

// referenceLink points a map unit at its SoilWeb explainer page.
func referenceLink(mukey string) string {
	if mukey == "" {
		return ""
	}
	return "https://casoilresource.lawr.ucdavis.edu/soil_web/ssurgo.php?action=mapunit&mukey=" + mukey
}

// unitKey is the dedup identity: the three raw identity fields joined as
// text. A service that reuses the same triple for genuinely distinct
// polygons folds them into one logical unit; downstream aggregate counts
// depend on this key, so it must not be extended with geometry.
func unitKey(musym, muname, mukey string) string {
	return musym + "|" + muname + "|" + mukey
}

// Summarize folds raw records into distinct map units in arrival order and
// aggregates risk-flag counts per distinct unit. The first record carrying
// a given identity wins: it is classified once and later records with the
// same key neither overwrite its attributes nor bump the flag counters.
func Summarize(feats []arcgis.Feature) ([]MapUnit, Summary) {
	units := make([]MapUnit, 0, 16)
	seen := make(map[string]struct{}, 16)
	var sum Summary

	for _, f := range feats {
		musym := attrText(f.Attributes, "musym")
		muname := attrText(f.Attributes, "muname")
		mukey := attrText(f.Attributes, "mukey")

		key := unitKey(musym, muname, mukey)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		flags := Classify(f.Attributes)
		units = append(units, MapUnit{
			MapUnitSymbol:    musym,
			MapUnitName:      muname,
			MapUnitKey:       mukey,
			DrainageClass:    attrText(f.Attributes, "drclassdcd"),
			HydrologicGroup:  attrText(f.Attributes, "hydgrpdcd"),
			HydricRating:     attrText(f.Attributes, "hydclprs"),
			FloodFrequency:   attrText(f.Attributes, "flodfreqdcd"),
			PondingFrequency: attrText(f.Attributes, "pondfreqprs"),
			WaterTableAnnual: attrText(f.Attributes, "wtdepannmin"),
			WaterTableAprJun: attrText(f.Attributes, "wtdepaprjunmin"),
			Link:             referenceLink(mukey),
			Flags:            flags,
		})

		// counters move once per distinct unit, at insertion
		if flags.PoorDrainage {
			sum.PoorDrainage++
		}
		if flags.HydricLikely {
			sum.HydricLikely++
		}
		if flags.FloodingRisk {
			sum.FloodingRisk++
		}
		if flags.PondingRisk {
			sum.PondingRisk++
		}
	}
	return units, sum
}

// BuildPayload shapes the full response for one query: totals, aggregate
// flag counts, the truncated unit list, and the GeoJSON collection of all
// raw records.
func BuildPayload(source string, feats []arcgis.Feature) Payload {
	units, sum := Summarize(feats)

	distinct := len(units)
	if len(units) > MaxUnitsInResponse {
		units = units[:MaxUnitsInResponse]
	}

	return Payload{
		Layer:                   Layer,
		Source:                  source,
		Count:                   len(feats),
		DistinctMapUnits:        distinct,
		AggregateFlagsByMapUnit: sum,
		UniqueMapUnits:          units,
		GeoJSON:                 geometry.ToFeatureCollection(feats),
	}
}
