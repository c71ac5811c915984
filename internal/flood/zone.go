// Package flood looks up the FEMA flood hazard zone for a point and maps
// it to a coarse risk category.
package flood

import "strings"

type Category string

const (
	CategoryHigh         Category = "high"
	CategoryModerate     Category = "moderate"
	CategoryMinimal      Category = "minimal"
	CategoryUndetermined Category = "undetermined"
)

// special flood hazard area zones (1% annual chance)
var highRiskZones = map[string]struct{}{
	"A": {}, "AE": {}, "AH": {}, "AO": {}, "AR": {}, "A99": {},
	"V": {}, "VE": {},
}

// CategoryForZone maps an NFHL FLD_ZONE / ZONE_SUBTY pair to a risk
// category. Shaded X (the 0.2% annual chance subtype) and legacy zone B
// count as moderate; unshaded X and legacy C as minimal; D and anything
// unrecognized stay undetermined.
func CategoryForZone(zone, subtype string) Category {
	z := strings.ToUpper(strings.TrimSpace(zone))
	sub := strings.ToUpper(strings.TrimSpace(subtype))

	if _, ok := highRiskZones[z]; ok {
		return CategoryHigh
	}
	switch z {
	case "X":
		if strings.Contains(sub, "0.2") {
			return CategoryModerate
		}
		return CategoryMinimal
	case "B":
		return CategoryModerate
	case "C":
		return CategoryMinimal
	}
	return CategoryUndetermined
}
