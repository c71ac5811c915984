package soil

import (
	"fmt"
	"strings"
)

// Classify derives risk flags from one record's raw attributes. It never
// fails: missing or null fields are treated as empty strings, so absence
// and "no match" are indistinguishable.
//
// Matching is case-insensitive substring search against a small vocabulary:
//
//   - poor drainage: drainage class contains "poorly" (covers "poorly",
//     "very poorly", and "somewhat poorly" drained)
//   - hydric likely: hydric rating is "yes"/"y", or mentions "hydric" or
//     "likely", or carries a percent sign
//   - flooding/ponding risk: frequency text contains "frequent",
//     "occasional", or "common"
func Classify(attrs map[string]any) RiskFlags {
	drainage := strings.ToLower(attrText(attrs, "drclassdcd"))
	hydric := strings.ToLower(attrText(attrs, "hydclprs"))
	flood := strings.ToLower(attrText(attrs, "flodfreqdcd"))
	pond := strings.ToLower(attrText(attrs, "pondfreqprs"))

	return RiskFlags{
		PoorDrainage: strings.Contains(drainage, "poorly"),
		HydricLikely: hydric == "yes" || hydric == "y" ||
			strings.Contains(hydric, "hydric") ||
			strings.Contains(hydric, "%") ||
			strings.Contains(hydric, "likely"),
		FloodingRisk: containsAny(flood, "frequent", "occasional", "common"),
		PondingRisk:  containsAny(pond, "frequent", "occasional", "common"),
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// attrText renders one attribute as text, defaulting absent/null values to
// the empty string. Numeric values are formatted, not rejected; the schema
// is not guaranteed consistent across records.
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
