package flood

import "testing"

func TestCategoryForZone(t *testing.T) {
	cases := []struct {
		zone, subtype string
		want          Category
	}{
		{"AE", "", CategoryHigh},
		{"A", "", CategoryHigh},
		{"A99", "", CategoryHigh},
		{"VE", "", CategoryHigh},
		{"ae", "", CategoryHigh}, // case-insensitive
		{"X", "0.2 PCT ANNUAL CHANCE FLOOD HAZARD", CategoryModerate},
		{"X", "AREA OF MINIMAL FLOOD HAZARD", CategoryMinimal},
		{"X", "", CategoryMinimal},
		{"B", "", CategoryModerate},
		{"C", "", CategoryMinimal},
		{"D", "", CategoryUndetermined},
		{"", "", CategoryUndetermined},
		{"OPEN WATER", "", CategoryUndetermined},
	}
	for _, tc := range cases {
		if got := CategoryForZone(tc.zone, tc.subtype); got != tc.want {
			t.Fatalf("CategoryForZone(%q,%q)=%q want %q", tc.zone, tc.subtype, got, tc.want)
		}
	}
}
