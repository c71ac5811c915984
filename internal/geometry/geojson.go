package geometry

import "github.com/kmurflow98/landsage-app/internal/arcgis"

type Feature struct {
	Type       string         `json:"type"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type Geometry struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// ToFeatureCollection converts raw esri records into a GeoJSON
// FeatureCollection. Esri polygon rings and GeoJSON polygon coordinates
// share the [ring][i][x y] layout, so coordinates carry over as-is.
func ToFeatureCollection(feats []arcgis.Feature) FeatureCollection {
	out := FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]Feature, 0, len(feats)),
	}
	for _, f := range feats {
		gf := Feature{
			Type:       "Feature",
			Properties: f.Attributes,
		}
		if gf.Properties == nil {
			gf.Properties = map[string]any{}
		}
		if f.Geometry != nil && len(f.Geometry.Rings) > 0 {
			gf.Geometry = &Geometry{
				Type:        "Polygon",
				Coordinates: f.Geometry.Rings,
			}
		}
		out.Features = append(out.Features, gf)
	}
	return out
}
