// Package arcgis queries ArcGIS REST feature services.
package arcgis

import "fmt"

// WGS84 is the spatial reference used on both sides of every query. The
// service never reprojects; the wkid tag asserts the coordinate system of
// the rings as supplied.
const WGS84 = 4326

type SpatialReference struct {
	WKID int `json:"wkid"`
}

// Geometry is an esri polygon geometry: a list of rings, each ring a list
// of [x y] positions.
type Geometry struct {
	Rings            [][][]float64     `json:"rings"`
	SpatialReference *SpatialReference `json:"spatialReference,omitempty"`
}

// Feature is one record returned by a feature service. Attributes is an
// open mapping; the schema is not guaranteed complete across records.
type Feature struct {
	Attributes map[string]any `json:"attributes"`
	Geometry   *Geometry      `json:"geometry,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type queryResponse struct {
	Features              []Feature `json:"features"`
	ExceededTransferLimit bool      `json:"exceededTransferLimit"`
	Error                 *apiError `json:"error,omitempty"`
}

func (e *apiError) String() string {
	return fmt.Sprintf("code=%d message=%q", e.Code, e.Message)
}
