package arcgis

import (
	"errors"
	"fmt"
)

// ErrTooManyFeatures is returned when a query accumulates more records than
// the safety cap allows. The caller should reduce the area of interest.
var ErrTooManyFeatures = errors.New("result exceeds the feature cap; reduce the area of interest and try again")

// UpstreamError reports a failed feature-service call: a non-2xx HTTP
// response, an error object embedded in a 200 response, or a transport
// failure (Status 0).
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream request failed: %s", e.Body)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Body)
}
