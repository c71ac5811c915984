package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kmurflow98/landsage-app/internal/observability"
)

const (
	// PageSize is the record count requested per upstream call.
	PageSize = 2000
	// MaxFeatures caps the accumulated record count for one query.
	MaxFeatures = 20000
	// callTimeout bounds each individual upstream call.
	callTimeout = 15 * time.Second

	// limit on error bodies kept in messages
	maxErrBody = 2048
)

// Client issues spatial queries against one ArcGIS REST /query endpoint.
type Client struct {
	logger   *slog.Logger
	http     *http.Client
	queryURL string
	name     string // metrics label, e.g. "soils"
}

func NewClient(logger *slog.Logger, queryURL, name string) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   128,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &Client{
		logger:   logger,
		http:     &http.Client{Transport: transport},
		queryURL: strings.TrimRight(queryURL, "/"),
		name:     name,
	}
}

// URL returns the resolved query endpoint.
func (c *Client) URL() string { return c.queryURL }

// QueryFeatures retrieves every feature intersecting geom, paging through
// the endpoint at offsets 0, PageSize, 2*PageSize, ... until the upstream
// stops signalling more data AND a short page arrives. Either signal alone
// keeps the loop going: the transfer-limit flag is not trustworthy on every
// server, so a full-sized page forces one more (likely empty) request
// rather than risking silent truncation.
func (c *Client) QueryFeatures(ctx context.Context, geom Geometry, outFields []string) ([]Feature, error) {
	geomJSON, err := json.Marshal(geom)
	if err != nil {
		return nil, fmt.Errorf("marshal query geometry: %w", err)
	}

	features := make([]Feature, 0, PageSize)
	offset := 0
	pages := 0
	for {
		params := c.polygonParams(string(geomJSON), outFields)
		params.Set("resultOffset", strconv.Itoa(offset))
		params.Set("resultRecordCount", strconv.Itoa(PageSize))

		page, exceeded, err := c.fetchPage(ctx, params)
		if err != nil {
			return nil, err
		}
		pages++
		features = append(features, page...)

		c.logger.Debug("query page",
			"endpoint", c.name,
			"offset", offset,
			"page_features", len(page),
			"total_features", len(features),
			"exceeded_transfer_limit", exceeded)

		// re-check the cap before issuing another request
		if len(features) > MaxFeatures {
			return nil, ErrTooManyFeatures
		}
		if !exceeded && len(page) < PageSize {
			break
		}
		offset += PageSize
	}

	observability.ObserveQueryFanout(pages, len(features))
	return features, nil
}

// QueryPoint runs a single non-paginated intersects query for one
// lon/lat position.
func (c *Client) QueryPoint(ctx context.Context, lon, lat float64, outFields []string) ([]Feature, error) {
	params := url.Values{}
	params.Set("f", "json")
	params.Set("geometry", fmt.Sprintf("%.6f,%.6f", lon, lat))
	params.Set("geometryType", "esriGeometryPoint")
	params.Set("spatialRel", "esriSpatialRelIntersects")
	params.Set("inSR", strconv.Itoa(WGS84))
	params.Set("outSR", strconv.Itoa(WGS84))
	params.Set("returnGeometry", "false")
	params.Set("outFields", strings.Join(outFields, ","))

	page, _, err := c.fetchPage(ctx, params)
	return page, err
}

func (c *Client) polygonParams(geomJSON string, outFields []string) url.Values {
	params := url.Values{}
	params.Set("f", "json")
	params.Set("geometry", geomJSON)
	params.Set("geometryType", "esriGeometryPolygon")
	params.Set("spatialRel", "esriSpatialRelIntersects")
	params.Set("inSR", strconv.Itoa(WGS84))
	params.Set("outSR", strconv.Itoa(WGS84))
	params.Set("returnGeometry", "true")
	params.Set("outFields", strings.Join(outFields, ","))
	return params
}

// fetchPage issues one bounded upstream call. Any failure class (transport,
// non-2xx, esri error object in a 200 body) surfaces as *UpstreamError.
func (c *Client) fetchPage(ctx context.Context, params url.Values) ([]Feature, bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.queryURL,
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, false, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	observability.ObserveUpstreamPage(c.name, time.Since(start).Seconds())
	if err != nil {
		return nil, false, &UpstreamError{Status: 0, Body: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, &UpstreamError{Status: resp.StatusCode, Body: "read body: " + err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false, &UpstreamError{Status: resp.StatusCode, Body: truncate(string(body), maxErrBody)}
	}

	var qr queryResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return nil, false, &UpstreamError{Status: resp.StatusCode, Body: "decode body: " + err.Error()}
	}
	// esri services report some failures inside a 200 response
	if qr.Error != nil {
		return nil, false, &UpstreamError{Status: resp.StatusCode, Body: qr.Error.String()}
	}
	return qr.Features, qr.ExceededTransferLimit, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
