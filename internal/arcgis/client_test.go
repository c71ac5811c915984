package arcgis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testGeom() Geometry {
	return Geometry{
		Rings: [][][]float64{{
			{-86.2, 39.7}, {-86.1, 39.7}, {-86.1, 39.8}, {-86.2, 39.7},
		}},
		SpatialReference: &SpatialReference{WKID: WGS84},
	}
}

// fake upstream that serves a fixed sequence of page sizes with the
// transfer-limit flag controlled per page
type fakeUpstream struct {
	pageSizes []int
	flags     []bool
	calls     int
	offsets   []int
}

func (f *fakeUpstream) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		off, _ := strconv.Atoi(r.PostFormValue("resultOffset"))
		f.offsets = append(f.offsets, off)

		idx := f.calls
		f.calls++

		size := 0
		flag := false
		if idx < len(f.pageSizes) {
			size = f.pageSizes[idx]
			flag = f.flags[idx]
		}

		feats := make([]Feature, size)
		for i := range feats {
			feats[i] = Feature{Attributes: map[string]any{"mukey": off + i}}
		}
		resp := map[string]any{
			"features":              feats,
			"exceededTransferLimit": flag,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func TestQueryFeatures_ThreePages_FlagOnFirstTwo(t *testing.T) {
	up := &fakeUpstream{
		pageSizes: []int{2000, 2000, 1500},
		flags:     []bool{true, true, false},
	}
	srv := httptest.NewServer(up.handler(t))
	defer srv.Close()

	c := NewClient(testLogger(), srv.URL, "soils")
	got, err := c.QueryFeatures(context.Background(), testGeom(), []string{"mukey"})
	if err != nil {
		t.Fatalf("QueryFeatures: %v", err)
	}
	if len(got) != 5500 {
		t.Fatalf("features=%d want 5500", len(got))
	}
	if up.calls != 3 {
		t.Fatalf("calls=%d want 3", up.calls)
	}
	wantOffsets := []int{0, 2000, 4000}
	for i, off := range up.offsets {
		if off != wantOffsets[i] {
			t.Fatalf("offsets=%v want %v", up.offsets, wantOffsets)
		}
	}
}

func TestQueryFeatures_FullPageWithoutFlag_IssuesOneMoreCall(t *testing.T) {
	up := &fakeUpstream{
		pageSizes: []int{2000, 0},
		flags:     []bool{false, false},
	}
	srv := httptest.NewServer(up.handler(t))
	defer srv.Close()

	c := NewClient(testLogger(), srv.URL, "soils")
	got, err := c.QueryFeatures(context.Background(), testGeom(), []string{"mukey"})
	if err != nil {
		t.Fatalf("QueryFeatures: %v", err)
	}
	if len(got) != 2000 {
		t.Fatalf("features=%d want 2000", len(got))
	}
	// conservative-continue: a full page forces one extra request
	if up.calls != 2 {
		t.Fatalf("calls=%d want 2", up.calls)
	}
}

func TestQueryFeatures_ShortPageWithoutFlag_StopsImmediately(t *testing.T) {
	up := &fakeUpstream{
		pageSizes: []int{37},
		flags:     []bool{false},
	}
	srv := httptest.NewServer(up.handler(t))
	defer srv.Close()

	c := NewClient(testLogger(), srv.URL, "soils")
	got, err := c.QueryFeatures(context.Background(), testGeom(), []string{"mukey"})
	if err != nil {
		t.Fatalf("QueryFeatures: %v", err)
	}
	if len(got) != 37 || up.calls != 1 {
		t.Fatalf("features=%d calls=%d want 37 features from 1 call", len(got), up.calls)
	}
}

func TestQueryFeatures_CapExceeded_FailsWithoutFurtherCalls(t *testing.T) {
	// every page is full and flagged, so the loop would run forever
	// without the cap
	sizes := make([]int, 12)
	flags := make([]bool, 12)
	for i := range sizes {
		sizes[i] = 2000
		flags[i] = true
	}
	up := &fakeUpstream{pageSizes: sizes, flags: flags}
	srv := httptest.NewServer(up.handler(t))
	defer srv.Close()

	c := NewClient(testLogger(), srv.URL, "soils")
	_, err := c.QueryFeatures(context.Background(), testGeom(), []string{"mukey"})
	if !errors.Is(err, ErrTooManyFeatures) {
		t.Fatalf("err=%v want ErrTooManyFeatures", err)
	}
	// 11 pages * 2000 = 22000 crosses the 20000 cap; the 12th request
	// must never be issued
	if up.calls != 11 {
		t.Fatalf("calls=%d want 11", up.calls)
	}
}

func TestQueryFeatures_Non2xx_SurfacesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(testLogger(), srv.URL, "soils")
	_, err := c.QueryFeatures(context.Background(), testGeom(), nil)

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("err=%v want *UpstreamError", err)
	}
	if ue.Status != http.StatusServiceUnavailable {
		t.Fatalf("status=%d want 503", ue.Status)
	}
}

func TestQueryFeatures_EmbeddedEsriError_SurfacesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Invalid geometry"}}`))
	}))
	defer srv.Close()

	c := NewClient(testLogger(), srv.URL, "soils")
	_, err := c.QueryFeatures(context.Background(), testGeom(), nil)

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("err=%v want *UpstreamError", err)
	}
}

func TestQueryFeatures_TransportFailure_SurfacesUpstreamErrorStatusZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(testLogger(), srv.URL, "soils")
	_, err := c.QueryFeatures(context.Background(), testGeom(), nil)

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("err=%v want *UpstreamError", err)
	}
	if ue.Status != 0 {
		t.Fatalf("status=%d want 0 for transport failure", ue.Status)
	}
}

func TestQueryPoint_SingleCall(t *testing.T) {
	var gotType, gotGeom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotType = r.PostFormValue("geometryType")
		gotGeom = r.PostFormValue("geometry")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"features":[{"attributes":{"FLD_ZONE":"AE"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(testLogger(), srv.URL, "flood")
	got, err := c.QueryPoint(context.Background(), -86.158, 39.768, []string{"FLD_ZONE"})
	if err != nil {
		t.Fatalf("QueryPoint: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("features=%d want 1", len(got))
	}
	if gotType != "esriGeometryPoint" {
		t.Fatalf("geometryType=%q want esriGeometryPoint", gotType)
	}
	if gotGeom != "-86.158000,39.768000" {
		t.Fatalf("geometry=%q", gotGeom)
	}
}
