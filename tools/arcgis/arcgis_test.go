package arcgis

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New(5 * time.Second)
	c.BaseURL = srv.URL
	return c, srv
}

const featurePayload = `{
	"properties": {
		"Navn": "Gravhaug på Borre",
		"Kategori": "Arkeologisk minne",
		"Kommune": "Horten",
		"Fylke": "Vestfold",
		"Vernetype": "Automatisk fredet",
		"Datering": "Jernalder",
		"OBJECTID": 4711
	},
	"geometry": {"type": "Point", "coordinates": [10.468, 59.385]}
}`

func TestServicesListsKnownAndAdditional(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("f") != "json" {
			t.Errorf("missing f=json")
		}
		w.Write([]byte(`{"services":[
			{"name":"Distribusjon/Kulturminner20180301","type":"MapServer"},
			{"name":"Distribusjon/NyTjeneste","type":"MapServer"}
		]}`))
	})
	defer srv.Close()

	out, err := c.handleServices(context.Background(), nil)
	if err != nil {
		t.Fatalf("handleServices: %v", err)
	}
	for _, want := range []string{
		"# Riksantikvaren ArcGIS Map Services",
		"**Default service:** `Kulturminner20180301` (layer 6)",
		"## Kulturminner20180301",
		"Layer 6: Enkeltminner (Single monuments - polygons) ⭐",
		"## FjernmalteArkeologiskeKulturminner",
		"## Additional Services",
		"- NyTjeneste (MapServer)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output", want)
		}
	}
}

func TestQueryWithWhere(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Kulturminner20180301/MapServer/6/query" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("where") != "kommune='Horten'" {
			t.Errorf("where = %q", q.Get("where"))
		}
		if q.Get("f") != "geojson" || q.Get("outSR") != "4326" {
			t.Errorf("unexpected params: %v", q)
		}
		w.Write([]byte(`{"features":[` + featurePayload + `]}`))
	})
	defer srv.Close()

	out, err := c.handleQuery(context.Background(), map[string]any{"where": "kommune='Horten'"})
	if err != nil {
		t.Fatalf("handleQuery: %v", err)
	}
	for _, want := range []string{
		"Found 1 features in Kulturminner20180301 (layer 6):",
		"**Gravhaug på Borre**",
		"Kategori: Arkeologisk minne",
		"Vernetype: Automatisk fredet",
		"Koordinater: 59.38500, 10.46800",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestQueryWithBBoxSendsEnvelope(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("geometryType") != "esriGeometryEnvelope" {
			t.Errorf("geometryType = %q", q.Get("geometryType"))
		}
		if !strings.Contains(q.Get("geometry"), `"xmin":10.3`) {
			t.Errorf("geometry = %q", q.Get("geometry"))
		}
		w.Write([]byte(`{"features":[]}`))
	})
	defer srv.Close()

	out, err := c.handleQuery(context.Background(), map[string]any{"bbox": "10.3,59.3,10.5,59.5"})
	if err != nil {
		t.Fatalf("handleQuery: %v", err)
	}
	if out != "No features found in Kulturminner20180301/6" {
		t.Errorf("out = %q", out)
	}
}

func TestQueryTruncatesDisplay(t *testing.T) {
	var features []string
	for i := 0; i < maxDisplayedFeatures+5; i++ {
		features = append(features, fmt.Sprintf(`{"properties":{"Navn":"Minne %d"},"geometry":{"type":"Point","coordinates":[10.0,59.0]}}`, i))
	}
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features":[` + strings.Join(features, ",") + `]}`))
	})
	defer srv.Close()

	out, err := c.handleQuery(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("handleQuery: %v", err)
	}
	if !strings.Contains(out, "... and 5 more features") {
		t.Errorf("missing truncation note: %q", out)
	}
	if strings.Contains(out, fmt.Sprintf("Minne %d", maxDisplayedFeatures)) {
		t.Errorf("features past the display cap should be hidden: %q", out)
	}
}

func TestNearbySendsPointQuery(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("geometryType") != "esriGeometryPoint" {
			t.Errorf("geometryType = %q", q.Get("geometryType"))
		}
		if q.Get("units") != "esriSRUnit_Meter" || q.Get("distance") != "500" {
			t.Errorf("unexpected params: %v", q)
		}
		if !strings.Contains(q.Get("geometry"), `"x":10.468`) {
			t.Errorf("geometry = %q", q.Get("geometry"))
		}
		w.Write([]byte(`{"features":[` + featurePayload + `]}`))
	})
	defer srv.Close()

	out, err := c.handleNearby(context.Background(), map[string]any{
		"latitude": 59.385, "longitude": 10.468, "distance": float64(500),
	})
	if err != nil {
		t.Fatalf("handleNearby: %v", err)
	}
	if !strings.Contains(out, "Found 1 sites within 500m of (59.385, 10.468):") {
		t.Errorf("missing header: %q", out)
	}
}

func TestNearbyRequiresCoordinates(t *testing.T) {
	c := New(time.Second)
	if _, err := c.handleNearby(context.Background(), map[string]any{}); err == nil {
		t.Error("missing coordinates should error")
	}
}

func TestFormatFeatureObjectIDFallback(t *testing.T) {
	f := Feature{Properties: map[string]any{"OBJECTID": float64(4711)}}
	if got := formatFeature(f, 1); !strings.HasPrefix(got, "**Feature 4711**") {
		t.Errorf("formatFeature = %q", got)
	}
}
