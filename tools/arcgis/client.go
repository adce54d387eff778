// Package arcgis talks to Riksantikvaren's ArcGIS REST services at
// kart.ra.no. The map services carry richer attributes than the OGC API,
// including protection status, dating and Askeladden links.
package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://kart.ra.no/arcgis/rest/services/Distribusjon"

// DefaultService and DefaultLayer point at the Enkeltminner polygon layer,
// which has the best attribute coverage for single monuments.
const (
	DefaultService = "Kulturminner20180301"
	DefaultLayer   = 6
)

// Layer is one layer within a map service.
type Layer struct {
	ID   int
	Name string
}

// KnownService describes a map service we document for the model.
type KnownService struct {
	Name        string
	Description string
	Layers      []Layer
}

// KnownServices lists the Distribusjon services worth querying.
var KnownServices = []KnownService{
	{
		Name:        "Kulturminner20180301",
		Description: "All cultural heritage sites from Askeladden (2018 dataset)",
		Layers: []Layer{
			{0, "Bygninger (Buildings)"},
			{1, "FredaBygninger (Protected buildings)"},
			{2, "SefrakBygninger (SEFRAK buildings)"},
			{3, "Kulturminner (Heritage sites - icons)"},
			{4, "Enkeltminneikoner (Single monuments - icons)"},
			{5, "Lokalitetsikoner (Localities - icons)"},
			{6, "Enkeltminner (Single monuments - polygons)"},
			{7, "Lokaliteter (Localities - polygons)"},
			{8, "Sikringssoner (Protection zones)"},
			{9, "Brannvern (Fire protection)"},
			{10, "Brannsmitteomradeikoner (Fire spread areas - icons)"},
			{11, "VerneverdigTetteTrehusmiljoikoner (Preservation areas - icons)"},
			{12, "Brannsmitteomrader (Fire spread areas)"},
			{13, "VerneverdigTetteTrehusmiljoer (Preservation areas)"},
			{14, "Kulturmiljoer (Cultural environments)"},
			{15, "Kulturmiljoer_flate (Cultural environments - polygons)"},
			{16, "Kulturmiljoikoner (Cultural environments - icons)"},
		},
	},
	{
		Name:        "FjernmalteArkeologiskeKulturminner",
		Description: "Remotely sensed archaeological heritage sites",
		Layers: []Layer{
			{0, "Fjernmålte arkeologiske kulturminner"},
		},
	},
}

func knownService(name string) (KnownService, bool) {
	for _, s := range KnownServices {
		if s.Name == name {
			return s, true
		}
	}
	return KnownService{}, false
}

type Client struct {
	http    *http.Client
	BaseURL string
}

func New(timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		BaseURL: defaultBaseURL,
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("arcgis request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("arcgis returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("arcgis response decode failed: %w", err)
	}
	return nil
}

// Service is a map service listed by the folder endpoint.
type Service struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Services lists the map services in the Distribusjon folder.
func (c *Client) Services(ctx context.Context) ([]Service, error) {
	params := url.Values{}
	params.Set("f", "json")

	var out struct {
		Services []Service `json:"services"`
	}
	if err := c.get(ctx, "", params, &out); err != nil {
		return nil, err
	}
	return out.Services, nil
}

// Geometry of a GeoJSON feature, coordinates kept raw.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Point returns the coordinate pair for point geometries.
func (g Geometry) Point() (lon, lat float64, ok bool) {
	if g.Type != "Point" || len(g.Coordinates) == 0 {
		return 0, 0, false
	}
	var coords []float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil || len(coords) < 2 {
		return 0, 0, false
	}
	return coords[0], coords[1], true
}

// Feature is a GeoJSON feature from a layer query.
type Feature struct {
	Properties map[string]any `json:"properties"`
	Geometry   Geometry       `json:"geometry"`
}

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Features []Feature `json:"features"`
}

func (c *Client) queryLayer(ctx context.Context, service string, layer int, params url.Values) (*FeatureCollection, error) {
	params.Set("outSR", "4326")
	params.Set("f", "geojson")

	var out FeatureCollection
	path := fmt.Sprintf("/%s/MapServer/%d/query", service, layer)
	if err := c.get(ctx, path, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Query runs an attribute query against a layer.
func (c *Client) Query(ctx context.Context, service string, layer int, where string, limit int) (*FeatureCollection, error) {
	if where == "" {
		where = "1=1"
	}
	params := url.Values{}
	params.Set("where", where)
	params.Set("outFields", "*")
	params.Set("returnGeometry", "true")
	params.Set("resultRecordCount", strconv.Itoa(limit))
	params.Set("resultOffset", "0")
	return c.queryLayer(ctx, service, layer, params)
}

// QueryBBox finds features intersecting a WGS84 bounding box.
func (c *Client) QueryBBox(ctx context.Context, service string, layer int, minLon, minLat, maxLon, maxLat float64, limit int) (*FeatureCollection, error) {
	envelope, err := json.Marshal(map[string]float64{
		"xmin": minLon,
		"ymin": minLat,
		"xmax": maxLon,
		"ymax": maxLat,
	})
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("where", "1=1")
	params.Set("geometry", string(envelope))
	params.Set("geometryType", "esriGeometryEnvelope")
	params.Set("spatialRel", "esriSpatialRelIntersects")
	params.Set("inSR", "4326")
	params.Set("outFields", "*")
	params.Set("returnGeometry", "true")
	params.Set("resultRecordCount", strconv.Itoa(limit))
	return c.queryLayer(ctx, service, layer, params)
}

// QueryNearby finds features within distance meters of a point.
func (c *Client) QueryNearby(ctx context.Context, service string, layer int, lat, lon float64, distance, limit int) (*FeatureCollection, error) {
	point, err := json.Marshal(map[string]float64{"x": lon, "y": lat})
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("where", "1=1")
	params.Set("geometry", string(point))
	params.Set("geometryType", "esriGeometryPoint")
	params.Set("spatialRel", "esriSpatialRelIntersects")
	params.Set("distance", strconv.Itoa(distance))
	params.Set("units", "esriSRUnit_Meter")
	params.Set("inSR", "4326")
	params.Set("outFields", "*")
	params.Set("returnGeometry", "true")
	params.Set("resultRecordCount", strconv.Itoa(limit))
	return c.queryLayer(ctx, service, layer, params)
}
