// Package kulturminner talks to Riksantikvaren's OGC API Features endpoint
// at api.ra.no, which serves the Askeladden cultural heritage database.
package kulturminner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultBaseURL = "https://api.ra.no"
	maxFeatureLimit = 100
)

// DefaultCollection is both the dataset and collection name that holds the
// main heritage site records.
const DefaultCollection = "kulturminner"

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
	if params == nil {
		params = url.Values{}
	}
	params.Set("f", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("riksantikvaren request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("riksantikvaren returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("riksantikvaren response decode failed: %w", err)
	}
	return nil
}

// Collection metadata from the OGC API.
type Collection struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Collections lists the collections within a dataset.
func (c *Client) Collections(ctx context.Context, dataset string) ([]Collection, error) {
	var out struct {
		Collections []Collection `json:"collections"`
	}
	if err := c.get(ctx, "/"+dataset+"/collections", nil, &out); err != nil {
		return nil, err
	}
	return out.Collections, nil
}

// Geometry is the GeoJSON geometry of a feature. Coordinates stay raw since
// the shape depends on the geometry type.
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

// Feature is a GeoJSON feature with free-form properties.
type Feature struct {
	ID         any            `json:"id"`
	Properties map[string]any `json:"properties"`
	Geometry   Geometry       `json:"geometry"`
}

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Features      []Feature `json:"features"`
	NumberMatched int       `json:"numberMatched"`
}

// Matched returns the total match count, falling back to the page size when
// the API omits numberMatched.
func (fc *FeatureCollection) Matched() int {
	if fc.NumberMatched > 0 {
		return fc.NumberMatched
	}
	return len(fc.Features)
}

// Features queries items from a collection, optionally filtered by a WGS84
// bounding box (min_lon, min_lat, max_lon, max_lat).
func (c *Client) Features(ctx context.Context, dataset, collection string, bbox *[4]float64, limit, offset int) (*FeatureCollection, error) {
	// The API can be unstable with large page sizes.
	if limit > maxFeatureLimit {
		limit = maxFeatureLimit
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	if bbox != nil {
		params.Set("bbox", fmt.Sprintf("%v,%v,%v,%v", bbox[0], bbox[1], bbox[2], bbox[3]))
	}

	var out FeatureCollection
	if err := c.get(ctx, "/"+dataset+"/collections/"+collection+"/items", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Feature fetches a single item by ID.
func (c *Client) Feature(ctx context.Context, dataset, collection, featureID string) (*Feature, error) {
	var out Feature
	path := "/" + dataset + "/collections/" + collection + "/items/" + url.PathEscape(featureID)
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Nearby searches for features around a point using a bbox of radiusDeg
// degrees on each side.
func (c *Client) Nearby(ctx context.Context, dataset, collection string, lat, lon, radiusDeg float64, limit int) (*FeatureCollection, error) {
	bbox := [4]float64{lon - radiusDeg, lat - radiusDeg, lon + radiusDeg, lat + radiusDeg}
	return c.Features(ctx, dataset, collection, &bbox, limit, 0)
}
