package kulturminner

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"kulturarv/registry"
	"kulturarv/tools/params"
)

// Meters per degree of latitude, used to approximate a radius in degrees.
// Longitude degrees are shorter at Norwegian latitudes, so the bbox is
// generous east-west.
const metersPerDegree = 111000

const collectionsSchema = `{
  "type": "object",
  "properties": {},
  "required": []
}`

const featuresSchema = `{
  "type": "object",
  "properties": {
    "collection": {"type": "string", "description": "Collection ID (e.g., 'kulturminner', 'brukerminner')", "default": "kulturminner"},
    "bbox": {"type": "string", "description": "Bounding box as 'min_lon,min_lat,max_lon,max_lat' (WGS84)"},
    "limit": {"type": "integer", "description": "Maximum features to return", "default": 20}
  },
  "required": []
}`

const featureSchema = `{
  "type": "object",
  "properties": {
    "feature_id": {"type": "string", "description": "Feature ID"},
    "collection": {"type": "string", "description": "Collection ID", "default": "kulturminner"}
  },
  "required": ["feature_id"]
}`

const nearbySchema = `{
  "type": "object",
  "properties": {
    "latitude": {"type": "number", "description": "Latitude in decimal degrees"},
    "longitude": {"type": "number", "description": "Longitude in decimal degrees"},
    "radius": {"type": "integer", "description": "Search radius in meters", "default": 1000},
    "collection": {"type": "string", "description": "Collection ID", "default": "kulturminner"},
    "limit": {"type": "integer", "description": "Maximum results", "default": 20}
  },
  "required": ["latitude", "longitude"]
}`

// Register adds the Riksantikvaren OGC tools to the registry.
func Register(reg *registry.Registry, c *Client) error {
	if err := reg.Register(
		"riksantikvaren-collections",
		"List available data collections from Riksantikvaren (Norwegian cultural heritage). Collections include 'kulturminner' (heritage sites) and 'brukerminner' (user-contributed).",
		json.RawMessage(collectionsSchema),
		c.handleCollections,
	); err != nil {
		return err
	}

	if err := reg.Register(
		"riksantikvaren-features",
		"Query cultural heritage features from Riksantikvaren. Can filter by bounding box.",
		json.RawMessage(featuresSchema),
		c.handleFeatures,
	); err != nil {
		return err
	}

	if err := reg.Register(
		"riksantikvaren-feature",
		"Get detailed information about a specific cultural heritage feature by ID.",
		json.RawMessage(featureSchema),
		c.handleFeature,
	); err != nil {
		return err
	}

	return reg.Register(
		"riksantikvaren-nearby",
		"Find cultural heritage sites near geographic coordinates. Returns sites from Riksantikvaren's Askeladden database.",
		json.RawMessage(nearbySchema),
		c.handleNearby,
	)
}

func (c *Client) handleCollections(ctx context.Context, args map[string]any) (string, error) {
	collections, err := c.Collections(ctx, DefaultCollection)
	if err != nil {
		return "", err
	}
	if len(collections) == 0 {
		return "No collections found", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available Riksantikvaren data collections (%d):\n\n", len(collections))
	for _, coll := range collections {
		id := coll.ID
		if id == "" {
			id = "unknown"
		}
		title := coll.Title
		if title == "" {
			title = id
		}
		fmt.Fprintf(&b, "- **%s**: %s\n", id, title)
		if coll.Description != "" {
			desc := coll.Description
			if runes := []rune(desc); len(runes) > 100 {
				desc = string(runes[:100])
			}
			fmt.Fprintf(&b, "  %s...\n", desc)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Client) handleFeatures(ctx context.Context, args map[string]any) (string, error) {
	collection := params.String(args, "collection", DefaultCollection)
	limit := params.Int(args, "limit", 20)

	bbox, err := params.BBox(args, "bbox")
	if err != nil {
		return "", fmt.Errorf("invalid bbox format, use 'min_lon,min_lat,max_lon,max_lat': %w", err)
	}

	result, err := c.Features(ctx, collection, collection, bbox, limit, 0)
	if err != nil {
		return "", err
	}
	if len(result.Features) == 0 {
		return fmt.Sprintf("No features found in collection '%s'", collection), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d features in '%s' (showing %d):\n\n", result.Matched(), collection, len(result.Features))
	for i, f := range result.Features {
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, formatFeature(f, i+1))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Client) handleFeature(ctx context.Context, args map[string]any) (string, error) {
	featureID := params.String(args, "feature_id", "")
	if featureID == "" {
		return "", fmt.Errorf("'feature_id' argument is required")
	}
	collection := params.String(args, "collection", DefaultCollection)

	f, err := c.Feature(ctx, collection, collection, featureID)
	if err != nil {
		return "", err
	}

	name := propString(f.Properties, "navn")
	if name == "" {
		name = propString(f.Properties, "tittel")
	}
	if name == "" {
		name = "Feature " + featureID
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", name)

	keys := make([]string, 0, len(f.Properties))
	for k := range f.Properties {
		if k == "id" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := propString(f.Properties, k); v != "" {
			fmt.Fprintf(&b, "**%s:** %s\n", k, v)
		}
	}

	if f.Geometry.Type != "" {
		fmt.Fprintf(&b, "\n**Geometry type:** %s\n", f.Geometry.Type)
		if lon, lat, ok := f.Geometry.Point(); ok {
			fmt.Fprintf(&b, "**Coordinates:** %.6f, %.6f\n", lat, lon)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Client) handleNearby(ctx context.Context, args map[string]any) (string, error) {
	lat, okLat := params.Float(args, "latitude")
	lon, okLon := params.Float(args, "longitude")
	if !okLat || !okLon {
		return "", fmt.Errorf("'latitude' and 'longitude' arguments are required")
	}
	collection := params.String(args, "collection", DefaultCollection)
	radius := params.Int(args, "radius", 1000)
	limit := params.Int(args, "limit", 20)

	radiusDeg := float64(radius) / metersPerDegree

	result, err := c.Nearby(ctx, DefaultCollection, collection, lat, lon, radiusDeg, limit)
	if err != nil {
		return "", err
	}
	if len(result.Features) == 0 {
		return fmt.Sprintf("No cultural heritage sites found within %dm of (%v, %v)", radius, lat, lon), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d cultural heritage sites near (%v, %v):\n\n", len(result.Features), lat, lon)
	for i, f := range result.Features {
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, formatFeature(f, i+1))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// formatFeature renders one GeoJSON feature as a markdown block.
func formatFeature(f Feature, index int) string {
	name := firstProp(f.Properties, "navn", "tittel", "name", "lokalitetsnavn")
	if name == "" {
		if f.ID != nil {
			name = fmt.Sprintf("Feature %v", f.ID)
		} else {
			name = fmt.Sprintf("Feature %d", index)
		}
	}

	lines := []string{fmt.Sprintf("**%s**", name)}
	for _, field := range []struct{ key, label string }{
		{"kategori", "Kategori"},
		{"kommune", "Kommune"},
		{"fylke", "Fylke"},
		{"vernestatus", "Vernestatus"},
		{"datering", "Datering"},
	} {
		if v := propString(f.Properties, field.key); v != "" {
			lines = append(lines, fmt.Sprintf("  %s: %s", field.label, v))
		}
	}
	if desc := propString(f.Properties, "beskrivelse"); desc != "" {
		if runes := []rune(desc); len(runes) > 200 {
			desc = string(runes[:200]) + "..."
		}
		lines = append(lines, "  Beskrivelse: "+desc)
	}
	if lon, lat, ok := f.Geometry.Point(); ok {
		lines = append(lines, fmt.Sprintf("  Koordinater: %.5f, %.5f", lat, lon))
	}
	if link := propString(f.Properties, "lenke"); link != "" {
		lines = append(lines, "  Lenke: "+link)
	}
	return strings.Join(lines, "\n")
}

func firstProp(props map[string]any, keys ...string) string {
	for _, k := range keys {
		if v := propString(props, k); v != "" {
			return v
		}
	}
	return ""
}

func propString(props map[string]any, key string) string {
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
