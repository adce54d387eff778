package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"kulturarv/registry"
	"kulturarv/tools/params"
)

// Layer queries can match thousands of polygons, keep the text readable.
const maxDisplayedFeatures = 20

const servicesSchema = `{
  "type": "object",
  "properties": {},
  "required": []
}`

const querySchema = `{
  "type": "object",
  "properties": {
    "service": {"type": "string", "description": "Service name (default: Kulturminner20180301)", "default": "Kulturminner20180301"},
    "layer_id": {"type": "integer", "description": "Layer ID (default: 6 for Enkeltminner/single monuments)", "default": 6},
    "bbox": {"type": "string", "description": "Bounding box as 'min_lon,min_lat,max_lon,max_lat' (WGS84)"},
    "where": {"type": "string", "description": "SQL WHERE clause (e.g., \"kommune='Oslo'\")", "default": "1=1"},
    "limit": {"type": "integer", "description": "Maximum features to return", "default": 50}
  },
  "required": []
}`

const nearbySchema = `{
  "type": "object",
  "properties": {
    "latitude": {"type": "number", "description": "Latitude in decimal degrees"},
    "longitude": {"type": "number", "description": "Longitude in decimal degrees"},
    "distance": {"type": "integer", "description": "Search distance in meters", "default": 1000},
    "service": {"type": "string", "description": "Service name", "default": "Kulturminner20180301"},
    "layer_id": {"type": "integer", "description": "Layer ID (6=Enkeltminner, 7=Lokaliteter)", "default": 6},
    "limit": {"type": "integer", "description": "Maximum results", "default": 20}
  },
  "required": ["latitude", "longitude"]
}`

// Register adds the Riksantikvaren ArcGIS tools to the registry.
func Register(reg *registry.Registry, c *Client) error {
	if err := reg.Register(
		"arcgis-services",
		"List available Riksantikvaren ArcGIS map services and layers. Primary service is Kulturminner20180301 with 17 layers including buildings, monuments, and protection zones.",
		json.RawMessage(servicesSchema),
		c.handleServices,
	); err != nil {
		return err
	}

	if err := reg.Register(
		"arcgis-query",
		"Query cultural heritage features from Riksantikvaren ArcGIS REST API. Returns GeoJSON with detailed attributes including dating, category, protection status, and links to Askeladden.",
		json.RawMessage(querySchema),
		c.handleQuery,
	); err != nil {
		return err
	}

	return reg.Register(
		"arcgis-nearby",
		"Find cultural heritage sites near coordinates using Riksantikvaren ArcGIS. Supports precise distance-based queries in meters. Good for finding nearby Viking sites, churches, burial mounds, etc.",
		json.RawMessage(nearbySchema),
		c.handleNearby,
	)
}

func (c *Client) handleServices(ctx context.Context, args map[string]any) (string, error) {
	services, err := c.Services(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# Riksantikvaren ArcGIS Map Services\n\n")
	fmt.Fprintf(&b, "**Default service:** `%s` (layer %d)\n\n", DefaultService, DefaultLayer)

	for _, svc := range KnownServices {
		fmt.Fprintf(&b, "## %s\n%s\n\n**Layers:**\n", svc.Name, svc.Description)
		for _, layer := range svc.Layers {
			marker := ""
			if svc.Name == DefaultService && layer.ID == DefaultLayer {
				marker = " ⭐"
			}
			fmt.Fprintf(&b, "  - Layer %d: %s%s\n", layer.ID, layer.Name, marker)
		}
		b.WriteString("\n")
	}

	var additional []Service
	for _, svc := range services {
		name := svc.Name
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		if _, known := knownService(name); !known {
			additional = append(additional, Service{Name: name, Type: svc.Type})
		}
	}
	if len(additional) > 0 {
		b.WriteString("## Additional Services\n")
		for _, svc := range additional {
			svcType := svc.Type
			if svcType == "" {
				svcType = "Unknown"
			}
			fmt.Fprintf(&b, "- %s (%s)\n", svc.Name, svcType)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Client) handleQuery(ctx context.Context, args map[string]any) (string, error) {
	service := params.String(args, "service", DefaultService)
	layer := params.Int(args, "layer_id", DefaultLayer)
	where := params.String(args, "where", "1=1")
	limit := params.Int(args, "limit", 50)

	bbox, err := params.BBox(args, "bbox")
	if err != nil {
		return "", fmt.Errorf("invalid bbox, use 'min_lon,min_lat,max_lon,max_lat': %w", err)
	}

	var result *FeatureCollection
	if bbox != nil {
		result, err = c.QueryBBox(ctx, service, layer, bbox[0], bbox[1], bbox[2], bbox[3], limit)
	} else {
		result, err = c.Query(ctx, service, layer, where, limit)
	}
	if err != nil {
		return "", err
	}

	if len(result.Features) == 0 {
		return fmt.Sprintf("No features found in %s/%d", service, layer), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d features in %s (layer %d):\n\n", len(result.Features), service, layer)
	for i, f := range result.Features {
		if i == maxDisplayedFeatures {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, formatFeature(f, i+1))
	}
	if extra := len(result.Features) - maxDisplayedFeatures; extra > 0 {
		fmt.Fprintf(&b, "... and %d more features\n", extra)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Client) handleNearby(ctx context.Context, args map[string]any) (string, error) {
	lat, okLat := params.Float(args, "latitude")
	lon, okLon := params.Float(args, "longitude")
	if !okLat || !okLon {
		return "", fmt.Errorf("'latitude' and 'longitude' arguments are required")
	}
	service := params.String(args, "service", DefaultService)
	layer := params.Int(args, "layer_id", DefaultLayer)
	distance := params.Int(args, "distance", 1000)
	limit := params.Int(args, "limit", 20)

	result, err := c.QueryNearby(ctx, service, layer, lat, lon, distance, limit)
	if err != nil {
		return "", err
	}

	if len(result.Features) == 0 {
		return fmt.Sprintf("No cultural heritage sites found within %dm of (%v, %v)", distance, lat, lon), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d sites within %dm of (%v, %v):\n\n", len(result.Features), distance, lat, lon)
	for i, f := range result.Features {
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, formatFeature(f, i+1))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// formatFeature renders one feature as a markdown block. Attribute casing
// varies between layers, so property lookup is case-insensitive.
func formatFeature(f Feature, index int) string {
	props := make(map[string]any, len(f.Properties))
	for k, v := range f.Properties {
		props[strings.ToLower(k)] = v
	}

	name := firstProp(props, "navn", "lokalitetsnavn", "tittel")
	if name == "" {
		if id := propString(props, "objectid"); id != "" {
			name = "Feature " + id
		} else {
			name = fmt.Sprintf("Feature %d", index)
		}
	}

	lines := []string{fmt.Sprintf("**%s**", name)}
	for _, field := range []struct{ key, label string }{
		{"kategori", "Kategori"},
		{"kommune", "Kommune"},
		{"fylke", "Fylke"},
		{"vernetype", "Vernetype"},
		{"vernestatus", "Vernestatus"},
		{"datering", "Datering"},
		{"funksjon", "Funksjon"},
	} {
		if v := propString(props, field.key); v != "" {
			lines = append(lines, fmt.Sprintf("  %s: %s", field.label, v))
		}
	}
	if lon, lat, ok := f.Geometry.Point(); ok {
		lines = append(lines, fmt.Sprintf("  Koordinater: %.5f, %.5f", lat, lon))
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
