// Package tools wires the retrieval providers into a tool registry based on
// the provider enablement config.
package tools

import (
	"fmt"
	"time"

	"kulturarv/config"
	"kulturarv/registry"
	"kulturarv/tools/arcgis"
	"kulturarv/tools/kulturminner"
	"kulturarv/tools/snl"
	"kulturarv/tools/wikipedia"
)

// RegisterAll registers every enabled provider's tools. The encyclopedia
// providers use the default HTTP timeout, the geodata APIs get the longer
// one since large polygon queries are slow.
func RegisterAll(reg *registry.Registry, providers config.Providers, settings *config.Settings) error {
	defaultTimeout := time.Duration(settings.DefaultTimeout) * time.Second
	geoTimeout := time.Duration(settings.GeoAPITimeout) * time.Second

	for _, name := range providers.Enabled {
		var err error
		switch name {
		case "wikipedia":
			err = wikipedia.Register(reg, wikipedia.New(defaultTimeout))
		case "snl":
			err = snl.Register(reg, snl.New(defaultTimeout))
		case "kulturminner":
			err = kulturminner.Register(reg, kulturminner.New(geoTimeout))
		case "arcgis":
			err = arcgis.Register(reg, arcgis.New(geoTimeout))
		default:
			err = fmt.Errorf("unknown provider: %s", name)
		}
		if err != nil {
			return fmt.Errorf("failed to register provider %s: %w", name, err)
		}
	}
	return nil
}
