package provider

import (
	"slices"

	"github.com/terralab/prockit/util"
)

// FormatPreferences carries the host's preferred output formats. It is
// injected explicitly at construction so the provider never reads ambient
// global settings.
type FormatPreferences struct {
	// VectorExtension is the host-wide preferred vector output format,
	// e.g. "gpkg". Empty means no preference.
	VectorExtension string `yaml:"vector_extension" mapstructure:"vector_extension"`
	// RasterExtension is the host-wide preferred raster output format,
	// e.g. "tif". Empty means no preference.
	RasterExtension string `yaml:"raster_extension" mapstructure:"raster_extension"`
}

// nonSpatialExtensions are vector container formats without geometry support.
var nonSpatialExtensions = map[string]struct{}{
	"csv":  {},
	"dbf":  {},
	"ods":  {},
	"txt":  {},
	"xlsx": {},
}

// HasGeometrySupport reports whether a vector format can store geometries.
func HasGeometrySupport(ext string) bool {
	_, nonSpatial := nonSpatialExtensions[util.NormalizeExtension(ext)]
	return !nonSpatial
}

// DefaultVectorFileExtension resolves the default extension for vector
// outputs: the host's preferred format wins when the provider supports it,
// otherwise the first supported format is used. When hasGeometry is true the
// choice is restricted to geometry-capable formats. An empty supported list
// yields "".
func (p *Provider) DefaultVectorFileExtension(hasGeometry bool) string {
	supported := p.SupportedOutputVectorLayerExtensions()
	if hasGeometry {
		supported = slices.DeleteFunc(supported, func(ext string) bool {
			return !HasGeometrySupport(ext)
		})
	}
	return resolveExtension(p.prefs.VectorExtension, supported)
}

// DefaultRasterFileExtension resolves the default extension for raster
// outputs using the same policy as DefaultVectorFileExtension.
func (p *Provider) DefaultRasterFileExtension() string {
	return resolveExtension(p.prefs.RasterExtension, p.SupportedOutputRasterLayerExtensions())
}

func resolveExtension(preferred string, supported []string) string {
	if len(supported) == 0 {
		return ""
	}
	if pref := util.NormalizeExtension(preferred); pref != "" && slices.Contains(supported, pref) {
		return pref
	}
	return supported[0]
}
