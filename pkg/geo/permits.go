package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"
	"github.com/samber/lo"
)

// PermitProperties are the permit-area attributes the map needs. Anything
// else is dropped.
var PermitProperties = []string{"system", "name", "propertyname", "subpropertyname"}

// MinifyPermitAreas returns a copy of fc keeping the geometry and those
// PermitProperties that occur on any feature. Features lacking a kept
// property get null for it. A positive tolerance, in degrees, simplifies
// every geometry with Douglas-Peucker; 0 keeps every vertex.
func MinifyPermitAreas(fc *geojson.FeatureCollection, tolerance float64) *geojson.FeatureCollection {
	keep := lo.Filter(PermitProperties, func(k string, _ int) bool {
		return lo.SomeBy(fc.Features, func(f *geojson.Feature) bool {
			_, ok := f.Properties[k]
			return ok
		})
	})

	out := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		g := f.Geometry
		if tolerance > 0 && g != nil {
			g = simplify.DouglasPeucker(tolerance).Simplify(orb.Clone(g))
		}
		nf := geojson.NewFeature(g)
		nf.ID = f.ID
		for _, k := range keep {
			nf.Properties[k] = f.Properties[k]
		}
		out.Append(nf)
	}
	return out
}

// MinifyPermitAreasFile reads, minifies and writes a permit-area file.
func MinifyPermitAreasFile(inPath, outPath string, tolerance float64) (int, error) {
	fc, err := ReadFeatureCollection(inPath)
	if err != nil {
		return 0, err
	}
	out := MinifyPermitAreas(fc, tolerance)
	if err := WriteFeatureCollection(outPath, out); err != nil {
		return 0, err
	}
	return len(out.Features), nil
}
