package zonemap

import (
	"errors"
	"os"
	"strings"
	"time"

	"encoding/json"
)

// LoadSnapshot: read the zoning GeoJSON (FeatureCollection) and build the
// query snapshot. The district code is taken from the sigla/SIGLA/zona
// property, whichever the export carries; features without a code or geometry
// are skipped. An empty result is an error: a zoning service with no zones
// cannot answer anything useful.
func LoadSnapshot(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var gj map[string]any
	if err := json.Unmarshal(b, &gj); err != nil {
		return nil, err
	}
	feats, ok := gj["features"].([]any)
	if !ok || len(feats) == 0 {
		return nil, errors.New("zoning geojson: no features")
	}
	var zones []Zone
	for _, it := range feats {
		f, ok := it.(map[string]any)
		if !ok {
			continue
		}
		var z Zone
		if p, ok := f["properties"].(map[string]any); ok {
			z.Sigla = strings.TrimSpace(firstStr(p, "sigla", "SIGLA", "zona"))
		}
		if z.Sigla == "" {
			continue
		}
		if g, ok := f["geometry"].(map[string]any); ok {
			addPolysFromGeometry(&z, g)
		}
		if len(z.Polys) == 0 {
			continue
		}
		zones = append(zones, z)
	}
	if len(zones) == 0 {
		return nil, errors.New("zoning geojson: no usable zones")
	}
	return &Snapshot{Zones: zones, BuiltAt: time.Now()}, nil
}

func addPolysFromGeometry(z *Zone, g map[string]any) {
	gt := strings.ToLower(getStr(g, "type"))
	if gt == "polygon" {
		if coords, ok := g["coordinates"].([]any); ok {
			z.Polys = append(z.Polys, parsePolygon(coords))
		}
		return
	}
	if gt == "multipolygon" {
		if coords, ok := g["coordinates"].([]any); ok {
			for _, part := range coords {
				if rings, ok := part.([]any); ok {
					z.Polys = append(z.Polys, parsePolygon(rings))
				}
			}
		}
	}
}

func parsePolygon(rings []any) Polygon {
	var poly Polygon
	for _, ring := range rings {
		arr, ok := ring.([]any)
		if !ok {
			continue
		}
		var rr []Point
		for _, p := range arr {
			if vv, ok := p.([]any); ok && len(vv) >= 2 {
				rr = append(rr, Point{Lat: toFloat(vv[1]), Lon: toFloat(vv[0])})
			}
		}
		poly.Rings = append(poly.Rings, rr)
	}
	poly.BBox = computeBBox(poly)
	return poly
}

func computeBBox(p Polygon) [4]float64 {
	b := [4]float64{180, 90, -180, -90}
	for _, r := range p.Rings {
		for _, pt := range r {
			if pt.Lon < b[0] {
				b[0] = pt.Lon
			}
			if pt.Lat < b[1] {
				b[1] = pt.Lat
			}
			if pt.Lon > b[2] {
				b[2] = pt.Lon
			}
			if pt.Lat > b[3] {
				b[3] = pt.Lat
			}
		}
	}
	return b
}

func firstStr(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v := getStr(m, k); v != "" {
			return v
		}
	}
	return ""
}

func getStr(m map[string]any, k string) string {
	if v, ok := m[k].(string); ok {
		return v
	}
	return ""
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return 0
	}
}
