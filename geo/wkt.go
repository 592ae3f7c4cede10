package geo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vlaanderen-mow/amsync/common"
)

// Geometry is the GeoJSON-shaped result of parsing and reprojecting a WKT
// string, ready for json.Marshal as an asset's `geometry` field.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

var wktTypeNames = map[string]string{
	"POINT":              "Point",
	"LINESTRING":         "LineString",
	"POLYGON":            "Polygon",
	"MULTIPOINT":         "MultiPoint",
	"MULTILINESTRING":    "MultiLineString",
	"MULTIPOLYGON":       "MultiPolygon",
}

// ParseAndReproject strips any "SRID=n;" prefix from wkt, parses the
// geometry, and reprojects every vertex from EPSG:3812 to WGS84, returning
// GeoJSON coordinates: 2D for points, while other types keep any Z their
// vertices carry (spec §4.6: "the geometry field always reflects WGS84
// regardless of input CRS label").
func ParseAndReproject(wkt string) (Geometry, error) {
	body := stripSRID(wkt)

	typeToken, rest, err := splitTypeAndBody(body)
	if err != nil {
		return Geometry{}, common.Wrap(common.ClassTransform, "parse WKT", err)
	}

	geoType, ok := wktTypeNames[strings.ToUpper(typeToken)]
	if !ok {
		return Geometry{}, common.Wrap(common.ClassTransform, "parse WKT", fmt.Errorf("unsupported geometry type %q", typeToken))
	}

	coords, err := parseCoordTree(rest)
	if err != nil {
		return Geometry{}, common.Wrap(common.ClassTransform, "parse WKT coordinates", err)
	}

	return Geometry{Type: geoType, Coordinates: reprojectTree(coords, geoType == "Point")}, nil
}

func stripSRID(wkt string) string {
	trimmed := strings.TrimSpace(wkt)
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SRID=") {
		return trimmed
	}
	if idx := strings.Index(trimmed, ";"); idx >= 0 {
		return strings.TrimSpace(trimmed[idx+1:])
	}
	return trimmed
}

func splitTypeAndBody(wkt string) (string, string, error) {
	idx := strings.IndexByte(wkt, '(')
	if idx < 0 {
		return "", "", fmt.Errorf("missing coordinate list in %q", wkt)
	}
	header := strings.TrimSpace(wkt[:idx])
	header = strings.TrimSuffix(header, " Z")
	header = strings.TrimSuffix(header, " M")
	typeToken := strings.Fields(header)[0]
	return typeToken, strings.TrimSpace(wkt[idx:]), nil
}

// coordTree is either []float64 (a single vertex) or []interface{} (a
// nested ring/list of vertices or rings), mirroring GeoJSON's recursive
// coordinate shape.
func parseCoordTree(s string) (interface{}, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("malformed coordinate group %q", s)
	}
	inner := s[1 : len(s)-1]

	groups, isNested := splitTopLevel(inner)
	if isNested {
		out := make([]interface{}, 0, len(groups))
		for _, g := range groups {
			child, err := parseCoordTree(g)
			if err != nil {
				return nil, err
			}
			out = append(out, child)
		}
		return out, nil
	}

	out := make([]interface{}, 0, len(groups))
	for _, g := range groups {
		vertex, err := parseVertex(g)
		if err != nil {
			return nil, err
		}
		out = append(out, vertex)
	}
	if len(out) == 1 {
		return out[0], nil
	}
	return out, nil
}

// splitTopLevel splits inner on top-level commas (respecting nested
// parens), reporting whether any element itself begins with "(" (meaning
// the caller should recurse rather than parse vertices directly).
func splitTopLevel(inner string) ([]string, bool) {
	var groups []string
	depth := 0
	start := 0
	nested := false
	for i, r := range inner {
		switch r {
		case '(':
			if depth == 0 {
				nested = true
			}
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				groups = append(groups, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	groups = append(groups, strings.TrimSpace(inner[start:]))
	return groups, nested
}

func parseVertex(s string) ([]float64, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return nil, fmt.Errorf("malformed vertex %q", s)
	}
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed coordinate %q: %w", f, err)
		}
		vals[i] = v
	}
	return vals, nil
}

// reprojectTree walks a coordTree, returning a new tree with every vertex's
// x/y reprojected to WGS84 lon/lat. truncate drops the Z dimension down to
// 2D coordinates; it is only true for Point geometries (spec §4.6: "2D
// coordinates for points") — LineStrings, Polygons and the other multi-part
// types keep whatever Z their input vertices carried.
func reprojectTree(node interface{}, truncate bool) interface{} {
	switch n := node.(type) {
	case []float64:
		lon, lat := ReprojectPoint(n[0], n[1])
		if truncate || len(n) < 3 {
			return []float64{lon, lat}
		}
		return []float64{lon, lat, n[2]}
	case []interface{}:
		out := make([]interface{}, len(n))
		for i, child := range n {
			out[i] = reprojectTree(child, truncate)
		}
		return out
	default:
		return node
	}
}
