package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndReproject_Point(t *testing.T) {
	geom, err := ParseAndReproject("SRID=3812;POINT Z(640000 670000 0.0)")
	require.NoError(t, err)
	assert.Equal(t, "Point", geom.Type)

	coords, ok := geom.Coordinates.([]float64)
	require.True(t, ok)
	require.Len(t, coords, 2)
	// Belgium's longitude/latitude range, sanity-checking the projection
	// lands in the right hemisphere rather than asserting exact digits.
	assert.InDelta(t, 3.0, coords[0], 3.0)
	assert.InDelta(t, 50.8, coords[1], 2.0)
}

func TestParseAndReproject_UnsupportedType(t *testing.T) {
	_, err := ParseAndReproject("BLOB(1 2)")
	assert.Error(t, err)
}

func TestParseAndReproject_LineString(t *testing.T) {
	geom, err := ParseAndReproject("LINESTRING(140000 170000, 141000 171000)")
	require.NoError(t, err)
	assert.Equal(t, "LineString", geom.Type)

	coords, ok := geom.Coordinates.([]interface{})
	require.True(t, ok)
	require.Len(t, coords, 2)
	for _, v := range coords {
		vertex, ok := v.([]float64)
		require.True(t, ok)
		assert.Len(t, vertex, 2)
	}
}

func TestParseAndReproject_LineStringZPreservesZ(t *testing.T) {
	geom, err := ParseAndReproject("LINESTRING Z(140000 170000 5.0, 141000 171000 6.0)")
	require.NoError(t, err)
	assert.Equal(t, "LineString", geom.Type)

	coords, ok := geom.Coordinates.([]interface{})
	require.True(t, ok)
	require.Len(t, coords, 2)

	first, ok := coords[0].([]float64)
	require.True(t, ok)
	require.Len(t, first, 3)
	assert.Equal(t, 5.0, first[2])

	second, ok := coords[1].([]float64)
	require.True(t, ok)
	require.Len(t, second, 3)
	assert.Equal(t, 6.0, second[2])
}

func TestParseAndReproject_PointZTruncatesEvenWithZ(t *testing.T) {
	geom, err := ParseAndReproject("POINT Z(140000 170000 5.0)")
	require.NoError(t, err)
	assert.Equal(t, "Point", geom.Type)

	coords, ok := geom.Coordinates.([]float64)
	require.True(t, ok)
	assert.Len(t, coords, 2)
}

func TestExtractWKT_PriorityOrder(t *testing.T) {
	obj := map[string]interface{}{
		"geo": map[string]interface{}{
			"Geometrie_log": []interface{}{
				map[string]interface{}{"DtcLog_geometrie": "POINT Z(1 2 0)"},
			},
		},
		"loc": map[string]interface{}{
			"Locatie_geometrie": "POINT Z(9 9 9)",
		},
	}
	wkt, ok := ExtractWKT(obj)
	require.True(t, ok)
	assert.Equal(t, "POINT Z(1 2 0)", wkt)
}

func TestExtractWKT_FallsBackToLocatieGeometrie(t *testing.T) {
	obj := map[string]interface{}{
		"loc": map[string]interface{}{
			"Locatie_geometrie": "POINT Z(9 9 9)",
		},
	}
	wkt, ok := ExtractWKT(obj)
	require.True(t, ok)
	assert.Equal(t, "POINT Z(9 9 9)", wkt)
}

func TestExtractWKT_NoSourcePresent(t *testing.T) {
	_, ok := ExtractWKT(map[string]interface{}{})
	assert.False(t, ok)
}
