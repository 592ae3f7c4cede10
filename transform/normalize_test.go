package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKeys_TopLevelBucketing(t *testing.T) {
	raw := map[string]interface{}{
		"@id":                    "https://data.awv.be/id/asset/AAAA-BBBB-FAKE",
		"@type":                  "https://lgc.data.wegenenverkeer.be/ns/onderdeel#Kast",
		"loc:Locatie.geometrie":  "SRID=3812;POINT Z(1000.123 2000.456 0.0)",
		"tz:Toezicht.toezichter": map[string]interface{}{"tz:DtcToezichter.id": "11111111-1111-1111-1111-111111111111"},
	}

	out := NormalizeKeys(raw)

	assert.Contains(t, out, "@id")
	assert.Contains(t, out, "@type")
	assert.Contains(t, out, "loc")
	assert.Contains(t, out, "tz")

	loc, ok := out["loc"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "SRID=3812;POINT Z(1000.123 2000.456 0.0)", loc["Locatie_geometrie"])

	tz, ok := out["tz"].(map[string]interface{})
	require.True(t, ok)
	toezichter, ok := tz["Toezicht_toezichter"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", toezichter["DtcToezichter_id"])
}

func TestNormalizeKeys_IsIdempotent(t *testing.T) {
	raw := map[string]interface{}{
		"loc:Locatie.geometrie": "POINT(1 2)",
	}
	once := NormalizeKeys(raw)
	twice := NormalizeKeys(once)
	assert.Equal(t, once, twice)
}

func TestDeriveNaampad(t *testing.T) {
	parts, parent, hasParent := DeriveNaampad("X9Y8Z7/X9Y8Z7.K")
	assert.Equal(t, []string{"X9Y8Z7", "X9Y8Z7.K"}, parts)
	assert.True(t, hasParent)
	assert.Equal(t, "X9Y8Z7", parent)

	parts, _, hasParent = DeriveNaampad("SOLO")
	assert.Equal(t, []string{"SOLO"}, parts)
	assert.False(t, hasParent)
}

func TestTerminalSegment(t *testing.T) {
	assert.Equal(t, "in-gebruik", TerminalSegment("https://example.org/KlAIMToestand/in-gebruik"))
	assert.Equal(t, "actief", TerminalSegment("https://example.org/status#actief"))
	assert.Equal(t, "", TerminalSegment(""))
}

func TestFlattenKeys(t *testing.T) {
	raw := map[string]interface{}{
		"AIMDBStatus:isActief": true,
		"nested": map[string]interface{}{
			"a:b.c": 1,
		},
	}
	out := FlattenKeys(raw)
	assert.Equal(t, true, out["AIMDBStatus_isActief"])
	nested := out["nested"].(map[string]interface{})
	assert.Equal(t, 1, nested["a_b_c"])
}
