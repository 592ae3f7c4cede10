package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeDoc(t *testing.T) {
	doc := EdgeDoc("e1", "assets", "a1", "assets", "a2", map[string]interface{}{
		"source_edge_id": "src-1",
	})
	assert.Equal(t, "e1", doc["_id"])
	assert.Equal(t, "assets/a1", doc["_from"])
	assert.Equal(t, "assets/a2", doc["_to"])
	assert.Equal(t, "src-1", doc["source_edge_id"])
}

func TestGraphRegistry_DefineAndLookup(t *testing.T) {
	reg := NewGraphRegistry()
	reg.Define(GraphDefinition{
		Name:            "voedt",
		EdgeCollection:  "assetrelaties",
		FromCollections: []string{"assets"},
		ToCollections:   []string{"assets"},
	})

	def, ok := reg.Lookup("voedt")
	require.True(t, ok)
	assert.Equal(t, "assetrelaties", def.EdgeCollection)

	_, ok = reg.Lookup("missing")
	assert.False(t, ok)
}

func TestMangoQuery_ToParams(t *testing.T) {
	q := MangoQuery{
		Fields: []string{"_id", "name"},
		Sort:   []map[string]string{{"name": "asc"}},
		Limit:  50,
		Skip:   10,
	}
	params := q.toParams()
	assert.Equal(t, []string{"_id", "name"}, params["fields"])
	assert.Equal(t, 50, params["limit"])
	assert.Equal(t, 10, params["skip"])
}
