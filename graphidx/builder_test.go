package graphidx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vlaanderen-mow/amsync/db"
)

func TestDeclareGraphs(t *testing.T) {
	registry := db.NewGraphRegistry()
	b := &Builder{registry: registry}
	b.declareGraphs()

	def, ok := registry.Lookup("betrokkenerelaties_graph")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"assets", "agents"}, def.FromCollections)
	assert.ElementsMatch(t, []string{"agents"}, def.ToCollections)

	_, ok = registry.Lookup("assetrelaties_graph")
	assert.True(t, ok)
	_, ok = registry.Lookup("bestekkoppelingen_graph")
	assert.True(t, ok)
	_, ok = registry.Lookup("aansluitingen_graph")
	assert.True(t, ok)
}

func TestIndexSpecs_CoverHotPaths(t *testing.T) {
	var assetFields [][]string
	for _, spec := range indexSpecs {
		if spec.collection == "assets" {
			assetFields = append(assetFields, spec.fields)
		}
	}
	assert.Contains(t, assetFields, []string{"assettype_key"})
	assert.Contains(t, assetFields, []string{"naampad_parts"})
}
