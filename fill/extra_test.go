package fill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitEndpointRef(t *testing.T) {
	collection, key := splitEndpointRef("assets/abc123")
	assert.Equal(t, "assets", collection)
	assert.Equal(t, "abc123", key)

	collection, key = splitEndpointRef("no-slash")
	assert.Equal(t, "", collection)
	assert.Equal(t, "no-slash", key)
}

func TestDerivedEdgeSpecs_CoverAllFourRelationTypes(t *testing.T) {
	assert.Equal(t, "Voedt", derivedEdgeSpecs["voedt_relaties"])
	assert.Equal(t, "Sturing", derivedEdgeSpecs["sturing_relaties"])
	assert.Equal(t, "Bevestiging", derivedEdgeSpecs["bevestiging_relaties"])
	assert.Equal(t, "HoortBij", derivedEdgeSpecs["hoortbij_relaties"])
}

func TestExtraResources_MatchDeclaredOrder(t *testing.T) {
	assert.Equal(t, []string{
		"assettypes",
		"vplankoppelingen",
		"aansluitingrefs",
		"aansluitingen",
		"voedt_relaties",
		"sturing_relaties",
		"bevestiging_relaties",
		"hoortbij_relaties",
	}, ExtraResources)
}
