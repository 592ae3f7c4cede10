package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeclaredCollections_MatchPersistedStateLayout(t *testing.T) {
	assert.ElementsMatch(t, []string{
		"params", "assets", "assettypes", "relatietypes", "agents",
		"toezichtgroepen", "identiteiten", "beheerders", "bestekken",
		"vplankoppelingen", "aansluitingrefs",
	}, DocumentCollections)

	assert.ElementsMatch(t, []string{
		"assetrelaties", "betrokkenerelaties", "bestekkoppelingen", "aansluitingen",
	}, EdgeCollections)
}

func TestFeedMarkerNames(t *testing.T) {
	assert.Len(t, FeedMarkerNames, 4)
	assert.Contains(t, FeedMarkerNames, "feed_assets")
}
