package transform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vlaanderen-mow/amsync/cache"
)

func fixedLookup(values map[string]string) *cache.Lookup {
	return cache.NewLookup(func(ctx context.Context) (map[string]string, error) {
		return values, nil
	})
}

func TestAssetTransformer_Transform_BasicFields(t *testing.T) {
	tr := &AssetTransformer{
		AssetTypeLookup: fixedLookup(map[string]string{
			"https://lgc.data.wegenenverkeer.be/ns/onderdeel#Kast": "AAAAAAAA",
		}),
		BeheerderLookup: fixedLookup(map[string]string{"BEH-000": "4e77efda"}),
	}

	raw := map[string]interface{}{
		"@id":   "https://data.awv.be/id/asset/123456789012345678901234567890123456789-FAKE",
		"@type": "https://lgc.data.wegenenverkeer.be/ns/onderdeel#Kast",
		"AIMToestand:toestand":       "https://example.org/KlAIMToestand/in-gebruik",
		"NaampadObject:naampad":      "X9Y8Z7/X9Y8Z7.K",
		"tz:Toezicht.toezichtgroep":  map[string]interface{}{"tz:DtcToezichtGroep.id": "11111111-1111-1111-1111-111111111111"},
		"tz:Toezicht.toezichter":     map[string]interface{}{"tz:DtcToezichter.id": "00000000-0000-0000-0000-000000000000"},
		"tz:Schadebeheerder.schadebeheerder": map[string]interface{}{
			"tz:DtcBeheerder.referentie": "BEH-000",
		},
	}

	asset, err := tr.Transform(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "AAAAAAAA", asset.Doc["assettype_key"])
	assert.Equal(t, "in-gebruik", asset.Doc["toestand"])
	assert.Equal(t, []string{"X9Y8Z7", "X9Y8Z7.K"}, asset.Doc["naampad_parts"])
	assert.Equal(t, "X9Y8Z7", asset.Doc["naampad_parent"])
	assert.Equal(t, "11111111", asset.Doc["toezichtgroep_key"])
	assert.Equal(t, "00000000", asset.Doc["toezichter_key"])
	assert.Equal(t, "4e77efda", asset.Doc["beheerder_key"])
}

func TestAssetTransformer_Transform_UnknownAssetTypeSkips(t *testing.T) {
	tr := &AssetTransformer{
		AssetTypeLookup: fixedLookup(map[string]string{}),
		BeheerderLookup: fixedLookup(map[string]string{}),
	}
	raw := map[string]interface{}{"@id": "https://data.awv.be/id/asset/x", "@type": "unknown"}

	_, err := tr.Transform(context.Background(), raw)
	assert.ErrorIs(t, err, ErrUnknownAssetType)
}

func TestAssetTransformer_EmitsBestekEdges(t *testing.T) {
	tr := &AssetTransformer{
		AssetTypeLookup: fixedLookup(map[string]string{"t": "AAAAAAAA"}),
		BeheerderLookup: fixedLookup(map[string]string{}),
	}
	raw := map[string]interface{}{
		"@id":   "https://data.awv.be/id/asset/abc",
		"@type": "t",
		"bs:Bestek.bestekkoppeling": []interface{}{
			map[string]interface{}{
				"DtcBestekkoppeling_bestekId": map[string]interface{}{
					"DtcIdentificator_identificator": "00000000-0000-0000-0000-000000000000",
				},
				"status": "https://example.org/status/actief",
			},
		},
	}

	asset, err := tr.Transform(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, asset.Edges, 1)
	edge := asset.Edges[0]
	assert.Equal(t, "bestekken/00000000", edge["_to"])
	assert.Equal(t, "actief", edge["status"])
	assert.Equal(t, "assets/"+asset.Doc["_key"].(string), edge["_from"])
}
