package transform

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/vlaanderen-mow/amsync/cache"
	"github.com/vlaanderen-mow/amsync/common"
	"github.com/vlaanderen-mow/amsync/geo"
)

// GeometryPolicy decides what happens when a record's WKT fails to parse
// (SPEC_FULL.md §13, resolving spec §9's open question).
type GeometryPolicy int

const (
	// FailPage fails the entire page on an unparseable WKT, matching spec
	// §7's default transform-error behavior ("fatal for that record — the
	// entire page fails and is retried").
	FailPage GeometryPolicy = iota
	// SkipGeometry logs and proceeds without geometry fields, for
	// deployments that would rather tolerate occasional bad upstream data
	// than stall a page.
	SkipGeometry
)

// ParseGeometryPolicy maps the `transform.wkt_policy` settings value.
func ParseGeometryPolicy(s string) GeometryPolicy {
	if strings.EqualFold(s, "skip_geometry") {
		return SkipGeometry
	}
	return FailPage
}

// Asset is the normalized, enriched form of a raw asset record, ready for
// bulk upsert into the "assets" collection.
type Asset struct {
	Doc   map[string]interface{}
	Edges []map[string]interface{}
}

// AssetTransformer implements spec §4.6 end to end: key normalization,
// geometry, toestand/naampad derivation, and short foreign-key resolution.
// It performs no I/O of its own beyond the injected lookups.
type AssetTransformer struct {
	AssetTypeLookup *cache.Lookup
	BeheerderLookup *cache.Lookup
	Policy          GeometryPolicy
}

// ErrUnknownAssetType signals a record whose @type has no known asset-type,
// per spec §4.5 step 3 ("skip the record and increment a skipped-counter").
var ErrUnknownAssetType = common.Wrap(common.ClassDataShape, "resolve assettype_key", errUnknownAssetType{})

type errUnknownAssetType struct{}

func (errUnknownAssetType) Error() string { return "no asset-type registered for @type" }

// Transform runs the full pipeline over one raw asset record. A returned
// ErrUnknownAssetType means the caller should skip the record and continue
// the batch rather than fail the page.
func (t *AssetTransformer) Transform(ctx context.Context, raw map[string]interface{}) (Asset, error) {
	obj := NormalizeKeys(raw)

	id, _ := obj["@id"].(string)
	obj["_key"] = firstN(lastPathSegment(id), 36)

	assetType, _ := obj["@type"].(string)
	assettypeKey, found, err := t.AssetTypeLookup.Get(ctx, assetType)
	if err != nil {
		return Asset{}, err
	}
	if !found {
		return Asset{}, ErrUnknownAssetType
	}
	obj["assettype_key"] = assettypeKey

	if err := t.applyGeometry(obj); err != nil {
		return Asset{}, err
	}

	t.applyToestand(obj)
	t.applyNaampad(obj)
	if err := t.applyForeignKeys(ctx, obj); err != nil {
		return Asset{}, err
	}

	edges := t.emitBestekEdges(obj)

	return Asset{Doc: obj, Edges: edges}, nil
}

func (t *AssetTransformer) applyGeometry(obj map[string]interface{}) error {
	wkt, ok := geo.ExtractWKT(obj)
	if !ok {
		return nil
	}
	geom, err := geo.ParseAndReproject(wkt)
	if err != nil {
		if t.Policy == SkipGeometry {
			common.Logger.WithField("error", err).Warn("skipping unparseable geometry")
			return nil
		}
		return err
	}
	obj["wkt"] = wkt
	obj["geometry"] = geom
	return nil
}

func (t *AssetTransformer) applyToestand(obj map[string]interface{}) {
	bucket := Bucket(obj, "AIMToestand")
	if v, ok := StringField(bucket, "toestand"); ok {
		obj["toestand"] = TerminalSegment(v)
	}
}

func (t *AssetTransformer) applyNaampad(obj map[string]interface{}) {
	bucket := Bucket(obj, "NaampadObject")
	v, ok := StringField(bucket, "naampad")
	if !ok {
		return
	}
	parts, parent, hasParent := DeriveNaampad(v)
	obj["naampad_parts"] = parts
	if hasParent {
		obj["naampad_parent"] = parent
	}
}

func (t *AssetTransformer) applyForeignKeys(ctx context.Context, obj map[string]interface{}) error {
	tz := Bucket(obj, "tz")
	if tz == nil {
		return nil
	}

	if group, ok := tz["Toezicht_toezichtgroep"].(map[string]interface{}); ok {
		if id, ok := StringField(group, "DtcToezichtGroep_id"); ok {
			obj["toezichtgroep_key"] = firstN(id, 8)
		}
	}
	if toezichter, ok := tz["Toezicht_toezichter"].(map[string]interface{}); ok {
		if id, ok := StringField(toezichter, "DtcToezichter_id"); ok {
			obj["toezichter_key"] = firstN(id, 8)
		}
	}
	if beheerder, ok := tz["Schadebeheerder_schadebeheerder"].(map[string]interface{}); ok {
		if ref, ok := StringField(beheerder, "DtcBeheerder_referentie"); ok {
			key, found, err := t.BeheerderLookup.Get(ctx, ref)
			if err != nil {
				return err
			}
			if found {
				obj["beheerder_key"] = key
			} else {
				common.Logger.WithField("reference", ref).Warn("no beheerder found for reference, omitting beheerder_key")
			}
		}
	}
	return nil
}

// emitBestekEdges extracts bestek-coupling edges per spec §4.6 scenario 5.
func (t *AssetTransformer) emitBestekEdges(obj map[string]interface{}) []map[string]interface{} {
	bucket := Bucket(obj, "bs")
	if bucket == nil {
		return nil
	}
	couplings, _ := bucket["Bestek_bestekkoppeling"].([]interface{})
	if len(couplings) == 0 {
		return nil
	}

	assetKey, _ := obj["_key"].(string)
	edges := make([]map[string]interface{}, 0, len(couplings))
	for _, raw := range couplings {
		coupling, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		bestekID, ok := coupling["DtcBestekkoppeling_bestekId"].(map[string]interface{})
		if !ok {
			continue
		}
		identificator, ok := StringField(bestekID, "DtcIdentificator_identificator")
		if !ok {
			continue
		}
		var status interface{}
		if raw, ok := coupling["status"].(string); ok {
			status = TerminalSegment(raw)
		}
		edges = append(edges, map[string]interface{}{
			"_key":   uuid.NewString(),
			"_from":  "assets/" + assetKey,
			"_to":    "bestekken/" + firstN(identificator, 8),
			"status": status,
		})
	}
	return edges
}

func lastPathSegment(uri string) string {
	if idx := strings.LastIndexByte(uri, '/'); idx >= 0 {
		return uri[idx+1:]
	}
	return uri
}

func firstN(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
