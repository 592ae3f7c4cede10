package fill

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/vlaanderen-mow/amsync/common"
	"github.com/vlaanderen-mow/amsync/db"
	"github.com/vlaanderen-mow/amsync/state"
	"github.com/vlaanderen-mow/amsync/upstream"
)

// ExtraResources is the ordered resource list the Extra Fill Engine runs
// (spec §4.7), grounded on original_source/ExtraFillStep.py's
// RESOURCES_TO_FILL: capability flags, plan couplings, electrical-connection
// references and edges, then the four derived per-relation-type edge sets.
var ExtraResources = []string{
	"assettypes",
	"vplankoppelingen",
	"aansluitingrefs",
	"aansluitingen",
	"voedt_relaties",
	"sturing_relaties",
	"bevestiging_relaties",
	"hoortbij_relaties",
}

// derivedEdgeSpecs maps a derived edge resource to its backing relation-type
// short name (original_source/ExtraFillStep.py's fill_voedt_relaties and
// siblings).
var derivedEdgeSpecs = map[string]string{
	"voedt_relaties":       "Voedt",
	"sturing_relaties":     "Sturing",
	"bevestiging_relaties": "Bevestiging",
	"hoortbij_relaties":    "HoortBij",
}

// ExtraEngine is the Extra Fill Engine (spec §4.7): a second, sequential
// enrichment pass run after the Initial Fill Engine completes. Unlike the
// Initial Fill Engine it runs resources one at a time — each pass reads and
// writes shared state the others depend on (assettype capability flags gate
// vplankoppelingen and aansluitingen eligibility).
type ExtraEngine struct {
	store   *state.Store
	adapter *db.Adapter
	eminfra *upstream.EMInfraClient
}

// NewExtraEngine returns an ExtraEngine wired to store, adapter and eminfra.
func NewExtraEngine(store *state.Store, adapter *db.Adapter, eminfra *upstream.EMInfraClient) *ExtraEngine {
	return &ExtraEngine{store: store, adapter: adapter, eminfra: eminfra}
}

// Run executes every extra resource in order, skipping any already marked
// filled, then advances the pipeline's step to CREATE_INDEXES.
func (e *ExtraEngine) Run(ctx context.Context) error {
	for _, resource := range ExtraResources {
		progress, err := e.store.GetProgress(ctx, resource)
		if err != nil {
			return err
		}
		if !progress.Fill {
			continue
		}
		if err := e.fillResource(ctx, resource, progress.From); err != nil {
			return err
		}
	}
	return e.store.SetStep(ctx, state.StepCreateIndexes)
}

func (e *ExtraEngine) fillResource(ctx context.Context, resource string, startFrom interface{}) error {
	switch resource {
	case "assettypes":
		return e.fillAssettypeCapabilities(ctx, stringOrEmpty(startFrom))
	case "vplankoppelingen":
		return e.fillVplankoppelingen(ctx, stringOrEmpty(startFrom))
	case "aansluitingrefs":
		return e.fillAansluitingrefs(ctx, intFromCursor(startFrom))
	case "aansluitingen":
		return e.fillAansluitingen(ctx, stringOrEmpty(startFrom))
	default:
		if short, ok := derivedEdgeSpecs[resource]; ok {
			return e.fillDerivedEdges(ctx, resource, short)
		}
		common.Logger.WithField("resource", resource).Warn("no extra-fill handler registered, marking filled")
		return e.store.MarkFilled(ctx, resource)
	}
}

func stringOrEmpty(v interface{}) string {
	s, _ := v.(string)
	return s
}

type assettypeRecord struct {
	Key  string `json:"_key"`
	Rev  string `json:"_rev,omitempty"`
	UUID string `json:"uuid"`
}

// fillAssettypeCapabilities sets has_plan_kenmerk / has_connection_kenmerk
// per assettype (spec §4.7), resumable by sorted uuid (original_source's
// `sorted(uuids)` + lexical skip-ahead).
func (e *ExtraEngine) fillAssettypeCapabilities(ctx context.Context, startFrom string) error {
	raws, err := e.adapter.Find(ctx, "assettypes", db.MangoQuery{Fields: []string{"_id", "_key", "_rev", "uuid"}})
	if err != nil {
		return err
	}
	records, err := decodeAssettypeRecords(raws)
	if err != nil {
		return err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].UUID < records[j].UUID })

	for _, rec := range records {
		if startFrom != "" && rec.UUID < startFrom {
			continue
		}

		kenmerken, err := e.eminfra.GetKenmerktypes(rec.UUID)
		if err != nil {
			return err
		}
		hasPlan, hasConnection := false, false
		for _, k := range kenmerken {
			switch k.Name {
			case "Vplan":
				hasPlan = true
			case "Elektrisch aansluitpunt":
				hasConnection = true
			}
		}

		var doc map[string]interface{}
		if err := e.adapter.Get(ctx, "assettypes", rec.Key, &doc); err != nil {
			return err
		}
		doc["has_plan_kenmerk"] = hasPlan
		doc["has_connection_kenmerk"] = hasConnection
		if _, err := e.adapter.Put(ctx, "assettypes", rec.Key, doc); err != nil {
			return common.Wrap(common.ClassStorage, "update assettype capabilities", err)
		}

		if err := e.store.AdvanceProgress(ctx, "assettypes", rec.UUID); err != nil {
			return err
		}
	}
	return e.store.MarkFilled(ctx, "assettypes")
}

func decodeAssettypeRecords(raws []json.RawMessage) ([]assettypeRecord, error) {
	out := make([]assettypeRecord, 0, len(raws))
	for _, raw := range raws {
		var rec assettypeRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, common.Wrap(common.ClassProtocol, "decode assettype record", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

type planKoppeling struct {
	Key            string      `json:"_key"`
	AssetKey       string      `json:"asset_key"`
	VplanUUID      string      `json:"vplan_uuid"`
	VplanNummer    interface{} `json:"vplan_nummer"`
	InDienstDatum  interface{} `json:"inDienstDatum"`
	UitDienstDatum interface{} `json:"uitDienstDatum"`
}

// fillVplankoppelingen fills plan couplings for every asset whose assettype
// has has_plan_kenmerk set (spec §4.7), resumable by sorted asset key.
func (e *ExtraEngine) fillVplankoppelingen(ctx context.Context, startFrom string) error {
	eligibleTypes, err := e.adapter.Find(ctx, "assettypes", db.MangoQuery{
		Selector: map[string]interface{}{"has_plan_kenmerk": true},
		Fields:   []string{"_id"},
	})
	if err != nil {
		return err
	}
	typeKeys := make([]string, 0, len(eligibleTypes))
	for _, raw := range eligibleTypes {
		var doc struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return common.Wrap(common.ClassProtocol, "decode eligible assettype", err)
		}
		typeKeys = append(typeKeys, doc.ID)
	}
	if len(typeKeys) == 0 {
		return e.store.MarkFilled(ctx, "vplankoppelingen")
	}

	assetRaws, err := e.adapter.Find(ctx, "assets", db.MangoQuery{
		Selector: map[string]interface{}{"assettype_key": map[string]interface{}{"$in": typeKeys}},
		Fields:   []string{"_id"},
	})
	if err != nil {
		return err
	}
	assetKeys := make([]string, 0, len(assetRaws))
	for _, raw := range assetRaws {
		var doc struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return common.Wrap(common.ClassProtocol, "decode eligible asset", err)
		}
		assetKeys = append(assetKeys, doc.ID)
	}
	sort.Strings(assetKeys)

	for _, assetKey := range assetKeys {
		if startFrom != "" && assetKey < startFrom {
			continue
		}

		raws, err := e.eminfra.GetPlanKoppelingen(assetKey)
		if err != nil {
			return err
		}
		if len(raws) > 0 {
			docs := make([]planKoppeling, 0, len(raws))
			for _, raw := range raws {
				var v struct {
					UUID    string `json:"uuid"`
					VplanRef struct {
						UUID   string      `json:"uuid"`
						Nummer interface{} `json:"nummer"`
					} `json:"vplanRef"`
					InDienstDatum  interface{} `json:"inDienstDatum"`
					UitDienstDatum interface{} `json:"uitDienstDatum"`
				}
				if err := json.Unmarshal(raw, &v); err != nil {
					return common.Wrap(common.ClassProtocol, "decode plan koppeling", err)
				}
				docs = append(docs, planKoppeling{
					Key:            v.UUID,
					AssetKey:       assetKey,
					VplanUUID:      v.VplanRef.UUID,
					VplanNummer:    v.VplanRef.Nummer,
					InDienstDatum:  v.InDienstDatum,
					UitDienstDatum: v.UitDienstDatum,
				})
			}
			if _, err := db.BulkUpsert(ctx, e.adapter, "vplankoppelingen", docs, func(d planKoppeling) string {
				return d.Key
			}, 0); err != nil {
				return err
			}
		}

		if err := e.store.AdvanceProgress(ctx, "vplankoppelingen", assetKey); err != nil {
			return err
		}
	}
	return e.store.MarkFilled(ctx, "vplankoppelingen")
}

// fillAansluitingrefs offset-pages the electrical-connection reference list
// into "aansluitingrefs", keyed by the first 8 characters of the reference
// uuid (SPEC_FULL.md §12, filling in the original's placeholder step with a
// concrete reference-resolution resource).
func (e *ExtraEngine) fillAansluitingrefs(ctx context.Context, startFrom *int) error {
	for {
		page, err := e.eminfra.GetAansluitingRefPage(DefaultPageSize, startFrom)
		if err != nil {
			return err
		}

		docs := make([]map[string]interface{}, 0, len(page.Items))
		for _, raw := range page.Items {
			var obj map[string]interface{}
			if err := json.Unmarshal(raw, &obj); err != nil {
				return common.Wrap(common.ClassProtocol, "decode aansluitingref", err)
			}
			uuidStr, _ := obj["uuid"].(string)
			obj["_key"] = firstN(uuidStr, 8)
			docs = append(docs, obj)
		}
		if len(docs) > 0 {
			if _, err := db.BulkUpsert(ctx, e.adapter, "aansluitingrefs", docs, func(d map[string]interface{}) string {
				return d["_key"].(string)
			}, 0); err != nil {
				return err
			}
		}

		if err := e.store.AdvanceProgress(ctx, "aansluitingrefs", cursorFromInt(page.NextFrom)); err != nil {
			return err
		}
		if page.NextFrom == nil {
			return e.store.MarkFilled(ctx, "aansluitingrefs")
		}
		startFrom = page.NextFrom
	}
}

// fillAansluitingen fetches the electrical-connection sub-resource for every
// asset whose assettype has has_connection_kenmerk, and writes an edge into
// "aansluitingen" for each one found (spec §4.7), resumable by sorted asset
// key.
func (e *ExtraEngine) fillAansluitingen(ctx context.Context, startFrom string) error {
	eligibleTypes, err := e.adapter.Find(ctx, "assettypes", db.MangoQuery{
		Selector: map[string]interface{}{"has_connection_kenmerk": true},
		Fields:   []string{"_id"},
	})
	if err != nil {
		return err
	}
	typeKeys := make([]string, 0, len(eligibleTypes))
	for _, raw := range eligibleTypes {
		var doc struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return common.Wrap(common.ClassProtocol, "decode eligible assettype", err)
		}
		typeKeys = append(typeKeys, doc.ID)
	}
	if len(typeKeys) == 0 {
		return e.store.MarkFilled(ctx, "aansluitingen")
	}

	assetRaws, err := e.adapter.Find(ctx, "assets", db.MangoQuery{
		Selector: map[string]interface{}{"assettype_key": map[string]interface{}{"$in": typeKeys}},
		Fields:   []string{"_id"},
	})
	if err != nil {
		return err
	}
	assetKeys := make([]string, 0, len(assetRaws))
	for _, raw := range assetRaws {
		var doc struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return common.Wrap(common.ClassProtocol, "decode eligible asset", err)
		}
		assetKeys = append(assetKeys, doc.ID)
	}
	sort.Strings(assetKeys)

	for _, assetKey := range assetKeys {
		if startFrom != "" && assetKey < startFrom {
			continue
		}

		raw, err := e.eminfra.GetAansluiting(assetKey)
		if err != nil {
			return err
		}
		if raw != nil {
			var obj map[string]interface{}
			if err := json.Unmarshal(raw, &obj); err != nil {
				return common.Wrap(common.ClassProtocol, "decode aansluiting", err)
			}
			refUUID, _ := obj["referentie"].(string)
			refKey := firstN(refUUID, 8)
			edge := db.EdgeDoc(assetKey+"_"+refKey, "assets", assetKey, "aansluitingrefs", refKey, nil)
			if _, err := db.BulkUpsert(ctx, e.adapter, "aansluitingen", []map[string]interface{}{edge}, func(d map[string]interface{}) string {
				return assetKey + "_" + refKey
			}, 0); err != nil {
				return err
			}
		}

		if err := e.store.AdvanceProgress(ctx, "aansluitingen", assetKey); err != nil {
			return err
		}
	}
	return e.store.MarkFilled(ctx, "aansluitingen")
}

// fillDerivedEdges rebuilds one of the four per-relation-type edge
// collections from scratch: truncate, then re-insert every assetrelaties
// edge of relatieTypeShort whose endpoints both still exist and are active
// (original_source/ExtraFillStep.py's _fill_derived_edges).
func (e *ExtraEngine) fillDerivedEdges(ctx context.Context, resource, relatieTypeShort string) error {
	if err := e.adapter.RecreateCollection(ctx, resource); err != nil {
		return err
	}

	rtRaws, err := e.adapter.Find(ctx, "relatietypes", db.MangoQuery{
		Selector: map[string]interface{}{"short": relatieTypeShort},
		Fields:   []string{"_id"},
		Limit:    1,
	})
	if err != nil {
		return err
	}
	if len(rtRaws) == 0 {
		common.Logger.WithField("relatietype", relatieTypeShort).Warn("relatietype not found, leaving derived edge collection empty")
		return e.store.MarkFilled(ctx, resource)
	}
	var rt struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(rtRaws[0], &rt); err != nil {
		return common.Wrap(common.ClassProtocol, "decode relatietype", err)
	}

	edgeRaws, err := e.adapter.Find(ctx, "assetrelaties", db.MangoQuery{
		Selector: map[string]interface{}{
			"relatietype_key":      rt.ID,
			"AIMDBStatus_isActief": true,
		},
	})
	if err != nil {
		return err
	}

	var derived []map[string]interface{}
	for _, raw := range edgeRaws {
		var edge struct {
			ID   string `json:"_id"`
			Key  string `json:"_key"`
			From string `json:"_from"`
			To   string `json:"_to"`
		}
		if err := json.Unmarshal(raw, &edge); err != nil {
			return common.Wrap(common.ClassProtocol, "decode assetrelatie edge", err)
		}

		fromActive, err := e.endpointActive(ctx, edge.From)
		if err != nil {
			return err
		}
		toActive, err := e.endpointActive(ctx, edge.To)
		if err != nil {
			return err
		}
		if !fromActive || !toActive {
			continue
		}

		derived = append(derived, map[string]interface{}{
			"_id":             edge.ID,
			"_from":           edge.From,
			"_to":             edge.To,
			"source_edge_id":  edge.ID,
			"source_edge_key": edge.Key,
		})
	}

	if len(derived) > 0 {
		if _, err := db.BulkUpsert(ctx, e.adapter, resource, derived, func(d map[string]interface{}) string {
			return d["source_edge_key"].(string)
		}, 0); err != nil {
			return err
		}
	}

	common.Logger.WithField("collection", resource).WithField("count", len(derived)).Info("derived edge collection built")
	return e.store.MarkFilled(ctx, resource)
}

func (e *ExtraEngine) endpointActive(ctx context.Context, endpointRef string) (bool, error) {
	collection, key := splitEndpointRef(endpointRef)
	var doc struct {
		Active bool `json:"AIMDBStatus_isActief"`
	}
	if err := e.adapter.Get(ctx, collection, key, &doc); err != nil {
		var cdbErr *db.CouchDBError
		if errors.As(err, &cdbErr) && cdbErr.StatusCode == 404 {
			return false, nil
		}
		return false, err
	}
	return doc.Active, nil
}

func splitEndpointRef(ref string) (collection, key string) {
	for i := 0; i < len(ref); i++ {
		if ref[i] == '/' {
			return ref[:i], ref[i+1:]
		}
	}
	return "", ref
}
