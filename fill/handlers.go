package fill

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/vlaanderen-mow/amsync/cache"
	"github.com/vlaanderen-mow/amsync/common"
	"github.com/vlaanderen-mow/amsync/db"
	"github.com/vlaanderen-mow/amsync/state"
	"github.com/vlaanderen-mow/amsync/transform"
	"github.com/vlaanderen-mow/amsync/upstream"
)

// offsetPageFetcher fetches one offset page of a resource.
type offsetPageFetcher func(ctx context.Context, size int, from *int) (upstream.OffsetPage, error)

// ReferenceFiller is the uniform handler for offset-paged reference
// entities (spec §4.5: "direct field selection + optional derived fields").
// keyOf extracts a document's _key from its flattened fields.
type ReferenceFiller struct {
	Store      *state.Store
	Adapter    *db.Adapter
	Collection string
	PageSize   int
	Fetch      offsetPageFetcher
	KeyOf      func(doc map[string]interface{}) string
	Enrich     func(doc map[string]interface{})
}

func (f *ReferenceFiller) Fill(ctx context.Context, resource string) error {
	pageSize := f.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	progress, err := f.Store.GetProgress(ctx, resource)
	if err != nil {
		return err
	}
	from := intFromCursor(progress.From)

	for {
		page, err := f.Fetch(ctx, pageSize, from)
		if err != nil {
			return err
		}

		if len(page.Items) > 0 {
			docs, err := f.decodePage(page.Items)
			if err != nil {
				return err
			}
			if _, err := db.BulkUpsert(ctx, f.Adapter, f.Collection, docs, func(d map[string]interface{}) string {
				return d["_key"].(string)
			}, 0); err != nil {
				return err
			}
		}

		if err := f.Store.AdvanceProgress(ctx, resource, cursorFromInt(page.NextFrom)); err != nil {
			return err
		}
		if page.NextFrom == nil {
			return f.Store.MarkFilled(ctx, resource)
		}
		from = page.NextFrom
	}
}

func (f *ReferenceFiller) decodePage(items []json.RawMessage) ([]map[string]interface{}, error) {
	docs := make([]map[string]interface{}, 0, len(items))
	for _, raw := range items {
		var obj map[string]interface{}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, common.Wrap(common.ClassProtocol, "decode "+f.Collection+" record", err)
		}
		flattened := transform.FlattenKeys(obj)
		if f.Enrich != nil {
			f.Enrich(flattened)
		}
		flattened["_key"] = f.KeyOf(flattened)
		docs = append(docs, flattened)
	}
	return docs, nil
}

func intFromCursor(v interface{}) *int {
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	case int:
		return &n
	default:
		return nil
	}
}

func cursorFromInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func stringFromCursor(v interface{}) *string {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func cursorFromString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
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

func refID(obj map[string]interface{}, field string) (id, typ string) {
	ref, _ := obj[field].(map[string]interface{})
	if ref == nil {
		return "", ""
	}
	id, _ = ref["@id"].(string)
	typ, _ = ref["@type"].(string)
	return id, typ
}

// AgentsFiller is the cursor-paged handler for the "agents" resource (spec
// §4.5). Agent keys are truncated to 13 characters, matching the
// betrokkene-relations handler's agents/<key> endpoint references.
type AgentsFiller struct {
	Store    *state.Store
	Adapter  *db.Adapter
	Client   *upstream.EMSONClient
	PageSize int
}

func (f *AgentsFiller) Fill(ctx context.Context, resource string) error {
	pageSize := f.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	progress, err := f.Store.GetProgress(ctx, resource)
	if err != nil {
		return err
	}
	cursor := stringFromCursor(progress.From)

	for {
		page, err := f.Client.GetResourceByCursor("agents", cursor, pageSize, []string{"contactInfo"})
		if err != nil {
			return err
		}

		docs := make([]map[string]interface{}, 0, len(page.Items))
		for _, raw := range page.Items {
			var obj map[string]interface{}
			if err := json.Unmarshal(raw, &obj); err != nil {
				return common.Wrap(common.ClassProtocol, "decode agent record", err)
			}
			flattened := transform.FlattenKeys(obj)
			id, _ := obj["@id"].(string)
			flattened["_key"] = firstN(lastPathSegment(id), 13)
			docs = append(docs, flattened)
		}
		if len(docs) > 0 {
			if _, err := db.BulkUpsert(ctx, f.Adapter, "agents", docs, func(d map[string]interface{}) string {
				return d["_key"].(string)
			}, 0); err != nil {
				return err
			}
		}

		if err := f.Store.AdvanceProgress(ctx, resource, cursorFromString(page.NextCursor)); err != nil {
			return err
		}
		if page.NextCursor == nil {
			return f.Store.MarkFilled(ctx, resource)
		}
		cursor = page.NextCursor
	}
}

// AssetsFiller is the cursor-paged handler for the "assets" resource: the
// one that drives the full Asset Transformer (spec §4.5 step 3, §4.6) and
// emits bestek-coupling edges alongside the asset documents themselves.
type AssetsFiller struct {
	Store       *state.Store
	Adapter     *db.Adapter
	Client      *upstream.EMSONClient
	Transformer *transform.AssetTransformer
	PageSize    int
}

func (f *AssetsFiller) Fill(ctx context.Context, resource string) error {
	pageSize := f.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	progress, err := f.Store.GetProgress(ctx, resource)
	if err != nil {
		return err
	}
	cursor := stringFromCursor(progress.From)

	for {
		page, err := f.Client.GetResourceByCursor("assets", cursor, pageSize, nil)
		if err != nil {
			return err
		}

		docs := make([]map[string]interface{}, 0, len(page.Items))
		var edges []map[string]interface{}
		skipped := 0
		for _, raw := range page.Items {
			var obj map[string]interface{}
			if err := json.Unmarshal(raw, &obj); err != nil {
				return common.Wrap(common.ClassProtocol, "decode asset record", err)
			}
			asset, err := f.Transformer.Transform(ctx, obj)
			if err != nil {
				if err == transform.ErrUnknownAssetType || common.IsClass(err, common.ClassDataShape) {
					skipped++
					continue
				}
				return err
			}
			docs = append(docs, asset.Doc)
			edges = append(edges, asset.Edges...)
		}
		if skipped > 0 {
			common.Logger.WithField("skipped", skipped).Warn("skipped assets with unknown asset-type")
		}

		if len(docs) > 0 {
			if _, err := db.BulkUpsert(ctx, f.Adapter, "assets", docs, func(d map[string]interface{}) string {
				return d["_key"].(string)
			}, AssetChunkSize); err != nil {
				return err
			}
		}
		if len(edges) > 0 {
			if _, err := db.BulkUpsert(ctx, f.Adapter, "bestekkoppelingen", edges, func(d map[string]interface{}) string {
				return d["_key"].(string)
			}, BestekChunkSize); err != nil {
				return err
			}
		}

		if err := f.Store.AdvanceProgress(ctx, resource, cursorFromString(page.NextCursor)); err != nil {
			return err
		}
		if page.NextCursor == nil {
			return f.Store.MarkFilled(ctx, resource)
		}
		cursor = page.NextCursor
	}
}

// AssetRelatiesFiller is the cursor-paged handler for "assetrelaties": edges
// between two assets, keyed by relation type. Relations whose @type has no
// registered relatietype are skipped rather than failing the page, mirroring
// the Asset Transformer's unknown-asset-type behavior (spec §4.5 step 3).
type AssetRelatiesFiller struct {
	Store             *state.Store
	Adapter           *db.Adapter
	Client            *upstream.EMSONClient
	RelatieTypeLookup *cache.Lookup
	PageSize          int
}

func (f *AssetRelatiesFiller) Fill(ctx context.Context, resource string) error {
	pageSize := f.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	progress, err := f.Store.GetProgress(ctx, resource)
	if err != nil {
		return err
	}
	cursor := stringFromCursor(progress.From)

	for {
		page, err := f.Client.GetResourceByCursor("assetrelaties", cursor, pageSize, nil)
		if err != nil {
			return err
		}

		docs := make([]map[string]interface{}, 0, len(page.Items))
		skipped := 0
		for _, raw := range page.Items {
			var obj map[string]interface{}
			if err := json.Unmarshal(raw, &obj); err != nil {
				return common.Wrap(common.ClassProtocol, "decode assetrelatie record", err)
			}

			relType, _ := obj["@type"].(string)
			relKey, found, err := f.RelatieTypeLookup.Get(ctx, relType)
			if err != nil {
				return err
			}
			if !found {
				skipped++
				continue
			}

			id, _ := obj["@id"].(string)
			bronID, _ := refID(obj, "bron")
			doelID, _ := refID(obj, "doel")

			isActief := true
			if v, ok := obj["AIMDBStatus_isActief"].(bool); ok {
				isActief = v
			}

			key := firstN(lastPathSegment(id), 36)
			doc := db.EdgeDoc(key, "assets", firstN(lastPathSegment(bronID), 36), "assets", firstN(lastPathSegment(doelID), 36), map[string]interface{}{
				"relatietype_key":      relKey,
				"AIMDBStatus_isActief": isActief,
			})
			doc["_key"] = key
			docs = append(docs, doc)
		}
		if skipped > 0 {
			common.Logger.WithField("skipped", skipped).Warn("skipped assetrelaties with unknown relation type")
		}

		if len(docs) > 0 {
			if _, err := db.BulkUpsert(ctx, f.Adapter, "assetrelaties", docs, func(d map[string]interface{}) string {
				return d["_key"].(string)
			}, 0); err != nil {
				return err
			}
		}

		if err := f.Store.AdvanceProgress(ctx, resource, cursorFromString(page.NextCursor)); err != nil {
			return err
		}
		if page.NextCursor == nil {
			return f.Store.MarkFilled(ctx, resource)
		}
		cursor = page.NextCursor
	}
}

// BetrokkeneRelatiesFiller is the cursor-paged handler for
// "betrokkenerelaties": edges from either an asset or an agent to an agent,
// with the role derived from the terminal segment of the role URI (spec
// §4.5).
type BetrokkeneRelatiesFiller struct {
	Store    *state.Store
	Adapter  *db.Adapter
	Client   *upstream.EMSONClient
	PageSize int
}

func (f *BetrokkeneRelatiesFiller) Fill(ctx context.Context, resource string) error {
	pageSize := f.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	progress, err := f.Store.GetProgress(ctx, resource)
	if err != nil {
		return err
	}
	cursor := stringFromCursor(progress.From)

	for {
		page, err := f.Client.GetResourceByCursor("betrokkenerelaties", cursor, pageSize, []string{"contactInfo"})
		if err != nil {
			return err
		}

		docs := make([]map[string]interface{}, 0, len(page.Items))
		for _, raw := range page.Items {
			var obj map[string]interface{}
			if err := json.Unmarshal(raw, &obj); err != nil {
				return common.Wrap(common.ClassProtocol, "decode betrokkenerelatie record", err)
			}

			id, _ := obj["@id"].(string)
			bronID, bronType := refID(obj, "bron")
			doelID, _ := refID(obj, "doel")
			rol, _ := obj["rol"].(string)

			fromCollection, fromKey := "assets", firstN(lastPathSegment(bronID), 36)
			if strings.Contains(strings.ToLower(bronType), "agent") {
				fromCollection, fromKey = "agents", firstN(lastPathSegment(bronID), 13)
			}
			toKey := firstN(lastPathSegment(doelID), 13)

			key := firstN(lastPathSegment(id), 36)
			doc := db.EdgeDoc(key, fromCollection, fromKey, "agents", toKey, map[string]interface{}{
				"rol": transform.TerminalSegment(rol),
			})
			doc["_key"] = key
			docs = append(docs, doc)
		}

		if len(docs) > 0 {
			if _, err := db.BulkUpsert(ctx, f.Adapter, "betrokkenerelaties", docs, func(d map[string]interface{}) string {
				return d["_key"].(string)
			}, 0); err != nil {
				return err
			}
		}

		if err := f.Store.AdvanceProgress(ctx, resource, cursorFromString(page.NextCursor)); err != nil {
			return err
		}
		if page.NextCursor == nil {
			return f.Store.MarkFilled(ctx, resource)
		}
		cursor = page.NextCursor
	}
}
