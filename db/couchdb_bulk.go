package db

import (
	"context"
	"encoding/json"

	kivik "github.com/go-kivik/kivik/v4"

	"github.com/vlaanderen-mow/amsync/common"
)

// BulkResult is the per-document outcome of a bulk upsert, mirroring
// CouchDB's _bulk_docs response shape.
type BulkResult struct {
	ID    string
	Rev   string
	OK    bool
	Error string
	Reason string
}

// BulkUpsert writes docs to collection in chunks of chunkSize, looking up
// the current _rev of any document that already exists so updates don't
// conflict (spec §4.2: "on-duplicate=update"). getKey extracts the
// document's key from its value.
//
// Chunk size matters operationally: the Initial Fill Engine uses 1000 for
// assets and 2000 for bestek couplings (spec §4.5, §4.7) to bound the size
// of any single bulk request.
func BulkUpsert[T any](ctx context.Context, a *Adapter, collection string, docs []T, getKey func(T) string, chunkSize int) ([]BulkResult, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if chunkSize <= 0 {
		chunkSize = 1000
	}

	var results []BulkResult
	for start := 0; start < len(docs); start += chunkSize {
		end := start + chunkSize
		if end > len(docs) {
			end = len(docs)
		}
		chunkResults, err := bulkUpsertChunk(ctx, a, collection, docs[start:end], getKey)
		if err != nil {
			return results, err
		}
		results = append(results, chunkResults...)
	}
	return results, nil
}

func bulkUpsertChunk[T any](ctx context.Context, a *Adapter, collection string, chunk []T, getKey func(T) string) ([]BulkResult, error) {
	keys := make([]string, len(chunk))
	for i, doc := range chunk {
		keys[i] = getKey(doc)
	}
	existing, err := existingDocs(ctx, a, collection, keys)
	if err != nil {
		return nil, err
	}

	payload := make([]interface{}, len(chunk))
	for i, doc := range chunk {
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, common.Wrap(common.ClassTransform, "marshal document for bulk upsert", err)
		}
		var asMap map[string]interface{}
		if err := json.Unmarshal(raw, &asMap); err != nil {
			return nil, common.Wrap(common.ClassTransform, "re-decode document for bulk upsert", err)
		}

		merged := existing[keys[i]]
		if merged == nil {
			merged = make(map[string]interface{}, len(asMap))
		}
		for k, v := range asMap {
			merged[k] = v
		}
		merged["_id"] = keys[i]
		payload[i] = merged
	}

	rows, err := a.Collection(collection).BulkDocs(ctx, payload)
	if err != nil {
		return nil, common.Wrap(common.ClassStorage, "bulk upsert into "+collection, err)
	}

	var out []BulkResult
	for rows.Next() {
		out = append(out, BulkResult{
			ID:     rows.ID(),
			Rev:    rows.Rev(),
			OK:     rows.UpdateErr() == nil,
			Reason: reasonOf(rows.UpdateErr()),
		})
	}
	return out, nil
}

func reasonOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// existingDocs fetches the full current body (including _rev) for whichever
// of keys already exist in collection, using a single AllDocs request with
// include_docs so bulkUpsertChunk can merge new fields over the existing
// document instead of overwriting it wholesale (spec §4.2/§3: "update (merge
// keys), without overwrite of existing keys").
func existingDocs(ctx context.Context, a *Adapter, collection string, keys []string) (map[string]map[string]interface{}, error) {
	rows := a.Collection(collection).AllDocs(ctx, kivik.Params(map[string]interface{}{
		"keys":         keys,
		"include_docs": true,
	}))
	defer rows.Close()

	docs := make(map[string]map[string]interface{}, len(keys))
	for rows.Next() {
		var doc map[string]interface{}
		if err := rows.ScanDoc(&doc); err != nil {
			continue // missing key: rows.Next() still surfaces it with no doc
		}
		docs[rows.Key()] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, common.Wrap(common.ClassStorage, "resolve existing documents in "+collection, err)
	}
	return docs, nil
}
