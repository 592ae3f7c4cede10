package db

import (
	"context"
	"encoding/json"

	kivik "github.com/go-kivik/kivik/v4"

	"github.com/vlaanderen-mow/amsync/common"
)

// MangoQuery is a parameterized Mango query (spec §4.2: "parameterized
// queries, no string-built selectors").
type MangoQuery struct {
	Selector map[string]interface{}
	Fields   []string
	Sort     []map[string]string
	Limit    int
	Skip     int
}

func (q MangoQuery) toParams() map[string]interface{} {
	params := map[string]interface{}{}
	if len(q.Fields) > 0 {
		params["fields"] = q.Fields
	}
	if len(q.Sort) > 0 {
		params["sort"] = q.Sort
	}
	if q.Limit > 0 {
		params["limit"] = q.Limit
	}
	if q.Skip > 0 {
		params["skip"] = q.Skip
	}
	return params
}

// Find executes a Mango query against collection and returns matching
// documents as raw JSON, letting callers decode into whatever shape they
// need.
func (a *Adapter) Find(ctx context.Context, collection string, query MangoQuery) ([]json.RawMessage, error) {
	rows := a.Collection(collection).Find(ctx, query.Selector, kivik.Params(query.toParams()))
	defer rows.Close()

	var results []json.RawMessage
	for rows.Next() {
		var doc json.RawMessage
		if err := rows.ScanDoc(&doc); err != nil {
			return nil, common.Wrap(common.ClassStorage, "scan query result from "+collection, err)
		}
		results = append(results, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Wrap(common.ClassStorage, "query "+collection, err)
	}
	return results, nil
}

// Count returns the number of documents in collection matching selector,
// used by the Extra Fill Engine's both-endpoints-active filter (spec §4.7)
// and by diagnostics.
func (a *Adapter) Count(ctx context.Context, collection string, selector map[string]interface{}) (int, error) {
	docs, err := a.Find(ctx, collection, MangoQuery{Selector: selector, Fields: []string{"_id"}})
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}
