package db

import (
	"context"

	"github.com/vlaanderen-mow/amsync/common"
)

// Index describes a persistent Mango index to create on a collection
// (spec §4.8). Fields order matters: the first field is the most selective
// for queries that use the index. Sparse marks the index as sparse (spec
// §4.8: "indexes are sparse when indicated") — only documents where every
// indexed field is present are included, via a Mango partial_filter_selector,
// so the index stays small on collections where the field is optional.
type Index struct {
	Name   string
	Fields []string
	Sparse bool
}

// CreateIndex creates index on collection, following the same name/fields
// shape the Mango _index endpoint expects. Re-creating an index that
// already exists with the same definition is a no-op on CouchDB's side.
func (a *Adapter) CreateIndex(ctx context.Context, collection string, index Index) error {
	def := map[string]interface{}{
		"index": map[string]interface{}{
			"fields": index.Fields,
		},
	}
	if index.Name != "" {
		def["name"] = index.Name
	}
	if index.Sparse {
		indexDef := def["index"].(map[string]interface{})
		indexDef["partial_filter_selector"] = sparseSelector(index.Fields)
	}
	if err := a.Collection(collection).CreateIndex(ctx, index.Name, "", def); err != nil {
		return common.Wrap(common.ClassStorage, "create index "+index.Name+" on "+collection, err)
	}
	return nil
}

// sparseSelector builds a Mango selector matching only documents where every
// one of fields is present, CouchDB's mechanism for a sparse index.
func sparseSelector(fields []string) map[string]interface{} {
	selector := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		selector[f] = map[string]interface{}{"$exists": true}
	}
	return selector
}
