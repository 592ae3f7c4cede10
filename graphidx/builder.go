// Package graphidx is the Index & Graph Builder (spec §4.8): idempotently
// creates persistent indexes on the hot query paths and declares named
// graphs over the primary edge collections.
//
// original_source/CreateIndicesStep.py also ensures an ArangoSearch
// edge_ngram analyzer and view for naampad_parts — that method returns
// immediately in the original ("analyzer is still experimental... skip for
// now") and is specific to ArangoDB's search subsystem, which CouchDB has
// no equivalent of, so it is not carried over here.
package graphidx

import (
	"context"

	"github.com/vlaanderen-mow/amsync/common"
	"github.com/vlaanderen-mow/amsync/db"
)

// Builder runs the index and graph declarations against a Storage Adapter.
type Builder struct {
	adapter  *db.Adapter
	registry *db.GraphRegistry
}

// New returns a Builder over adapter, declaring graphs into registry as it
// runs; the registry records legal endpoint collections and is not read
// by any other component.
func New(adapter *db.Adapter, registry *db.GraphRegistry) *Builder {
	return &Builder{adapter: adapter, registry: registry}
}

// Run creates every declared index and graph. It is idempotent: CouchDB
// treats re-creating an identical index definition as a no-op.
func (b *Builder) Run(ctx context.Context) error {
	if err := b.createIndexes(ctx); err != nil {
		return err
	}
	b.declareGraphs()
	return nil
}

func (b *Builder) createIndexes(ctx context.Context) error {
	for _, spec := range indexSpecs {
		if err := b.adapter.CreateIndex(ctx, spec.collection, db.Index{
			Name:   spec.name,
			Fields: spec.fields,
			Sparse: spec.sparse,
		}); err != nil {
			return err
		}
		common.Logger.WithField("index", spec.name).WithField("collection", spec.collection).Info("created persistent index")
	}
	return nil
}

type indexSpec struct {
	collection string
	name       string
	fields     []string
	sparse     bool
}

var indexSpecs = []indexSpec{
	{collection: "assets", name: "idx_assettype_key", fields: []string{"assettype_key"}},
	{collection: "assets", name: "idx_toezichter_key", fields: []string{"toezichter_key"}},
	{collection: "assets", name: "idx_toezichtgroep_key", fields: []string{"toezichtgroep_key"}},
	{collection: "assets", name: "idx_beheerder_key", fields: []string{"beheerder_key"}},
	{collection: "assets", name: "idx_naampad_parts", fields: []string{"naampad_parts"}, sparse: true},
	{collection: "assets", name: "idx_assettype_active", fields: []string{"assettype_key", "AIMDBStatus_isActief"}},
	{collection: "assets", name: "idx_assettype_active_toestand", fields: []string{"assettype_key", "AIMDBStatus_isActief", "toestand"}},

	{collection: "assetrelaties", name: "idx_relatietype_key", fields: []string{"relatietype_key"}},
	{collection: "assetrelaties", name: "idx_relatietype_active", fields: []string{"relatietype_key", "AIMDBStatus_isActief"}},

	{collection: "assettypes", name: "idx_short_uri", fields: []string{"short_uri"}},
	{collection: "relatietypes", name: "idx_short", fields: []string{"short"}},

	{collection: "betrokkenerelaties", name: "idx_from_role", fields: []string{"_from", "role"}},
	{collection: "betrokkenerelaties", name: "idx_to_role", fields: []string{"_to", "role"}},

	{collection: "vplankoppelingen", name: "idx_asset_key", fields: []string{"asset_key"}},
}

// declareGraphs records the legal endpoint collections for each primary
// edge collection (spec §4.8: "named graphs for the primary edge
// collections, each declaring its legal _from/_to vertex collections").
func (b *Builder) declareGraphs() {
	b.registry.Define(db.GraphDefinition{
		Name:            "assetrelaties_graph",
		EdgeCollection:  "assetrelaties",
		FromCollections: []string{"assets"},
		ToCollections:   []string{"assets"},
	})
	b.registry.Define(db.GraphDefinition{
		Name:            "betrokkenerelaties_graph",
		EdgeCollection:  "betrokkenerelaties",
		FromCollections: []string{"assets", "agents"},
		ToCollections:   []string{"agents"},
	})
	b.registry.Define(db.GraphDefinition{
		Name:            "bestekkoppelingen_graph",
		EdgeCollection:  "bestekkoppelingen",
		FromCollections: []string{"assets"},
		ToCollections:   []string{"bestekken"},
	})
	b.registry.Define(db.GraphDefinition{
		Name:            "aansluitingen_graph",
		EdgeCollection:  "aansluitingen",
		FromCollections: []string{"assets"},
		ToCollections:   []string{"aansluitingrefs"},
	})
}
