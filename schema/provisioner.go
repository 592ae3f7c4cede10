// Package schema is the Schema Provisioner (spec §4.4): given an empty
// database it drops any leftover non-system collections, creates the full
// declared document and edge collection set, seeds feed markers, and
// advances the pipeline's step marker to INITIAL_FILL. If "params" already
// exists it skips the reset and only sets the step marker to INITIAL_FILL,
// matching original_source/CreateDBStep.py's has-collection guard.
package schema

import (
	"context"

	"github.com/vlaanderen-mow/amsync/common"
	"github.com/vlaanderen-mow/amsync/db"
	"github.com/vlaanderen-mow/amsync/state"
)

const paramsCollection = "params"

// DocumentCollections is the full declared set of document collections
// (spec §6), broader than the original's narrower initial bootstrap set —
// SPEC_FULL.md §12 treats spec.md's declared set as authoritative.
var DocumentCollections = []string{
	"params", "assets", "assettypes", "relatietypes", "agents",
	"toezichtgroepen", "identiteiten", "beheerders", "bestekken",
	"vplankoppelingen", "aansluitingrefs",
}

// EdgeCollections is the full declared set of primary edge collections.
// Derived per-relation-type collections are created by the Extra Fill
// Engine, not here, since they are rebuilt from scratch on every run.
var EdgeCollections = []string{
	"assetrelaties", "betrokkenerelaties", "bestekkoppelingen", "aansluitingen",
}

// FeedMarkerNames are the feed progress markers seeded at provisioning time
// (spec §4.4: "seeds the state store with default feed markers"), named
// after original_source/CreateDBStep.py's default_docs.
var FeedMarkerNames = []string{
	"feed_assetrelaties", "feed_betrokkenerelaties", "feed_agents", "feed_assets",
}

type feedMarker struct {
	ID        string      `json:"_id"`
	Page      int         `json:"page"`
	EventUUID interface{} `json:"event_uuid"`
}

// Provisioner runs the provisioning algorithm against a Storage Adapter and
// State Store.
type Provisioner struct {
	adapter *db.Adapter
	store   *state.Store
}

// New returns a Provisioner over adapter and store.
func New(adapter *db.Adapter, store *state.Store) *Provisioner {
	return &Provisioner{adapter: adapter, store: store}
}

// Run executes the provisioning algorithm. It is safe to call on every
// pipeline start; it only resets collections when "params" is missing.
func (p *Provisioner) Run(ctx context.Context) error {
	exists, err := p.adapter.CollectionExists(ctx, paramsCollection)
	if err != nil {
		return err
	}
	if exists {
		common.Logger.Info("params collection exists, schema provisioning is a no-op")
		return p.store.SetStep(ctx, state.StepInitialFill)
	}

	common.Logger.Warn("params collection not found, resetting database")
	if err := p.dropAllCollections(ctx); err != nil {
		return err
	}
	if err := p.createDeclaredCollections(ctx); err != nil {
		return err
	}
	if err := p.seedFeedMarkers(ctx); err != nil {
		return err
	}

	common.Logger.Info("database setup complete, advancing to INITIAL_FILL")
	return p.store.SetStep(ctx, state.StepInitialFill)
}

func (p *Provisioner) dropAllCollections(ctx context.Context) error {
	existing, err := p.adapter.ListCollections(ctx)
	if err != nil {
		return err
	}
	for _, name := range existing {
		if err := p.adapter.DropCollection(ctx, name); err != nil {
			return err
		}
		common.Logger.WithField("collection", name).Info("dropped collection")
	}
	return nil
}

func (p *Provisioner) createDeclaredCollections(ctx context.Context) error {
	for _, name := range DocumentCollections {
		if err := p.adapter.EnsureCollection(ctx, name); err != nil {
			return err
		}
		common.Logger.WithField("collection", name).Info("created document collection")
	}
	for _, name := range EdgeCollections {
		if err := p.adapter.EnsureCollection(ctx, name); err != nil {
			return err
		}
		common.Logger.WithField("collection", name).Info("created edge collection")
	}
	return nil
}

func (p *Provisioner) seedFeedMarkers(ctx context.Context) error {
	for _, name := range FeedMarkerNames {
		doc := feedMarker{ID: name, Page: -1, EventUUID: nil}
		if _, err := p.adapter.Put(ctx, paramsCollection, name, doc); err != nil {
			return common.Wrap(common.ClassStorage, "seed feed marker "+name, err)
		}
		common.Logger.WithField("marker", name).Info("seeded default feed marker")
	}
	return nil
}
