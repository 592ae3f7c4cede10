// Package fill holds the Initial Fill Engine (spec §4.5) and Extra Fill
// Engine (spec §4.7): the pipeline's two post-provisioning enrichment
// passes. The hot path — assets ingestion via cursor paging, transform, and
// bulk upsert — lives here alongside the simpler reference-entity handlers.
package fill

import (
	"context"
	"time"

	"github.com/vlaanderen-mow/amsync/common"
	"github.com/vlaanderen-mow/amsync/state"
	"github.com/vlaanderen-mow/amsync/worker"
)

// Defaults mirrored from the original pipeline's tuning constants.
const (
	DefaultPageSize    = 1000
	MaxWorkers         = 8
	RetryDelay         = 30 * time.Second
	AssetChunkSize     = 1000
	BestekChunkSize    = 2000
	PipelineQueueDepth = 3
)

// ResourceFiller fills exactly one resource from its starting progress
// cursor to completion, advancing state as it goes. Implementations are
// registered per resource name in the Engine.
type ResourceFiller interface {
	Fill(ctx context.Context, resource string) error
}

// Engine is the Initial Fill Engine. Groups run sequentially; within a
// group, resources run concurrently (spec §4.5).
type Engine struct {
	store    *state.Store
	fillers  map[string]ResourceFiller
	groups   [][]string
}

// NewEngine returns an Engine that dispatches to filler per resource name.
// groups is the declared dependency ordering (spec §4.5: "group A =
// lookup-like resources... group B = assets, agents, asset-relations,
// betrokkene-relations").
func NewEngine(store *state.Store, fillers map[string]ResourceFiller, groups [][]string) *Engine {
	return &Engine{store: store, fillers: fillers, groups: groups}
}

// DefaultGroups is the grouping spec §4.5 describes.
var DefaultGroups = [][]string{
	{"assettypes", "relatietypes", "toezichtgroepen", "bestekken", "identiteiten", "beheerders"},
	{"assets", "agents", "assetrelaties", "betrokkenerelaties"},
}

// Run executes every group in order, then marks the pipeline's step as
// EXTRA_DATA_FILL.
func (e *Engine) Run(ctx context.Context) error {
	for _, group := range e.groups {
		if err := e.runGroup(ctx, group); err != nil {
			return err
		}
	}
	return e.store.SetStep(ctx, state.StepExtraDataFill)
}

func (e *Engine) runGroup(ctx context.Context, resources []string) error {
	tasks := make([]worker.Task, 0, len(resources))
	for _, resource := range resources {
		resource := resource
		filler, ok := e.fillers[resource]
		if !ok {
			common.Logger.WithField("resource", resource).Warn("no filler registered, skipping")
			continue
		}
		tasks = append(tasks, worker.Task{
			Name: resource,
			Run: func(ctx context.Context) error {
				return e.fillResource(ctx, resource, filler)
			},
		})
	}
	return worker.RunGroup(ctx, tasks, MaxWorkers, RetryDelay)
}

// fillResource implements the "fill_resource(r)" check from spec §4.5 step
// 1-2: skip entirely once a prior run has already completed this resource.
func (e *Engine) fillResource(ctx context.Context, resource string, filler ResourceFiller) error {
	progress, err := e.store.GetProgress(ctx, resource)
	if err != nil {
		return err
	}
	if !progress.Fill {
		return nil
	}
	return filler.Fill(ctx, resource)
}
