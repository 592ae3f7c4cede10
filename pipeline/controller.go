// Package pipeline is the Pipeline Controller (spec §4.9): a linear
// dispatcher from the pipeline's current step marker through provisioning,
// initial fill, extra fill, and index/graph building, grounded on
// original_source/DBPipelineController.py's run() method. Unlike the
// original, every step below INITIAL_FILL is a real implementation rather
// than a `pass` stub.
package pipeline

import (
	"context"
	"fmt"

	"github.com/vlaanderen-mow/amsync/common"
	"github.com/vlaanderen-mow/amsync/coordinator"
	"github.com/vlaanderen-mow/amsync/feed"
	"github.com/vlaanderen-mow/amsync/fill"
	"github.com/vlaanderen-mow/amsync/graphidx"
	"github.com/vlaanderen-mow/amsync/schema"
	"github.com/vlaanderen-mow/amsync/state"
)

// Controller runs the pipeline to completion from wherever its step marker
// currently sits.
type Controller struct {
	store        *state.Store
	provisioner  *schema.Provisioner
	initialFill  *fill.Engine
	extraFill    *fill.ExtraEngine
	indexBuilder *graphidx.Builder
	publisher    *feed.Publisher
	reporter     *coordinator.RunPhaseReporter
}

// New returns a Controller wired to every pipeline stage. publisher and
// reporter may both be nil — progress announcements and when-v3 phase
// reporting are then skipped entirely.
func New(
	store *state.Store,
	provisioner *schema.Provisioner,
	initialFill *fill.Engine,
	extraFill *fill.ExtraEngine,
	indexBuilder *graphidx.Builder,
	publisher *feed.Publisher,
	reporter *coordinator.RunPhaseReporter,
) *Controller {
	return &Controller{
		store:        store,
		provisioner:  provisioner,
		initialFill:  initialFill,
		extraFill:    extraFill,
		indexBuilder: indexBuilder,
		publisher:    publisher,
		reporter:     reporter,
	}
}

// Run dispatches from the current step through to FINAL_SYNC. A fresh
// database (no step marker yet) starts at provisioning; a database already
// past a given step skips straight to the next one, matching the original's
// current_step == INITIAL_FILL check rather than re-running earlier stages.
func (c *Controller) Run(ctx context.Context) error {
	step, ok, err := c.store.GetStep(ctx)
	if err != nil {
		return err
	}
	if !ok {
		common.Logger.Info("no step marker found, starting from schema provisioning")
		step = state.StepCreateDB
	} else {
		common.Logger.WithField("step", step).Info("resuming pipeline")
	}
	if err := c.runFrom(ctx, step); err != nil {
		c.reporter.Failed(err.Error())
		return err
	}
	c.reporter.Completed()
	return nil
}

func (c *Controller) runFrom(ctx context.Context, step state.Step) error {
	switch step {
	case state.StepCreateDB:
		c.announce(feed.Event{Kind: "step_started", Step: string(state.StepCreateDB)})
		c.reporter.StepStarted(string(state.StepCreateDB))
		if err := c.provisioner.Run(ctx); err != nil {
			return err
		}
		c.reporter.StepCompleted(string(state.StepCreateDB), "schema provisioned")
		fallthrough

	case state.StepInitialFill:
		c.announce(feed.Event{Kind: "step_started", Step: string(state.StepInitialFill)})
		c.reporter.StepStarted(string(state.StepInitialFill))
		if err := c.initialFill.Run(ctx); err != nil {
			return err
		}
		c.reporter.StepCompleted(string(state.StepInitialFill), "initial fill complete")
		fallthrough

	case state.StepExtraDataFill:
		c.announce(feed.Event{Kind: "step_started", Step: string(state.StepExtraDataFill)})
		c.reporter.StepStarted(string(state.StepExtraDataFill))
		if err := c.extraFill.Run(ctx); err != nil {
			return err
		}
		c.reporter.StepCompleted(string(state.StepExtraDataFill), "extra data fill complete")
		fallthrough

	case state.StepCreateIndexes:
		c.announce(feed.Event{Kind: "step_started", Step: string(state.StepCreateIndexes)})
		c.reporter.StepStarted(string(state.StepCreateIndexes))
		if err := c.indexBuilder.Run(ctx); err != nil {
			return err
		}
		if err := c.store.SetStep(ctx, state.StepApplyConstraints); err != nil {
			return err
		}
		c.reporter.StepCompleted(string(state.StepCreateIndexes), "indexes and named graphs created")
		fallthrough

	case state.StepApplyConstraints:
		c.announce(feed.Event{Kind: "step_started", Step: string(state.StepApplyConstraints)})
		c.reporter.StepStarted(string(state.StepApplyConstraints))
		if err := c.store.SweepFillMarkers(ctx); err != nil {
			return err
		}
		if err := c.store.SetStep(ctx, state.StepFinalSync); err != nil {
			return err
		}
		c.reporter.StepCompleted(string(state.StepApplyConstraints), "fill markers swept")
		fallthrough

	case state.StepFinalSync:
		c.announce(feed.Event{Kind: "step_started", Step: string(state.StepFinalSync)})
		c.reporter.StepStarted(string(state.StepFinalSync))
		common.Logger.Info("pipeline run complete")
		c.announce(feed.Event{Kind: "pipeline_complete"})
		return nil

	default:
		return fmt.Errorf("unknown pipeline step: %s", step)
	}
}

func (c *Controller) announce(event feed.Event) {
	c.publisher.Publish(event)
}
