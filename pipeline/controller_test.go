package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vlaanderen-mow/amsync/feed"
)

func TestController_AnnounceToleratesNilPublisher(t *testing.T) {
	c := &Controller{publisher: nil}
	assert.NotPanics(t, func() {
		c.announce(feed.Event{Kind: "step_started", Step: "1_initial_fill"})
	})
}

func TestController_ReporterToleratesNilReporter(t *testing.T) {
	c := &Controller{reporter: nil}
	assert.NotPanics(t, func() {
		c.reporter.StepStarted("1_initial_fill")
		c.reporter.StepCompleted("1_initial_fill", "done")
		c.reporter.Completed()
		c.reporter.Failed("boom")
	})
}
