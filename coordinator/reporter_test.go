package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunPhaseReporter_NilIsNoOp(t *testing.T) {
	var r *RunPhaseReporter
	assert.NotPanics(t, func() {
		r.StepStarted("1_initial_fill")
		r.StepCompleted("1_initial_fill", "done")
		r.Completed()
		r.Failed("boom")
	})
}

func TestRunPhaseReporter_StepStartedSendsStepStartedAndProgress(t *testing.T) {
	c := New(DefaultConfig())
	r := NewRunPhaseReporter(c, "run-1")

	r.StepStarted("0_create_db")

	first := <-c.sendChan
	assert.Equal(t, MessageTypeStepStarted, first.Type)
	assert.Equal(t, "run-1", first.RunID)

	second := <-c.sendChan
	assert.Equal(t, MessageTypeProgress, second.Type)
}

func TestRunPhaseReporter_StepCompletedSendsCheckpoint(t *testing.T) {
	c := New(DefaultConfig())
	r := NewRunPhaseReporter(c, "run-1")

	r.StepCompleted("0_create_db", "schema provisioned")

	msg := <-c.sendChan
	assert.Equal(t, MessageTypeStepCompleted, msg.Type)
	assert.Equal(t, "0_create_db", msg.Payload["step"])
	assert.Equal(t, "schema provisioned", msg.Payload["reason"])
}

func TestRunPhaseReporter_Completed(t *testing.T) {
	c := New(DefaultConfig())
	r := NewRunPhaseReporter(c, "run-1")

	r.Completed()

	msg := <-c.sendChan
	assert.Equal(t, MessageTypeRunCompleted, msg.Type)
	assert.Equal(t, "run-1", msg.RunID)
}

func TestRunPhaseReporter_FailedReportsLastStartedStep(t *testing.T) {
	c := New(DefaultConfig())
	r := NewRunPhaseReporter(c, "run-1")

	r.StepStarted("0_create_db")
	<-c.sendChan // step_started
	<-c.sendChan // progress

	r.Failed("upstream unreachable")

	msg := <-c.sendChan
	assert.Equal(t, MessageTypeRunFailed, msg.Type)
	assert.Equal(t, "0_create_db", msg.Payload["step"])
	assert.Equal(t, "upstream unreachable", msg.Payload["error"])
}
