package coordinator

// RunPhaseReporter reports a single pipeline run's step-by-step progress to
// when-v3. A nil *RunPhaseReporter is safe to call every method on — it
// becomes a no-op, so wiring one into pipeline.Controller is optional.
type RunPhaseReporter struct {
	coordinator *Coordinator
	runID       string
	currentStep string
}

// NewRunPhaseReporter returns a reporter for runID, reporting through c.
func NewRunPhaseReporter(c *Coordinator, runID string) *RunPhaseReporter {
	if c.runID == "" {
		c.runID = runID
	}
	return &RunPhaseReporter{coordinator: c, runID: runID}
}

// StepStarted announces that step has begun.
func (r *RunPhaseReporter) StepStarted(step string) {
	if r == nil {
		return
	}
	r.currentStep = step
	r.coordinator.SendStepStarted(step)
	r.coordinator.SendProgress(step, 0, "step started")
}

// StepCompleted announces that step finished and its results are durably
// recorded behind the state.Store's step marker, so when-v3 can treat it as
// a resumable checkpoint (spec §4.9's step marker is the actual resume
// point; this call only mirrors that fact outward).
func (r *RunPhaseReporter) StepCompleted(step, reason string) {
	if r == nil {
		return
	}
	r.coordinator.SendStepCompleted(step, reason)
}

// Completed marks the run as finished successfully.
func (r *RunPhaseReporter) Completed() {
	if r == nil {
		return
	}
	r.coordinator.SendRunCompleted()
}

// Failed marks the run as failed with reason at whichever step was last
// announced as started.
func (r *RunPhaseReporter) Failed(reason string) {
	if r == nil {
		return
	}
	r.coordinator.SendRunFailed(r.currentStep, reason)
}
