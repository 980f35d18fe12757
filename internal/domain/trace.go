package domain

// StepStatus is the lifecycle state of one pipeline stage.
type StepStatus string

const (
	StepStatusPending  StepStatus = "pending"
	StepStatusRunning  StepStatus = "running"
	StepStatusComplete StepStatus = "complete"
	StepStatusFailed   StepStatus = "failed"
)

// TraceStep is one named stage in the pipeline trace, with the human-readable
// description shown in the UI and any substeps recorded while it ran.
type TraceStep struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      StepStatus `json:"status"`
	Substeps    []string   `json:"substeps"`
}

// Trace is the ordered sequence of steps taken during one pipeline run.
type Trace struct {
	Steps      []TraceStep `json:"steps"`
	IsComplete bool        `json:"isComplete"`
}

// AnswerResult is the final output of one pipeline run: the synthesized
// answer, the deduplicated citation list and the trace of steps taken.
// Immutable after construction; request-scoped.
type AnswerResult struct {
	Reasoning string
	Sources   []SourceRecord
	Trace     Trace
}
