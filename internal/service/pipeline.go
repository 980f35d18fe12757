package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/domain"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/telemetry"
)

// Settings carries the per-request knobs exposed by the UI.
type Settings struct {
	Model       string
	SearchDepth int
	Creativity  float32
	// Ticker, when set, restricts every retrieval call in the run to chunks
	// whose company metadata equals it. Global to the run, never per sub-query.
	Ticker string
}

// PipelineDecomposer is stage one of the pipeline.
type PipelineDecomposer interface {
	Decompose(ctx context.Context, query, model string) []string
}

// PipelineRetriever is stage two of the pipeline.
type PipelineRetriever interface {
	RetrieveAll(ctx context.Context, subQueries []string, depth int, companyFilter string) (domain.EvidencePool, []domain.SourceRecord, error)
}

// PipelineSynthesizer is stage three of the pipeline.
type PipelineSynthesizer interface {
	Synthesize(ctx context.Context, query string, pool domain.EvidencePool, model string, creativity float32) (string, error)
}

// Pipeline sequences decomposition, retrieval and synthesis for one user
// question and assembles the trace and final answer. Each run is
// self-contained; no state is shared between runs.
type Pipeline struct {
	decomposer  PipelineDecomposer
	retriever   PipelineRetriever
	synthesizer PipelineSynthesizer
	// stageTimeout bounds each stage's external round-trips. Zero disables
	// the deadline.
	stageTimeout time.Duration
}

func NewPipeline(decomposer PipelineDecomposer, retriever PipelineRetriever, synthesizer PipelineSynthesizer) *Pipeline {
	return &Pipeline{
		decomposer:  decomposer,
		retriever:   retriever,
		synthesizer: synthesizer,
	}
}

func NewPipelineWithTimeout(decomposer PipelineDecomposer, retriever PipelineRetriever, synthesizer PipelineSynthesizer, stageTimeout time.Duration) *Pipeline {
	p := NewPipeline(decomposer, retriever, synthesizer)
	p.stageTimeout = stageTimeout
	return p
}

// Run executes the full pipeline for one question. Decomposition failures
// degrade internally and never abort the run; retrieval and synthesis
// failures abort it, with the failed stage visible in the returned result's
// trace (the error carries the partial trace only through the result being
// nil; callers get the error).
func (p *Pipeline) Run(ctx context.Context, query string, settings Settings) (*domain.AnswerResult, error) {
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	depth := settings.SearchDepth
	if depth <= 0 {
		return nil, domain.ErrInvalidSearchDepth
	}

	ctx, span := telemetry.StartSpan(ctx, "Pipeline.Run", telemetry.SpanAttributes{
		Ticker:    settings.Ticker,
		Model:     settings.Model,
		Operation: "analyze",
	})
	defer span.End()

	trace := domain.Trace{}

	// Stage 1: decomposition. Degrades, never fails.
	decomposeStep := domain.TraceStep{
		ID:          "1",
		Title:       "Query Decomposition",
		Description: "Breaking down complex query into retrieval sub-tasks",
		Status:      domain.StepStatusRunning,
		Substeps:    []string{},
	}

	stageCtx, cancel := p.stageContext(ctx)
	subQueries := p.decomposer.Decompose(stageCtx, query, settings.Model)
	cancel()

	decomposeStep.Substeps = subQueries
	decomposeStep.Status = domain.StepStatusComplete
	trace.Steps = append(trace.Steps, decomposeStep)

	// Stage 2: retrieval. Failures abort the run.
	retrieveStep := domain.TraceStep{
		ID:          "2",
		Title:       "Document Retrieval",
		Description: fmt.Sprintf("Searching SEC EDGAR database (Depth: %d)", depth),
		Status:      domain.StepStatusRunning,
		Substeps:    []string{},
	}

	stageCtx, cancel = p.stageContext(ctx)
	pool, sources, err := p.retriever.RetrieveAll(stageCtx, subQueries, depth, settings.Ticker)
	cancel()
	if err != nil {
		span.SetError(err)
		retrieveStep.Status = domain.StepStatusFailed
		trace.Steps = append(trace.Steps, retrieveStep)
		return nil, err
	}

	for _, q := range subQueries {
		retrieveStep.Substeps = append(retrieveStep.Substeps, "Executed search: "+q)
	}
	retrieveStep.Status = domain.StepStatusComplete
	trace.Steps = append(trace.Steps, retrieveStep)

	// Stage 3: synthesis. Failures abort the run.
	synthesizeStep := domain.TraceStep{
		ID:          "3",
		Title:       "Synthesis & Validation",
		Description: "Cross-referencing sources and generating final answer",
		Status:      domain.StepStatusRunning,
		Substeps:    []string{fmt.Sprintf("Generating answer with %s", settings.Model)},
	}

	stageCtx, cancel = p.stageContext(ctx)
	answer, err := p.synthesizer.Synthesize(stageCtx, query, pool, settings.Model, settings.Creativity)
	cancel()
	if err != nil {
		span.SetError(err)
		synthesizeStep.Status = domain.StepStatusFailed
		trace.Steps = append(trace.Steps, synthesizeStep)
		return nil, err
	}

	synthesizeStep.Status = domain.StepStatusComplete
	trace.Steps = append(trace.Steps, synthesizeStep)
	trace.IsComplete = true

	return &domain.AnswerResult{
		Reasoning: answer,
		Sources:   sources,
		Trace:     trace,
	}, nil
}

func (p *Pipeline) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.stageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.stageTimeout)
}
