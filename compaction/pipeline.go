package compaction

import (
	"sort"

	"github.com/agentctx/agentctx/types"
)

// Logger interface for compaction diagnostics.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a no-op implementation of Logger.
type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any) {}
func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Warn(msg string, args ...any)  {}
func (noopLogger) Error(msg string, args ...any) {}

// Pipeline holds the registered passes and runs the ones whose threshold the
// current token budget ratio has reached, cheapest first.
//
// Registration sorts; Run only reads. The pipeline holds no per-conversation
// state, so a single Pipeline may serve many conversations as long as each
// conversation's turns are processed sequentially.
type Pipeline struct {
	passes []Pass
	logger Logger
}

// NewPipeline creates an empty pipeline. A nil logger disables diagnostics.
func NewPipeline(logger Logger) *Pipeline {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Pipeline{logger: logger}
}

// Register adds a pass and re-sorts the registry ascending by threshold.
// The sort is stable: passes sharing a threshold keep registration order.
func (p *Pipeline) Register(pass Pass) error {
	if pass == nil {
		return ErrNilPass
	}
	if pass.Name() == "" {
		return ErrInvalidPass
	}
	if t := pass.Threshold(); t < 0 || t > 1 {
		return ErrInvalidPass
	}

	p.passes = append(p.passes, pass)
	sort.SliceStable(p.passes, func(i, j int) bool {
		return p.passes[i].Threshold() < p.passes[j].Threshold()
	})
	return nil
}

// Passes returns the names of registered passes in escalation order.
func (p *Pipeline) Passes() []string {
	names := make([]string, len(p.passes))
	for i, pass := range p.passes {
		names[i] = pass.Name()
	}
	return names
}

// Run threads the messages through every pass whose threshold is at or below
// the current token budget ratio, in ascending-threshold order, and merges
// their reports. When no pass activates the input slice is returned as-is
// with an empty report.
func (p *Pipeline) Run(messages []*types.Message, ctx Context) Result {
	ratio := ctx.Ratio()

	var selected []Pass
	for _, pass := range p.passes {
		if pass.Threshold() <= ratio {
			selected = append(selected, pass)
		}
	}
	if len(selected) == 0 {
		return Result{Messages: messages}
	}

	out := messages
	var merged Report
	for _, pass := range selected {
		res := pass.Compact(out, ctx)
		out = res.Messages
		merged.PassesRun = append(merged.PassesRun, res.Report.PassesRun...)
		merged.Entries = append(merged.Entries, res.Report.Entries...)
		merged.EstimatedTokensSaved += res.Report.EstimatedTokensSaved
	}

	if len(merged.Entries) > 0 {
		p.logger.Info("compacted tool results",
			"ratio", ratio,
			"passes", merged.PassesRun,
			"entries", len(merged.Entries),
			"estimated_tokens_saved", merged.EstimatedTokensSaved,
		)
	}

	return Result{Messages: out, Report: merged}
}
