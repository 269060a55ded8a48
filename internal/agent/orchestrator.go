package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Collector runs the evidence-collection phase without writing the
// conversation turn; the orchestrator owns the turn.
type Collector interface {
	CollectOnly(ctx context.Context, question string) (string, error)
	History() *History
}

// StreamingReporter extends Reporter with chunked output.
type StreamingReporter interface {
	Reporter
	GenerateStream(ctx context.Context, in ReportInput) <-chan string
}

// OrchestratorConfig configures an Orchestrator. Collector and Reporter are
// required.
type OrchestratorConfig struct {
	Name        string
	RecentTurns int

	Collector Collector
	Reporter  Reporter
	Logger    *zap.Logger
	Now       func() time.Time
}

// Orchestrator separates evidence collection from report generation so either
// stage can be replaced independently, and so the report stage can stream.
type Orchestrator struct {
	name        string
	recentTurns int
	collector   Collector
	reporter    Reporter
	streamer    StreamingReporter
	logger      *zap.Logger
	now         func() time.Time
}

// NewOrchestrator validates the configuration and builds an orchestrator. The
// reporter's streaming capability is resolved here, not at call time.
func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.Collector == nil {
		return nil, fmt.Errorf("orchestrator %q: collector is required", cfg.Name)
	}
	if cfg.Reporter == nil {
		return nil, fmt.Errorf("orchestrator %q: reporter is required", cfg.Name)
	}
	if cfg.RecentTurns <= 0 {
		cfg.RecentTurns = defaultRecent
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	streamer, _ := cfg.Reporter.(StreamingReporter)
	return &Orchestrator{
		name:        cfg.Name,
		recentTurns: cfg.RecentTurns,
		collector:   cfg.Collector,
		reporter:    cfg.Reporter,
		streamer:    streamer,
		logger:      cfg.Logger,
		now:         cfg.Now,
	}, nil
}

// Run collects evidence, generates the report, and records the turn. It
// always returns user-facing text.
func (o *Orchestrator) Run(ctx context.Context, question string) string {
	in, answer, done := o.collect(ctx, question)
	if !done {
		answer = o.reporter.Generate(ctx, in)
	}
	o.finishTurn(question, answer)
	return answer
}

// RunStream collects evidence, then streams the report chunk by chunk. The
// turn is recorded with the accumulated text once the stream ends. Without a
// streaming reporter the whole report arrives as one chunk.
func (o *Orchestrator) RunStream(ctx context.Context, question string) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)

		in, answer, done := o.collect(ctx, question)
		if done {
			o.finishTurn(question, answer)
			select {
			case out <- answer:
			case <-ctx.Done():
			}
			return
		}

		if o.streamer == nil {
			answer = o.reporter.Generate(ctx, in)
			o.finishTurn(question, answer)
			select {
			case out <- answer:
			case <-ctx.Done():
			}
			return
		}

		var acc strings.Builder
		for chunk := range o.streamer.GenerateStream(ctx, in) {
			acc.WriteString(chunk)
			select {
			case out <- chunk:
			case <-ctx.Done():
				o.finishTurn(question, strings.TrimSpace(acc.String()))
				return
			}
		}
		answer = strings.TrimSpace(acc.String())
		if answer == "" {
			answer = reportFailedMessage
		}
		o.finishTurn(question, answer)
	}()
	return out
}

// collect runs the collection phase. When done is true the answer is already
// final (refusal or collection failure) and no report should be generated.
func (o *Orchestrator) collect(ctx context.Context, question string) (in ReportInput, answer string, done bool) {
	history := o.collector.History()
	recentDialogue := history.RecentDialogue(o.recentTurns, dialogueClipRunes)

	observations, err := o.collector.CollectOnly(ctx, question)
	if err != nil {
		var refusal *RefusalError
		if errors.As(err, &refusal) {
			return ReportInput{}, refusal.Message, true
		}
		o.logger.Error("evidence collection failed",
			zap.String("orchestrator", o.name), zap.Error(err))
		return ReportInput{}, processingFailureMessage, true
	}

	return ReportInput{
		Question:       question,
		Observations:   observations,
		RecentDialogue: recentDialogue,
		CurrentDate:    o.now().Format(dateLayout),
		History:        history.Messages(),
	}, "", false
}

func (o *Orchestrator) finishTurn(question, answer string) {
	h := o.collector.History()
	h.Add(RoleUser, question)
	h.Add(RoleAssistant, answer)
}
