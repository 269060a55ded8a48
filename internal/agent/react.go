// Package agent implements the reason-act control loop, its action grammar,
// and the two-phase collect-then-report pipeline built on top of it.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stratos/coinsage/internal/llm"
	"github.com/stratos/coinsage/internal/tools"
)

// Model is the synchronous completion capability the loop requires.
type Model interface {
	Invoke(ctx context.Context, messages []llm.Message) (string, error)
}

// Reporter synthesizes the final answer from collected evidence in two-phase
// mode.
type Reporter interface {
	Generate(ctx context.Context, in ReportInput) string
}

// ReportInput carries everything the report phase needs from the collection
// phase.
type ReportInput struct {
	Question       string
	Observations   string // serialized action/observation transcript
	RecentDialogue string
	CurrentDate    string
	History        []Message // full conversation, for prior-prediction recall
}

// Mode selects how a Finish directive is interpreted.
type Mode int

const (
	// SinglePhase treats the Finish payload as the final answer.
	SinglePhase Mode = iota
	// TwoPhase treats Finish as end-of-collection; the payload is discarded
	// and a Reporter writes the answer from the observations.
	TwoPhase
)

// StepObservation records one executed loop step.
type StepObservation struct {
	Action      string // raw action text; "" for corrective observations
	Observation string
}

// Fixed terminal messages.
const (
	processingFailureMessage = "Sorry, something went wrong while processing the model response and I could not complete this task."
	budgetExhaustedMessage   = "Sorry, I could not complete this task within the allowed number of steps."
	invalidActionObservation = "invalid action format, expected tool_name[input] or Finish[answer]; check and retry"
)

const (
	defaultMaxSteps   = 5
	defaultRecent     = 3
	dialogueClipRunes = 800
	dateLayout        = "2006-01-02 15:04"
)

// Config configures a ReActAgent. Model is required; Reporter is required in
// TwoPhase mode. A nil Classifier disables the domain pre-check.
type Config struct {
	Name        string
	MaxSteps    int
	Mode        Mode
	RecentTurns int

	Model      Model
	Tools      *tools.Registry
	Reporter   Reporter
	Classifier Classifier
	Logger     *zap.Logger
	Now        func() time.Time
}

// ReActAgent runs the reason-act loop: prompt the model, parse its directive,
// dispatch tools, and feed observations back until Finish or the step budget
// runs out. Not safe for concurrent use; one instance per session.
type ReActAgent struct {
	name        string
	maxSteps    int
	mode        Mode
	recentTurns int

	model      Model
	registry   *tools.Registry
	reporter   Reporter
	classifier Classifier
	logger     *zap.Logger
	now        func() time.Time

	history *History
	steps   []StepObservation
}

// NewReAct validates the configuration and builds an agent. All capability
// requirements are checked here, not at call time.
func NewReAct(cfg Config) (*ReActAgent, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("agent %q: model is required", cfg.Name)
	}
	if cfg.Mode == TwoPhase && cfg.Reporter == nil {
		return nil, fmt.Errorf("agent %q: two-phase mode requires a reporter", cfg.Name)
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = defaultMaxSteps
	}
	if cfg.RecentTurns <= 0 {
		cfg.RecentTurns = defaultRecent
	}
	if cfg.Tools == nil {
		cfg.Tools = tools.NewRegistry(cfg.Logger)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ReActAgent{
		name:        cfg.Name,
		maxSteps:    cfg.MaxSteps,
		mode:        cfg.Mode,
		recentTurns: cfg.RecentTurns,
		model:       cfg.Model,
		registry:    cfg.Tools,
		reporter:    cfg.Reporter,
		classifier:  cfg.Classifier,
		logger:      cfg.Logger,
		now:         cfg.Now,
		history:     &History{},
	}, nil
}

// Name returns the agent name.
func (a *ReActAgent) Name() string { return a.name }

// History exposes the conversation log for the owning session.
func (a *ReActAgent) History() *History { return a.history }

// Tools exposes the registry for inspection.
func (a *ReActAgent) Tools() *tools.Registry { return a.registry }

type loopOutcome int

const (
	outcomeFinish loopOutcome = iota
	outcomeNoResponse
	outcomeNoAction
	outcomeBudget
)

// Run executes one task. Every terminal path, refusal included, appends
// exactly one user message and one assistant message to the history.
func (a *ReActAgent) Run(ctx context.Context, question string) string {
	recentDialogue := a.history.RecentDialogue(a.recentTurns, dialogueClipRunes)

	if a.mode == TwoPhase && a.classifier != nil {
		if ok, _ := a.classifier.Classify(question, recentDialogue); !ok {
			a.logger.Info("question refused by domain pre-check",
				zap.String("agent", a.name))
			a.finishTurn(question, RefusalMessage)
			return RefusalMessage
		}
	}

	outcome, thought, payload := a.loop(ctx, question, recentDialogue)
	currentDate := a.now().Format(dateLayout)

	var answer string
	switch outcome {
	case outcomeFinish:
		if a.mode == TwoPhase {
			// The Finish payload is only a collection-done marker here.
			answer = a.reporter.Generate(ctx, ReportInput{
				Question:       question,
				Observations:   a.Observations(),
				RecentDialogue: recentDialogue,
				CurrentDate:    currentDate,
				History:        a.history.Messages(),
			})
		} else {
			answer = payload
			if answer == "" {
				answer = thought
			}
		}
	case outcomeNoResponse, outcomeNoAction:
		answer = processingFailureMessage
	case outcomeBudget:
		if a.mode == TwoPhase && len(a.steps) > 0 {
			a.logger.Info("step budget exhausted, generating report from partial evidence",
				zap.String("agent", a.name), zap.Int("steps", len(a.steps)))
			answer = a.reporter.Generate(ctx, ReportInput{
				Question:       question,
				Observations:   a.Observations(),
				RecentDialogue: recentDialogue,
				CurrentDate:    currentDate,
				History:        a.history.Messages(),
			})
		} else {
			answer = budgetExhaustedMessage
		}
	}

	a.finishTurn(question, answer)
	return answer
}

// RefusalError marks a question rejected by the domain pre-check. The message
// is the user-facing refusal text.
type RefusalError struct {
	Message string
}

func (e *RefusalError) Error() string { return e.Message }

// CollectOnly runs the evidence-collection loop and returns the serialized
// observations without touching the conversation history; the caller owns the
// turn. Out-of-domain questions return a *RefusalError.
func (a *ReActAgent) CollectOnly(ctx context.Context, question string) (string, error) {
	recentDialogue := a.history.RecentDialogue(a.recentTurns, dialogueClipRunes)

	if a.classifier != nil {
		if ok, _ := a.classifier.Classify(question, recentDialogue); !ok {
			return "", &RefusalError{Message: RefusalMessage}
		}
	}

	outcome, _, _ := a.loop(ctx, question, recentDialogue)
	switch outcome {
	case outcomeFinish:
		return a.Observations(), nil
	case outcomeBudget:
		if len(a.steps) > 0 {
			return a.Observations(), nil
		}
		return "", fmt.Errorf("step budget exhausted with no evidence collected")
	default:
		return "", fmt.Errorf("model response could not be processed")
	}
}

// loop runs up to maxSteps prompt/parse/dispatch iterations and reports how
// they ended. Observations accumulate in a.steps.
func (a *ReActAgent) loop(ctx context.Context, question, recentDialogue string) (outcome loopOutcome, thought, payload string) {
	a.steps = nil
	template := defaultReactPrompt
	if a.mode == TwoPhase {
		template = collectorPrompt
	}

	for step := 1; step <= a.maxSteps; step++ {
		prompt := renderPrompt(template, map[string]string{
			"TOOLS":           a.registry.Describe(),
			"QUESTION":        question,
			"HISTORY":         a.Observations(),
			"CURRENT_DATE":    a.now().Format(dateLayout),
			"RECENT_DIALOGUE": recentDialogue,
		})
		if step == a.maxSteps {
			prompt += forceFinishInstruction
		}

		raw, err := a.model.Invoke(ctx, llm.UserMessage(prompt))
		if err != nil || strings.TrimSpace(raw) == "" {
			a.logger.Error("model returned no usable response",
				zap.String("agent", a.name), zap.Int("step", step), zap.Error(err))
			return outcomeNoResponse, "", ""
		}

		resp := Parse(raw)
		if resp.Thought != "" {
			a.logger.Debug("thought", zap.String("agent", a.name), zap.String("thought", resp.Thought))
		}

		switch resp.Directive.Kind {
		case DirectiveNone:
			a.logger.Warn("response carried no action line, terminating",
				zap.String("agent", a.name), zap.Int("step", step))
			return outcomeNoAction, resp.Thought, ""

		case DirectiveFinish:
			return outcomeFinish, resp.Thought, resp.Directive.Payload

		case DirectiveInvalid:
			a.steps = append(a.steps, StepObservation{
				Observation: invalidActionObservation,
			})

		case DirectiveToolCall:
			a.logger.Info("tool call",
				zap.String("agent", a.name),
				zap.String("tool", resp.Directive.Tool))
			obs := a.registry.Execute(ctx, resp.Directive.Tool, resp.Directive.Input)
			a.steps = append(a.steps, StepObservation{
				Action:      resp.Action,
				Observation: obs,
			})
		}
	}
	return outcomeBudget, "", ""
}

// Observations serializes the current run's steps for prompt injection and
// report generation. Corrective observations have no Action line.
func (a *ReActAgent) Observations() string {
	var lines []string
	for _, s := range a.steps {
		if s.Action != "" {
			lines = append(lines, "Action: "+s.Action)
		}
		lines = append(lines, "Observation: "+s.Observation)
	}
	return strings.Join(lines, "\n")
}

// Steps returns a copy of the current run's step records.
func (a *ReActAgent) Steps() []StepObservation {
	out := make([]StepObservation, len(a.steps))
	copy(out, a.steps)
	return out
}

func (a *ReActAgent) finishTurn(question, answer string) {
	a.history.Add(RoleUser, question)
	a.history.Add(RoleAssistant, answer)
}
