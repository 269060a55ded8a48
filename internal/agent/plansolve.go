package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/stratos/coinsage/internal/llm"
	"github.com/stratos/coinsage/internal/tools"
)

// planFailedMessage is the fixed answer when no usable plan can be produced.
const planFailedMessage = "Could not produce a valid action plan; task aborted."

// Planner turns a task into an ordered list of executable steps.
type Planner struct {
	model  Model
	logger *zap.Logger
}

// NewPlanner builds a planner over the model.
func NewPlanner(model Model, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{model: model, logger: logger}
}

// Plan asks the model for a step list. A response that does not contain a
// valid JSON array of strings yields an empty plan, never an invented one.
func (p *Planner) Plan(ctx context.Context, question, toolsDesc string) []string {
	prompt := renderPrompt(plannerPrompt, map[string]string{
		"QUESTION": question,
		"TOOLS":    toolsDesc,
	})
	raw, err := p.model.Invoke(ctx, llm.UserMessage(prompt))
	if err != nil {
		p.logger.Error("planning call failed", zap.Error(err))
		return nil
	}
	steps, err := parsePlan(raw)
	if err != nil {
		p.logger.Warn("could not parse plan", zap.Error(err), zap.String("response", raw))
		return nil
	}
	return steps
}

// parsePlan extracts a JSON array of strings from a model response. The array
// may be bare or inside a fenced code block; anything else is an error.
func parsePlan(raw string) ([]string, error) {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		// Skip a language tag like "json" on the fence line.
		if nl := strings.Index(s, "\n"); nl >= 0 {
			s = s[nl+1:]
		}
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	}
	open := strings.Index(s, "[")
	last := strings.LastIndex(s, "]")
	if open < 0 || last <= open {
		return nil, fmt.Errorf("no array found in plan response")
	}
	var steps []string
	if err := json.Unmarshal([]byte(s[open:last+1]), &steps); err != nil {
		return nil, fmt.Errorf("plan is not a JSON array of strings: %w", err)
	}
	return steps, nil
}

// toolCallPattern matches embedded [TOOL_CALL:name:params] directives.
var toolCallPattern = regexp.MustCompile(`\[TOOL_CALL:([^:\]]+):([^\]]+)\]`)

type toolCall struct {
	name   string
	params string
}

// parseToolCalls returns every directive in the text, in order.
func parseToolCalls(text string) []toolCall {
	var calls []toolCall
	for _, m := range toolCallPattern.FindAllStringSubmatch(text, -1) {
		calls = append(calls, toolCall{
			name:   strings.TrimSpace(m[1]),
			params: strings.TrimSpace(m[2]),
		})
	}
	return calls
}

// maxToolItersPerStep bounds the tool round-trips within one plan step.
const maxToolItersPerStep = 5

// Executor works through a plan step by step, resolving embedded tool
// directives against the registry.
type Executor struct {
	model    Model
	registry *tools.Registry
	logger   *zap.Logger
}

// NewExecutor builds an executor. A nil registry disables tool resolution;
// directives then observe an error text instead.
func NewExecutor(model Model, registry *tools.Registry, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{model: model, registry: registry, logger: logger}
}

// Execute runs every plan step in order and returns the last step's result as
// the final answer.
func (e *Executor) Execute(ctx context.Context, question string, plan []string) string {
	var history strings.Builder
	var finalAnswer string

	for i, step := range plan {
		e.logger.Info("executing plan step",
			zap.Int("step", i+1), zap.Int("total", len(plan)), zap.String("task", step))
		result := e.runStep(ctx, question, plan, history.String(), step)
		fmt.Fprintf(&history, "Step %d: %s\nResult: %s\n\n", i+1, step, result)
		finalAnswer = result
	}
	return finalAnswer
}

// runStep drives one step, looping over tool round-trips until the model
// responds without a directive or the iteration bound is hit.
func (e *Executor) runStep(ctx context.Context, question string, plan []string, completed, step string) string {
	toolsDesc := tools.NoToolsDescription
	if e.registry != nil {
		toolsDesc = e.registry.Describe()
	}
	prompt := renderPrompt(executorPrompt, map[string]string{
		"QUESTION":  question,
		"PLAN":      strings.Join(plan, "\n"),
		"COMPLETED": orNone(completed),
		"STEP":      step,
		"TOOLS":     toolsDesc,
	})
	messages := llm.UserMessage(prompt)

	var response string
	for iter := 0; iter < maxToolItersPerStep; iter++ {
		raw, err := e.model.Invoke(ctx, messages)
		if err != nil {
			e.logger.Error("step execution call failed", zap.Error(err))
			return fmt.Sprintf("error: step execution failed: %v", err)
		}
		response = strings.TrimSpace(raw)

		calls := parseToolCalls(response)
		if len(calls) == 0 {
			return response
		}

		var results []string
		for _, call := range calls {
			var obs string
			if e.registry == nil {
				obs = fmt.Sprintf("error: no tool registry configured, cannot run %q", call.name)
			} else {
				obs = e.registry.Execute(ctx, call.name, call.params)
			}
			results = append(results, fmt.Sprintf("Tool %s result:\n%s", call.name, obs))
		}
		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: response},
			llm.Message{Role: llm.RoleUser, Content: "Observation:\n" +
				strings.Join(results, "\n\n") +
				"\n\nUse these tool results to complete the current step and state its final result."},
		)
	}
	return response
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}

// PlanSolveConfig configures a PlanSolveAgent. Model is required.
type PlanSolveConfig struct {
	Name   string
	Model  Model
	Tools  *tools.Registry
	Logger *zap.Logger
}

// PlanSolveAgent decomposes a task into a plan and executes it step by step.
// Suited to multi-hop questions where one reason-act loop tends to wander.
type PlanSolveAgent struct {
	name     string
	planner  *Planner
	executor *Executor
	registry *tools.Registry
	history  *History
	logger   *zap.Logger
}

// NewPlanSolve validates the configuration and builds an agent.
func NewPlanSolve(cfg PlanSolveConfig) (*PlanSolveAgent, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("agent %q: model is required", cfg.Name)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &PlanSolveAgent{
		name:     cfg.Name,
		planner:  NewPlanner(cfg.Model, cfg.Logger),
		executor: NewExecutor(cfg.Model, cfg.Tools, cfg.Logger),
		registry: cfg.Tools,
		history:  &History{},
		logger:   cfg.Logger,
	}, nil
}

// Name returns the agent name.
func (a *PlanSolveAgent) Name() string { return a.name }

// History exposes the conversation log for the owning session.
func (a *PlanSolveAgent) History() *History { return a.history }

// Run plans and then executes the task. An empty plan terminates the task
// with a fixed failure answer. Every terminal path appends exactly one user
// message and one assistant message to the history.
func (a *PlanSolveAgent) Run(ctx context.Context, question string) string {
	toolsDesc := tools.NoToolsDescription
	if a.registry != nil {
		toolsDesc = a.registry.Describe()
	}

	plan := a.planner.Plan(ctx, question, toolsDesc)
	if len(plan) == 0 {
		a.history.Add(RoleUser, question)
		a.history.Add(RoleAssistant, planFailedMessage)
		return planFailedMessage
	}
	a.logger.Info("plan generated", zap.String("agent", a.name), zap.Int("steps", len(plan)))

	answer := a.executor.Execute(ctx, question, plan)
	a.history.Add(RoleUser, question)
	a.history.Add(RoleAssistant, answer)
	return answer
}
