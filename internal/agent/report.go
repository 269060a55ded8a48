package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/stratos/coinsage/internal/llm"
)

// StreamingModel extends Model with token streaming.
type StreamingModel interface {
	Model
	InvokeStream(ctx context.Context, messages []llm.Message) (<-chan string, error)
}

// KnowledgeSource supplies reference text for the report prompt. Both methods
// return "" when nothing relevant is available.
type KnowledgeSource interface {
	// Methodology returns indicator-interpretation guidance for the query.
	Methodology(ctx context.Context, query string) string
	// Cases returns comparable historical market episodes for the query.
	Cases(ctx context.Context, query string) string
}

// Recaller retrieves remembered user context relevant to a query.
type Recaller interface {
	Recall(ctx context.Context, query string, limit int) (string, error)
}

// ProfileSummarizer renders a user's structured research preferences.
type ProfileSummarizer interface {
	Summary(userID string) string
}

// Variant selects the report's structure.
type Variant int

const (
	// FocusedReport answers the question with 2-4 question-driven sections.
	FocusedReport Variant = iota
	// FixedReport follows the fixed five-part analysis layout.
	FixedReport
)

// reportFailedMessage is the fixed degradation when the model yields nothing.
const reportFailedMessage = "Sorry, report generation failed. Please try again."

const analysisRules = `## Analysis principles (mandatory)
1. Cross-validate: do not just list data, relate indicators to each other.
   Example: oversold RSI + extreme-fear index + price at the lower Bollinger
   band = a strong oversold signal.
2. Bull vs bear: list arguments for both directions, never one-sided.
3. Confidence: state a confidence level with the verdict (e.g. "leaning
   toward a rebound, confidence 65%").
4. Cite concrete values: write RSI=28.5, not "RSI is low".
5. Attribute key data points to their source as [source](url).
6. Historical comparison: if similar past cases are provided, briefly cite
   the closest one or two; if a previous prediction is provided, remind the
   user to check it against recent price action.`

const recallQueryLimit = 5

// ReportConfig configures a ReportGenerator. Model is required; the rest are
// optional enrichment sources.
type ReportConfig struct {
	Variant Variant
	UserID  string

	Model     Model
	Knowledge KnowledgeSource
	Recaller  Recaller
	Profiles  ProfileSummarizer
	Logger    *zap.Logger
}

// ReportGenerator writes the final analysis from collected observations. The
// streaming capability is resolved once at construction: if the model also
// implements StreamingModel, GenerateStream emits token by token, otherwise
// it degrades to a single chunk.
type ReportGenerator struct {
	variant  Variant
	userID   string
	model    Model
	streamer StreamingModel
	know     KnowledgeSource
	recaller Recaller
	profiles ProfileSummarizer
	logger   *zap.Logger
}

// NewReportGenerator validates the configuration and builds a generator.
func NewReportGenerator(cfg ReportConfig) (*ReportGenerator, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("report generator: model is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	streamer, _ := cfg.Model.(StreamingModel)
	return &ReportGenerator{
		variant:  cfg.Variant,
		userID:   cfg.UserID,
		model:    cfg.Model,
		streamer: streamer,
		know:     cfg.Knowledge,
		recaller: cfg.Recaller,
		profiles: cfg.Profiles,
		logger:   cfg.Logger,
	}, nil
}

// Generate writes the report. It never fails: enrichment sources degrade to
// empty sections and a dead model degrades to a fixed apology.
func (g *ReportGenerator) Generate(ctx context.Context, in ReportInput) string {
	prompt := g.buildPrompt(ctx, in)
	report, err := g.model.Invoke(ctx, llm.UserMessage(prompt))
	if err != nil {
		g.logger.Error("report generation failed", zap.Error(err))
		return reportFailedMessage
	}
	report = strings.TrimSpace(report)
	if report == "" {
		return reportFailedMessage
	}
	return report
}

// GenerateStream writes the report as a channel of chunks. Without a
// streaming model the whole report arrives as one chunk.
func (g *ReportGenerator) GenerateStream(ctx context.Context, in ReportInput) <-chan string {
	prompt := g.buildPrompt(ctx, in)

	if g.streamer == nil {
		out := make(chan string, 1)
		report, err := g.model.Invoke(ctx, llm.UserMessage(prompt))
		report = strings.TrimSpace(report)
		if err != nil || report == "" {
			report = reportFailedMessage
		}
		out <- report
		close(out)
		return out
	}

	stream, err := g.streamer.InvokeStream(ctx, llm.UserMessage(prompt))
	if err != nil {
		g.logger.Warn("stream start failed, falling back to blocking call", zap.Error(err))
		out := make(chan string, 1)
		out <- g.Generate(ctx, in)
		close(out)
		return out
	}
	return stream
}

func (g *ReportGenerator) buildPrompt(ctx context.Context, in ReportInput) string {
	// Bias retrieval toward the question plus a slice of the evidence.
	ragQuery := in.Question
	if in.Observations != "" {
		ragQuery = in.Question + " " + truncate(in.Observations, 500)
	}

	var sb strings.Builder
	if g.variant == FixedReport {
		sb.WriteString("You are a professional cryptocurrency analyst. Write a complete analysis report from the data collected below.\n\n")
	} else {
		sb.WriteString("You are a professional cryptocurrency analyst. Write an analysis that directly answers the user's question from the data collected below.\n\n")
	}
	sb.WriteString(analysisRules)
	sb.WriteString("\n\n")

	if g.variant == FixedReport {
		sb.WriteString(`## Report structure
1. Verdict: 1-2 sentences summarizing the outlook, with a confidence level.
2. Price position: current quote and positioning, citing the price data.
3. Technicals: cite concrete RSI/MACD/Bollinger/EMA/support-resistance values.
4. Sentiment and flows: cite the fear & greed index and any funding data.
5. Bull vs bear: a table (direction | argument | weight) with 2-3 arguments
   per side.
6. Trade guidance: a table (strategy | key level | notes), short- and
   mid-term.
7. Close with one question back to the user.
`)
	} else {
		sb.WriteString(`## Answer shape
1. Lead with the verdict or summary (1-2 sentences plus confidence).
2. Structure the body as 2-4 headings driven by the user's question.
3. Cite concrete values under every heading.
4. Include a bull-vs-bear comparison, standalone or woven in.
5. Close with one question back to the user.
`)
	}

	sb.WriteString("\n## Recent dialogue (the question may be a follow-up)\n")
	sb.WriteString(in.RecentDialogue)
	sb.WriteString("\n\n## Basics\n- Current date: ")
	sb.WriteString(in.CurrentDate)
	sb.WriteString("\n- User question: ")
	sb.WriteString(in.Question)
	sb.WriteString("\n")

	if g.know != nil {
		if methodology := g.know.Methodology(ctx, ragQuery); methodology != "" {
			sb.WriteString("\n## Technical analysis methodology (interpret indicators within this framework)\n")
			sb.WriteString(methodology)
			sb.WriteString("\n")
		}
		if cases := g.know.Cases(ctx, ragQuery); cases != "" {
			sb.WriteString("\n## Similar historical cases (how comparable setups played out)\n")
			sb.WriteString("Pick the 1-2 closest cases given the current readings and cite them briefly; reference, never a mechanical template.\n")
			sb.WriteString(cases)
			sb.WriteString("\n")
		}
	}

	if prev := LastPrediction(in.History, 600); prev != "" {
		sb.WriteString("\n## Previous prediction\nOur last verdict is summarized below. Mention it briefly and remind the user to check it against recent price action.\n---\n")
		sb.WriteString(prev)
		sb.WriteString("\n---\n")
	}

	if g.recaller != nil {
		query := "user preferences coins risk appetite past analyses " + truncate(in.Question, 80)
		if recall, err := g.recaller.Recall(ctx, query, recallQueryLimit); err != nil {
			g.logger.Debug("memory recall failed", zap.Error(err))
		} else if strings.TrimSpace(recall) != "" {
			sb.WriteString("\n## User context (from memory)\n")
			sb.WriteString(strings.TrimSpace(recall))
			sb.WriteString("\n")
		}
	}

	if g.profiles != nil && g.userID != "" {
		if summary := g.profiles.Summary(g.userID); summary != "" {
			sb.WriteString("\n## User profile (research preferences)\n")
			sb.WriteString(summary)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n## Collected data\n")
	sb.WriteString(in.Observations)
	sb.WriteString("\n\nOutput the complete answer directly (the answer only, no Thought/Action/Finish):")
	return sb.String()
}
