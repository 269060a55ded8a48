// Package assistant assembles the crypto research assistant: model client,
// market tools, knowledge, memory, and the agent pipeline selected by
// configuration.
package assistant

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/stratos/coinsage/internal/agent"
	"github.com/stratos/coinsage/internal/config"
	"github.com/stratos/coinsage/internal/knowledge"
	"github.com/stratos/coinsage/internal/llm"
	"github.com/stratos/coinsage/internal/market"
	"github.com/stratos/coinsage/internal/memory"
	"github.com/stratos/coinsage/internal/tools"
)

// Agent modes.
const (
	ModeTwoPhase    = "two-phase"
	ModeSinglePhase = "single-phase"
	ModePlanSolve   = "plan-solve"
)

// Assistant is the assembled crypto research assistant. One instance serves
// one user session; calls are not safe for concurrent use.
type Assistant struct {
	cfg    *config.Config
	logger *zap.Logger
	userID string

	llm      *llm.Client
	registry *tools.Registry
	analyzer *market.Analyzer

	knowRetriever *knowledge.Retriever
	memRetriever  *knowledge.Retriever

	mode      string
	orch      *agent.Orchestrator
	react     *agent.ReActAgent
	planSolve *agent.PlanSolveAgent

	cache *responseCache
}

// New wires all components from configuration. Optional subsystems (Qdrant
// retrieval, memory recall) degrade with a warning instead of failing the
// whole assistant; the model client and tool stack are mandatory.
func New(cfg *config.Config, logger *zap.Logger) (*Assistant, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := llm.NewClient(llm.Config{
		Endpoint:    cfg.LLM.Endpoint,
		Model:       cfg.LLM.Model,
		Timeout:     time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}, logger)

	registry := tools.NewRegistry(logger)
	analyzer, err := market.NewAnalyzer(
		market.NewCoinGecko("", nil, logger),
		market.NewBinance("", nil, logger),
		market.NewFearGreed("", nil, logger),
		market.NewFutures("", market.NewBinance("", nil, logger), nil, logger),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("assemble market tools: %w", err)
	}
	analyzer.Register(registry)

	userID := memory.AnonymousUserID(cfg.Memory.PersistSession, cfg.Memory.Dir)
	profiles, err := memory.NewProfileStore(filepath.Join(cfg.Memory.Dir, "profiles"), logger)
	if err != nil {
		return nil, fmt.Errorf("assemble profile store: %w", err)
	}

	a := &Assistant{
		cfg:      cfg,
		logger:   logger,
		userID:   userID,
		llm:      client,
		registry: registry,
		analyzer: analyzer,
		mode:     cfg.Agent.Mode,
		cache:    newResponseCache(time.Duration(cfg.Agent.CacheTTLSeconds)*time.Second, nil),
	}

	static := knowledge.NewStaticStore(cfg.Knowledge.Dir, logger)
	var recall *memory.RecallStore
	if cfg.Knowledge.UseRetrieval {
		a.knowRetriever = a.openCollection(cfg.Qdrant.KnowledgeCollection)
		a.memRetriever = a.openCollection(cfg.Qdrant.MemoryCollection)
		if a.knowRetriever != nil {
			a.ingestKnowledge()
		}
		if a.memRetriever != nil {
			recall = memory.NewRecallStore(a.memRetriever, userID, profiles, logger)
			recall.RegisterTool(registry)
		}
	}

	source := knowledge.NewSource(static, a.knowRetriever, knowledge.SourceConfig{
		TopK:     cfg.Knowledge.TopK,
		MinScore: cfg.Knowledge.MinScore,
	}, logger)

	variant := agent.FocusedReport
	if cfg.Agent.ReportStyle == "fixed" {
		variant = agent.FixedReport
	}
	reportCfg := agent.ReportConfig{
		Variant:   variant,
		UserID:    userID,
		Model:     client,
		Knowledge: source,
		Profiles:  profiles,
		Logger:    logger,
	}
	if recall != nil {
		reportCfg.Recaller = recall
	}
	reporter, err := agent.NewReportGenerator(reportCfg)
	if err != nil {
		return nil, fmt.Errorf("assemble report generator: %w", err)
	}

	switch cfg.Agent.Mode {
	case ModeSinglePhase:
		a.react, err = agent.NewReAct(agent.Config{
			Name:        "coinsage",
			MaxSteps:    cfg.Agent.MaxSteps,
			Mode:        agent.SinglePhase,
			RecentTurns: cfg.Agent.RecentTurns,
			Model:       client,
			Tools:       registry,
			Logger:      logger,
		})
		if err != nil {
			return nil, err
		}

	case ModePlanSolve:
		a.planSolve, err = agent.NewPlanSolve(agent.PlanSolveConfig{
			Name:   "coinsage",
			Model:  client,
			Tools:  registry,
			Logger: logger,
		})
		if err != nil {
			return nil, err
		}

	case ModeTwoPhase, "":
		collector, err := agent.NewReAct(agent.Config{
			Name:        "coinsage",
			MaxSteps:    cfg.Agent.MaxSteps,
			Mode:        agent.TwoPhase,
			RecentTurns: cfg.Agent.RecentTurns,
			Model:       client,
			Tools:       registry,
			Reporter:    reporter,
			Classifier:  agent.NewKeywordClassifier(),
			Logger:      logger,
		})
		if err != nil {
			return nil, err
		}
		a.react = collector
		a.orch, err = agent.NewOrchestrator(agent.OrchestratorConfig{
			Name:        "coinsage",
			RecentTurns: cfg.Agent.RecentTurns,
			Collector:   collector,
			Reporter:    reporter,
			Logger:      logger,
		})
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown agent mode %q", cfg.Agent.Mode)
	}

	return a, nil
}

// openCollection connects a retriever to one Qdrant collection, degrading to
// nil with a warning when Qdrant is unavailable.
func (a *Assistant) openCollection(collection string) *knowledge.Retriever {
	retriever, err := knowledge.NewRetriever(knowledge.RetrieverConfig{
		QdrantHost:        a.cfg.Qdrant.Host,
		QdrantPort:        a.cfg.Qdrant.Port,
		CollectionName:    collection,
		EmbeddingEndpoint: a.cfg.Embedding.Endpoint,
		VectorDim:         uint64(a.cfg.Embedding.Dimension),
	}, a.logger)
	if err != nil {
		a.logger.Warn("Qdrant unavailable, continuing without retrieval",
			zap.String("collection", collection), zap.Error(err))
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := retriever.EnsureCollection(ctx); err != nil {
		a.logger.Warn("could not ensure collection, continuing without retrieval",
			zap.String("collection", collection), zap.Error(err))
		retriever.Close()
		return nil
	}
	return retriever
}

// ingestKnowledge loads the canonical knowledge files into the retrieval
// collection. Ingest is idempotent, so re-running on startup is safe.
func (a *Assistant) ingestKnowledge() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	for _, name := range []string{knowledge.AnalysisFile, knowledge.CasesFile} {
		path := filepath.Join(a.cfg.Knowledge.Dir, name)
		if err := a.knowRetriever.IngestFile(ctx, path, "crypto_knowledge"); err != nil {
			a.logger.Warn("knowledge ingest failed, reports fall back to static files",
				zap.String("file", name), zap.Error(err))
		}
	}
}

// Run answers one question through the configured pipeline.
func (a *Assistant) Run(ctx context.Context, question string) string {
	if answer, ok := a.cache.Get(question); ok {
		a.logger.Debug("answer served from cache")
		return answer
	}

	var answer string
	switch {
	case a.orch != nil:
		answer = a.orch.Run(ctx, question)
	case a.planSolve != nil:
		answer = a.planSolve.Run(ctx, question)
	default:
		answer = a.react.Run(ctx, question)
	}
	a.cache.Put(question, answer)
	return answer
}

// RunStream answers one question, streaming the report phase when the
// pipeline supports it; other modes deliver the answer as a single chunk.
func (a *Assistant) RunStream(ctx context.Context, question string) <-chan string {
	if answer, ok := a.cache.Get(question); ok {
		out := make(chan string, 1)
		out <- answer
		close(out)
		return out
	}

	if a.orch == nil {
		out := make(chan string, 1)
		out <- a.Run(ctx, question)
		close(out)
		return out
	}

	out := make(chan string)
	go func() {
		defer close(out)
		var acc []byte
		for chunk := range a.orch.RunStream(ctx, question) {
			acc = append(acc, chunk...)
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
		a.cache.Put(question, string(acc))
	}()
	return out
}

// Ping verifies that the model endpoint is reachable.
func (a *Assistant) Ping(ctx context.Context) error {
	return a.llm.Ping(ctx)
}

// ListTools returns the registered tool names.
func (a *Assistant) ListTools() []string {
	return a.registry.Names()
}

// DescribeTools renders the registered tools with their descriptions.
func (a *Assistant) DescribeTools() string {
	return a.registry.Describe()
}

// History returns the conversation log of the active agent.
func (a *Assistant) History() *agent.History {
	if a.planSolve != nil {
		return a.planSolve.History()
	}
	return a.react.History()
}

// UserID returns the anonymous user ID for this session.
func (a *Assistant) UserID() string {
	return a.userID
}

// ResetSession discards the persisted anonymous ID; the next assistant
// starts as a fresh user.
func (a *Assistant) ResetSession() error {
	return memory.ResetSession(a.cfg.Memory.Dir)
}

// Close releases the worker pool and retrieval connections.
func (a *Assistant) Close() error {
	a.analyzer.Close()
	if a.knowRetriever != nil {
		a.knowRetriever.Close()
	}
	if a.memRetriever != nil {
		a.memRetriever.Close()
	}
	return nil
}
