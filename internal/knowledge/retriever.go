package knowledge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// Chunk is one retrievable unit of knowledge.
type Chunk struct {
	Content  string
	Source   string
	Category string
	Score    float64
}

// RetrieverConfig holds retriever configuration.
type RetrieverConfig struct {
	QdrantHost        string
	QdrantPort        int
	CollectionName    string
	EmbeddingEndpoint string
	VectorDim         uint64
}

// Retriever performs semantic search over a Qdrant collection using an HTTP
// embedding service.
type Retriever struct {
	client     *qdrant.Client
	collection string
	vectorDim  uint64
	embedder   *EmbeddingClient
	logger     *zap.Logger
}

// NewRetriever connects to Qdrant and builds the retriever.
func NewRetriever(cfg RetrieverConfig, logger *zap.Logger) (*Retriever, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.QdrantHost,
		Port: cfg.QdrantPort,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w",
			cfg.QdrantHost, cfg.QdrantPort, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{
		client:     client,
		collection: cfg.CollectionName,
		vectorDim:  cfg.VectorDim,
		embedder:   NewEmbeddingClient(cfg.EmbeddingEndpoint),
		logger:     logger,
	}, nil
}

// EnsureCollection creates the collection if it does not exist yet. Safe to
// call on every startup.
func (r *Retriever) EnsureCollection(ctx context.Context) error {
	exists, err := r.client.CollectionExists(ctx, r.collection)
	if err != nil {
		return fmt.Errorf("check collection %q: %w", r.collection, err)
	}
	if exists {
		return nil
	}
	err = r.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     r.vectorDim,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %q: %w", r.collection, err)
	}
	r.logger.Info("created knowledge collection", zap.String("collection", r.collection))
	return nil
}

// Search returns the topK chunks above minScore for the query.
func (r *Retriever) Search(ctx context.Context, query string, topK int, minScore float32) ([]Chunk, error) {
	queryVec, err := r.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	limit := uint64(topK)
	results, err := r.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: r.collection,
		Query:          qdrant.NewQuery(queryVec...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		ScoreThreshold: &minScore,
	})
	if err != nil {
		return nil, fmt.Errorf("Qdrant search failed: %w", err)
	}

	chunks := make([]Chunk, 0, len(results))
	for _, result := range results {
		chunk := Chunk{Score: float64(result.Score)}
		if result.Payload != nil {
			chunk.Content = payloadString(result.Payload, "content")
			chunk.Source = payloadString(result.Payload, "source")
			chunk.Category = payloadString(result.Payload, "category")
		}
		chunks = append(chunks, chunk)
	}

	r.logger.Debug("knowledge search completed",
		zap.Int("results", len(chunks)),
		zap.String("query_preview", clip(query, 50)))
	return chunks, nil
}

// Ingest embeds and upserts chunks. Point IDs are derived deterministically
// from source and content, so re-ingesting the same material overwrites
// instead of duplicating.
func (r *Retriever) Ingest(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, c := range chunks {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(c.Source+"\x00"+c.Content))
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(id.String()),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":  c.Content,
				"source":   c.Source,
				"category": c.Category,
			}),
		}
	}
	_, err = r.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: r.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("Qdrant upsert failed: %w", err)
	}
	r.logger.Info("ingested knowledge chunks",
		zap.String("collection", r.collection), zap.Int("chunks", len(chunks)))
	return nil
}

// IngestFile splits a markdown file into section chunks and ingests them.
func (r *Retriever) IngestFile(ctx context.Context, path, category string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	source := filepath.Base(path)
	chunks := SplitMarkdown(string(data), source, category)
	return r.Ingest(ctx, chunks)
}

// Close releases the Qdrant connection.
func (r *Retriever) Close() error {
	return r.client.Close()
}

// CollectionName returns the configured collection name.
func (r *Retriever) CollectionName() string {
	return r.collection
}

const maxChunkRunes = 1200

// SplitMarkdown chunks markdown by second-level headings, further splitting
// oversized sections on paragraph boundaries.
func SplitMarkdown(content, source, category string) []Chunk {
	var chunks []Chunk
	add := func(text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		chunks = append(chunks, Chunk{Content: text, Source: source, Category: category})
	}

	sections := strings.Split(content, "\n## ")
	for i, section := range sections {
		if i > 0 {
			section = "## " + section
		}
		if len([]rune(section)) <= maxChunkRunes {
			add(section)
			continue
		}
		var current strings.Builder
		for _, para := range strings.Split(section, "\n\n") {
			if current.Len() > 0 && len([]rune(current.String()))+len([]rune(para)) > maxChunkRunes {
				add(current.String())
				current.Reset()
			}
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(para)
		}
		add(current.String())
	}
	return chunks
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if val, ok := payload[key]; ok {
		return val.GetStringValue()
	}
	return ""
}
