package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks docqa/internal/rag Engine,Searcher

import (
	"context"
	"fmt"
	"strings"

	"docqa/internal/contextutil"
	"docqa/internal/llm"
	"docqa/internal/retriever"
)

// Engine answers questions over the ingested corpus.
type Engine interface {
	// Ask embeds the question, retrieves the most relevant chunks and
	// composes an answer from them.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
}

// Searcher ranks stored chunks against a query embedding. Both the linear
// scan retriever and the index-backed retriever satisfy it; the strategy is
// chosen once at construction.
type Searcher interface {
	Search(ctx context.Context, query []float32, params retriever.Params) ([]retriever.Match, error)
}

type ragEngine struct {
	embedder  llm.Embedder
	searcher  Searcher
	llmClient *llm.Client // optional; nil means template-only answers
}

// NewEngine creates a RAG engine. llmClient may be nil, in which case
// answers always come from the built-in templates.
func NewEngine(embedder llm.Embedder, searcher Searcher, llmClient *llm.Client) Engine {
	return &ragEngine{
		embedder:  embedder,
		searcher:  searcher,
		llmClient: llmClient,
	}
}

// Ask answers a question using retrieval-augmented generation.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(req.Message)
	if question == "" {
		return AskResponse{}, fmt.Errorf("empty question")
	}

	embeddings, err := e.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return AskResponse{}, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(embeddings) == 0 {
		return AskResponse{}, fmt.Errorf("no embedding returned for question")
	}

	matches, err := e.searcher.Search(ctx, embeddings[0], retriever.Params{
		TopK:     req.TopK,
		MinScore: req.MinSimilarity,
	})
	if err != nil {
		return AskResponse{}, fmt.Errorf("failed to search chunks: %w", err)
	}

	logger.InfoContext(ctx, "retrieval completed", "question_length", len(question), "matches", len(matches))

	answer := e.answer(ctx, question, matches)

	if matches == nil {
		matches = []retriever.Match{}
	}
	return AskResponse{
		Response:        answer,
		RelevantChunks:  matches,
		Confidence:      meanSimilarity(matches),
		DocumentSources: uniqueFilenames(matches),
	}, nil
}

// answer phrases the reply. When an LLM client is configured it generates a
// grounded completion over the retrieved context; any generation failure
// falls back to the templated composer, the only place local recovery is
// allowed.
func (e *ragEngine) answer(ctx context.Context, question string, matches []retriever.Match) string {
	if e.llmClient == nil || len(matches) == 0 {
		return Compose(question, matches)
	}

	logger := contextutil.LoggerFromContext(ctx)

	var contextBuilder strings.Builder
	contextBuilder.WriteString("--- Context from documents ---\n\n")
	for _, m := range matches {
		contextBuilder.WriteString(fmt.Sprintf("From %s (Page %d): %s\n\n", m.Filename, m.PageNumber, m.Content))
	}
	contextBuilder.WriteString("--- End Context ---")

	systemPrompt := "You are a helpful assistant that answers questions based on the provided context from the user's documents. " +
		"Answer the question using only the information from the context below. If the context doesn't contain " +
		"enough information to answer the question, say so. Cite the source document and page when possible."

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf("%s\n\n%s", question, contextBuilder.String())},
	}

	answer, err := e.llmClient.ChatWithMessages(ctx, messages, llm.ChatParams{Temperature: 0.7})
	if err != nil {
		logger.WarnContext(ctx, "LLM generation failed, falling back to template answer", "error", err)
		return Compose(question, matches)
	}
	return answer
}

func meanSimilarity(matches []retriever.Match) float64 {
	if len(matches) == 0 {
		return 0
	}
	var sum float64
	for _, m := range matches {
		sum += m.Similarity
	}
	return sum / float64(len(matches))
}

func uniqueFilenames(matches []retriever.Match) []string {
	seen := make(map[string]struct{}, len(matches))
	sources := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.Filename]; ok {
			continue
		}
		seen[m.Filename] = struct{}{}
		sources = append(sources, m.Filename)
	}
	return sources
}
