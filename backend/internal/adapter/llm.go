package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	apperrors "github.com/dabster108/GraphDB-Neo4j/backend/pkg/errors"
	"github.com/dabster108/GraphDB-Neo4j/backend/pkg/logger"
)

// LLMAdapter turns natural-language questions into read-only Cypher and
// explains query results, via any OpenAI-compatible endpoint
type LLMAdapter struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewLLMAdapter creates a new LLM adapter against baseURL
func NewLLMAdapter(baseURL, apiKey, modelID string) *LLMAdapter {
	// Local endpoints (Ollama, LiteLLM) accept any key
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL + "/v1"

	return &LLMAdapter{
		client: openai.NewClientWithConfig(config),
		model:  modelID,
		logger: logger.Get(),
	}
}

const cypherSystemPrompt = `You are an expert Neo4j Cypher developer.

Rules:
- Only return a single valid Cypher query.
- Do NOT add explanations, comments or markdown.
- Assume nodes: Student
- Assume relationships: SAME_COLLEGE, SAME_BOARD, SAME_STREAM, NEARBY, SHARES_INTEREST
- Use the following properties for Student nodes:
    - id (integer)
    - name (string)
    - address (optional string)
    - college (optional string)
    - board (optional string)
    - stream (optional string)
    - interests (optional list of strings)
- Preserve exact casing when matching by name: use exact equality. Do NOT call toLower() on name values.
- For other text properties use case-insensitive matching with toLower().
- Never write to the database: no CREATE, MERGE, DELETE, SET, REMOVE or DROP.
- Always end with an appropriate RETURN clause; alias counts (e.g. AS num_students).`

// GenerateCypher asks the model for a single read-only Cypher query answering
// the question, and refuses queries containing write clauses
func (a *LLMAdapter) GenerateCypher(ctx context.Context, question string) (string, error) {
	raw, err := a.complete(ctx, cypherSystemPrompt, question)
	if err != nil {
		return "", err
	}

	cypher := sanitizeCypher(raw)
	if cypher == "" {
		return "", apperrors.NewLLMRequestFailed(a.model, 1, fmt.Errorf("empty query generated"))
	}
	if !isReadOnly(cypher) {
		return "", apperrors.NewUnsafeQuery(cypher)
	}

	a.logger.Debug("Generated Cypher query", zap.String("query", cypher))
	return cypher, nil
}

// ExplainResults turns query rows into a short natural-language answer
func (a *LLMAdapter) ExplainResults(ctx context.Context, question string, rows []map[string]interface{}) (string, error) {
	if len(rows) == 0 {
		return "No matching records were found for that question.", nil
	}

	encoded, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("failed to encode rows: %w", err)
	}

	systemPrompt := "You explain database query results in plain, conversational language. Be concise and do not mention Cypher or Neo4j."
	userMsg := fmt.Sprintf("Question: %s\n\nQuery results (JSON): %s\n\nAnswer the question using only these results.", question, string(encoded))

	return a.complete(ctx, systemPrompt, userMsg)
}

// complete sends one chat completion with retry and linear backoff
func (a *LLMAdapter) complete(ctx context.Context, systemPrompt, userMsg string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
		Temperature: 0.2,
	}

	var resp openai.ChatCompletionResponse
	var err error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			a.logger.Warn("Retrying LLM request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err = a.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}
	}
	if err != nil {
		return "", apperrors.NewLLMRequestFailed(a.model, maxRetries, err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewLLMRequestFailed(a.model, 1, fmt.Errorf("no choices in response"))
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// sanitizeCypher strips markdown code fences the model sometimes wraps the
// query in
func sanitizeCypher(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```cypher")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

var writeClauses = []string{"create ", "merge ", "delete ", "detach ", "set ", "remove ", "drop "}

// isReadOnly reports whether the query is free of write clauses. The check is
// deliberately conservative: a false negative just refuses the ask request.
func isReadOnly(cypher string) bool {
	lowered := " " + strings.ToLower(strings.Join(strings.Fields(cypher), " ")) + " "
	for _, clause := range writeClauses {
		if strings.Contains(lowered, " "+clause) {
			return false
		}
	}
	return true
}
