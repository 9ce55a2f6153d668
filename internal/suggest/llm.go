package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"

	"finbook/internal/models"
	"finbook/internal/statement"
	"finbook/pkg/config"
)

const llmSystemInstruction = `You are a bookkeeping assistant. You classify bank transaction descriptions into expense categories. The only valid categories are: food, transport, utilities, shopping, entertainment, healthcare, education, other. Always answer with exactly one category word, lower-case, nothing else.`

// LLMAssist refines low-confidence keyword suggestions through GigaChat.
// It is advisory like the keyword engine: a failed or nonsensical model
// answer is logged and the keyword suggestion stands.
type LLMAssist struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	logger *zap.Logger
}

func NewLLMAssist(cfg *config.SuggestConfig, logger *zap.Logger) (*LLMAssist, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.GigaChatScope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.GigaChatAPIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel("GigaChat")
	model.SystemInstruction = llmSystemInstruction
	model.Temperature = 0.1

	return &LLMAssist{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Refine asks the model to categorize transactions whose keyword
// suggestion fell through to the catch-all. A confident answer replaces
// the suggestion at a fixed advisory confidence below the auto-fill bar.
func (a *LLMAssist) Refine(ctx context.Context, transactions []statement.ParsedTransaction) {
	for i := range transactions {
		tx := &transactions[i]
		if tx.Suggestion == nil || tx.Suggestion.Category != models.CategoryOther {
			continue
		}

		category, err := a.classify(ctx, tx.Description)
		if err != nil {
			a.logger.Warn("LLM category refinement failed",
				zap.String("description", tx.Description),
				zap.Error(err),
			)
			continue
		}
		if category == models.CategoryOther {
			continue
		}

		tx.Suggestion = &statement.CategorySuggestion{
			Category:   category,
			Confidence: 0.5,
		}
	}
}

func (a *LLMAssist) classify(ctx context.Context, description string) (models.TransactionCategory, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: fmt.Sprintf("Transaction description: %q", description)},
	}

	resp, err := a.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	// models occasionally add punctuation or a trailing period
	answer = strings.Trim(answer, ".!\"' ")

	category, ok := models.ParseCategory(answer)
	if !ok {
		return "", fmt.Errorf("invalid category from LLM: %s", answer)
	}
	return category, nil
}

func (a *LLMAssist) Close() {
	if a.client != nil {
		a.client.Close()
	}
}
