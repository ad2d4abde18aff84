package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"medbot-backend/config"
)

// AIService wraps the LLM used for open-ended replies and, with the
// classifier strategy, for department labelling.
type AIService struct {
	llm     llms.Model
	timeout time.Duration
}

func NewAIService(ctx context.Context, cfg config.AIConfig) (*AIService, error) {
	llm, err := googleai.New(
		ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create googleai client")
	}
	return NewAIServiceWithModel(llm, cfg.Timeout), nil
}

func NewAIServiceWithModel(llm llms.Model, timeout time.Duration) *AIService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AIService{llm: llm, timeout: timeout}
}

func (s *AIService) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt,
		llms.WithTemperature(0.7),
		llms.WithMaxTokens(500),
	)
	if err != nil {
		return "", errors.Wrap(err, "generate completion")
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("no response generated")
	}
	return out, nil
}

// ClassifyDepartment asks for exactly one label from labels. The answer is
// returned trimmed; checking it against the set is the caller's job.
func (s *AIService) ClassifyDepartment(ctx context.Context, text string, labels []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Classify the patient's symptoms into exactly one medical department.\n"+
			"Allowed departments: %s.\n"+
			"Answer with the department name only.\n\n"+
			"Symptoms: %s",
		strings.Join(labels, ", "),
		text,
	)

	out, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt, llms.WithTemperature(0))
	if err != nil {
		return "", errors.Wrap(err, "classify department")
	}
	return strings.Trim(strings.TrimSpace(out), ".\"'"), nil
}

// GeneralReply answers an off-script message, nudging towards the
// suggested department.
func (s *AIService) GeneralReply(ctx context.Context, message, department string) (string, error) {
	prompt := fmt.Sprintf(
		"You are a hospital appointment assistant. "+
			"IMPORTANT: Always remind users that this is not a replacement for professional medical advice. "+
			"User message: %s\n\n"+
			"If the message describes a health concern, suggest consulting the %s department. "+
			"Keep the response concise and under 120 words.",
		message,
		department,
	)
	return s.Complete(ctx, prompt)
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Sentiment labels the overall feeling of a patient message.
func (s *AIService) Sentiment(ctx context.Context, text string) (Sentiment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := "Classify the sentiment of this patient message as positive, negative or neutral.\n" +
		"Answer with one word.\n\n" +
		"Message: " + text

	out, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt, llms.WithTemperature(0))
	if err != nil {
		return SentimentNeutral, errors.Wrap(err, "classify sentiment")
	}

	switch answer := strings.ToLower(out); {
	case strings.Contains(answer, "negative"):
		return SentimentNegative, nil
	case strings.Contains(answer, "positive"):
		return SentimentPositive, nil
	default:
		return SentimentNeutral, nil
	}
}
