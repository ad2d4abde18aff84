package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"medbot-backend/resolver"
	"medbot-backend/services"
)

type fakeLLM struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeLLM) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, m := range messages {
		for _, p := range m.Parts {
			if text, ok := p.(llms.TextContent); ok {
				f.prompts = append(f.prompts, text.Text)
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestAIService_Complete(t *testing.T) {
	llm := &fakeLLM{reply: "  Rest and hydrate.  "}
	svc := services.NewAIServiceWithModel(llm, time.Second)

	out, err := svc.Complete(context.Background(), "I feel tired")
	require.NoError(t, err)
	assert.Equal(t, "Rest and hydrate.", out)
	require.Len(t, llm.prompts, 1)
	assert.Equal(t, "I feel tired", llm.prompts[0])
}

func TestAIService_CompleteErrors(t *testing.T) {
	_, err := services.NewAIServiceWithModel(&fakeLLM{err: errors.New("quota")}, 0).Complete(context.Background(), "x")
	assert.Error(t, err)

	_, err = services.NewAIServiceWithModel(&fakeLLM{reply: "   "}, 0).Complete(context.Background(), "x")
	assert.Error(t, err)
}

func TestAIService_ClassifyDepartment(t *testing.T) {
	llm := &fakeLLM{reply: "Cardiology.\n"}
	svc := services.NewAIServiceWithModel(llm, time.Second)

	label, err := svc.ClassifyDepartment(context.Background(), "tight chest", resolver.Departments)
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", label)
	assert.Contains(t, llm.prompts[0], "Allowed departments: Cardiology, Neurology")
	assert.Contains(t, llm.prompts[0], "Symptoms: tight chest")
}

func TestAIService_AsClassifierResolver(t *testing.T) {
	svc := services.NewAIServiceWithModel(&fakeLLM{reply: "Neurology"}, time.Second)
	r := resolver.New(resolver.StrategyClassifier, nil, resolver.DefaultFuzzyCutoff, svc)

	assert.Equal(t, "Neurology", r.Resolve(context.Background(), "my head spins"))
}

func TestAIService_GeneralReply(t *testing.T) {
	llm := &fakeLLM{reply: "See a doctor."}
	svc := services.NewAIServiceWithModel(llm, time.Second)

	out, err := svc.GeneralReply(context.Background(), "is coffee bad?", "General Medicine")
	require.NoError(t, err)
	assert.Equal(t, "See a doctor.", out)
	assert.Contains(t, llm.prompts[0], "is coffee bad?")
	assert.Contains(t, llm.prompts[0], "General Medicine department")
}

func TestAIService_Sentiment(t *testing.T) {
	tests := []struct {
		name    string
		llm     *fakeLLM
		want    services.Sentiment
		wantErr bool
	}{
		{name: "negative", llm: &fakeLLM{reply: "Negative."}, want: services.SentimentNegative},
		{name: "positive", llm: &fakeLLM{reply: " positive\n"}, want: services.SentimentPositive},
		{name: "unclear", llm: &fakeLLM{reply: "mixed"}, want: services.SentimentNeutral},
		{name: "model error", llm: &fakeLLM{err: errors.New("quota")}, want: services.SentimentNeutral, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := services.NewAIServiceWithModel(tt.llm, time.Second)

			got, err := svc.Sentiment(context.Background(), "I feel awful today")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			require.Len(t, tt.llm.prompts, 1)
			assert.Contains(t, tt.llm.prompts[0], "Message: I feel awful today")
		})
	}
}
