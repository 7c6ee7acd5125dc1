package gateway

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/docscan/internal/model"
	"github.com/sells-group/docscan/pkg/anthropic"
	"github.com/sells-group/docscan/pkg/jina"
	"github.com/sells-group/docscan/pkg/perplexity"
)

type mockAnthropic struct {
	mock.Mock
}

func (m *mockAnthropic) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*anthropic.MessageResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockJina struct {
	mock.Mock
}

func (m *mockJina) Search(ctx context.Context, query string) (*jina.SearchResponse, error) {
	args := m.Called(ctx, query)
	if r := args.Get(0); r != nil {
		return r.(*jina.SearchResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPerplexity struct {
	mock.Mock
}

func (m *mockPerplexity) ChatCompletion(ctx context.Context, req perplexity.ChatCompletionRequest) (*perplexity.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*perplexity.ChatCompletionResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		ID:      "msg_1",
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage:   anthropic.TokenUsage{InputTokens: 100, OutputTokens: 10},
	}
}

// stubRetriever returns fixed values.
type stubRetriever struct {
	sources []model.SourceMatch
	err     error
	wait    bool
}

func (s *stubRetriever) Mode() string { return "stub" }

func (s *stubRetriever) Retrieve(ctx context.Context, _ string) ([]model.SourceMatch, error) {
	if s.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.sources, s.err
}
