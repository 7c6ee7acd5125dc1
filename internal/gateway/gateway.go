// Package gateway issues the classification and retrieval calls to the
// external language models. Both calls absorb their own failures into
// placeholder results so one never affects the other.
package gateway

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/docscan/internal/model"
	"github.com/sells-group/docscan/internal/prompt"
	"github.com/sells-group/docscan/pkg/anthropic"
)

const defaultMaxTokens = 1024

// Gateway runs the two model calls for a document.
type Gateway struct {
	ai        anthropic.Client
	model     string
	maxTokens int64
	retriever Retriever
	timeout   time.Duration
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTimeout bounds each call independently. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// WithMaxTokens sets the output token cap of the classification call.
func WithMaxTokens(n int64) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.maxTokens = n
		}
	}
}

// New creates a Gateway that classifies with the given Anthropic model and
// finds sources with retriever.
func New(ai anthropic.Client, modelName string, retriever Retriever, opts ...Option) *Gateway {
	g := &Gateway{
		ai:        ai,
		model:     modelName,
		maxTokens: defaultMaxTokens,
		retriever: retriever,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// RetrievalMode reports which retriever the gateway uses.
func (g *Gateway) RetrievalMode() string {
	return g.retriever.Mode()
}

func (g *Gateway) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout > 0 {
		return context.WithTimeout(ctx, g.timeout)
	}
	return context.WithCancel(ctx)
}

// Classify asks the model for an authorship verdict. Model, transport and
// parse failures yield {likelihood: "Error"}; the returned error is non-nil
// only when ctx itself was cancelled.
func (g *Gateway) Classify(ctx context.Context, text string) (model.LikelihoodReport, error) {
	callCtx, cancel := g.callContext(ctx)
	defer cancel()

	temp := 0.0
	resp, err := g.ai.CreateMessage(callCtx, anthropic.MessageRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		System:      prompt.ClassificationSystem,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt.Classification(text)}},
		Temperature: &temp,
	})

	var out model.LikelihoodReport
	if err == nil {
		resp.Usage.LogCost(g.model, "classification")
		out, err = decodeLikelihood(resp.Text())
	}
	if err != nil {
		if ctx.Err() != nil {
			return model.LikelihoodReport{}, eris.Wrap(ctx.Err(), "gateway: classification interrupted")
		}
		zap.L().Warn("gateway: classification failed", zap.Error(err))
		return model.LikelihoodReport{Likelihood: model.LikelihoodError}, nil
	}
	return out, nil
}

// FindSources asks the retriever for online sources resembling text.
// Failures yield an empty source list with Error set; the returned error is
// non-nil only when ctx itself was cancelled.
func (g *Gateway) FindSources(ctx context.Context, text string) (model.SourceReport, error) {
	callCtx, cancel := g.callContext(ctx)
	defer cancel()

	sources, err := g.retriever.Retrieve(callCtx, text)
	if err != nil {
		if ctx.Err() != nil {
			return model.SourceReport{}, eris.Wrap(ctx.Err(), "gateway: retrieval interrupted")
		}
		zap.L().Warn("gateway: retrieval failed",
			zap.String("mode", g.retriever.Mode()),
			zap.Error(err),
		)
		return model.SourceReport{
			Sources: []model.SourceMatch{},
			Error:   "web plagiarism search failed: " + err.Error(),
		}, nil
	}
	if sources == nil {
		sources = []model.SourceMatch{}
	}
	return model.SourceReport{Sources: sources}, nil
}
