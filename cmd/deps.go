package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/docscan/internal/analyze"
	"github.com/sells-group/docscan/internal/config"
	"github.com/sells-group/docscan/internal/gateway"
	"github.com/sells-group/docscan/internal/identity"
	"github.com/sells-group/docscan/internal/store"
	anthropicpkg "github.com/sells-group/docscan/pkg/anthropic"
	"github.com/sells-group/docscan/pkg/jina"
	"github.com/sells-group/docscan/pkg/perplexity"
	"github.com/sells-group/docscan/pkg/supabase"
)

// appEnv holds every collaborator the serve command needs. Each is built
// once at startup and passed explicitly.
type appEnv struct {
	Store    store.Store
	Gateway  *gateway.Gateway
	Verifier identity.Verifier
	Service  *analyze.Service
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initApp opens and migrates the store and builds the gateway, verifier
// and service. Callers should defer env.Close().
func initApp(ctx context.Context, c *config.Config) (*appEnv, error) {
	gw, err := initGateway(c)
	if err != nil {
		return nil, err
	}

	verifier, err := initVerifier(c)
	if err != nil {
		return nil, err
	}

	st, err := store.New(ctx, c.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	return &appEnv{
		Store:    st,
		Gateway:  gw,
		Verifier: verifier,
		Service:  analyze.New(gw, st),
	}, nil
}

// initGateway builds the model gateway with the configured retrieval mode.
func initGateway(c *config.Config) (*gateway.Gateway, error) {
	var aiOpts []anthropicpkg.Option
	if c.Anthropic.BaseURL != "" {
		aiOpts = append(aiOpts, anthropicpkg.WithBaseURL(c.Anthropic.BaseURL))
	}
	ai := anthropicpkg.NewClient(c.Anthropic.Key, aiOpts...)

	deps := gateway.RetrieverDeps{
		Anthropic:  ai,
		Model:      c.Anthropic.Model,
		MaxTokens:  c.Anthropic.MaxTokens,
		MaxQueries: c.Retrieval.MaxQueries,
		MaxResults: c.Retrieval.MaxResults,
	}
	switch c.Retrieval.Mode {
	case config.RetrievalSearch:
		deps.Jina = jina.NewClient(c.Jina.Key, jina.WithSearchBaseURL(c.Jina.SearchBaseURL))
	case config.RetrievalSonar:
		deps.Perplexity = perplexity.NewClient(c.Perplexity.Key,
			perplexity.WithBaseURL(c.Perplexity.BaseURL),
			perplexity.WithModel(c.Perplexity.Model),
		)
	}

	retriever, err := gateway.NewRetriever(c.Retrieval.Mode, deps)
	if err != nil {
		return nil, err
	}

	zap.L().Info("gateway configured",
		zap.String("model", c.Anthropic.Model),
		zap.String("retrieval_mode", retriever.Mode()),
		zap.Duration("timeout", c.Gateway.Timeout()),
	)
	return gateway.New(ai, c.Anthropic.Model, retriever,
		gateway.WithTimeout(c.Gateway.Timeout()),
		gateway.WithMaxTokens(c.Anthropic.MaxTokens),
	), nil
}

// initVerifier picks remote (Supabase auth API) or local JWT verification.
func initVerifier(c *config.Config) (identity.Verifier, error) {
	switch c.Supabase.AuthMode {
	case config.AuthRemote:
		return identity.NewRemoteVerifier(supabase.NewClient(c.Supabase.URL, c.Supabase.ServiceKey)), nil
	case config.AuthJWT:
		return identity.NewJWTVerifier(c.Supabase.JWTSecret), nil
	default:
		return nil, eris.Errorf("unknown supabase.auth_mode %q", c.Supabase.AuthMode)
	}
}
