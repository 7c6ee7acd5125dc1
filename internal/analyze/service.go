// Package analyze runs one document analysis end to end: both model calls
// concurrently, normalisation and persistence of the submission.
package analyze

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/docscan/internal/identity"
	"github.com/sells-group/docscan/internal/model"
	"github.com/sells-group/docscan/internal/report"
	"github.com/sells-group/docscan/internal/store"
)

// Gateway issues the classification and retrieval calls. Implementations
// absorb their own failures and return an error only for failures they
// could not turn into a placeholder result.
type Gateway interface {
	Classify(ctx context.Context, text string) (model.LikelihoodReport, error)
	FindSources(ctx context.Context, text string) (model.SourceReport, error)
}

// Result is the outcome of a successful analysis.
type Result struct {
	Report       model.AnalysisReport `json:"report"`
	SubmissionID string               `json:"submission_id"`
}

// History limits.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Service coordinates the gateway, the normalizer and the store.
type Service struct {
	gateway Gateway
	store   store.Store
}

// New creates a Service. st may be nil for callers that only use Run.
func New(gw Gateway, st store.Store) *Service {
	return &Service{gateway: gw, store: st}
}

// Run executes both gateway calls concurrently, waits for both and returns
// the normalized report. Nothing is persisted.
func (s *Service) Run(ctx context.Context, text string) (model.AnalysisReport, error) {
	var (
		likelihood model.LikelihoodReport
		sources    model.SourceReport
		g          errgroup.Group
	)

	// A plain Group: one call failing must not cancel the other.
	g.Go(guarded("classification", func() (err error) {
		likelihood, err = s.gateway.Classify(ctx, text)
		return err
	}))
	g.Go(guarded("retrieval", func() (err error) {
		sources, err = s.gateway.FindSources(ctx, text)
		return err
	}))
	if err := g.Wait(); err != nil {
		return model.AnalysisReport{}, &GatewayError{Err: err}
	}

	if sources.Error != "" {
		zap.L().Warn("analyze: retrieval degraded to empty sources", zap.String("error", sources.Error))
	}
	zap.L().Debug("analyze: both calls returned", StageField(model.StageNormalizing),
		zap.String("raw_likelihood", string(likelihood.Likelihood)),
		zap.Int("raw_sources", len(sources.Sources)),
	)
	return report.Normalize(likelihood, sources), nil
}

// StageField tags a log entry with the request's current stage.
func StageField(st model.Stage) zap.Field {
	return zap.String("stage", string(st))
}

// Analyze runs the full request for an authenticated caller. The caller's
// cancellation is not propagated: once started, both model calls run to
// completion and a successful report is always persisted.
func (s *Service) Analyze(ctx context.Context, caller identity.User, text string) (*Result, error) {
	if s.store == nil {
		return nil, eris.New("analyze: no store configured")
	}
	ctx = context.WithoutCancel(ctx)
	start := time.Now()

	userName := identity.DisplayName(caller.Email)
	log := zap.L().With(zap.String("user_id", caller.ID))
	log.Info("analyze: starting", StageField(model.StageAuthenticated),
		zap.String("user_name", userName),
		zap.Int("text_len", len(text)),
	)

	log.Debug("analyze: calling gateway", StageField(model.StageAnalyzing))
	rep, err := s.Run(ctx, text)
	if err != nil {
		log.Error("analyze: request failed", StageField(model.StageFailed),
			zap.String("failed_at", string(model.StageAnalyzing)),
			zap.Error(err),
		)
		return nil, err
	}

	log.Debug("analyze: saving submission", StageField(model.StagePersisting))

	id, err := s.store.CreateSubmission(ctx, model.Submission{
		UserID:   caller.ID,
		UserName: userName,
		Content:  model.SubmissionContent{Text: text},
		Report:   rep,
	})
	if err != nil {
		perr := &PersistenceError{Err: err, PermissionDenied: store.IsPermissionDenied(err)}
		log.Error("analyze: request failed", StageField(model.StageFailed),
			zap.String("failed_at", string(model.StagePersisting)),
			zap.Bool("permission_denied", perr.PermissionDenied),
			zap.Error(err),
		)
		return nil, perr
	}

	log.Info("analyze: complete", StageField(model.StageSucceeded),
		zap.String("submission_id", id),
		zap.String("ai_likelihood", string(rep.AILikelihood)),
		zap.Int("online_sources", rep.OnlineSourcesCount),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Result{Report: rep, SubmissionID: id}, nil
}

// History returns the caller's own submissions, newest first. limit is
// clamped to [1, MaxHistoryLimit]; zero or less means DefaultHistoryLimit.
func (s *Service) History(ctx context.Context, caller identity.User, limit int) ([]model.Submission, error) {
	if s.store == nil {
		return nil, eris.New("analyze: no store configured")
	}
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	subs, err := s.store.ListSubmissions(ctx, caller.ID, limit)
	if err != nil {
		return nil, eris.Wrap(err, "analyze: list submissions")
	}
	return subs, nil
}

// guarded turns a panic inside fn into an error.
func guarded(call string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = eris.Errorf("%s call panicked: %v", call, r)
			}
		}()
		return fn()
	}
}
