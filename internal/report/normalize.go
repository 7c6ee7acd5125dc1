// Package report folds the two gateway results into the caller-facing report.
package report

import "github.com/sells-group/docscan/internal/model"

// likelihoodMapping collapses the five-step classification vocabulary onto
// Low, Medium and High.
var likelihoodMapping = map[model.Likelihood]model.Likelihood{
	model.LikelihoodVeryLow:  model.LikelihoodLow,
	model.LikelihoodLow:      model.LikelihoodLow,
	model.LikelihoodMedium:   model.LikelihoodMedium,
	model.LikelihoodHigh:     model.LikelihoodHigh,
	model.LikelihoodVeryHigh: model.LikelihoodHigh,
}

// NormalizeLikelihood maps a raw verdict to Low, Medium or High. Anything
// unrecognized, including "Error", becomes Low.
func NormalizeLikelihood(raw model.Likelihood) model.Likelihood {
	if out, ok := likelihoodMapping[raw]; ok {
		return out
	}
	return model.LikelihoodLow
}

// Normalize builds an AnalysisReport. The inputs are not modified and the
// returned sources slice is never nil.
func Normalize(likelihood model.LikelihoodReport, sources model.SourceReport) model.AnalysisReport {
	online := make([]model.SourceMatch, len(sources.Sources))
	copy(online, sources.Sources)

	return model.AnalysisReport{
		AILikelihood:       NormalizeLikelihood(likelihood.Likelihood),
		AIReasoning:        likelihood.Reasoning,
		OnlineSources:      online,
		OnlineSourcesCount: len(online),
	}
}
