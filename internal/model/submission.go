package model

import "time"

// Stage names a step of a single analysis request.
type Stage string

const (
	StageUnauthenticated Stage = "unauthenticated"
	StageAuthenticated   Stage = "authenticated"
	StageAnalyzing       Stage = "analyzing"
	StageNormalizing     Stage = "normalizing"
	StagePersisting      Stage = "persisting"
	StageSucceeded       Stage = "succeeded"
	StageFailed          Stage = "failed"
)

// SubmissionContent is the stored form of the analyzed input.
type SubmissionContent struct {
	Text string `json:"text"`
}

// Submission is the durable record of one successful analysis. It is
// written once and never updated.
type Submission struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	UserName  string            `json:"user_name"`
	Content   SubmissionContent `json:"content"`
	Report    AnalysisReport    `json:"report"`
	CreatedAt time.Time         `json:"created_at"`
}
