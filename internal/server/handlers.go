package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sells-group/docscan/internal/analyze"
	"github.com/sells-group/docscan/internal/model"
)

const maxBodyBytes = 5 << 20

type analyzeRequest struct {
	Text *string `json:"text"`
}

type analyzeResponse struct {
	Status       string               `json:"status"`
	Report       model.AnalysisReport `json:"report"`
	SubmissionID string               `json:"submission_id"`
}

type submissionsResponse struct {
	Submissions []model.Submission `json:"submissions"`
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		writeError(w, r, &analyze.AuthError{Detail: "Missing or invalid authorization header"})
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, r, &analyze.ValidationError{Detail: "Invalid request body: " + err.Error()})
		return
	}
	if req.Text == nil {
		writeError(w, r, &analyze.ValidationError{Detail: "Field 'text' is required"})
		return
	}

	res, err := s.analyzer.Analyze(r.Context(), user, *req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{
		Status:       "success",
		Report:       res.Report,
		SubmissionID: res.SubmissionID,
	})
}

func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		writeError(w, r, &analyze.AuthError{Detail: "Missing or invalid authorization header"})
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, &analyze.ValidationError{Detail: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	subs, err := s.analyzer.History(r.Context(), user, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submissionsResponse{Submissions: subs})
}
