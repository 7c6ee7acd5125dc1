package gateway

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/docscan/internal/model"
)

// cleanJSON strips markdown fences and extracts the outermost JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

func decodeLikelihood(text string) (model.LikelihoodReport, error) {
	var out model.LikelihoodReport
	if err := json.Unmarshal([]byte(cleanJSON(text)), &out); err != nil {
		return model.LikelihoodReport{}, eris.Wrap(err, "gateway: decode likelihood")
	}
	out.Likelihood = model.Likelihood(strings.TrimSpace(string(out.Likelihood)))
	return out, nil
}

// decodeSources parses a {"sources": [...]} payload. A missing key yields an
// empty, non-nil slice.
func decodeSources(text string) ([]model.SourceMatch, error) {
	var out struct {
		Sources []model.SourceMatch `json:"sources"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), &out); err != nil {
		return nil, eris.Wrap(err, "gateway: decode sources")
	}
	if out.Sources == nil {
		return []model.SourceMatch{}, nil
	}
	return out.Sources, nil
}

func urlKey(u string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(u), "/"))
}

// keepGrounded drops every source whose URL is not in allowed.
func keepGrounded(sources []model.SourceMatch, allowed []string) []model.SourceMatch {
	set := make(map[string]struct{}, len(allowed))
	for _, u := range allowed {
		set[urlKey(u)] = struct{}{}
	}
	kept := make([]model.SourceMatch, 0, len(sources))
	for _, s := range sources {
		if _, ok := set[urlKey(s.URL)]; ok {
			kept = append(kept, s)
		}
	}
	return kept
}
