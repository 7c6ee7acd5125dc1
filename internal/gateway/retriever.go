package gateway

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/docscan/internal/model"
	"github.com/sells-group/docscan/internal/prompt"
	"github.com/sells-group/docscan/pkg/anthropic"
	"github.com/sells-group/docscan/pkg/jina"
	"github.com/sells-group/docscan/pkg/perplexity"
)

// Retriever finds online sources that resemble a document.
type Retriever interface {
	Retrieve(ctx context.Context, text string) ([]model.SourceMatch, error)
	Mode() string
}

// Retrieval modes.
const (
	ModeRecall = "recall"
	ModeSearch = "search"
	ModeSonar  = "sonar"
)

// RetrieverDeps carries the clients and limits a retriever may need.
type RetrieverDeps struct {
	Anthropic  anthropic.Client
	Model      string
	MaxTokens  int64
	Jina       jina.Client
	Perplexity perplexity.Client
	MaxQueries int
	MaxResults int
}

// NewRetriever builds the retriever for mode.
func NewRetriever(mode string, d RetrieverDeps) (Retriever, error) {
	maxTokens := d.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	switch mode {
	case ModeRecall:
		if d.Anthropic == nil {
			return nil, eris.New("gateway: recall retrieval needs an anthropic client")
		}
		return &RecallRetriever{ai: d.Anthropic, model: d.Model, maxTokens: maxTokens}, nil
	case ModeSearch:
		if d.Anthropic == nil || d.Jina == nil {
			return nil, eris.New("gateway: search retrieval needs anthropic and jina clients")
		}
		return &SearchRetriever{
			ai:         d.Anthropic,
			model:      d.Model,
			maxTokens:  maxTokens,
			search:     d.Jina,
			maxQueries: max(d.MaxQueries, 1),
			maxResults: max(d.MaxResults, 1),
		}, nil
	case ModeSonar:
		if d.Perplexity == nil {
			return nil, eris.New("gateway: sonar retrieval needs a perplexity client")
		}
		return &SonarRetriever{client: d.Perplexity}, nil
	default:
		return nil, eris.Errorf("gateway: unknown retrieval mode %q", mode)
	}
}

// RecallRetriever asks a model to recognise the text from its training data.
// Reported URLs may be placeholders.
type RecallRetriever struct {
	ai        anthropic.Client
	model     string
	maxTokens int64
}

func (r *RecallRetriever) Mode() string { return ModeRecall }

func (r *RecallRetriever) Retrieve(ctx context.Context, text string) ([]model.SourceMatch, error) {
	resp, err := r.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     r.model,
		MaxTokens: r.maxTokens,
		System:    prompt.RecallSystem,
		Messages:  []anthropic.Message{{Role: "user", Content: text}},
	})
	if err != nil {
		return nil, err
	}
	resp.Usage.LogCost(r.model, "retrieval_recall")
	return decodeSources(resp.Text())
}

// SearchRetriever runs live web searches for the most distinctive sentences
// and lets a model pick matching results. Only URLs that came back from the
// search are reported.
type SearchRetriever struct {
	ai         anthropic.Client
	model      string
	maxTokens  int64
	search     jina.Client
	maxQueries int
	maxResults int
}

func (r *SearchRetriever) Mode() string { return ModeSearch }

func (r *SearchRetriever) Retrieve(ctx context.Context, text string) ([]model.SourceMatch, error) {
	var results []prompt.SearchResult
	var urls []string
	seen := make(map[string]struct{})

	for _, q := range searchQueries(text, r.maxQueries) {
		resp, err := r.search.Search(ctx, q)
		if err != nil {
			return nil, err
		}
		for i, hit := range resp.Data {
			if i >= r.maxResults {
				break
			}
			key := urlKey(hit.URL)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			content := hit.Content
			if content == "" {
				content = hit.Description
			}
			results = append(results, prompt.SearchResult{URL: hit.URL, Title: hit.Title, Content: content})
			urls = append(urls, hit.URL)
		}
	}

	if len(results) == 0 {
		return []model.SourceMatch{}, nil
	}

	resp, err := r.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     r.model,
		MaxTokens: r.maxTokens,
		System:    prompt.SearchSystem,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt.SearchContext(text, results)}},
	})
	if err != nil {
		return nil, err
	}
	resp.Usage.LogCost(r.model, "retrieval_search")

	sources, err := decodeSources(resp.Text())
	if err != nil {
		return nil, err
	}
	kept := keepGrounded(sources, urls)
	if dropped := len(sources) - len(kept); dropped > 0 {
		zap.L().Debug("gateway: dropped ungrounded sources", zap.String("mode", ModeSearch), zap.Int("dropped", dropped))
	}
	return kept, nil
}

// SonarRetriever delegates to a model with built-in web search. Sources the
// response does not cite are dropped.
type SonarRetriever struct {
	client perplexity.Client
}

func (r *SonarRetriever) Mode() string { return ModeSonar }

func (r *SonarRetriever) Retrieve(ctx context.Context, text string) ([]model.SourceMatch, error) {
	resp, err := r.client.ChatCompletion(ctx, perplexity.SonarRequest(prompt.SonarSystem, text))
	if err != nil {
		return nil, err
	}

	sources, err := decodeSources(resp.Content())
	if err != nil {
		return nil, err
	}
	kept := keepGrounded(sources, resp.GroundedURLs())
	if dropped := len(sources) - len(kept); dropped > 0 {
		zap.L().Debug("gateway: dropped ungrounded sources", zap.String("mode", ModeSonar), zap.Int("dropped", dropped))
	}
	return kept, nil
}

const (
	minQueryWords = 6
	maxQueryWords = 24
)

// searchQueries picks up to n of the longest sentences as exact-phrase
// queries, returned in document order. Text without a long enough sentence
// is searched as a single phrase.
func searchQueries(text string, n int) []string {
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})

	type candidate struct {
		pos   int
		words []string
	}
	var cands []candidate
	for i, s := range sentences {
		words := strings.FieldsFunc(s, unicode.IsSpace)
		if len(words) < minQueryWords {
			continue
		}
		if len(words) > maxQueryWords {
			words = words[:maxQueryWords]
		}
		cands = append(cands, candidate{pos: i, words: words})
	}

	if len(cands) == 0 {
		words := strings.FieldsFunc(text, unicode.IsSpace)
		if len(words) == 0 {
			return nil
		}
		if len(words) > maxQueryWords {
			words = words[:maxQueryWords]
		}
		return []string{`"` + strings.Join(words, " ") + `"`}
	}

	sort.SliceStable(cands, func(i, j int) bool { return len(cands[i].words) > len(cands[j].words) })
	if len(cands) > n {
		cands = cands[:n]
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].pos < cands[j].pos })

	queries := make([]string, len(cands))
	for i, c := range cands {
		queries[i] = `"` + strings.Join(c.words, " ") + `"`
	}
	return queries
}
