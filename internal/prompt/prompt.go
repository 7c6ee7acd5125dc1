// Package prompt holds the instruction templates sent to the language models.
package prompt

import (
	"fmt"
	"strings"
)

// ClassificationSystem pins the classification call to a bare JSON answer.
const ClassificationSystem = `You are a careful linguistic error-checker. Respond with a single valid JSON object and nothing else.`

const classificationTemplate = `You are an expert Norwegian and English linguistic error-checker.
Your default assumption is that all text is human-written.
Your only job is to find any "perfect imperfection" that confirms this.

THE TEXT TO ANALYZE:
---
%s
---

ANALYSIS INSTRUCTIONS:

Part 1: The "Human Imperfection" Test
Scan the text only for imperfections that signal a human author. List all that you find.
These include:
- Grammatical errors (e.g. Norwegian 'og' vs. 'å' misuse like 'fra og se', or verb forms like 'har betyd' instead of 'har betydd').
- Clunky, awkward, or slightly unnatural sentence constructions.
- A unique, non-obvious insight or a clear personal voice.
- Minor typos or spacing errors.

Part 2: The "Veto Rule" (the final decision)
- IF you found any imperfections in Part 1 (even one), you MUST set "likelihood" to "Very Low".
- ONLY IF you found no imperfections (the text is completely flawless) may you classify it as "Medium" or "High".

RETURN A JSON OBJECT with this exact schema:

{
  "likelihood": "Your final verdict, following the Veto Rule ('Very Low', 'Low', 'Medium', 'High', 'Very High')"
}`

// Classification embeds the document in the authorship classification template.
func Classification(text string) string {
	return fmt.Sprintf(classificationTemplate, text)
}

const sourcesSchema = `Return a JSON object with one key: "sources".
"sources" must be an array of objects. Each object must have:
1. "url": the source URL
2. "title": the page or article title
3. "snippet": a quote from the text that matches the source

If the text appears to be original, return an empty "sources" array: { "sources": [] }
Never omit the "sources" key.`

// RecallSystem instructs a model to find sources from its own training data.
const RecallSystem = `You are an expert plagiarism detection specialist. Your task is to identify if the provided text has been copied or heavily paraphrased from online sources.

The text may be in Norwegian or English.

You have access to a vast knowledge base. Use your training data to identify if this text matches content from:
- Wikipedia articles
- News websites
- Educational websites
- Blogs and online articles
- Academic sources
- Any other online publications

If you recognize the text or parts of it as matching known online sources, provide those sources.
When you know the site but not the exact page, use the site's root URL as a placeholder (e.g. "https://wikipedia.org/").

` + sourcesSchema

// SearchSystem instructs a model to judge a fixed set of web search results.
const SearchSystem = `You are an expert plagiarism detection specialist. Your task is to identify if the provided text has been copied or heavily paraphrased from online sources.

The text may be in Norwegian or English.

The user message contains the text followed by a numbered list of live web search results.
Report ONLY sources that appear in that list and whose content matches the text. Copy each "url" exactly as listed.
Do not report sources from memory and do not invent URLs.

` + sourcesSchema

// SonarSystem instructs a model with a built-in web search tool.
const SonarSystem = `You are an expert plagiarism detection specialist. Search the web for pages that contain the provided text, or a close paraphrase of it.

The text may be in Norwegian or English.

Report ONLY sources you actually found with your web search in this session. Do not report sources from memory and never use placeholder URLs.

` + sourcesSchema

// SearchResult is one hit handed to the model as grounding.
type SearchResult struct {
	URL     string
	Title   string
	Content string
}

// maxResultContent caps each result excerpt placed in the prompt.
const maxResultContent = 600

// SearchContext renders the document followed by the numbered search results.
func SearchContext(text string, results []SearchResult) string {
	var sb strings.Builder
	sb.WriteString("TEXT:\n---\n")
	sb.WriteString(text)
	sb.WriteString("\n---\n\nSEARCH RESULTS:\n")
	if len(results) == 0 {
		sb.WriteString("(none)\n")
	}
	for i, r := range results {
		content := r.Content
		if runes := []rune(content); len(runes) > maxResultContent {
			content = string(runes[:maxResultContent])
		}
		fmt.Fprintf(&sb, "%d. %s\n   URL: %s\n   %s\n", i+1, r.Title, r.URL, strings.TrimSpace(content))
	}
	return sb.String()
}
