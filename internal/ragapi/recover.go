package ragapi

import (
	"encoding/json"
	"regexp"
)

// Recovery for streams that ended without a parseable structured tail.
// Tier 1 parses the whole accumulated text as JSON. Tier 2 extracts the
// answer and passages with tolerant regexes. Tier 3 falls back to the raw
// text as the answer. The tiers are ordered; earlier wins.

var (
	answerPattern   = regexp.MustCompile(`(?s)"answer"\s*:\s*"((?:\\.|[^"\\])*)"`)
	passagesPattern = regexp.MustCompile(`(?s)"passages"\s*:\s*(\[.*?\])`)
)

func recoverResponse(raw string, req ChatRequest) *ChatResponse {
	if resp := parseWholeResponse(raw); resp != nil {
		return applyRequestDefaults(resp, req)
	}

	resp := &ChatResponse{}
	if answer, ok := extractAnswer(raw); ok {
		resp.Answer = answer
		resp.Passages = extractPassages(raw)
	} else {
		resp.Answer = raw
	}
	return applyRequestDefaults(resp, req)
}

func parseWholeResponse(raw string) *ChatResponse {
	var resp ChatResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil
	}
	return &resp
}

// extractAnswer pulls a quoted answer field out of otherwise unparseable
// text, JSON-unescaping the captured value.
func extractAnswer(raw string) (string, bool) {
	m := answerPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return unescapeJSONString(m[1]), true
}

// extractPassages pulls a passages array out of the text and parses it
// independently. Any parse failure yields an empty list.
func extractPassages(raw string) []Passage {
	m := passagesPattern.FindStringSubmatch(raw)
	if m == nil {
		return []Passage{}
	}
	var passages []Passage
	if err := json.Unmarshal([]byte(m[1]), &passages); err != nil {
		return []Passage{}
	}
	return passages
}

func unescapeJSONString(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}
	return out
}

// applyRequestDefaults echoes request parameters into a recovered response
// so callers always see a fully populated result.
func applyRequestDefaults(resp *ChatResponse, req ChatRequest) *ChatResponse {
	if resp.Model == "" {
		resp.Model = req.AnswerModel
	}
	if resp.TopK == 0 {
		resp.TopK = req.TopK
	}
	if resp.Mode == "" {
		resp.Mode = req.Mode
	}
	if resp.SessionID == "" {
		resp.SessionID = req.SessionID
	}
	if resp.Passages == nil {
		resp.Passages = []Passage{}
	}
	return resp
}
