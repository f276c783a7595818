package scoring

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Response is the structured payload extracted from one oracle reply.
type Response struct {
	Score        *float64
	Evidence     string
	Reasoning    string
	Improvements string
}

type rawResponse struct {
	Score        json.RawMessage `json:"score"`
	Evidence     json.RawMessage `json:"evidence"`
	Reasoning    string          `json:"reasoning"`
	Improvements string          `json:"improvements"`
}

// ParseResponse extracts the scoring payload from raw oracle text. The
// oracle may wrap the JSON object in prose; only the first balanced {...}
// substring is decoded. Lone backslashes that are not valid JSON escapes
// (LaTeX and Windows paths echoed back from the documents are the usual
// culprits) are doubled before decoding; anything still malformed goes
// through jsonrepair before giving up.
func ParseResponse(text string) (*Response, error) {
	obj, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	raw, err := decodeResponse(obj)
	if err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(obj)
		if repairErr != nil {
			return nil, fmt.Errorf("decode oracle response: %w", err)
		}
		raw, err = decodeResponse(repaired)
		if err != nil {
			return nil, fmt.Errorf("decode oracle response: %w", err)
		}
	}

	resp := &Response{
		Evidence:     decodeEvidence(raw.Evidence),
		Reasoning:    raw.Reasoning,
		Improvements: raw.Improvements,
	}
	if score, ok := decodeScore(raw.Score); ok {
		resp.Score = &score
	}
	return resp, nil
}

func decodeResponse(obj string) (*rawResponse, error) {
	var raw rawResponse
	if err := json.Unmarshal([]byte(RepairEscapes(obj)), &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

// ExtractJSON returns the first balanced top-level {...} substring of text,
// honoring string literals and escape sequences while matching braces.
func ExtractJSON(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object in oracle response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON object in oracle response")
}

// RepairEscapes doubles backslashes that do not begin a valid JSON escape
// sequence, so literal \x or C:\path fragments inside string values survive
// the decoder.
func RepairEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(s) && validEscape(s[i+1]) {
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteString(`\\`)
	}
	return b.String()
}

func validEscape(c byte) bool {
	switch c {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
		return true
	}
	return false
}

// decodeScore tolerates numeric and quoted-numeric score fields.
func decodeScore(raw json.RawMessage) (float64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	s = strings.Trim(s, `"`)
	score, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return score, true
}

// decodeEvidence tolerates both a string and a list of strings, since the
// prompt asks for a list but models frequently return prose.
func decodeEvidence(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return strings.TrimSpace(string(raw))
}
