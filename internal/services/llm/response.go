package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/moneypulse/internal/models"
)

// ParsedResponse is the result of ParseResponse. It is one of
// NormalizedResponse, LegacyCandidateResponse or Unparseable.
type ParsedResponse interface {
	parsedResponse()
}

// AdviceFields are the values a provider may contribute to a result.
// Health is unclamped; the orchestrator clamps and rounds it.
type AdviceFields struct {
	State    models.State
	Health   float64
	Headline string
	Advice   []string
	Message  string
}

// NormalizedResponse is a document that already carried a valid state, a
// numeric health and a headline or message at the top level.
type NormalizedResponse struct {
	AdviceFields
}

// LegacyCandidateResponse is advice recovered from text: either the leaf
// text of a candidates/content/parts document or a bare text reply.
type LegacyCandidateResponse struct {
	AdviceFields
	// StateCoerced is set when the state was missing or outside the enum
	// and was replaced by models.DefaultState.
	StateCoerced bool
}

// Unparseable means nothing in the document can be trusted
type Unparseable struct {
	Reason string
}

func (NormalizedResponse) parsedResponse()      {}
func (LegacyCandidateResponse) parsedResponse() {}
func (Unparseable) parsedResponse()             {}

// adviceEnvelope is the wire shape shared by every tier
type adviceEnvelope struct {
	State    string          `json:"state"`
	Health   json.RawMessage `json:"health"`
	Headline string          `json:"headline" validate:"required_without_all=Message Advice,max=1000"`
	Message  string          `json:"message" validate:"max=4000"`
	Advice   adviceList      `json:"advice" validate:"max=12,dive,max=1000"`
}

// adviceList accepts an array of strings or a single string
type adviceList []string

func (a *adviceList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = nil
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = adviceList{s}
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	out := make(adviceList, 0, len(list))
	for _, item := range list {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		out = append(out, s)
	}
	*a = out
	return nil
}

var envelopeValidator = validator.New()

// candidateDocument is the provider-specific nested shape
type candidateDocument struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text    string `json:"text"`
				Thought bool   `json:"thought"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// ParseResponse interprets a raw provider document in priority order:
// normalized top-level object, candidates/content/parts leaf text, then the
// document itself as text.
func ParseResponse(raw []byte) ParsedResponse {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Unparseable{Reason: "empty document"}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return parseLegacyText(string(raw))
	}

	if _, ok := top["candidates"]; ok {
		var doc candidateDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return Unparseable{Reason: fmt.Sprintf("malformed candidates: %v", err)}
		}
		text := candidateText(doc)
		if strings.TrimSpace(text) == "" {
			return Unparseable{Reason: "candidates carry no text"}
		}
		return parseLegacyText(text)
	}

	return parseNormalized(raw)
}

func parseNormalized(raw []byte) ParsedResponse {
	var env adviceEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Unparseable{Reason: fmt.Sprintf("invalid object: %v", err)}
	}

	state, ok := models.ParseState(env.State)
	if !ok {
		return Unparseable{Reason: fmt.Sprintf("state %q not allowed", env.State)}
	}
	health, ok := jsonNumber(env.Health)
	if !ok {
		return Unparseable{Reason: "health is not numeric"}
	}
	if strings.TrimSpace(env.Headline) == "" && strings.TrimSpace(env.Message) == "" {
		return Unparseable{Reason: "no headline or message"}
	}
	if err := envelopeValidator.Struct(env); err != nil {
		return Unparseable{Reason: fmt.Sprintf("envelope rejected: %v", err)}
	}

	return NormalizedResponse{AdviceFields: AdviceFields{
		State:    state,
		Health:   health,
		Headline: env.Headline,
		Advice:   []string(env.Advice),
		Message:  env.Message,
	}}
}

// candidateText joins the non-thought parts of the first candidate that has text
func candidateText(doc candidateDocument) string {
	for _, c := range doc.Candidates {
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if p.Thought {
				continue
			}
			b.WriteString(p.Text)
		}
		if strings.TrimSpace(b.String()) != "" {
			return b.String()
		}
	}
	return ""
}

func parseLegacyText(text string) ParsedResponse {
	object, ok := ExtractJSONObject(StripCodeFences(text))
	if !ok {
		return Unparseable{Reason: "no JSON object in text"}
	}

	var env adviceEnvelope
	if err := json.Unmarshal([]byte(object), &env); err != nil {
		return Unparseable{Reason: fmt.Sprintf("invalid object in text: %v", err)}
	}
	if err := envelopeValidator.Struct(env); err != nil {
		return Unparseable{Reason: fmt.Sprintf("envelope rejected: %v", err)}
	}

	health, ok := lenientNumber(env.Health)
	if !ok {
		return Unparseable{Reason: "health is not numeric"}
	}

	state, known := models.ParseState(env.State)
	if !known {
		state = models.DefaultState
	}

	return LegacyCandidateResponse{
		AdviceFields: AdviceFields{
			State:    state,
			Health:   health,
			Headline: env.Headline,
			Advice:   []string(env.Advice),
			Message:  env.Message,
		},
		StateCoerced: !known,
	}
}

// jsonNumber accepts only a finite JSON number
func jsonNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// lenientNumber also accepts numeric strings such as "72" or "72%"
func lenientNumber(raw json.RawMessage) (float64, bool) {
	if v, ok := jsonNumber(raw); ok {
		return v, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

var codeFenceRegex = regexp.MustCompile("```[A-Za-z0-9_-]*")

// StripCodeFences removes markdown code fence markers and their language tags
func StripCodeFences(text string) string {
	return strings.TrimSpace(codeFenceRegex.ReplaceAllString(text, ""))
}

// ExtractJSONObject returns the first balanced {...} span that is valid JSON.
// Braces inside string literals are ignored. Spans that balance but do not
// parse are skipped and scanning resumes after their opening brace.
func ExtractJSONObject(text string) (string, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end, ok := matchBrace(text, start); ok {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}

		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace returns the index of the brace closing the one at start
func matchBrace(text string, start int) (int, bool) {
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
				return i, true
			}
		}
	}
	return 0, false
}
