package detector

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/kaptinlin/jsonschema"
)

// VerdictSchema is the JSON schema providers are asked to follow.
const VerdictSchema = `{
  "type": "object",
  "properties": {
    "score": {"type": ["number", "string"]},
    "probability": {"type": ["number", "string"]},
    "label": {"type": "string"},
    "reason": {"type": "string"}
  },
  "anyOf": [
    {"required": ["score"]},
    {"required": ["probability"]}
  ]
}`

var (
	schemaOnce       sync.Once
	verdictSchema    *jsonschema.Schema
	verdictSchemaErr error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		verdictSchema, verdictSchemaErr = compiler.Compile([]byte(VerdictSchema))
	})
	return verdictSchema, verdictSchemaErr
}

// ParseVerdict turns a provider's text answer into a Verdict. It tolerates
// markdown fences, surrounding prose and minor JSON damage.
func ParseVerdict(text string) (*Verdict, error) {
	body := extractObject(stripFences(text))
	if body == "" {
		return nil, &ResponseFormatError{Message: "empty response", Raw: text}
	}

	var obj any
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		repaired, rerr := jsonrepair.RepairJSON(body)
		if rerr != nil {
			return nil, &ResponseFormatError{Message: "json repair failed", Raw: text, Cause: rerr}
		}
		if err := json.Unmarshal([]byte(repaired), &obj); err != nil {
			return nil, &ResponseFormatError{Message: "repaired json is still invalid", Raw: text, Cause: err}
		}
	}

	if err := validateVerdict(obj); err != nil {
		return nil, &ResponseFormatError{Message: "schema validation failed", Raw: text, Cause: err}
	}

	fields := obj.(map[string]any)

	var score float64
	var err error
	if raw, ok := fields["score"]; ok {
		score, err = coerceScore(raw)
		if err == nil && score > 0 && score < 1 {
			score *= 100
		}
	} else {
		score, err = coerceScore(fields["probability"])
		if err == nil && score <= 1 {
			score *= 100
		}
	}
	if err != nil {
		return nil, &ResponseFormatError{Message: "invalid score", Raw: text, Cause: err}
	}

	v := &Verdict{Score: score}
	if s, ok := fields["label"].(string); ok {
		v.Label = s
	}
	if s, ok := fields["reason"].(string); ok {
		v.Reason = s
	}
	return v, nil
}

func validateVerdict(obj any) error {
	if _, ok := obj.(map[string]any); !ok {
		return fmt.Errorf("expected a JSON object, got %T", obj)
	}

	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}

	result := schema.Validate(obj)
	if !result.IsValid() {
		var msgs []string
		for field, verr := range result.Errors {
			msgs = append(msgs, fmt.Sprintf("%s: %s", field, verr.Message))
		}
		sort.Strings(msgs)
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

func coerceScore(raw any) (float64, error) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "%"))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("score %q is not a number", v)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("score has type %T", raw)
	}
	if math.IsInf(f, 0) {
		return 0, fmt.Errorf("score is infinite")
	}
	return f, nil
}

// stripFences removes a surrounding markdown code block, if any.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop the language tag line (```json).
		if tag := strings.TrimSpace(s[:nl]); !strings.ContainsAny(tag, "{[") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// extractObject returns the span from the first '{' to the last '}'.
// Text without a closing brace is returned from the first '{' onward so the
// repair step can close it.
func extractObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return strings.TrimSpace(s)
	}
	end := strings.LastIndexByte(s, '}')
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}
