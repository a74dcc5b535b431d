package rewrite

import (
	"errors"
	"strings"

	json5 "github.com/yosuke-furukawa/json5/encoding/json5"
)

var (
	errNoJSONObject   = errors.New("no JSON object in model output")
	errUnbalancedJSON = errors.New("unbalanced braces in model output")
)

type modelPlan struct {
	SearchQueries []string `json:"search_queries"`
	Language      string   `json:"language"`
	TimeFilter    *string  `json:"time_filter"`
	SearchType    string   `json:"search_type"`
}

// extractJSONObject returns the first balanced {...} span in text, which lets
// code fences and surrounding prose through.
func extractJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", errNoJSONObject
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", errUnbalancedJSON
}

func parseModelPlan(text string) (modelPlan, error) {
	var parsed modelPlan
	object, err := extractJSONObject(text)
	if err != nil {
		return parsed, err
	}
	err = json5.Unmarshal([]byte(object), &parsed)
	return parsed, err
}
