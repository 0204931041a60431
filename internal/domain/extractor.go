package domain

import (
	"encoding/json"
	"strings"
)

// ValueExtractor derives the numeric contribution of an event record. The
// boolean result is false when no value can be derived, in which case the
// objective type is skipped for that event.
type ValueExtractor interface {
	Extract(record map[string]interface{}) (float64, bool)
}

// CountExtractor contributes exactly 1 per event regardless of the record,
// including an empty one. Used for "number of X" metrics.
type CountExtractor struct{}

func (CountExtractor) Extract(map[string]interface{}) (float64, bool) {
	return 1, true
}

// PathExtractor walks a dot-separated path over the record. A missing or
// null segment, or a non-numeric leaf, yields no value.
type PathExtractor struct {
	Path string
}

func (e PathExtractor) Extract(record map[string]interface{}) (float64, bool) {
	if e.Path == "" {
		return 0, false
	}

	var current interface{} = record
	for _, segment := range strings.Split(e.Path, ".") {
		node, ok := current.(map[string]interface{})
		if !ok {
			return 0, false
		}
		current, ok = node[segment]
		if !ok || current == nil {
			return 0, false
		}
	}

	return toFloat(current)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// ExtractorFor returns the extractor implementing a declared value field
func ExtractorFor(field ValueField) ValueExtractor {
	if field.CountMode {
		return CountExtractor{}
	}
	return PathExtractor{Path: field.Path}
}
