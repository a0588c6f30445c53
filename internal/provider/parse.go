package provider

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/shenprabu/FileReadAI/constants"
	"github.com/shenprabu/FileReadAI/internal/common"
)

var (
	reFenceOpen  = regexp.MustCompile("(?i)```(?:json)?\\s*")
	reFenceClose = regexp.MustCompile("```\\s*$")
)

const defaultConfidence = 0.8

// ExtractJSON pulls the JSON object out of free-text model output.
// Models wrap output in code fences or prose; this strips fences,
// locates the outermost {...} object and un-escapes doubled or escaped
// quotes left over from nested serialization. Failures surface as
// common.ErrExtractionParse.
func ExtractJSON(content string) ([]byte, error) {
	s := strings.TrimSpace(content)
	s = reFenceOpen.ReplaceAllString(s, "")
	s = reFenceClose.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in response", common.ErrExtractionParse)
	}
	s = s[start : end+1]

	if json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	// Some models double or escape quotes when they re-serialize JSON
	// they produced as a string. Try the obvious un-escapes in order.
	for _, fixed := range []string{
		strings.ReplaceAll(s, `""`, `"`),
		strings.ReplaceAll(s, `\"`, `"`),
	} {
		if json.Valid([]byte(fixed)) {
			return []byte(fixed), nil
		}
	}
	return nil, fmt.Errorf("%w: malformed JSON object", common.ErrExtractionParse)
}

// ParseExtraction turns raw model output text into the normalized
// payload: extract the JSON object, default missing field properties,
// clamp bounding boxes, then validate against the payload schema.
func ParseExtraction(content string, logger *slog.Logger) (RawExtraction, error) {
	if logger == nil {
		logger = slog.Default()
	}

	raw, err := ExtractJSON(content)
	if err != nil {
		return RawExtraction{}, err
	}

	normalized, notes, err := normalizePayload(raw)
	if err != nil {
		return RawExtraction{}, fmt.Errorf("%w: %v", common.ErrExtractionParse, err)
	}
	if len(notes) > 0 {
		logger.Warn("provider.parse.normalized", "notes", notes)
	}

	if err := ValidateJSONAgainstSchema(BuildExtractionJSONSchema(), normalized); err != nil {
		return RawExtraction{}, fmt.Errorf("%w: %v", common.ErrExtractionParse, err)
	}

	var out RawExtraction
	if err := json.Unmarshal(normalized, &out); err != nil {
		return RawExtraction{}, fmt.Errorf("%w: decode normalized payload: %v", common.ErrExtractionParse, err)
	}
	return out, nil
}

// normalizePayload applies the defaulting contract before validation:
// missing label -> "Field N", scalar values coerced to strings and
// missing ones -> "", unknown type -> text, missing confidence -> 0.8,
// boxes clamped to [0,1].
func normalizePayload(raw []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("decode: %w", err)
	}

	var notes []string

	if v, ok := m["formTitle"].(string); ok {
		if s := strings.TrimSpace(v); s == "" {
			delete(m, "formTitle")
			notes = append(notes, "formTitle(empty)")
		} else {
			m["formTitle"] = s
		}
	} else if _, present := m["formTitle"]; present {
		delete(m, "formTitle")
		notes = append(notes, "formTitle(type)")
	}

	items, ok := m["fields"].([]any)
	if !ok {
		return nil, notes, fmt.Errorf("missing fields array")
	}
	fields := make([]any, 0, len(items))
	for i, it := range items {
		f, ok := it.(map[string]any)
		if !ok {
			notes = append(notes, fmt.Sprintf("fields[%d](type)", i))
			continue
		}
		if label, ok := f["label"].(string); !ok || strings.TrimSpace(label) == "" {
			f["label"] = fmt.Sprintf("Field %d", i+1)
			notes = append(notes, fmt.Sprintf("fields[%d].label(default)", i))
		} else {
			f["label"] = strings.TrimSpace(label)
		}
		switch v := f["value"].(type) {
		case string:
		case float64:
			f["value"] = strconv.FormatFloat(v, 'f', -1, 64)
			notes = append(notes, fmt.Sprintf("fields[%d].value(number)", i))
		case bool:
			f["value"] = strconv.FormatBool(v)
			notes = append(notes, fmt.Sprintf("fields[%d].value(bool)", i))
		default:
			f["value"] = ""
		}
		ts, _ := f["type"].(string)
		ft, known := constants.CanonicalizeFieldType(ts)
		if !known && ts != "" {
			notes = append(notes, fmt.Sprintf("fields[%d].type(%s)", i, ts))
		}
		f["type"] = string(ft)
		switch c := f["confidence"].(type) {
		case float64:
			f["confidence"] = clamp01(c)
		default:
			f["confidence"] = defaultConfidence
		}
		if box, ok := f["boundingBox"].(map[string]any); ok {
			clamped, ok := clampBox(box)
			if !ok {
				delete(f, "boundingBox")
				notes = append(notes, fmt.Sprintf("fields[%d].boundingBox(invalid)", i))
			} else {
				f["boundingBox"] = clamped
			}
		} else if _, present := f["boundingBox"]; present {
			delete(f, "boundingBox")
			notes = append(notes, fmt.Sprintf("fields[%d].boundingBox(type)", i))
		}
		fields = append(fields, f)
	}
	m["fields"] = fields

	out, err := json.Marshal(m)
	if err != nil {
		return nil, notes, fmt.Errorf("encode: %w", err)
	}
	return out, notes, nil
}

// clampBox bounds every coordinate to [0,1]. The prompt contract asserts
// the convention but provider output is never trusted to honor it.
func clampBox(box map[string]any) (map[string]any, bool) {
	out := make(map[string]any, 4)
	for _, k := range []string{"x", "y", "width", "height"} {
		v, ok := box[k].(float64)
		if !ok {
			return nil, false
		}
		out[k] = clamp01(v)
	}
	return out, true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
