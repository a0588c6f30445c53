package provider

import (
	"strings"

	"github.com/shenprabu/FileReadAI/constants"
)

// BuildExtractionPrompt composes the fixed extraction instruction sent
// with every page image. All backends share this prompt contract so the
// response can be normalized by a single parsing stage.
func BuildExtractionPrompt() string {
	parts := []string{
		"You are a form parser. Analyze the attached form image and extract every labeled field.",
		"Return ONLY a JSON object, no prose, no markdown.",
		`The object has an optional "formTitle" string and a "fields" array.`,
		`Each field is {"label", "value", "type", "confidence", "boundingBox"}.`,
		"label is the printed field name; value is the filled-in or printed content, empty string if blank.",
		"type must be one of: " + strings.Join(constants.FieldTypesAsStringSlice(), ", ") + ".",
		"confidence is your certainty in [0,1].",
		`boundingBox is {"x","y","width","height"} normalized to [0,1] relative to the image, (x,y) at the top-left corner of the field; omit it if you cannot locate the field.`,
		"Never output null. If a property is unknown, omit it.",
	}
	return strings.Join(parts, " ")
}
