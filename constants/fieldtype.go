package constants

import "strings"

// FieldType is the semantic kind of an extracted form field.
type FieldType string

const (
	Text     FieldType = "text"
	Number   FieldType = "number"
	Date     FieldType = "date"
	Email    FieldType = "email"
	Phone    FieldType = "phone"
	Checkbox FieldType = "checkbox"
	Radio    FieldType = "radio"
	Select   FieldType = "select"
	Textarea FieldType = "textarea"
)

var allFieldTypes = []FieldType{
	Text,
	Number,
	Date,
	Email,
	Phone,
	Checkbox,
	Radio,
	Select,
	Textarea,
}

func FieldTypesAsStringSlice() []string {
	result := make([]string, len(allFieldTypes))
	for i, t := range allFieldTypes {
		result[i] = string(t)
	}
	return result
}

// CanonicalizeFieldType maps a free-form label from a model response to a
// known field type. Unknown or empty labels fall back to Text.
func CanonicalizeFieldType(s string) (FieldType, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, t := range allFieldTypes {
		if key == string(t) {
			return t, true
		}
	}
	switch key {
	case "tel", "telephone":
		return Phone, true
	case "numeric", "integer", "decimal":
		return Number, true
	case "dropdown":
		return Select, true
	case "multiline", "text_area":
		return Textarea, true
	}
	return Text, false
}
