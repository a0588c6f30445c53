package fields

import (
	"time"

	"github.com/shenprabu/FileReadAI/constants"
)

// BoundingBox locates a field within its source page image. Coordinates
// are normalized to [0,1] with (x, y) at the top-left corner.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Field is one extracted form field.
type Field struct {
	ID          string              `json:"id"`
	Label       string              `json:"label"`
	Value       string              `json:"value"`
	Type        constants.FieldType `json:"type"`
	Confidence  float64             `json:"confidence"`
	Verified    bool                `json:"verified"`
	Page        int                 `json:"page"`
	BoundingBox *BoundingBox        `json:"boundingBox,omitempty"`
}

// ExtractedData is the aggregate result for the active document. Fields
// keep insertion order (extraction/add order), not page order.
type ExtractedData struct {
	FormTitle   string    `json:"formTitle,omitempty"`
	Fields      []Field   `json:"fields"`
	ExtractedAt time.Time `json:"extractedAt"`
}
