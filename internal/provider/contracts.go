package provider

import "context"

// PageImage is one rendered document page submitted for extraction.
type PageImage struct {
	Data []byte
	MIME string
	Page int // 1-indexed source page
}

// RawBox is a normalized bounding rectangle, top-left origin, [0,1].
type RawBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RawField is one extracted field in the provider-agnostic normalized
// shape every backend must produce.
type RawField struct {
	Label       string  `json:"label"`
	Value       string  `json:"value"`
	Type        string  `json:"type"`
	Confidence  float64 `json:"confidence"`
	BoundingBox *RawBox `json:"boundingBox,omitempty"`
}

// RawExtraction is the normalized result of one page's extraction call.
type RawExtraction struct {
	FormTitle string     `json:"formTitle,omitempty"`
	Fields    []RawField `json:"fields"`
}

// Backend is the capability interface every vision extraction service
// implements.
type Backend interface {
	// Key is the stable registry identifier (e.g. "openai").
	Key() string
	// Name is the human-readable provider name for error messages.
	Name() string
	// IsConfigured reports whether the backend's credential is present.
	// Recomputed per call; credentials may be supplied at runtime.
	IsConfigured() bool
	// Extract submits one page image with the fixed extraction
	// instruction and returns the normalized payload.
	Extract(ctx context.Context, img PageImage) (RawExtraction, error)
}

// Info describes one registered backend for listing.
type Info struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}
