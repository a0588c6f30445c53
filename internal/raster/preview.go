package raster

import "sync"

// Preview is a transient reference to one rendered page. It is the Go
// analogue of a revocable object URL: callers must treat it as invalid
// once released, and acquiring a new preview through the document
// releases the previous one.
type Preview struct {
	Page int
	MIME string

	mu       sync.Mutex
	data     []byte
	released bool
}

func newPreview(page int, mimeType string, data []byte) *Preview {
	return &Preview{Page: page, MIME: mimeType, data: data}
}

// Data returns the image bytes, or nil after Release.
func (p *Preview) Data() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return nil
	}
	return p.data
}

// Release invalidates the reference. Safe to call twice.
func (p *Preview) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released = true
	p.data = nil
}

// Released reports whether the reference has been invalidated.
func (p *Preview) Released() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}
