package pipeline

import (
	"fmt"
	"sync"

	"github.com/shenprabu/FileReadAI/internal/common"
	"github.com/shenprabu/FileReadAI/internal/raster"
)

// sessionState is the document session owned exclusively by the
// pipeline: the active document, the in-flight guard and the progress
// marker. Everything else reads it through the Pipeline accessors.
type sessionState struct {
	mu sync.Mutex

	doc            *raster.Document
	runState       RunState
	processingPage int
}

// replace swaps in a new document (or nil to clear), tearing down the
// old one. Rejected while a run is in flight.
func (s *sessionState) replace(doc *raster.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runState == StateRunning {
		return common.ErrAlreadyProcessing
	}
	if s.doc != nil {
		s.doc.Close()
	}
	s.doc = doc
	s.runState = StateIdle
	s.processingPage = 0
	return nil
}

// beginRun transitions Idle (or a finished state) to Running. At most
// one run is in flight per session.
func (s *sessionState) beginRun() (*raster.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, fmt.Errorf("%w: no document loaded", common.ErrInvalidFile)
	}
	if s.runState == StateRunning {
		return nil, common.ErrAlreadyProcessing
	}
	s.runState = StateRunning
	s.processingPage = 0
	return s.doc, nil
}

func (s *sessionState) setRunningPage(page int) {
	s.mu.Lock()
	s.processingPage = page
	s.mu.Unlock()
}

func (s *sessionState) endRun(final RunState) {
	s.mu.Lock()
	s.runState = final
	s.processingPage = 0
	s.mu.Unlock()
}

func (s *sessionState) progress() (page, total int, processing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total = 0
	if s.doc != nil {
		total = s.doc.Pages
	}
	return s.processingPage, total, s.runState == StateRunning
}

func (s *sessionState) state() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return StateIdle
	}
	return s.runState
}

// navigable returns the document for preview rendering. Page controls
// are disabled while an extraction is running.
func (s *sessionState) navigable(page int) (*raster.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, fmt.Errorf("%w: no document loaded", common.ErrInvalidFile)
	}
	if s.runState == StateRunning {
		return nil, common.ErrAlreadyProcessing
	}
	if page < 1 || page > s.doc.Pages {
		return nil, fmt.Errorf("%w: page %d out of range [1,%d]", common.ErrInvalidFile, page, s.doc.Pages)
	}
	return s.doc, nil
}
