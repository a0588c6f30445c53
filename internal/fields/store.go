package fields

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/shenprabu/FileReadAI/constants"
	"github.com/shenprabu/FileReadAI/internal/common"
)

// Store owns the canonical in-memory field collection for the current
// document: identity, verification flag, mutations, page filtering.
type Store struct {
	mu          sync.Mutex
	data        *ExtractedData
	currentPage int
	pageCount   int
	logger      *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{data: &ExtractedData{}, currentPage: 1, logger: logger}
}

// Reset replaces the whole collection, e.g. when a new extraction run
// publishes its result object.
func (s *Store) Reset(data *ExtractedData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if data == nil {
		data = &ExtractedData{}
	}
	s.data = data
}

// SetCurrentPage records the page manual additions default to.
func (s *Store) SetCurrentPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page >= 1 {
		s.currentPage = page
	}
}

// SetPageCount records the loaded document's page count so manual
// additions stay within it. Zero means no document is bound.
func (s *Store) SetPageCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n >= 0 {
		s.pageCount = n
	}
}

// AppendExtracted publishes fields produced by an extraction run. This
// is how partial results become visible page by page before the whole
// document finishes.
func (s *Store) AppendExtracted(fs ...Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Fields = append(s.data.Fields, fs...)
}

// SetFormTitle records the detected title. Only page 1's title is ever
// written; the pipeline ignores later pages' titles.
func (s *Store) SetFormTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.FormTitle = title
}

// Data returns a snapshot copy of the collection.
func (s *Store) Data() ExtractedData {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := *s.data
	out.Fields = append([]Field(nil), s.data.Fields...)
	return out
}

// UpdateRequest carries the mutable attributes of a field. Nil means
// leave unchanged.
type UpdateRequest struct {
	Label *string
	Value *string
}

// Update applies label/value changes and marks the field verified: a
// human touched it. Fails with the field-not-found kind for unknown ids
// and the validation kind if the resulting label would be empty.
func (s *Store) Update(id string, req UpdateRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.find(id)
	if f == nil {
		return fmt.Errorf("%w: %s", common.ErrFieldNotFound, id)
	}
	if req.Label != nil && strings.TrimSpace(*req.Label) == "" {
		return fmt.Errorf("%w: label must not be empty", common.ErrValidation)
	}
	if req.Label != nil {
		f.Label = strings.TrimSpace(*req.Label)
	}
	if req.Value != nil {
		f.Value = *req.Value
	}
	f.Verified = true
	s.logger.Debug("fields.update.ok", "id", id)
	return nil
}

// ToggleVerified flips the verification flag.
func (s *Store) ToggleVerified(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.find(id)
	if f == nil {
		return fmt.Errorf("%w: %s", common.ErrFieldNotFound, id)
	}
	f.Verified = !f.Verified
	return nil
}

// Delete removes the field. Deleting an id that is already gone is a
// no-op; ids are never reused so there is nothing to protect.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.Fields {
		if s.data.Fields[i].ID == id {
			s.data.Fields = append(s.data.Fields[:i], s.data.Fields[i+1:]...)
			s.logger.Debug("fields.delete.ok", "id", id)
			return
		}
	}
}

// AddRequest describes a manually entered field.
type AddRequest struct {
	Label string
	Value string
	Type  constants.FieldType
	Page  int // 0 -> document's current page
}

// Add appends a manual field: verified, full confidence, no bounding
// box. Fails with the validation kind on an empty label.
func (s *Store) Add(req AddRequest) (Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	label := strings.TrimSpace(req.Label)
	if label == "" {
		return Field{}, fmt.Errorf("%w: label must not be empty", common.ErrValidation)
	}
	ft := req.Type
	if ft == "" {
		ft = constants.Text
	}
	page := req.Page
	if page < 1 {
		page = s.currentPage
	}
	if s.pageCount > 0 && page > s.pageCount {
		return Field{}, fmt.Errorf("%w: page %d out of range [1,%d]", common.ErrValidation, page, s.pageCount)
	}

	f := Field{
		ID:         uuid.New().String(),
		Label:      label,
		Value:      req.Value,
		Type:       ft,
		Confidence: 1.0,
		Verified:   true,
		Page:       page,
	}
	s.data.Fields = append(s.data.Fields, f)
	s.logger.Debug("fields.add.ok", "id", f.ID, "label", f.Label, "page", f.Page)
	return f, nil
}

// FilterByPage returns the fields on one page, or all fields for page 0.
// Pure read view; the returned slice is a copy.
func (s *Store) FilterByPage(page int) []Field {
	s.mu.Lock()
	defer s.mu.Unlock()

	if page == 0 {
		return append([]Field(nil), s.data.Fields...)
	}
	var out []Field
	for _, f := range s.data.Fields {
		if f.Page == page {
			out = append(out, f)
		}
	}
	return out
}

// find returns a pointer into the backing slice; callers hold the lock.
func (s *Store) find(id string) *Field {
	for i := range s.data.Fields {
		if s.data.Fields[i].ID == id {
			return &s.data.Fields[i]
		}
	}
	return nil
}
