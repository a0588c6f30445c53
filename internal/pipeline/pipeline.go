package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shenprabu/FileReadAI/constants"
	"github.com/shenprabu/FileReadAI/internal/fields"
	"github.com/shenprabu/FileReadAI/internal/history"
	"github.com/shenprabu/FileReadAI/internal/provider"
	"github.com/shenprabu/FileReadAI/internal/raster"
)

// Extractor is the slice of the provider registry the pipeline depends
// on.
type Extractor interface {
	Extract(ctx context.Context, img provider.PageImage) (provider.RawExtraction, error)
	ActiveName() string
}

// Rasterizer is the slice of the page rasterizer the pipeline depends
// on.
type Rasterizer interface {
	Load(path string) (*raster.Document, error)
	RenderPage(ctx context.Context, doc *raster.Document, page int) ([]byte, string, error)
	Preview(ctx context.Context, doc *raster.Document, page int) (*raster.Preview, error)
}

// RunState is the extraction state machine position.
type RunState string

const (
	StateIdle      RunState = "IDLE"
	StateRunning   RunState = "RUNNING"
	StateCompleted RunState = "COMPLETED"
	StateFailed    RunState = "FAILED"
)

// PageError reports which page an extraction run died on.
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// Pipeline orchestrates rasterization, per-page provider calls, field
// merging, progress and history for one document session at a time.
type Pipeline struct {
	logger    *slog.Logger
	extractor Extractor
	raster    Rasterizer
	store     *fields.Store
	history   history.Store

	session sessionState
}

func New(logger *slog.Logger, ex Extractor, rz Rasterizer, store *fields.Store, hist history.Store) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if hist == nil {
		hist = history.NewMemStore(history.DefaultLimit)
	}
	return &Pipeline{
		logger:    logger,
		extractor: ex,
		raster:    rz,
		store:     store,
		history:   hist,
	}
}

// Fields returns the canonical field store for the active session.
func (p *Pipeline) Fields() *fields.Store {
	return p.store
}

// LoadDocument starts a new document session, replacing and tearing down
// any previous one. Extraction results from the old session are
// discarded.
func (p *Pipeline) LoadDocument(path string) (*raster.Document, error) {
	doc, err := p.raster.Load(path)
	if err != nil {
		return nil, err
	}
	if err := p.session.replace(doc); err != nil {
		doc.Close()
		return nil, err
	}
	p.store.Reset(nil)
	p.store.SetCurrentPage(1)
	p.store.SetPageCount(doc.Pages)
	p.logger.Info("pipeline.document.loaded", "file", doc.Filename, "pages", doc.Pages)
	return doc, nil
}

// Clear tears down the active session and its rendered resources.
func (p *Pipeline) Clear() error {
	if err := p.session.replace(nil); err != nil {
		return err
	}
	p.store.Reset(nil)
	p.store.SetPageCount(0)
	p.logger.Info("pipeline.document.cleared")
	return nil
}

// Progress reports "currently processing page P of N".
func (p *Pipeline) Progress() (page, total int, processing bool) {
	return p.session.progress()
}

// State returns the state machine position for the current session.
func (p *Pipeline) State() RunState {
	return p.session.state()
}

// NavigateTo renders a page preview for display, honoring the preview
// swap contract. Navigation is blocked while an extraction is running.
func (p *Pipeline) NavigateTo(ctx context.Context, page int) (*raster.Preview, error) {
	doc, err := p.session.navigable(page)
	if err != nil {
		return nil, err
	}
	pv, err := p.raster.Preview(ctx, doc, page)
	if err != nil {
		return nil, err
	}
	p.store.SetCurrentPage(page)
	return pv, nil
}

// Run executes one extraction pass over every page of the active
// document. Pages are processed strictly sequentially; the merged field
// set is published incrementally after each page. On a per-page failure
// the run stops, already-published fields stay visible, and the error
// carries the originating page.
func (p *Pipeline) Run(ctx context.Context) (fields.ExtractedData, error) {
	doc, err := p.session.beginRun()
	if err != nil {
		return fields.ExtractedData{}, err
	}

	runID := uuid.New().String()
	start := time.Now()
	providerName := p.extractor.ActiveName()

	p.logger.Info("pipeline.run.start",
		"run_id", runID,
		"file", doc.Filename,
		"pages", doc.Pages,
		"provider", providerName,
	)

	p.store.Reset(&fields.ExtractedData{ExtractedAt: time.Now().UTC()})

	published := 0
	for page := 1; page <= doc.Pages; page++ {
		p.session.setRunningPage(page)
		p.logger.Info("pipeline.page.start", "run_id", runID, "page", page, "of", doc.Pages)

		img, mimeType, err := p.raster.RenderPage(ctx, doc, page)
		if err != nil {
			p.session.endRun(StateFailed)
			p.logger.Error("pipeline.page.render_failed", "run_id", runID, "page", page, "error", err)
			return p.store.Data(), &PageError{Page: page, Err: err}
		}

		res, err := p.extractor.Extract(ctx, provider.PageImage{Data: img, MIME: mimeType, Page: page})
		if err != nil {
			p.session.endRun(StateFailed)
			p.logger.Error("pipeline.page.extract_failed", "run_id", runID, "page", page, "error", err)
			return p.store.Data(), &PageError{Page: page, Err: err}
		}

		mapped := mapRawFields(res.Fields, page)
		p.store.AppendExtracted(mapped...)
		published += len(mapped)
		if page == 1 && res.FormTitle != "" {
			p.store.SetFormTitle(res.FormTitle)
		}

		p.logger.Info("pipeline.page.ok",
			"run_id", runID,
			"page", page,
			"fields", len(mapped),
			"total_fields", published,
		)
	}

	p.session.endRun(StateCompleted)
	data := p.store.Data()

	entry := history.Entry{
		Filename:    doc.Filename,
		FieldCount:  len(data.Fields),
		FormTitle:   data.FormTitle,
		Provider:    providerName,
		ExtractedAt: data.ExtractedAt,
	}
	if err := p.history.Append(ctx, entry); err != nil {
		// History is bookkeeping; a failed append must not fail the run.
		p.logger.Warn("pipeline.history.append_failed", "run_id", runID, "error", err)
	}

	p.logger.Info("pipeline.run.ok",
		"run_id", runID,
		"file", doc.Filename,
		"pages", doc.Pages,
		"fields", len(data.Fields),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return data, nil
}

// History lists the bounded record of completed runs, most recent first.
func (p *Pipeline) History(ctx context.Context) ([]history.Entry, error) {
	return p.history.List(ctx)
}

// mapRawFields turns a page's normalized provider payload into Field
// records. Ids derive from the page number and position index so
// identical input yields identical ids.
func mapRawFields(raw []provider.RawField, page int) []fields.Field {
	out := make([]fields.Field, 0, len(raw))
	for i, rf := range raw {
		ft, _ := constants.CanonicalizeFieldType(rf.Type)
		f := fields.Field{
			ID:         fmt.Sprintf("field-%d-%d", page, i+1),
			Label:      rf.Label,
			Value:      rf.Value,
			Type:       ft,
			Confidence: rf.Confidence,
			Verified:   false,
			Page:       page,
		}
		if rf.BoundingBox != nil {
			f.BoundingBox = &fields.BoundingBox{
				X:      rf.BoundingBox.X,
				Y:      rf.BoundingBox.Y,
				Width:  rf.BoundingBox.Width,
				Height: rf.BoundingBox.Height,
			}
		}
		out = append(out, f)
	}
	return out
}
