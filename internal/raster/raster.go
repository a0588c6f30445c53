package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/shenprabu/FileReadAI/constants"
	"github.com/shenprabu/FileReadAI/internal/common"
)

type Config struct {
	Pdftoppm    string // binary name or absolute path; if empty -> "pdftoppm"
	DPI         int    // render DPI for PDF pages, default 150
	JPEGQuality int    // re-encode quality, default 85
	MaxPages    int    // 0 = no limit
}

// Document is a loaded input file with its derived page geometry and
// per-page render cache.
type Document struct {
	Path     string
	Filename string
	Format   constants.Format
	Pages    int

	mu      sync.Mutex
	cache   map[int][]byte
	preview *Preview
}

type Rasterizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewRasterizer(cfg Config, logger *slog.Logger) *Rasterizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 150
	}
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = 85
	}
	return &Rasterizer{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Load validates the input against the allow-list and size cap and
// determines the page count: 1 for images, the document's own count for
// PDFs. Nothing is rendered yet.
func (r *Rasterizer) Load(path string) (*Document, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidFile, err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", common.ErrInvalidFile, path)
	}
	if st.Size() > constants.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", common.ErrInvalidFile, filepath.Base(path), int64(constants.MaxUploadBytes))
	}

	ext := constants.NormalizeExt(filepath.Ext(path))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return nil, fmt.Errorf("%w: unsupported extension %q", common.ErrInvalidFile, ext)
	}

	doc := &Document{
		Path:     path,
		Filename: filepath.Base(path),
		Format:   constants.MapExtToFormat(ext),
		cache:    make(map[int][]byte),
	}

	switch doc.Format {
	case constants.PDF:
		n, err := api.PageCountFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: unreadable PDF: %v", common.ErrInvalidFile, err)
		}
		if r.cfg.MaxPages > 0 && n > r.cfg.MaxPages {
			n = r.cfg.MaxPages
		}
		doc.Pages = n
	case constants.IMAGE:
		doc.Pages = 1
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", common.ErrInvalidFile, ext)
	}

	r.logger.Info("raster.load.ok", "file", doc.Filename, "format", doc.Format, "pages", doc.Pages)
	return doc, nil
}

// RenderPage produces the raster image for one 1-indexed page at the
// fixed DPI/quality. Repeated calls hit the per-page cache and yield
// equivalent output; navigation re-renders on demand.
func (r *Rasterizer) RenderPage(ctx context.Context, doc *Document, page int) ([]byte, string, error) {
	if page < 1 || page > doc.Pages {
		return nil, "", fmt.Errorf("%w: page %d out of range [1,%d]", common.ErrInvalidFile, page, doc.Pages)
	}

	doc.mu.Lock()
	if doc.cache == nil {
		doc.cache = make(map[int][]byte)
	}
	cached, ok := doc.cache[page]
	doc.mu.Unlock()
	if ok {
		return cached, "image/jpeg", nil
	}

	var data []byte
	var err error
	switch doc.Format {
	case constants.PDF:
		data, err = r.renderPDFPage(ctx, doc.Path, page)
	default:
		data, err = r.renderImage(doc.Path)
	}
	if err != nil {
		return nil, "", err
	}

	doc.mu.Lock()
	doc.cache[page] = data
	doc.mu.Unlock()

	r.logger.Debug("raster.render.ok", "file", doc.Filename, "page", page, "bytes", len(data))
	return data, "image/jpeg", nil
}

// Preview renders a page and hands out a transient reference. The
// document's previous preview is released first so repeated navigation
// does not accumulate buffers.
func (r *Rasterizer) Preview(ctx context.Context, doc *Document, page int) (*Preview, error) {
	data, mimeType, err := r.RenderPage(ctx, doc, page)
	if err != nil {
		return nil, err
	}

	doc.mu.Lock()
	defer doc.mu.Unlock()
	if doc.preview != nil {
		doc.preview.Release()
	}
	doc.preview = newPreview(page, mimeType, data)
	return doc.preview, nil
}

// Close releases the render cache and outstanding preview.
func (doc *Document) Close() {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	if doc.preview != nil {
		doc.preview.Release()
		doc.preview = nil
	}
	doc.cache = make(map[int][]byte)
}

func (r *Rasterizer) renderPDFPage(ctx context.Context, path string, page int) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "fr-pp-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			r.logger.Warn("raster.tmpdir.remove_failed", "dir", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -f N -l N -r DPI -jpeg <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm,
		"-f", fmt.Sprintf("%d", page),
		"-l", fmt.Sprintf("%d", page),
		"-r", fmt.Sprintf("%d", r.cfg.DPI),
		"-jpeg", path, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm page %d: %w (%s)", page, err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.jpg")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no image for page %d", page)
	}
	return os.ReadFile(matches[0])
}

// renderImage decodes a raster input (jpeg, png, webp) and re-encodes it
// as JPEG at the fixed quality so every page submitted to a provider has
// the same shape.
func (r *Rasterizer) renderImage(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %v", common.ErrInvalidFile, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: r.cfg.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
