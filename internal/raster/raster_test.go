package raster

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenprabu/FileReadAI/constants"
	"github.com/shenprabu/FileReadAI/internal/common"
)

func writeTestPNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	r := NewRasterizer(Config{}, nil)
	_, err := r.Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidFile)
}

func TestLoadRejectsOversizeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.png")
	require.NoError(t, os.WriteFile(path, make([]byte, constants.MaxUploadBytes+1), 0o644))

	r := NewRasterizer(Config{}, nil)
	_, err := r.Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidFile)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	r := NewRasterizer(Config{}, nil)
	_, err := r.Load(filepath.Join(t.TempDir(), "absent.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidFile)
}

func TestLoadImageHasOnePage(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "scan.png")

	r := NewRasterizer(Config{}, nil)
	doc, err := r.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Pages)
	assert.Equal(t, constants.IMAGE, doc.Format)
	assert.Equal(t, "scan.png", doc.Filename)
}

func TestRenderPageIdempotent(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "scan.png")

	r := NewRasterizer(Config{}, nil)
	doc, err := r.Load(path)
	require.NoError(t, err)

	first, mimeType, err := r.RenderPage(context.Background(), doc, 1)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mimeType)
	assert.NotEmpty(t, first)

	second, _, err := r.RenderPage(context.Background(), doc, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderPageOutOfRange(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "scan.png")

	r := NewRasterizer(Config{}, nil)
	doc, err := r.Load(path)
	require.NoError(t, err)

	_, _, err = r.RenderPage(context.Background(), doc, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidFile)
}

// stubRunner fakes pdftoppm by writing a page image at the expected
// output prefix.
type stubRunner struct {
	payload []byte
	args    [][]string
}

func (s *stubRunner) Run(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
	s.args = append(s.args, args)
	prefix := args[len(args)-1]
	page := "1"
	for i, a := range args {
		if a == "-f" && i+1 < len(args) {
			page = args[i+1]
		}
	}
	if err := os.WriteFile(prefix+"-"+page+".jpg", s.payload, 0o644); err != nil {
		return nil, nil, err
	}
	return nil, nil, nil
}

func TestRenderPDFPageUsesPdftoppm(t *testing.T) {
	runner := &stubRunner{payload: []byte("jpeg-bytes-page")}
	r := NewRasterizer(Config{DPI: 120}, nil)
	r.runner = runner

	doc := &Document{Path: "in.pdf", Filename: "in.pdf", Format: constants.PDF, Pages: 3}

	data, mimeType, err := r.RenderPage(context.Background(), doc, 2)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mimeType)
	assert.Equal(t, []byte("jpeg-bytes-page"), data)

	require.Len(t, runner.args, 1)
	joined := strings.Join(runner.args[0], " ")
	assert.Contains(t, joined, "-f 2")
	assert.Contains(t, joined, "-l 2")
	assert.Contains(t, joined, "-r 120")

	// Cached render: no second pdftoppm invocation.
	_, _, err = r.RenderPage(context.Background(), doc, 2)
	require.NoError(t, err)
	assert.Len(t, runner.args, 1)
}

func TestPreviewSwapReleasesPrevious(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "scan.png")

	r := NewRasterizer(Config{}, nil)
	doc, err := r.Load(path)
	require.NoError(t, err)

	first, err := r.Preview(context.Background(), doc, 1)
	require.NoError(t, err)
	assert.NotNil(t, first.Data())

	second, err := r.Preview(context.Background(), doc, 1)
	require.NoError(t, err)

	assert.True(t, first.Released(), "acquiring a new preview releases the prior one")
	assert.Nil(t, first.Data())
	assert.NotNil(t, second.Data())

	doc.Close()
	assert.True(t, second.Released())
}
