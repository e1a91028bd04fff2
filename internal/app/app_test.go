package app

import (
	"bytes"
	"context"
	"image"
	stdcolor "image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beadify/internal/catalog"
	"beadify/internal/config"
)

var testLogger = slog.New(slog.DiscardHandler)

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "colors.csv")
	require.NoError(t, os.WriteFile(path, []byte("hex,coco,mard,available\nff0000,RED,A1,true\n"), 0o600))
	return path
}

func TestLoadCatalogCSV(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	repo, err := LoadCatalog(context.Background(), config.CatalogConfig{Path: writeCatalog(t)}, logger)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Len())
	assert.Contains(t, logs.String(), "catalog loaded")
	assert.Contains(t, logs.String(), "entries=1")
}

func TestLoadCatalogErrors(t *testing.T) {
	_, err := LoadCatalog(context.Background(), config.CatalogConfig{Path: filepath.Join(t.TempDir(), "none.csv")}, testLogger)
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("hex\nnothex\n"), 0o600))
	_, err = LoadCatalog(context.Background(), config.CatalogConfig{Path: path}, testLogger)
	assert.ErrorIs(t, err, catalog.ErrMalformedEntry)
}

func TestMosaicSettings(t *testing.T) {
	cfg := config.Default()
	s := MosaicSettings(cfg.Mosaic)
	assert.Equal(t, 20, s.CellSize)
	assert.True(t, s.Labels)
	assert.True(t, s.Outline)
	assert.Equal(t, config.DefaultGridWidth, s.GridWidth)
	assert.Equal(t, int64(16<<20), s.MaxPixels)
	assert.Equal(t, int64(32<<20), s.MaxSourcePixels)

	off := false
	cfg.Mosaic.Labels = &off
	cfg.Mosaic.GridWidth = 50
	cfg.Mosaic.MedianKernel = 3
	s = MosaicSettings(cfg.Mosaic)
	assert.False(t, s.Labels)
	assert.Equal(t, 50, s.GridWidth)
	assert.Equal(t, 3, s.MedianKernel)
}

func TestMatchOptions(t *testing.T) {
	opts := MatchOptions(config.MatchingConfig{K: 3, AvailableOnly: true})
	assert.Equal(t, 3, opts.K)
	assert.True(t, opts.AvailableOnly)
}

func TestNewHandlerBoundsDefaultGrid(t *testing.T) {
	cfg := config.Default()
	repo, err := LoadCatalog(context.Background(), config.CatalogConfig{Path: writeCatalog(t)}, testLogger)
	require.NoError(t, err)
	routes := NewHandler(cfg, repo, testLogger).Routes("")

	// однотонный 2000x1500 PNG весит килобайты, а в размере исходника дал бы холст 40000x30000
	img := image.NewRGBA(image.Rect(0, 0, 2000, 1500))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: stdcolor.RGBA{R: 250, A: 255}}, image.Point{}, draw.Src)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "big.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(fw, img))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/generate", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out, err := png.Decode(rec.Body)
	require.NoError(t, err)
	// 100x75 бусин по 20 px
	assert.Equal(t, image.Rect(0, 0, 2000, 1500), out.Bounds())
}
