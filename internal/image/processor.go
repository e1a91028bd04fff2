package image

import (
	"context"
	"errors"
	"fmt"
	"image"
	stdcolor "image/color"
	"io"
	"log/slog"
	"math"
	"slices"

	"github.com/disintegration/imaging"

	"beadify/internal/catalog"
	"beadify/internal/color"
	"beadify/internal/matcher"
)

// DefaultMaxPixels ограничивает отрисованную схему: 16 Мп, около 64 МБ RGBA.
const DefaultMaxPixels = 16 << 20

// DefaultMaxSourcePixels ограничивает размер принимаемой картинки до декодирования.
const DefaultMaxSourcePixels = 32 << 20

// ErrTooLarge возвращается, если картинка или схема превышают лимиты Settings.
var ErrTooLarge = errors.New("image too large")

// Settings управляет тем, как картинка превращается в схему.
type Settings struct {
	GridWidth    int     // Ширина схемы в бусинах, 0 — как у исходника (или по пропорции)
	GridHeight   int     // Высота схемы в бусинах, 0 — как у исходника (или по пропорции)
	CellSize     int     // Размер клетки при отрисовке, px
	MedianKernel int     // Ядро медианного фильтра, <= 1 — без фильтра
	Labels       bool    // Подписывать клетки кодом COCO
	Outline      bool    // Рисовать серую сетку
	BeadPitchMM  float64 // Шаг бусины, мм (для расчёта физического размера)

	MaxPixels       int64 // Предел Width*Height*CellSize², 0 без ограничения
	MaxSourcePixels int64 // Предел пикселей исходника для DecodeBounded, 0 без ограничения
}

// DefaultSettings возвращает значения по умолчанию, как в исходном редакторе.
func DefaultSettings() Settings {
	return Settings{
		CellSize:    20,
		Labels:      true,
		Outline:     true,
		BeadPitchMM: 5.0,

		MaxPixels:       DefaultMaxPixels,
		MaxSourcePixels: DefaultMaxSourcePixels,
	}
}

// ColorUsage связывает бусину из каталога с количеством клеток.
type ColorUsage struct {
	Entry *catalog.Entry
	Count int
}

// SizeInfo описывает размеры готовой схемы.
type SizeInfo struct {
	WidthPX, HeightPX int     // Бусин по ширине и высоте
	WidthCM, HeightCM float64 // Физический размер
}

// Scheme хранит результат подбора для картинки: для каждого уникального цвета
// исходника список вариантов и индекс выбранного варианта.
type Scheme struct {
	Width, Height int

	settings Settings
	pixels   []color.RGB // построчно, len = Width*Height
	order    []color.RGB // уникальные цвета в порядке первого появления
	options  map[color.RGB][]matcher.Match
	choice   map[color.RGB]int
}

// Decode декодирует изображение любого поддерживаемого формата.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// DecodeBounded сначала читает только заголовок и отказывает картинкам больше
// maxPixels, затем декодирует целиком. maxPixels <= 0 снимает ограничение.
func DecodeBounded(r io.ReadSeeker, maxPixels int64) (image.Image, error) {
	if maxPixels > 0 {
		cfg, _, err := image.DecodeConfig(r)
		if err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
			return nil, fmt.Errorf("%w: source %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
		}
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind image: %w", err)
		}
	}
	return Decode(r)
}

// gridSize возвращает размер схемы в бусинах. Нулевая сторона считается
// по пропорциям исходника, обе нулевые оставляют размер исходника.
func gridSize(bounds image.Rectangle, settings Settings) (int, int) {
	w, h := settings.GridWidth, settings.GridHeight
	sw, sh := bounds.Dx(), bounds.Dy()
	switch {
	case w == 0 && h == 0, sw == 0 || sh == 0:
		return sw, sh
	case h == 0:
		h = max(1, int(math.Round(float64(w)*float64(sh)/float64(sw))))
	case w == 0:
		w = max(1, int(math.Round(float64(h)*float64(sw)/float64(sh))))
	}
	return w, h
}

// Build превращает картинку в схему: фильтр, сетка, подбор бусин для
// каждого уникального цвета.
func Build(ctx context.Context, logger *slog.Logger, src image.Image, repo *catalog.Repository, opts matcher.Options, settings Settings, workers int) (*Scheme, error) {
	// 1. Размер сетки и проверка лимита до любых больших аллокаций
	w, h := gridSize(src.Bounds(), settings)
	cell := int64(max(settings.CellSize, 1))
	if settings.MaxPixels > 0 && int64(w)*int64(h)*cell*cell > settings.MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d beads at %d px per cell exceeds %d pixels", ErrTooLarge, w, h, cell, settings.MaxPixels)
	}

	// 2. Фильтр
	if settings.MedianKernel > 1 {
		src = MedianFilter(src, settings.MedianKernel)
	}

	// 3. В сетку
	if b := src.Bounds(); w != b.Dx() || h != b.Dy() {
		src = imaging.Resize(src, w, h, imaging.CatmullRom)
	}

	// 4. Читаем пиксели и собираем уникальные цвета
	bounds := src.Bounds()
	s := &Scheme{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		settings: settings,
		pixels:   make([]color.RGB, 0, bounds.Dx()*bounds.Dy()),
		choice:   make(map[color.RGB]int),
	}
	seen := make(map[color.RGB]struct{})
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.FromColor(src.At(x, y))
			s.pixels = append(s.pixels, c)
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				s.order = append(s.order, c)
			}
		}
	}

	// 5. Подбираем варианты параллельно
	options, err := matcher.MatchAll(ctx, repo, s.order, opts, workers)
	if err != nil {
		return nil, err
	}
	s.options = options

	logger.Debug("scheme built", "width", s.Width, "height", s.Height, "unique_colors", len(s.order))
	return s, nil
}

// Colors возвращает уникальные цвета исходника в порядке первого появления.
func (s *Scheme) Colors() []color.RGB {
	return slices.Clone(s.order)
}

// Options возвращает варианты для цвета исходника.
func (s *Scheme) Options(src color.RGB) []matcher.Match {
	return s.options[src]
}

// Choice возвращает индекс выбранного варианта (0 — самый близкий).
func (s *Scheme) Choice(src color.RGB) int {
	return s.choice[src]
}

// Choose меняет выбранный вариант для всех клеток данного цвета.
func (s *Scheme) Choose(src color.RGB, idx int) error {
	opts, ok := s.options[src]
	if !ok {
		return fmt.Errorf("color %s is not in the image", src.Hex())
	}
	if idx < 0 || idx >= len(opts) {
		return fmt.Errorf("option %d out of range for color %s (have %d)", idx, src.Hex(), len(opts))
	}
	s.choice[src] = idx
	return nil
}

// Reset возвращает всем цветам самый близкий вариант.
func (s *Scheme) Reset() {
	clear(s.choice)
}

// Chosen возвращает выбранную бусину для цвета исходника.
// false, если подходящих бусин нет вовсе.
func (s *Scheme) Chosen(src color.RGB) (*catalog.Entry, bool) {
	opts := s.options[src]
	idx := s.choice[src]
	if idx >= len(opts) {
		return nil, false
	}
	return opts[idx].Entry, true
}

// At возвращает цвет исходника в клетке (x, y).
func (s *Scheme) At(x, y int) color.RGB {
	return s.pixels[y*s.Width+x]
}

// Usage считает, сколько клеток приходится на каждую бусину.
// Сортировка: по убыванию количества, затем по коду COCO.
func (s *Scheme) Usage() []ColorUsage {
	// 1. Считаем клетки по ключу бусины
	usageMap := make(map[string]*ColorUsage)
	var keys []string
	for _, px := range s.pixels {
		e, ok := s.Chosen(px)
		if !ok {
			continue
		}
		k := catalog.Key(*e)
		u, ok := usageMap[k]
		if !ok {
			u = &ColorUsage{Entry: e}
			usageMap[k] = u
			keys = append(keys, k)
		}
		u.Count++
	}

	// 2. Переносим в срез
	usages := make([]ColorUsage, 0, len(keys))
	for _, k := range keys {
		usages = append(usages, *usageMap[k])
	}
	slices.SortStableFunc(usages, func(a, b ColorUsage) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		switch {
		case a.Entry.Coco < b.Entry.Coco:
			return -1
		case a.Entry.Coco > b.Entry.Coco:
			return 1
		}
		return 0
	})
	return usages
}

// SizeInfo считает размер схемы в бусинах и сантиметрах.
func (s *Scheme) SizeInfo() SizeInfo {
	pitch := s.settings.BeadPitchMM
	return SizeInfo{
		WidthPX:  s.Width,
		HeightPX: s.Height,
		WidthCM:  float64(s.Width) * pitch / 10,
		HeightCM: float64(s.Height) * pitch / 10,
	}
}

// MedianFilter применяет медианный фильтр к изображению с ядром kernelSize (должно быть нечётным).
func MedianFilter(img image.Image, kernelSize int) image.Image {
	bounds := img.Bounds()
	filtered := image.NewRGBA(bounds)
	offset := kernelSize / 2

	rs := make([]uint8, 0, kernelSize*kernelSize)
	gs := make([]uint8, 0, kernelSize*kernelSize)
	bs := make([]uint8, 0, kernelSize*kernelSize)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rs, gs, bs = rs[:0], gs[:0], bs[:0]
			for ky := -offset; ky <= offset; ky++ {
				for kx := -offset; kx <= offset; kx++ {
					nx := x + kx
					ny := y + ky
					if nx < bounds.Min.X || nx >= bounds.Max.X || ny < bounds.Min.Y || ny >= bounds.Max.Y {
						continue
					}
					c := color.FromColor(img.At(nx, ny))
					rs = append(rs, c.R)
					gs = append(gs, c.G)
					bs = append(bs, c.B)
				}
			}
			filtered.Set(x, y, stdcolor.RGBA{R: median(rs), G: median(gs), B: median(bs), A: 255})
		}
	}
	return filtered
}

// median вычисляет медиану из среза значений uint8 (срез сортируется на месте).
func median(data []uint8) uint8 {
	slices.Sort(data)
	return data[len(data)/2]
}
