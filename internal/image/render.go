package image

import (
	"fmt"
	"image"
	stdcolor "image/color"
	"image/draw"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"beadify/internal/color"
)

var outlineColor = stdcolor.RGBA{R: 190, G: 190, B: 190, A: 255}

// Render рисует схему: клетка на каждую бусину, по желанию с сеткой и подписями.
// Клетки без подходящей бусины остаются прозрачными.
func (s *Scheme) Render() *image.RGBA {
	cell := s.settings.CellSize
	if cell <= 0 {
		cell = 1
	}
	mosaic := image.NewRGBA(image.Rect(0, 0, s.Width*cell, s.Height*cell))
	face := basicfont.Face7x13
	drawLabels := s.settings.Labels && cell >= face.Height

	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			e, ok := s.Chosen(s.At(x, y))
			if !ok {
				continue
			}

			// рисуем клетку
			rect := image.Rect(x*cell, y*cell, (x+1)*cell, (y+1)*cell)
			draw.Draw(mosaic, rect, &image.Uniform{C: e.RGB}, image.Point{}, draw.Src)
			if s.settings.Outline && cell > 2 {
				strokeRect(mosaic, rect, outlineColor)
			}

			// подпись по центру клетки
			if drawLabels && e.Coco != "" {
				textColor, _ := color.ParseHex(color.ContrastText(e.Hex))
				d := &font.Drawer{
					Dst:  mosaic,
					Src:  image.NewUniform(textColor),
					Face: face,
				}
				w := d.MeasureString(e.Coco).Ceil()
				d.Dot = fixed.P(
					rect.Min.X+(cell-w)/2,
					rect.Min.Y+(cell+face.Ascent-face.Descent)/2,
				)
				d.DrawString(e.Coco)
			}
		}
	}
	return mosaic
}

func strokeRect(dst *image.RGBA, r image.Rectangle, c stdcolor.RGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.SetRGBA(x, r.Min.Y, c)
		dst.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.SetRGBA(r.Min.X, y, c)
		dst.SetRGBA(r.Max.X-1, y, c)
	}
}

// ParseChoice разбирает выбор варианта вида "abcdef:2".
func ParseChoice(s string) (color.RGB, int, error) {
	hexPart, idxPart, ok := strings.Cut(s, ":")
	if !ok {
		return color.RGB{}, 0, fmt.Errorf("choice %q: expected HEX:INDEX", s)
	}
	c, err := color.ParseHex(hexPart)
	if err != nil {
		return color.RGB{}, 0, fmt.Errorf("choice %q: %w", s, err)
	}
	idx, err := strconv.Atoi(idxPart)
	if err != nil || idx < 0 {
		return color.RGB{}, 0, fmt.Errorf("choice %q: bad index", s)
	}
	return c, idx, nil
}
