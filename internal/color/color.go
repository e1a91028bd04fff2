// Package color переводит цвета sRGB в перцептивно равномерное пространство
// CIE L*a*b* и считает расстояние между цветами в нём.
//
// Все функции пакета чистые: без состояния, без логирования, безопасны
// для параллельного вызова.
package color

import (
	"encoding/hex"
	"errors"
	"fmt"
	stdcolor "image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidFormat означает, что строка не является цветом вида RRGGBB (с необязательным '#').
var ErrInvalidFormat = errors.New("invalid hex color format")

// FormatError хранит исходную строку, которую не удалось разобрать.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: %q", ErrInvalidFormat, e.Input)
}

// Is позволяет проверять ошибку через errors.Is(err, ErrInvalidFormat).
func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

// RGB описывает цвет sRGB с 8-битными каналами.
type RGB struct {
	R, G, B uint8
}

// RGBA реализует image/color.Color, альфа всегда непрозрачная.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return stdcolor.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

// Hex возвращает цвет как 6 строчных hex-цифр без '#'.
func (c RGB) Hex() string {
	return ToHex(c)
}

// FromColor приводит любой image/color.Color к 8-битному RGB.
// Прозрачность отбрасывается.
func FromColor(c stdcolor.Color) RGB {
	n := stdcolor.NRGBAModel.Convert(c).(stdcolor.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B}
}

// ParseHex разбирает строку "RRGGBB" или "#RRGGBB" (регистр не важен).
func ParseHex(s string) (RGB, error) {
	digits := strings.TrimPrefix(s, "#")
	if len(digits) != 6 {
		return RGB{}, &FormatError{Input: s}
	}
	var buf [3]byte
	if _, err := hex.Decode(buf[:], []byte(digits)); err != nil {
		return RGB{}, &FormatError{Input: s}
	}
	return RGB{R: buf[0], G: buf[1], B: buf[2]}, nil
}

// ParseQuery разбирает цвет, введённый пользователем: ровно 6 hex-цифр,
// без '#' и пробелов.
func ParseQuery(s string) (RGB, error) {
	if strings.HasPrefix(s, "#") {
		return RGB{}, &FormatError{Input: s}
	}
	return ParseHex(s)
}

// ToHex обратна к ParseHex: ParseHex(ToHex(c)) == c для любого c.
func ToHex(c RGB) string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

// NormalizeHex проверяет строку и приводит её к каноническому виду
// (строчные буквы, без '#').
func NormalizeHex(s string) (string, error) {
	c, err := ParseHex(s)
	if err != nil {
		return "", err
	}
	return c.Hex(), nil
}

// Lab описывает точку в пространстве CIE L*a*b* (опорный белый D65).
// Масштаб стандартный: L от 0 до 100, a и b примерно от -128 до 127.
type Lab struct {
	L, A, B float64
}

// labScale переводит масштаб go-colorful (L в [0,1]) в стандартный CIELAB.
const labScale = 100.0

// ToLab переводит sRGB в Lab по цепочке
// sRGB -> линейный RGB (снятие гаммы) -> XYZ -> Lab (D65).
func ToLab(c RGB) Lab {
	// 1. Нормируем каналы в [0,1]
	src := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
	// 2. Снимаем гамма-кодирование sRGB
	lr, lg, lb := src.LinearRgb()
	// 3. Линейный RGB -> XYZ
	x, y, z := colorful.LinearRgbToXyz(lr, lg, lb)
	// 4. XYZ -> Lab относительно белой точки D65
	l, a, b := colorful.XyzToLabWhiteRef(x, y, z, colorful.D65)
	return Lab{L: l * labScale, A: a * labScale, B: b * labScale}
}

// HexToLab разбирает hex-строку и сразу переводит её в Lab.
func HexToLab(s string) (Lab, error) {
	c, err := ParseHex(s)
	if err != nil {
		return Lab{}, err
	}
	return ToLab(c), nil
}

// Distance считает евклидово расстояние между точками Lab (CIE76 ΔE).
func Distance(a, b Lab) float64 {
	dL := a.L - b.L
	da := a.A - b.A
	db := a.B - b.B
	return math.Sqrt(dL*dL + da*da + db*db)
}

// RelativeLuminance возвращает яркость цвета в [0,1] по весам
// 0.299·R + 0.587·G + 0.114·B. Нужна только для выбора цвета подписи.
func RelativeLuminance(hexStr string) (float64, error) {
	c, err := ParseHex(hexStr)
	if err != nil {
		return 0, err
	}
	return (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255.0, nil
}

// ContrastText подбирает цвет текста поверх фона hexStr:
// на тёмном фоне белый, на светлом чёрный.
func ContrastText(hexStr string) string {
	lum, err := RelativeLuminance(hexStr)
	if err == nil && lum < 0.5 {
		return "#ffffff"
	}
	return "#000000"
}
