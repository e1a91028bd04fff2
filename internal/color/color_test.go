package color

import (
	"errors"
	stdcolor "image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RGB
		wantErr bool
	}{
		{name: "mixed case", input: "a1B2c3", want: RGB{161, 178, 195}},
		{name: "leading hash", input: "#ff0000", want: RGB{255, 0, 0}},
		{name: "black", input: "000000", want: RGB{0, 0, 0}},
		{name: "not hex", input: "ZZZZZZ", wantErr: true},
		{name: "too short", input: "fff", wantErr: true},
		{name: "too long", input: "ff00001", wantErr: true},
		{name: "double hash", input: "##ff0000", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "sign", input: "+12345", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidFormat)

				var fe *FormatError
				require.True(t, errors.As(err, &fe))
				assert.Equal(t, tt.input, fe.Input)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHexRoundTrip(t *testing.T) {
	// Полный перебор куба 256³.
	for r := 0; r < 256; r++ {
		for g := 0; g < 256; g++ {
			for b := 0; b < 256; b++ {
				c := RGB{uint8(r), uint8(g), uint8(b)}
				got, err := ParseHex(ToHex(c))
				if err != nil || got != c {
					t.Fatalf("round trip failed for %v: got %v, err %v", c, got, err)
				}
			}
		}
	}
}

func TestParseQuery(t *testing.T) {
	got, err := ParseQuery("a1B2c3")
	require.NoError(t, err)
	assert.Equal(t, RGB{161, 178, 195}, got)

	for _, bad := range []string{"#a1b2c3", " a1b2c3", "a1b2c3 ", "a1b2c", "a1b2c3d", "g1b2c3", ""} {
		_, err := ParseQuery(bad)
		assert.ErrorIs(t, err, ErrInvalidFormat, "%q", bad)
	}
}

func TestToHexFormat(t *testing.T) {
	assert.Equal(t, "0a0b0c", ToHex(RGB{10, 11, 12}))
	assert.Equal(t, "ffffff", RGB{255, 255, 255}.Hex())
}

func TestNormalizeHex(t *testing.T) {
	got, err := NormalizeHex("#A1B2C3")
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3", got)

	_, err = NormalizeHex("a1b2c")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestToLabKnownColors(t *testing.T) {
	tests := []struct {
		name string
		rgb  RGB
		want Lab
	}{
		{name: "black", rgb: RGB{0, 0, 0}, want: Lab{0, 0, 0}},
		{name: "white", rgb: RGB{255, 255, 255}, want: Lab{100, 0, 0}},
		{name: "red", rgb: RGB{255, 0, 0}, want: Lab{53.24, 80.09, 67.20}},
		{name: "green", rgb: RGB{0, 255, 0}, want: Lab{87.73, -86.18, 83.18}},
		{name: "blue", rgb: RGB{0, 0, 255}, want: Lab{32.30, 79.19, -107.86}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToLab(tt.rgb)
			assert.InDelta(t, tt.want.L, got.L, 0.05, "L")
			assert.InDelta(t, tt.want.A, got.A, 0.05, "a")
			assert.InDelta(t, tt.want.B, got.B, 0.05, "b")
		})
	}
}

func TestToLabDeterministic(t *testing.T) {
	c := RGB{12, 200, 77}
	assert.Equal(t, ToLab(c), ToLab(c))

	fromHex, err := HexToLab("0cc84d")
	require.NoError(t, err)
	assert.Equal(t, ToLab(c), fromHex)
}

func TestDistance(t *testing.T) {
	samples := []Lab{
		ToLab(RGB{0, 0, 0}),
		ToLab(RGB{255, 0, 0}),
		ToLab(RGB{1, 1, 1}),
		ToLab(RGB{128, 64, 200}),
		{L: 50, A: -20, B: 30},
	}

	for _, a := range samples {
		assert.Zero(t, Distance(a, a))
		for _, b := range samples {
			assert.Equal(t, Distance(a, b), Distance(b, a))
			assert.GreaterOrEqual(t, Distance(a, b), 0.0)
		}
	}

	assert.InDelta(t, 5.0, Distance(Lab{0, 0, 0}, Lab{3, 4, 0}), 1e-12)
	assert.Positive(t, Distance(ToLab(RGB{0, 0, 0}), ToLab(RGB{1, 1, 1})))
}

func TestRelativeLuminance(t *testing.T) {
	lum, err := RelativeLuminance("ffffff")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, lum, 1e-9)

	lum, err = RelativeLuminance("#000000")
	require.NoError(t, err)
	assert.Zero(t, lum)

	lum, err = RelativeLuminance("ff0000")
	require.NoError(t, err)
	assert.InDelta(t, 0.299, lum, 1e-9)

	_, err = RelativeLuminance("nothex")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestContrastText(t *testing.T) {
	assert.Equal(t, "#ffffff", ContrastText("000000"))
	assert.Equal(t, "#ffffff", ContrastText("0000ff"))
	assert.Equal(t, "#000000", ContrastText("ffff00"))
	assert.Equal(t, "#000000", ContrastText("garbage"))
}

func TestFromColor(t *testing.T) {
	assert.Equal(t, RGB{1, 2, 3}, FromColor(stdcolor.RGBA{R: 1, G: 2, B: 3, A: 255}))
	assert.Equal(t, RGB{10, 20, 30}, FromColor(RGB{10, 20, 30}))
}
