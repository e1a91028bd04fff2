package catalog

import (
	"strings"

	"beadify/internal/color"
)

// Entry описывает одну бусину из каталога.
type Entry struct {
	Hex       string    // Нормализованный hex: 6 строчных цифр без '#', ключ записи
	Coco      string    // Код по каталогу COCO (подпись на схеме)
	Mard      string    // Код по каталогу MARD, в подборе не участвует
	Available bool      // Есть ли бусина в наличии
	RGB       color.RGB // Цвет в sRGB, получен из Hex
	Lab       color.Lab // Цвет в Lab, посчитан один раз при загрузке
}

// NewEntry строит запись каталога. hex принимается строго: 6 hex-цифр
// с необязательным '#', без пробелов. RGB и Lab всегда выводятся из hex,
// поэтому рассогласовать их невозможно.
func NewEntry(hex, coco, mard string, available bool) (Entry, error) {
	rgb, err := color.ParseHex(hex)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Hex:       rgb.Hex(),
		Coco:      coco,
		Mard:      mard,
		Available: available,
		RGB:       rgb,
		Lab:       color.ToLab(rgb),
	}, nil
}

// Key возвращает ключ записи для map/set: нормализованный hex.
// Остальные поля на идентичность не влияют.
func Key(e Entry) string {
	return strings.ToLower(e.Hex)
}

// Equal сравнивает записи только по ключу.
func (e Entry) Equal(other Entry) bool {
	return Key(e) == Key(other)
}

// ParseAvailable трактует как "в наличии" только текст "true" в любом регистре.
// Любое другое значение, включая пустое, означает "нет в наличии".
func ParseAvailable(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}
