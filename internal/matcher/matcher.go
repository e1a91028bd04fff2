// Package matcher подбирает для цвета k ближайших бусин из каталога
// по расстоянию в пространстве Lab.
package matcher

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"beadify/internal/catalog"
	"beadify/internal/color"
)

// DefaultK задаёт, сколько вариантов обычно показывают пользователю.
const DefaultK = 5

// ErrInvalidArgument возвращается, если запрошено k <= 0.
var ErrInvalidArgument = errors.New("invalid argument")

// Match связывает запись каталога с её расстоянием до искомого цвета.
type Match struct {
	Entry    *catalog.Entry
	Distance float64
}

// Equal: совпадают записи (по hex) и расстояния (точно).
func (m Match) Equal(other Match) bool {
	if m.Entry == nil || other.Entry == nil {
		return m.Entry == other.Entry && m.Distance == other.Distance
	}
	return m.Entry.Equal(*other.Entry) && m.Distance == other.Distance
}

// Options задаёт параметры подбора.
type Options struct {
	K             int  // Сколько вариантов вернуть
	AvailableOnly bool // Только бусины в наличии
}

// DefaultOptions возвращает k = DefaultK без фильтра наличия.
func DefaultOptions() Options {
	return Options{K: DefaultK}
}

func (o Options) validate() error {
	if o.K <= 0 {
		return fmt.Errorf("%w: k must be positive, got %d", ErrInvalidArgument, o.K)
	}
	return nil
}

// FindClosest возвращает до k записей каталога, ближайших к query.
//
// Результат отсортирован по возрастанию расстояния. При равных расстояниях
// записи идут в порядке каталога: на позицию в этом списке ссылается
// выбранный пользователем вариант, поэтому порядок должен быть стабильным.
// Если подходящих записей нет, возвращается пустой срез без ошибки.
func FindClosest(repo *catalog.Repository, query color.Lab, k int, availableOnly bool) ([]Match, error) {
	opts := Options{K: k, AvailableOnly: availableOnly}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	// 1. Считаем расстояние до каждой подходящей записи
	candidates := make([]Match, 0, repo.Len())
	for _, e := range repo.All() {
		if availableOnly && !e.Available {
			continue
		}
		candidates = append(candidates, Match{Entry: e, Distance: color.Distance(e.Lab, query)})
	}

	// 2. Стабильная сортировка: равные расстояния сохраняют порядок каталога
	slices.SortStableFunc(candidates, func(a, b Match) int {
		return cmp.Compare(a.Distance, b.Distance)
	})

	// 3. Обрезаем до k
	if len(candidates) > k {
		candidates = slices.Clone(candidates[:k])
	}
	return candidates, nil
}

// Find работает как FindClosest, но для RGB и Options.
func Find(repo *catalog.Repository, query color.RGB, opts Options) ([]Match, error) {
	return FindClosest(repo, color.ToLab(query), opts.K, opts.AvailableOnly)
}
