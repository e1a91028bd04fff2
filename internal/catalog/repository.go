// Package catalog хранит неизменяемый каталог бусин, с которым сравниваются цвета.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"beadify/internal/color"
)

// ErrMalformedEntry означает, что строку каталога не удалось разобрать.
var ErrMalformedEntry = errors.New("malformed catalog entry")

// MalformedEntryError указывает на строку источника, из-за которой загрузка прервана.
type MalformedEntryError struct {
	Row int    // Номер строки данных, начиная с 1 (заголовок не считается)
	Hex string // Значение колонки hex как было в источнике
	Err error  // Причина
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("%v: row %d (hex %q): %v", ErrMalformedEntry, e.Row, e.Hex, e.Err)
}

func (e *MalformedEntryError) Unwrap() error { return e.Err }

func (e *MalformedEntryError) Is(target error) bool { return target == ErrMalformedEntry }

// Колонки табличного источника.
const (
	ColumnHex       = "hex"
	ColumnCoco      = "coco"
	ColumnMard      = "mard"
	ColumnAvailable = "available"
)

var errMissingHex = errors.New("missing hex column")

// RowReader отдаёт строки источника как "имя колонки -> текст".
// Конец данных сигнализируется io.EOF.
type RowReader interface {
	Next() (map[string]string, error)
}

// Repository хранит упорядоченный список записей в порядке загрузки.
// После создания не меняется, поэтому безопасен для чтения из многих горутин.
// Дубликаты по hex допускаются.
type Repository struct {
	entries []Entry
	index   map[string][]int
}

// New собирает репозиторий из готовых записей, сохраняя их порядок.
func New(entries ...Entry) *Repository {
	r := &Repository{
		entries: make([]Entry, len(entries)),
		index:   make(map[string][]int, len(entries)),
	}
	copy(r.entries, entries)
	for i, e := range r.entries {
		k := Key(e)
		r.index[k] = append(r.index[k], i)
	}
	return r
}

// Load читает все строки источника и строит репозиторий.
// Загрузка атомарна: ошибка в любой строке возвращает ошибку и ни одной записи.
func Load(src RowReader) (*Repository, error) {
	var entries []Entry
	for row := 1; ; row++ {
		// 1. Читаем очередную строку
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedEntryError{Row: row, Err: err}
		}

		// 2. Разбираем hex, без него строка бессмысленна
		hex, ok := rec[ColumnHex]
		if !ok {
			return nil, &MalformedEntryError{Row: row, Err: errMissingHex}
		}

		// 3. Строим запись: RGB и Lab выводятся из hex
		e, err := NewEntry(hex, rec[ColumnCoco], rec[ColumnMard], ParseAvailable(rec[ColumnAvailable]))
		if err != nil {
			return nil, &MalformedEntryError{Row: row, Hex: hex, Err: err}
		}
		entries = append(entries, e)
	}
	return New(entries...), nil
}

// LoadFile загружает каталог из CSV-файла с заголовком.
func LoadFile(path string) (*Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	rows, err := NewCSVReader(f)
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	return Load(rows)
}

// Len возвращает число записей.
func (r *Repository) Len() int {
	return len(r.entries)
}

// At возвращает запись по позиции в порядке загрузки.
func (r *Repository) At(i int) *Entry {
	return &r.entries[i]
}

// Entries возвращает копию записей.
func (r *Repository) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// All перебирает записи в порядке загрузки без копирования.
func (r *Repository) All() iter.Seq2[int, *Entry] {
	return func(yield func(int, *Entry) bool) {
		for i := range r.entries {
			if !yield(i, &r.entries[i]) {
				return
			}
		}
	}
}

// AvailableCount считает записи в наличии.
func (r *Repository) AvailableCount() int {
	n := 0
	for i := range r.entries {
		if r.entries[i].Available {
			n++
		}
	}
	return n
}

// Lookup находит все записи с данным hex (в порядке загрузки).
// Некорректный hex просто ничего не находит.
func (r *Repository) Lookup(hex string) []*Entry {
	key, err := color.NormalizeHex(hex)
	if err != nil {
		return nil
	}
	idx := r.index[key]
	out := make([]*Entry, 0, len(idx))
	for _, i := range idx {
		out = append(out, &r.entries[i])
	}
	return out
}
