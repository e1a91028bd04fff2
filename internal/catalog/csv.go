package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// csvReader читает CSV с заголовком и отдаёт строки как map по именам колонок.
type csvReader struct {
	r      *csv.Reader
	header []string
}

// NewCSVReader читает строку заголовка и возвращает RowReader.
// Порядок колонок не важен, лишние колонки попадают в map, но не используются.
func NewCSVReader(r io.Reader) (RowReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty catalog: %w", err)
		}
		return nil, err
	}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			// Excel любит ставить BOM в начало файла
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = h
	}
	return &csvReader{r: cr, header: header}, nil
}

func (c *csvReader) Next() (map[string]string, error) {
	rec, err := c.r.Read()
	if err != nil {
		return nil, err
	}
	row := make(map[string]string, len(c.header))
	for i, name := range c.header {
		if i < len(rec) {
			row[name] = rec[i]
		}
	}
	return row, nil
}
