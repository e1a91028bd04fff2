package db

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	_ "github.com/lib/pq"

	"beadify/internal/catalog"
)

// paletteQuery читает каталог в порядке вставки. available читается как текст,
// чтобы к нему применялось то же правило, что и к CSV.
const paletteQuery = "SELECT hex, coco, mard, available::text FROM palette ORDER BY id"

// rowScanner — часть *sql.Rows, которая нужна Rows.
type rowScanner interface {
	Next() bool
	Err() error
	Scan(dest ...any) error
}

// Rows реализует catalog.RowReader поверх результата SQL-запроса.
type Rows struct {
	rows rowScanner
}

// NewRows оборачивает *sql.Rows с колонками hex, coco, mard, available.
func NewRows(rows *sql.Rows) *Rows {
	return &Rows{rows: rows}
}

// Next реализует catalog.RowReader.
func (r *Rows) Next() (map[string]string, error) {
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate palette rows: %w", err)
		}
		return nil, io.EOF
	}
	var hex, coco, mard, available sql.NullString
	if err := r.rows.Scan(&hex, &coco, &mard, &available); err != nil {
		return nil, fmt.Errorf("scan palette row: %w", err)
	}
	row := map[string]string{
		catalog.ColumnCoco:      coco.String,
		catalog.ColumnMard:      mard.String,
		catalog.ColumnAvailable: available.String,
	}
	// NULL в hex то же, что отсутствующая колонка. Пробелы срезаем:
	// CHAR(n) дополняет значение справа.
	if hex.Valid {
		row[catalog.ColumnHex] = strings.TrimSpace(hex.String)
	}
	return row, nil
}

// LoadCatalog подключается к PostgreSQL и загружает каталог из таблицы palette.
func LoadCatalog(ctx context.Context, connStr string) (*catalog.Repository, error) {
	// 1. Открываем соединение с БД
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	return LoadFrom(ctx, db)
}

// LoadFrom загружает каталог через уже открытое соединение.
func LoadFrom(ctx context.Context, db *sql.DB) (*catalog.Repository, error) {
	// 2. Делаем SELECT-запрос к таблице palette
	rows, err := db.QueryContext(ctx, paletteQuery)
	if err != nil {
		return nil, fmt.Errorf("query palette: %w", err)
	}
	defer rows.Close()

	// 3. Строим каталог; ошибка в любой строке отменяет всю загрузку
	return catalog.Load(NewRows(rows))
}
