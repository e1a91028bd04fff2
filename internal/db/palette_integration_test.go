package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"beadify/internal/catalog"
)

// startPostgres поднимает PostgreSQL со схемой palette и возвращает DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("beadify"),
		postgres.WithUsername("beadify"),
		postgres.WithPassword("secret"),
		postgres.WithInitScripts("schema.sql"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestLoadCatalogPostgres(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	conn, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer conn.Close()

	// вставляем не по алфавиту: порядок должен идти по id
	_, err = conn.ExecContext(ctx, `INSERT INTO palette (hex, coco, mard, available) VALUES
		('#FF0000', 'RED', 'A1', TRUE),
		('00ff00', 'GRN', 'A2', FALSE),
		('0000ff', 'BLU', 'A3', TRUE)`)
	require.NoError(t, err)

	repo, err := LoadCatalog(ctx, dsn)
	require.NoError(t, err)
	require.Equal(t, 3, repo.Len())
	assert.Equal(t, "ff0000", repo.At(0).Hex)
	assert.Equal(t, "00ff00", repo.At(1).Hex)
	assert.Equal(t, "0000ff", repo.At(2).Hex)
	// BOOLEAN приходит как текст "true"/"false" и проходит через ParseAvailable
	assert.True(t, repo.At(0).Available)
	assert.False(t, repo.At(1).Available)
	assert.Equal(t, 2, repo.AvailableCount())

	// одна битая строка отменяет всю загрузку
	_, err = conn.ExecContext(ctx, `INSERT INTO palette (hex) VALUES ('nothex')`)
	require.NoError(t, err)
	repo, err = LoadFrom(ctx, conn)
	assert.Nil(t, repo)

	var me *catalog.MalformedEntryError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, 4, me.Row)
	assert.Equal(t, "nothex", me.Hex)
}
