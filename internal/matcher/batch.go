package matcher

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"beadify/internal/catalog"
	"beadify/internal/color"
)

// MatchAll подбирает варианты для каждого уникального цвета из queries.
// Повторы в queries считаются один раз. Цвета обрабатываются параллельно,
// не более workers одновременно (0 — по числу CPU).
func MatchAll(ctx context.Context, repo *catalog.Repository, queries []color.RGB, opts Options, workers int) (map[color.RGB][]Match, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// 1. Убираем повторы, сохраняя порядок первого появления
	seen := make(map[color.RGB]struct{}, len(queries))
	unique := make([]color.RGB, 0, len(queries))
	for _, q := range queries {
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		unique = append(unique, q)
	}

	// 2. Раздаём цвета воркерам
	var mu sync.Mutex
	result := make(map[color.RGB][]Match, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, q := range unique {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			matches, err := Find(repo, q, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			result[q] = matches
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Отмена могла прийти до запуска первой задачи
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
