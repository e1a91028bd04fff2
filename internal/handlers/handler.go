// Package handlers реализует HTTP-интерфейс: подбор бусин по hex и генерация схем.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	imagepkg "beadify/internal/image"
	"beadify/internal/matcher"
)

// Options задаёт зависимости и настройки обработчиков.
type Options struct {
	Cache     *matcher.Cache
	Match     matcher.Options
	Mosaic    imagepkg.Settings
	Workers   int
	MaxUpload int64
	Logger    *slog.Logger
}

// Handler держит общий кэш подбора и метрики.
type Handler struct {
	cache     *matcher.Cache
	defaults  matcher.Options
	settings  imagepkg.Settings
	workers   int
	maxUpload int64
	logger    *slog.Logger
	registry  *prometheus.Registry
	metrics   *metrics
}

type metrics struct {
	matchRequests *prometheus.CounterVec
	buildDuration prometheus.Histogram
}

// New создаёт обработчики и регистрирует метрики в собственном реестре.
func New(o Options) *Handler {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.MaxUpload <= 0 {
		o.MaxUpload = 20 << 20
	}
	if o.Match.K <= 0 {
		o.Match.K = matcher.DefaultK
	}

	h := &Handler{
		cache:     o.Cache,
		defaults:  o.Match,
		settings:  o.Mosaic,
		workers:   o.Workers,
		maxUpload: o.MaxUpload,
		logger:    o.Logger,
		registry:  prometheus.NewRegistry(),
		metrics: &metrics{
			matchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "beadify",
				Name:      "match_requests_total",
				Help:      "Match requests by result.",
			}, []string{"result"}),
			buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: "beadify",
				Name:      "scheme_build_seconds",
				Help:      "Time spent building a bead scheme from an image.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			}),
		},
	}

	cache := o.Cache
	h.registry.MustRegister(
		h.metrics.matchRequests,
		h.metrics.buildDuration,
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "beadify",
			Name:      "match_cache_hits_total",
			Help:      "Match cache hits.",
		}, func() float64 { return float64(cache.Stats().Hits) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "beadify",
			Name:      "match_cache_misses_total",
			Help:      "Match cache misses.",
		}, func() float64 { return float64(cache.Stats().Misses) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "beadify",
			Name:      "catalog_entries",
			Help:      "Entries in the loaded catalog.",
		}, func() float64 { return float64(cache.Repository().Len()) }),
	)
	return h
}

// Routes возвращает мультиплексор со всеми маршрутами.
// staticDir == "" — без раздачи статики.
func (h *Handler) Routes(staticDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/match", h.MatchHandler)
	mux.HandleFunc("/generate", h.GenerateHandler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

// matchOptions берёт k и available из запроса, остальное — из настроек.
func (h *Handler) matchOptions(r *http.Request) (matcher.Options, error) {
	opts := h.defaults
	if v := r.FormValue("k"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil || k <= 0 {
			return opts, errBadK
		}
		opts.K = k
	}
	if v := r.FormValue("available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errBadAvailable
		}
		opts.AvailableOnly = b
	}
	return opts, nil
}
