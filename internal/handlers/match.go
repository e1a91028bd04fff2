package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"beadify/internal/color"
)

var (
	errBadK         = errors.New("k must be a positive integer")
	errBadAvailable = errors.New("available must be true or false")
)

// MatchResult описывает один вариант в ответе /match.
type MatchResult struct {
	Hex       string  `json:"hex"`
	Coco      string  `json:"coco"`
	Mard      string  `json:"mard"`
	Available bool    `json:"available"`
	Distance  float64 `json:"distance"`
}

// MatchResponse описывает ответ /match.
type MatchResponse struct {
	Query     string        `json:"query"`
	TextColor string        `json:"text_color"`
	Matches   []MatchResult `json:"matches"`
}

// MatchHandler: GET /match?hex=RRGGBB[&k=5][&available=true].
func (h *Handler) MatchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Проверяем ввод здесь, в ядро попадает только корректный цвет
	query, err := color.ParseQuery(r.URL.Query().Get("hex"))
	if err != nil {
		h.metrics.matchRequests.WithLabelValues("bad_request").Inc()
		http.Error(w, "invalid hex color: expected 6 hex digits, e.g. a1b2c3", http.StatusBadRequest)
		return
	}
	opts, err := h.matchOptions(r)
	if err != nil {
		h.metrics.matchRequests.WithLabelValues("bad_request").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	matches, err := h.cache.Find(query, opts)
	if err != nil {
		h.metrics.matchRequests.WithLabelValues("error").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.metrics.matchRequests.WithLabelValues("ok").Inc()

	resp := MatchResponse{
		Query:     query.Hex(),
		TextColor: color.ContrastText(query.Hex()),
		Matches:   make([]MatchResult, 0, len(matches)),
	}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, MatchResult{
			Hex:       m.Entry.Hex,
			Coco:      m.Entry.Coco,
			Mard:      m.Entry.Mard,
			Available: m.Entry.Available,
			Distance:  m.Distance,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Warn("write match response", "error", err)
	}
}
