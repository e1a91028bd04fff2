package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"time"

	imagepkg "beadify/internal/image"
	"beadify/internal/pdf"
)

// GenerateHandler принимает картинку (multipart, поле "file") и отдаёт схему.
// format=pdf — PDF с легендой, иначе PNG. Повторяемое поле choice=HEX:INDEX
// задаёт вариант бусины для конкретного цвета исходника.
func (h *Handler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "could not read uploaded file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	img, err := imagepkg.DecodeBounded(file, h.settings.MaxSourcePixels)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	opts, err := h.matchOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Строим схему
	start := time.Now()
	scheme, err := imagepkg.Build(r.Context(), h.logger, img, h.cache.Repository(), opts, h.settings, h.workers)
	h.metrics.buildDuration.Observe(time.Since(start).Seconds())
	if errors.Is(err, imagepkg.ErrTooLarge) {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		h.logger.Error("scheme build failed", "error", err)
		http.Error(w, fmt.Sprintf("processing failed: %v", err), http.StatusInternalServerError)
		return
	}

	// Пользовательский выбор вариантов
	for _, raw := range r.MultipartForm.Value["choice"] {
		src, idx, err := imagepkg.ParseChoice(raw)
		if err == nil {
			err = scheme.Choose(src, idx)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	mosaic := scheme.Render()
	h.logger.Info("scheme generated",
		"width", scheme.Width, "height", scheme.Height,
		"unique_colors", len(scheme.Colors()), "beads", len(scheme.Usage()))

	if r.FormValue("format") == "pdf" {
		doc, err := pdf.GeneratePDF(mosaic, scheme.Usage(), scheme.SizeInfo())
		if err != nil {
			h.logger.Error("pdf generation failed", "error", err)
			http.Error(w, "could not create PDF", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment; filename=\"mosaic.pdf\"")
		_, _ = w.Write(doc)
		return
	}

	// PNG кодируем в буфер, чтобы при ошибке ещё можно было вернуть 500
	var buf bytes.Buffer
	if err := png.Encode(&buf, mosaic); err != nil {
		http.Error(w, "could not create PNG", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", "attachment; filename=\"mosaic.png\"")
	_, _ = buf.WriteTo(w)
}

// statusFor отличает слишком большую картинку от битой.
func statusFor(err error) int {
	if errors.Is(err, imagepkg.ErrTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
