package importer

import (
	"fmt"
	"net/http"

	"H2Tank/internal/calc/batch"
	"H2Tank/internal/calc/calcerr"
	"H2Tank/internal/materials"
	"H2Tank/internal/metrics"
	"H2Tank/internal/web"

	"go.uber.org/zap"
)

// MaxUploadSize bounds the multipart upload.
const MaxUploadSize = 10 << 20

type Handler struct {
	Log       *zap.Logger
	Materials *materials.Library
}

type Result struct {
	batch.Summary
	Skipped []SkippedRow `json:"skipped"`
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	sheet, err := Read(file)
	if err != nil {
		web.Error(w, h.Log, err)
		return
	}
	if len(sheet.Designs) > batch.MaxDesigns {
		web.Error(w, h.Log, fmt.Errorf("%w: %d designs exceeds the limit of %d", calcerr.ErrInvalidInput, len(sheet.Designs), batch.MaxDesigns))
		return
	}
	if len(sheet.Designs) == 0 {
		web.JSON(w, http.StatusOK, Result{Summary: batch.Summary{Results: []batch.Result{}}, Skipped: sheet.Skipped})
		return
	}

	sum, err := batch.Evaluate(r.Context(), sheet.Designs, h.Materials)
	if err != nil {
		web.Error(w, h.Log, err)
		return
	}
	metrics.DesignsEvaluated.WithLabelValues("xlsx").Add(float64(sum.Count))
	h.Log.Info("workbook imported", zap.Int("designs", sum.Count), zap.Int("skipped", len(sheet.Skipped)))
	web.JSON(w, http.StatusOK, Result{Summary: sum, Skipped: sheet.Skipped})
}
