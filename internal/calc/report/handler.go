package report

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"H2Tank/internal/calc/batch"
	"H2Tank/internal/materials"
	"H2Tank/internal/web"

	"go.uber.org/zap"
)

type Input struct {
	Meta
	Design batch.Design `json:"design"`
}

type Handler struct {
	Log       *zap.Logger
	Materials *materials.Library
	// Now defaults to time.Now.
	Now func() time.Time
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := web.Decode(w, r, &input); err != nil {
		web.Error(w, h.Log, err)
		return
	}
	res, err := batch.EvaluateDesign(input.Design, h.Materials)
	if err != nil {
		web.Error(w, h.Log, err)
		return
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	var buf bytes.Buffer
	if err := Render(&buf, input.Meta, res, now()); err != nil {
		web.Error(w, h.Log, fmt.Errorf("render report: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"report.pdf\"")
	w.Write(buf.Bytes())
}
