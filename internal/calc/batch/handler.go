package batch

import (
	"net/http"

	"H2Tank/internal/materials"
	"H2Tank/internal/metrics"
	"H2Tank/internal/web"

	"go.uber.org/zap"
)

// MaxDesigns bounds a single batch request.
const MaxDesigns = 500

type Input struct {
	Designs []Design `json:"designs" validate:"required,min=1,max=500,dive"`
}

type Handler struct {
	Log       *zap.Logger
	Materials *materials.Library
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := web.Decode(w, r, &input); err != nil {
		web.Error(w, h.Log, err)
		return
	}
	sum, err := Evaluate(r.Context(), input.Designs, h.Materials)
	if err != nil {
		web.Error(w, h.Log, err)
		return
	}
	metrics.DesignsEvaluated.WithLabelValues("json").Add(float64(sum.Count))
	web.JSON(w, http.StatusOK, sum)
}
