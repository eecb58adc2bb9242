package permeation

import (
	"net/http"

	"H2Tank/internal/materials"
	"H2Tank/internal/web"

	"go.uber.org/zap"
)

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
	res, err := Calculate(input, h.Materials)
	if err != nil {
		web.Error(w, h.Log, err)
		return
	}
	web.JSON(w, http.StatusOK, res)
}

func (h *Handler) Loss(w http.ResponseWriter, r *http.Request) {
	var input LossInput
	if err := web.Decode(w, r, &input); err != nil {
		web.Error(w, h.Log, err)
		return
	}
	res, err := CalculateLoss(input)
	if err != nil {
		web.Error(w, h.Log, err)
		return
	}
	web.JSON(w, http.StatusOK, res)
}
