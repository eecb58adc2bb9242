package vessel

import (
	"net/http"

	"H2Tank/internal/web"

	"go.uber.org/zap"
)

type Handler struct {
	Log *zap.Logger
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := web.Decode(w, r, &input); err != nil {
		web.Error(w, h.Log, err)
		return
	}
	res, err := Calculate(input)
	if err != nil {
		web.Error(w, h.Log, err)
		return
	}
	web.JSON(w, http.StatusOK, res)
}

func (h *Handler) Dome(w http.ResponseWriter, r *http.Request) {
	var input DomeInput
	if err := web.Decode(w, r, &input); err != nil {
		web.Error(w, h.Log, err)
		return
	}
	res, err := CalculateDome(input)
	if err != nil {
		web.Error(w, h.Log, err)
		return
	}
	web.JSON(w, http.StatusOK, res)
}
