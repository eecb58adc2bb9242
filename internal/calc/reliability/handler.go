package reliability

import (
	"errors"
	"fmt"
	"net/http"

	"H2Tank/internal/calc/calcerr"
	"H2Tank/internal/jobs"
	"H2Tank/internal/metrics"
	"H2Tank/internal/web"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const jobKind = "reliability"

type Handler struct {
	Log  *zap.Logger
	Jobs *jobs.Store
	// MaxSamples caps the sample count a request may ask for; 0 disables the cap.
	MaxSamples int
}

func (h *Handler) checkSamples(n int) error {
	if h.MaxSamples > 0 && n > h.MaxSamples {
		return fmt.Errorf("%w: %d samples exceeds the limit of %d", calcerr.ErrInvalidInput, n, h.MaxSamples)
	}
	return nil
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input DesignInput
	if err := web.Decode(w, r, &input); err != nil {
		web.Error(w, h.Log, err)
		return
	}
	if err := h.checkSamples(input.Samples); err != nil {
		web.Error(w, h.Log, err)
		return
	}
	res, err := run(input)
	if err != nil {
		web.Error(w, h.Log, err)
		return
	}
	web.JSON(w, http.StatusOK, res)
}

// run uses the design geometry when a pressure is given and the explicit
// design stress otherwise.
func run(in DesignInput) (Result, error) {
	var (
		res Result
		err error
	)
	if in.PressureMPa > 0 {
		res, err = DesignReliability(in, nil)
	} else {
		res, err = Calculate(in.Input, nil)
	}
	if err == nil {
		metrics.MonteCarloSamples.WithLabelValues("stress_strength").Add(float64(res.Samples))
	}
	return res, err
}

func (h *Handler) Burst(w http.ResponseWriter, r *http.Request) {
	var input BurstInput
	if err := web.Decode(w, r, &input); err != nil {
		web.Error(w, h.Log, err)
		return
	}
	if err := h.checkSamples(input.Samples); err != nil {
		web.Error(w, h.Log, err)
		return
	}
	res, err := Burst(input, nil)
	if err != nil {
		web.Error(w, h.Log, err)
		return
	}
	metrics.MonteCarloSamples.WithLabelValues("burst").Add(float64(res.Stats.Count))
	web.JSON(w, http.StatusOK, res)
}

// Submit queues a reliability run and answers 202 with the job id.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var input DesignInput
	if err := web.Decode(w, r, &input); err != nil {
		web.Error(w, h.Log, err)
		return
	}
	if err := h.checkSamples(input.Samples); err != nil {
		web.Error(w, h.Log, err)
		return
	}
	j := h.Jobs.Submit(jobKind, func() (any, error) {
		return run(input)
	})
	h.Log.Info("reliability job queued", zap.String("id", j.ID), zap.Int("samples", input.Samples))
	w.Header().Set("Location", "/api/tools/reliability/jobs/"+j.ID)
	web.JSON(w, http.StatusAccepted, j)
}

func (h *Handler) Job(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	j, err := h.Jobs.Get(id)
	if errors.Is(err, jobs.ErrNotFound) {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		web.Error(w, h.Log, err)
		return
	}
	web.JSON(w, http.StatusOK, j)
}
