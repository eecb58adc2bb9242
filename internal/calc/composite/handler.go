package composite

import (
	"fmt"
	"net/http"

	"H2Tank/internal/calc/calcerr"
	"H2Tank/internal/web"

	"go.uber.org/zap"
)

// StrengthSource resolves a named fibre system to its strength table.
type StrengthSource interface {
	Strengths(name string) (StrengthTable, error)
}

type Input struct {
	HoopMPa   float64        `json:"hoop_mpa"`
	AxialMPa  float64        `json:"axial_mpa"`
	PlyAngles []float64      `json:"ply_angles_deg" validate:"omitempty,max=64,dive,gte=-90,lte=90"`
	Fibre     string         `json:"fibre"`
	Strengths *StrengthTable `json:"strengths"`
	// Interaction overrides f12*; nil means DefaultInteraction.
	Interaction *float64 `json:"f12_star" validate:"omitempty,gte=-1,lte=1"`
}

type Result struct {
	Plies       []PlyResult   `json:"plies"`
	Governing   int           `json:"governing_ply"`
	Failed      bool          `json:"failed"`
	Strengths   StrengthTable `json:"strengths"`
	Interaction float64       `json:"f12_star"`
	Notes       string        `json:"notes"`
}

// Calculate resolves strengths (explicit table first, then the named fibre)
// and evaluates the layup. The default layup is ±netting angle helicals plus
// a near-hoop ply.
func Calculate(in Input, src StrengthSource) (Result, error) {
	var tbl StrengthTable
	switch {
	case in.Strengths != nil:
		tbl = *in.Strengths
	case in.Fibre != "" && src != nil:
		t, err := src.Strengths(in.Fibre)
		if err != nil {
			return Result{}, err
		}
		tbl = t
	default:
		return Result{}, fmt.Errorf("%w: strengths or fibre required", calcerr.ErrInvalidInput)
	}
	if len(in.PlyAngles) == 0 {
		in.PlyAngles = DefaultLayup()
	}
	f12 := DefaultInteraction
	if in.Interaction != nil {
		f12 = *in.Interaction
	}

	plies, gov, err := AnalyzeLayup(in.HoopMPa, in.AxialMPa, in.PlyAngles, tbl, f12)
	if err != nil {
		return Result{}, err
	}
	failed := false
	for _, p := range plies {
		failed = failed || p.Failed
	}
	return Result{
		Plies:       plies,
		Governing:   gov,
		Failed:      failed,
		Strengths:   tbl,
		Interaction: f12,
		Notes:       "Ply-by-ply Tsai-Wu and Hashin check, no progressive damage.",
	}, nil
}

type Handler struct {
	Log       *zap.Logger
	Strengths StrengthSource
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := web.Decode(w, r, &input); err != nil {
		web.Error(w, h.Log, err)
		return
	}
	res, err := Calculate(input, h.Strengths)
	if err != nil {
		web.Error(w, h.Log, err)
		return
	}
	web.JSON(w, http.StatusOK, res)
}
