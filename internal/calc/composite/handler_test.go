package composite

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"H2Tank/internal/calc/calcerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource map[string]StrengthTable

func (f fakeSource) Strengths(name string) (StrengthTable, error) {
	if t, ok := f[name]; ok {
		return t, nil
	}
	return StrengthTable{}, fmt.Errorf("%w: %s", calcerr.ErrInvalidInput, name)
}

func TestHandler_Calc(t *testing.T) {
	h := &Handler{Log: zap.NewNop(), Strengths: fakeSource{"T700S/epoxy": t700}}

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"named fibre, default layup", `{"hoop_mpa":500,"axial_mpa":250,"fibre":"T700S/epoxy"}`, http.StatusOK},
		{"explicit table", `{"hoop_mpa":500,"axial_mpa":250,"strengths":{"xt":2000,"xc":1200,"yt":50,"yc":180,"s":80},"ply_angles_deg":[30]}`, http.StatusOK},
		{"unknown fibre", `{"hoop_mpa":500,"axial_mpa":250,"fibre":"glass"}`, http.StatusBadRequest},
		{"no strengths", `{"hoop_mpa":500,"axial_mpa":250}`, http.StatusBadRequest},
		{"degenerate table", `{"hoop_mpa":500,"strengths":{"xt":0,"xc":1,"yt":1,"yc":1,"s":1}}`, http.StatusBadRequest},
		{"interaction out of range", `{"fibre":"T700S/epoxy","f12_star":3}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/tools/composite/calc", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Calc(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestCalculate_DefaultsAndOverride(t *testing.T) {
	res, err := Calculate(Input{HoopMPa: 500, AxialMPa: 250, Fibre: "T700S/epoxy"}, fakeSource{"T700S/epoxy": t700})
	require.NoError(t, err)
	require.Len(t, res.Plies, 3)
	assert.Equal(t, DefaultInteraction, res.Interaction)
	for i, want := range DefaultLayup() {
		assert.Equal(t, want, res.Plies[i].AngleDeg)
	}

	zero := 0.0
	res, err = Calculate(Input{HoopMPa: 500, AxialMPa: 250, Strengths: &t700, Interaction: &zero}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Interaction)

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"governing_ply"`)
}
