package permeation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"H2Tank/internal/materials"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	lib, err := materials.Default()
	require.NoError(t, err)
	return &Handler{Log: zap.NewNop(), Materials: lib}
}

func TestHandler_Calc(t *testing.T) {
	h := newHandler(t)
	body := `{"liner":"HDPE","liner_thickness_mm":5,"radius_mm":175,"length_mm":1500,"pressure_bar":700}`
	rec := httptest.NewRecorder()
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/api/tools/permeation/calc", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 3.5e-19, res.Permeability)
	assert.Equal(t, 1.0, res.TemperatureFactor)
	assert.True(t, res.Compliance.Compliant)
	assert.Less(t, res.RequiredThicknessMM, 5.0)

	check, err := TankPermeation(res.Permeability, res.RequiredThicknessMM, 175, 1500, 700, 20)
	require.NoError(t, err)
	assert.InEpsilon(t, DefaultLimit, check, 1e-9)
}

func TestHandler_Calc_Errors(t *testing.T) {
	h := newHandler(t)
	for name, body := range map[string]string{
		"unknown liner":  `{"liner":"steel","liner_thickness_mm":5,"radius_mm":175,"length_mm":1500,"pressure_bar":700}`,
		"zero thickness": `{"liner_thickness_mm":0,"radius_mm":175,"length_mm":1500,"pressure_bar":700}`,
		"malformed":      `{"liner":`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Calc(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_Loss(t *testing.T) {
	h := newHandler(t)
	body := `{"initial_bar":700,"min_bar":20,"rate_nml_hr_l":6,"hours":1000,"temperature_c":15}`
	rec := httptest.NewRecorder()
	h.Loss(rec, httptest.NewRequest(http.MethodPost, "/api/tools/permeation/loss", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res LossResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Less(t, res.PressureBar, 700.0)
	require.NotNil(t, res.HoursToMin)
	assert.Greater(t, *res.HoursToMin, 1000.0)
}

func TestCalculate_RateFollowsMolarFlux(t *testing.T) {
	lib, err := materials.Default()
	require.NoError(t, err)
	temp := 85.0
	res, err := Calculate(Input{Liner: "PA6", LinerThicknessMM: 3, RadiusMM: 200, LengthMM: 900, PressureBar: 350, TemperatureC: &temp}, lib)
	require.NoError(t, err)

	fromFlux, err := ConvertPermeationUnits(res.RateMolS, res.VolumeL)
	require.NoError(t, err)
	assert.Equal(t, fromFlux, res.RateNmLhrL)

	tank, err := TankPermeation(res.Permeability, 3, 200, 900, 350, temp)
	require.NoError(t, err)
	assert.InEpsilon(t, tank, res.RateNmLhrL, 1e-12)

	_, err = Calculate(Input{LinerThicknessMM: 3, RadiusMM: 0, PressureBar: 350}, lib)
	assert.Error(t, err)
}
