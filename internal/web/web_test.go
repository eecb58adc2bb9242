package web

import (
	"errors"
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

type sample struct {
	Radius float64 `json:"radius_m" validate:"gt=0"`
	Name   string  `json:"name"`
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"radius_m":0.2,"name":"a"}`, false},
		{"malformed", `{"radius_m":`, true},
		{"wrong type", `{"radius_m":"x"}`, true},
		{"fails tag", `{"radius_m":0}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var v sample
			err := Decode(httptest.NewRecorder(), req, &v)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadPayload)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 0.2, v.Radius)
		})
	}
}

func TestDecode_BodyTooLarge(t *testing.T) {
	body := `{"name":"` + strings.Repeat("x", MaxBodySize) + `","radius_m":1}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var v sample
	assert.ErrorIs(t, Decode(httptest.NewRecorder(), req, &v), ErrBadPayload)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: x", ErrBadPayload), http.StatusBadRequest},
		{calcerr.ErrDivisionByZero, http.StatusBadRequest},
		{fmt.Errorf("ply: %w", calcerr.ErrInvalidStrengthTable), http.StatusBadRequest},
		{calcerr.ErrInvalidGeometry, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, zap.NewNop(), errors.New("secret path /etc/x"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")

	rec = httptest.NewRecorder()
	Error(rec, zap.NewNop(), fmt.Errorf("%w: thickness", calcerr.ErrInvalidThickness))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "thickness")
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusAccepted, map[string]int{"n": 1})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}
