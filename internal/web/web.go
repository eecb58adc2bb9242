// Package web holds the request/response plumbing shared by the calculation handlers.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"H2Tank/internal/calc/calcerr"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// MaxBodySize bounds JSON request bodies.
const MaxBodySize = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrBadPayload marks bodies that failed to decode or validate.
var ErrBadPayload = errors.New("invalid request payload")

// Decode reads a JSON body into v and runs its validate tags.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if err := Validate(v); err != nil {
		return err
	}
	return nil
}

// Validate runs struct tag validation on v.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("%w: field %s failed %s=%s", ErrBadPayload, f.Field(), f.Tag(), f.Param())
		}
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Error writes err with the status its category maps to.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		http.Error(w, "Internal error", status)
		return
	}
	log.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	http.Error(w, err.Error(), status)
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadPayload):
		return http.StatusBadRequest
	case calcerr.IsInvalid(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
