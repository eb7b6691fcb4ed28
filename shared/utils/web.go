package utils

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/solexplorer/solexplorer/shared/domain"
	"github.com/solexplorer/solexplorer/shared/errors"
	"github.com/solexplorer/solexplorer/shared/logger"
)

// ErrorResponse is the envelope of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteErrorAndStatusCode writes err as {"error": ...}. Errors carrying a
// status keep it, everything else is an internal error.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var withStatus *errors.ErrorWithStatusCode
	if stderrors.As(err, &withStatus) {
		status = withStatus.StatusCode
	}
	WriteError(w, status, err.Error())
}

func WriteError(w http.ResponseWriter, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		logger.Log.Error("failed to write error response", "error", err)
	}
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to write json response", "error", err)
	}
}

// CachePolicy renders a Cache-Control header for edge and browser caching.
type CachePolicy struct {
	SMaxAge              int // seconds, shared caches
	MaxAge               int // seconds, browsers
	StaleWhileRevalidate int // seconds
}

func (p CachePolicy) String() string {
	parts := []string{"public"}
	if p.SMaxAge > 0 {
		parts = append(parts, fmt.Sprintf("s-maxage=%d", p.SMaxAge))
	}
	if p.MaxAge > 0 {
		parts = append(parts, fmt.Sprintf("max-age=%d", p.MaxAge))
	}
	if p.StaleWhileRevalidate > 0 {
		parts = append(parts, fmt.Sprintf("stale-while-revalidate=%d", p.StaleWhileRevalidate))
	}
	return strings.Join(parts, ", ")
}

func SetCacheControl(w http.ResponseWriter, p CachePolicy) {
	w.Header().Set("Cache-Control", p.String())
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the solana_address tag registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterValidation("solana_address", func(fl validator.FieldLevel) bool {
			return domain.IsAddress(fl.Field().String())
		})
	})
	return validate
}

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	if err := Validator().Struct(body); err != nil {
		logger.Log.Debug("request validation failed", "error", err)
		return &errors.ErrorWithStatusCode{Message: validationMessage(err), StatusCode: http.StatusBadRequest}
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("request body is not valid json", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return "Required fields missing"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "solana_address":
		return fmt.Sprintf("%s is not a valid solana address", fe.Field())
	case "max":
		return fmt.Sprintf("%s is too long", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
