package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/rs/zerolog"

	"github.com/pattarapol/jotter-api/internal/apperrors"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Errors []fieldError `json:"errors"`
}

// newValidator builds the request validator with english translations and
// json tag names in messages.
func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = entranslations.RegisterDefaultTranslations(validate, trans)

	return validate, trans
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps a domain failure kind to a status code. Non-domain
// errors are logged and hidden behind a generic message so storage-layer
// detail never leaks.
func writeError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	var status int
	switch apperrors.KindOf(err) {
	case apperrors.KindBadRequest:
		status = http.StatusBadRequest
	case apperrors.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindConflict:
		status = http.StatusConflict
	case apperrors.KindNotAcceptable:
		status = http.StatusNotAcceptable
	default:
		logger.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Errors: []fieldError{{Field: "", Message: "something went wrong"}},
		})
		return
	}

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		appErr = &apperrors.Error{Message: "something went wrong"}
	}

	writeJSON(w, status, errorResponse{
		Errors: []fieldError{{Field: appErr.Field, Message: appErr.Message}},
	})
}

// writeValidationErrors renders translated validation failures, one per
// offending field.
func writeValidationErrors(w http.ResponseWriter, trans ut.Translator, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Errors: []fieldError{{Field: "", Message: "invalid request body"}},
		})
		return
	}

	fieldErrors := make([]fieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fieldErrors = append(fieldErrors, fieldError{
			Field:   fe.Field(),
			Message: fe.Translate(trans),
		})
	}

	writeJSON(w, http.StatusBadRequest, errorResponse{Errors: fieldErrors})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeBadRequest(w http.ResponseWriter, field, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Errors: []fieldError{{Field: field, Message: message}},
	})
}

func writeUnauthorized(w http.ResponseWriter, field, message string) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{
		Errors: []fieldError{{Field: field, Message: message}},
	})
}
