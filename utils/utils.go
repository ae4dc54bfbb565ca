package utils

import (
	"encoding/json"
	"net/http"

	"pmes/apperrors"
	"pmes/models"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New()
}

// DecodeAndValidate decodes the request body into a structure and validates it
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		HandleMessageResponse(w, "Invalid request body", http.StatusBadRequest)
		return err
	}
	if err := Validate.Struct(v); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)

		for _, e := range validationErrors {
			errorMessages[e.Field()] = e.Tag()
		}
		HandleValidationResponse(w, http.StatusBadRequest, errorMessages)
		return err
	}
	return nil
}

// HandleMessageResponse writes a message envelope with the given status
func HandleMessageResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	response := models.NewMessageResponse(statusCode, message)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// HandleValidationResponse handles validation errors response for struct validation
func HandleValidationResponse(w http.ResponseWriter, statusCode int, validationErrors interface{}) {
	w.Header().Set("Content-Type", "application/json")
	response := models.NewValidationResponse(statusCode, validationErrors)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// WriteJSON writes a success payload as-is
func WriteJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// HandleError maps a service error to an HTTP response. Untyped errors are
// logged in full and surfaced as a generic 500.
func HandleError(w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)
	status := statusOf(kind)
	if kind == apperrors.Internal {
		logrus.WithError(err).Error("request failed")
	}
	HandleMessageResponse(w, apperrors.MessageOf(err), status)
}

func statusOf(kind apperrors.Kind) int {
	switch kind {
	case apperrors.Unauthenticated:
		return http.StatusUnauthorized
	case apperrors.Forbidden:
		return http.StatusForbidden
	case apperrors.BadRequest:
		return http.StatusBadRequest
	case apperrors.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
