package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/therapytreasure/backend/internal/config"
	"github.com/therapytreasure/backend/internal/services"
)

var (
	cfg               *config.Config
	mailer            *services.Mailer
	cloudinaryService *services.CloudinaryService
)

// Init wires handler package state from the loaded configuration.
func Init(c *config.Config) {
	cfg = c
	mailer = services.NewMailer(c)
}

// InitCloudinaryService initializes the upload service. File-upload routes
// report an error when this was never called.
func InitCloudinaryService(c *config.Config) error {
	service, err := services.NewCloudinaryService(
		c.CloudinaryName,
		c.CloudinaryAPIKey,
		c.CloudinaryAPISecret,
	)
	if err != nil {
		return err
	}
	cloudinaryService = service
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their json names so error params match the payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError is one per-field validation failure, mirroring the error shape
// the frontend renders next to form inputs.
type FieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

func fieldErrors(err error) []FieldError {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []FieldError{{Param: "", Msg: "Invalid request"}}
	}
	out := make([]FieldError, 0, len(ves))
	for _, fe := range ves {
		out = append(out, FieldError{Param: fe.Field(), Msg: messageFor(fe)})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Field() {
	case "age_check":
		return "You must confirm you are over 18"
	case "terms_check":
		return "You must accept the terms of service and privacy policy"
	case "confirm_password":
		if fe.Tag() == "eqfield" {
			return "Passwords do not match"
		}
		return "Please confirm your password"
	}
	switch fe.Tag() {
	case "required":
		return "Please enter your " + field
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", capitalize(field), fe.Param())
	case "oneof":
		return "Invalid value for " + field
	}
	return "Invalid " + field
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, success bool, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": success,
		"message": message,
	})
}

func writeFieldErrors(w http.ResponseWriter, errs []FieldError) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"success": false,
		"errors":  errs,
	})
}

// decodeAndValidate decodes a JSON body into dst and runs struct validation,
// writing the error response itself. Returns false when the request is bad.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeFieldErrors(w, fieldErrors(err))
		return false
	}
	return true
}
