package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"reflect"
	"strconv"

	"github.com/SigNoz/store-api-go/internal/middleware"
	"github.com/SigNoz/store-api-go/internal/models"
	"github.com/SigNoz/store-api-go/internal/services"
	"github.com/gorilla/mux"
)

type errorBody struct {
	Detail any `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeError maps service errors onto status codes: ValidationError 422,
// NotFoundError 404, anything else 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *models.ValidationError
		nf   *services.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: verr.Fields})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorBody{Detail: nf.Error()})
	default:
		log.Printf("%s %s [%s] failed: %v", r.Method, r.URL.Path, middleware.RequestID(r.Context()), err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "Internal Server Error"})
	}
}

// pathID parses the named route variable as an integer id. Ids with no row,
// including zero and negatives, are left to the store to report as not found.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, models.NewValidationError(name, "must be an integer")
	}
	return id, nil
}

// queryInt reads an integer query parameter, returning def when it is absent
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewValidationError(name, "must be an integer")
	}
	return n, nil
}

// decodeJSON decodes the request body into v. An empty body leaves v as is.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return models.NewValidationError(typeErr.Field, "expected "+jsonKind(typeErr.Type))
	}
	return models.NewValidationError("body", "invalid JSON")
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	}
	return t.Kind().String()
}
