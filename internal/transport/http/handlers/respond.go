package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	svcErr "github.com/oggyb/glidefade/internal/errors"
	"github.com/oggyb/glidefade/internal/logger"
	"github.com/oggyb/glidefade/internal/transport/http/middleware"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps a service error to its status and logs 5xx.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := svcErr.StatusOf(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context(), nil).Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeError(w, status, msg)
}

const maxBodyBytes = 1 << 20

// decode reads a JSON body of at most maxBodyBytes into dst. Validation
// happens separately so handlers can fill defaults first.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &svcErr.Error{Status: http.StatusRequestEntityTooLarge, Message: "request body too large", Err: err}
		}
		return svcErr.InvalidArgument("invalid request body")
	}
	return nil
}

func check(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return svcErr.InvalidArgument(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return svcErr.InvalidArgument(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid url", fe.Field())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// actingAs returns the user id a request acts on. An empty claimed id
// defaults to the caller; any other id is refused.
func actingAs(r *http.Request, claimed string) (string, error) {
	sub := middleware.GetUserID(r.Context())
	if claimed == "" || claimed == sub {
		return sub, nil
	}
	return "", svcErr.Unauthorized("cannot act on behalf of another user")
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, svcErr.InvalidArgument(key + " must be an integer")
	}
	return n, nil
}
