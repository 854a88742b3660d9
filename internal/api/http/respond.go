package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	authmw "github.com/mind-engage/learnpath/internal/auth/middleware"
	"github.com/mind-engage/learnpath/internal/learning"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

// writeError maps learning error kinds onto HTTP statuses. Anything
// unclassified is logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, learning.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, learning.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, learning.ErrPolicyViolation):
		status = http.StatusBadRequest
	case errors.Is(err, learning.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, learning.ErrInvalid):
		status = http.StatusUnprocessableEntity
	default:
		log.Printf("[%s] %s %s: %v", middleware.GetReqID(r.Context()), r.Method, r.URL.Path, err)
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeDetail(w, status, err.Error())
}

// decode reads a JSON body into dst and runs struct validation on it.
// It writes the error response itself and reports whether to continue.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeDetail(w, http.StatusBadRequest, "bad json: "+err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return false
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		writeDetail(w, http.StatusUnprocessableEntity, msgs)
		return false
	}
	return true
}

func fieldMessage(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "min", "max", "gte", "gt":
		return fmt.Sprintf("%s must satisfy %s=%s", name, fe.Tag(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", name, fe.Param())
	default:
		return fmt.Sprintf("%s is not a valid %s", name, fe.Tag())
	}
}

// idParam parses a positive integer URL parameter.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeDetail(w, http.StatusNotFound, name+" not found")
		return 0, false
	}
	return id, true
}

// pageFromQuery reads skip/limit the way the public API documents them.
func pageFromQuery(r *http.Request) learning.Page {
	var p learning.Page
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		p.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("skip")); err == nil {
		p.Offset = v
	}
	return p
}

// currentUser is set by authmw.AttachUser on every protected route.
func currentUser(r *http.Request) learning.User {
	u, _ := authmw.UserFromContext(r.Context())
	return u
}
