package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// errBelowMin is returned by atLeast for in-range integers smaller than min.
var errBelowMin = fmt.Errorf("value below minimum")

// atLeast parses a base 10 int and checks it is >= min.
func atLeast(value string, min int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n < min {
		return 0, errBelowMin
	}
	return n, nil
}

// ParseID extracts the positive integer id from the request path.
// On failure a 400 response is already written.
func ParseID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int, bool) {
	value := chi.URLParam(r, "id")
	id, err := atLeast(value, 1)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid id: %s", value))
		return 0, false
	}
	return id, true
}

// ParseOptionalGte reads an optional integer query parameter that must be >= min.
// A missing parameter yields def. On failure a 400 response is already written.
func ParseOptionalGte(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, min, def int) (int, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def, true
	}
	n, err := atLeast(value, min)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return 0, false
	}
	return n, true
}
