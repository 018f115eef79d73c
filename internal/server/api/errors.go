package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gopherblog/internal/common"
)

type errorBody struct {
	Message string              `json:"message"`
	Data    map[string][]string `json:"data,omitempty"`
	Stack   string              `json:"stack,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as {message, data?, stack?} with the status of its
// kind. Internal errors are logged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ae := common.AsAppError(err)
	if errors.Is(ae, common.ErrorInternal) {
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", ae.Cause())
	}

	body := errorBody{Message: ae.Message}
	if len(ae.Details) > 0 {
		body.Data = map[string][]string{"errors": ae.Details}
	}
	if s.development {
		body.Stack = ae.StackTrace()
	}
	writeJSON(w, ae.Status, body)
}
