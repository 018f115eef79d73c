package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/logging"
	graphql "github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"
)

//go:embed schema.graphql
var schemaSDL string

// maxQueryDepth keeps recursive creator/posts selections bounded.
const maxQueryDepth = 10

type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func parseSchema(root *rootResolver, logger logging.Logger) (*graphql.Schema, error) {
	ph := panicHandler{logger: logger}
	return graphql.ParseSchema(schemaSDL, root,
		graphql.MaxDepth(maxQueryDepth),
		graphql.Logger(ph),
		graphql.PanicHandler(ph),
	)
}

// panicHandler turns a resolver panic into a generic internal error.
type panicHandler struct {
	logger logging.Logger
}

func (h panicHandler) LogPanic(ctx context.Context, value interface{}) {
	h.logger.Error(ctx, "resolver panic", "panic", value, "stack", string(debug.Stack()))
}

func (h panicHandler) MakePanicError(ctx context.Context, value interface{}) *gqlerrors.QueryError {
	ae := common.AsAppError(fmt.Errorf("panic: %v", value))
	return &gqlerrors.QueryError{Message: ae.Message, ResolverError: ae}
}

// handleGraphQL executes one GraphQL request. Every executed request is
// answered with 200; resolver failures are reported in "errors", each with
// its HTTP-equivalent status in extensions.status.
func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	var req graphqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"errors": []map[string]string{{"message": "Must provide query string."}},
		})
		return
	}

	resp := s.schema.Exec(r.Context(), req.Query, req.OperationName, req.Variables)
	for _, qe := range resp.Errors {
		s.decorate(r, qe)
	}

	writeJSON(w, http.StatusOK, resp)
}

// decorate completes the extensions of a resolver error. Errors that did not
// come from a service are logged and replaced by a generic internal error.
func (s *Server) decorate(r *http.Request, qe *gqlerrors.QueryError) {
	if qe.ResolverError == nil {
		return
	}

	var ae *common.AppError
	if !errors.As(qe.ResolverError, &ae) {
		s.logger.Error(r.Context(), "unhandled resolver error", "path", qe.Path, "error", qe.ResolverError)
		ae = common.AsAppError(qe.ResolverError)
		qe.Message = ae.Message
	}

	if s.development {
		ae.Trace = ae.StackTrace()
	}
	qe.Extensions = ae.Extensions()
}
