package graphql

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	gql "github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"

	"github.com/Tomlord1122/portfolio-backend/internal/service"
)

const maxBodyBytes = 1 << 20

type request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// Handler serves GraphQL over GET (queries only) and POST. The caller must
// already be stored on the request context with service.WithCaller.
type Handler struct {
	schema gql.Schema
}

// NewHandler builds the schema and returns a handler serving it.
func NewHandler(todos service.TodoService, users service.UserService, log *slog.Logger) (*Handler, error) {
	schema, err := NewSchema(todos, users, log)
	if err != nil {
		return nil, err
	}
	return &Handler{schema: schema}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if v := q.Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				writeRequestError(w, http.StatusBadRequest, "Variables must be a JSON object.")
				return
			}
		}
	case http.MethodPost:
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeRequestError(w, http.StatusBadRequest, "Request body must be valid JSON.")
			return
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		writeRequestError(w, http.StatusMethodNotAllowed, "GraphQL only supports GET and POST requests.")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeRequestError(w, http.StatusBadRequest, "Must provide query string.")
		return
	}
	if r.Method == http.MethodGet && isMutation(req.Query, req.OperationName) {
		w.Header().Set("Allow", "POST")
		writeRequestError(w, http.StatusMethodNotAllowed, "Mutations must be sent with POST.")
		return
	}

	result := gql.Do(gql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        r.Context(),
	})

	writeJSON(w, http.StatusOK, result)
}

// isMutation reports whether the selected operation is a mutation. Documents
// that do not parse are left for the executor to report.
func isMutation(query, operationName string) bool {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return false
	}
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName != "" && (op.Name == nil || op.Name.Value != operationName) {
			continue
		}
		if op.Operation == ast.OperationTypeMutation {
			return true
		}
	}
	return false
}

func writeRequestError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"errors": []map[string]any{{"message": message}},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal graphql response", slog.Any("error", err))
		status = http.StatusInternalServerError
		body = []byte(`{"errors":[{"message":"Internal server error."}]}`)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
