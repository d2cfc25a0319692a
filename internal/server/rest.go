package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Tomlord1122/portfolio-backend/internal/service"
	"github.com/Tomlord1122/portfolio-backend/internal/validation"
)

const maxBodyBytes = 1 << 20

type todoPayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

type pageMeta struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

// jsonTodoInput defers decoding the body until the service asks for it.
// Type mismatches on known fields become field errors; anything else that
// fails to decode is reported as malformed JSON.
func jsonTodoInput(r *http.Request) service.InputFunc {
	return func() (service.TodoInput, error) {
		var body todoPayload
		decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		if err := decoder.Decode(&body); err != nil {
			var syntaxError *json.SyntaxError
			var unmarshalTypeError *json.UnmarshalTypeError
			switch {
			case errors.As(err, &syntaxError):
				return service.TodoInput{}, fmt.Errorf("badly-formed JSON at position %d: %w", syntaxError.Offset, err)
			case errors.As(err, &unmarshalTypeError) && unmarshalTypeError.Field != "":
				return service.TodoInput{}, validation.InvalidType(unmarshalTypeError.Field)
			case errors.Is(err, io.EOF):
				return service.TodoInput{}, fmt.Errorf("request body must not be empty: %w", err)
			default:
				return service.TodoInput{}, err
			}
		}
		return service.TodoInput{
			Title:       deref(body.Title),
			Description: deref(body.Description),
			Status:      deref(body.Status),
		}, nil
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *Server) listTodosHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	result, err := s.todos.ListTodos(r.Context(), service.CallerFrom(r.Context()), service.ListParams{
		Query:  q.Get("query"),
		Page:   page,
		UserID: q.Get("userId"),
	})
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, dataEnvelope{
		Data: result.Data,
		Meta: pageMeta{Page: result.Page, TotalPages: result.TotalPages},
	})
}

func (s *Server) createTodoHandler(w http.ResponseWriter, r *http.Request) {
	todo, err := s.todos.CreateTodo(r.Context(), service.CallerFrom(r.Context()), jsonTodoInput(r))
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusCreated, todo)
}

func (s *Server) getTodoHandler(w http.ResponseWriter, r *http.Request) {
	todo, err := s.todos.GetTodo(r.Context(), service.CallerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, todo)
}

func (s *Server) updateTodoHandler(w http.ResponseWriter, r *http.Request) {
	todo, err := s.todos.UpdateTodo(r.Context(), service.CallerFrom(r.Context()), chi.URLParam(r, "id"), jsonTodoInput(r))
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, todo)
}

func (s *Server) deleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.todos.DeleteTodo(r.Context(), service.CallerFrom(r.Context()), id); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.todos.Stats(r.Context(), service.CallerFrom(r.Context()))
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, stats)
}

func (s *Server) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListUsers(r.Context(), service.CallerFrom(r.Context()))
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, users)
}
