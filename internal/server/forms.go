package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Tomlord1122/portfolio-backend/internal/identity"
	"github.com/Tomlord1122/portfolio-backend/internal/service"
	"github.com/Tomlord1122/portfolio-backend/internal/validation"
)

const (
	todosPath = "/todos"
	loginPath = "/login"
)

// FormState is returned to the web UI so the submitting form can redisplay.
type FormState struct {
	Errors  validation.Errors `json:"errors,omitempty"`
	Message string            `json:"message"`
}

func formTodoInput(r *http.Request) service.InputFunc {
	return func() (service.TodoInput, error) {
		if err := r.ParseForm(); err != nil {
			return service.TodoInput{}, err
		}
		return service.TodoInput{
			Title:       r.PostForm.Get("title"),
			Description: r.PostForm.Get("description"),
			Status:      r.PostForm.Get("status"),
		}, nil
	}
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// respondWithFormError converts a todo mutation failure into a form state.
// validationMsg is the summary shown above field errors.
func (s *Server) respondWithFormError(w http.ResponseWriter, r *http.Request, err error, validationMsg string) {
	se, ok := service.AsError(err)
	if !ok {
		s.log.Error("unhandled form error", slog.String("path", r.URL.Path), slog.Any("error", err))
		respondWithJSON(w, http.StatusInternalServerError, FormState{Message: "Something went wrong."})
		return
	}

	switch se.Kind {
	case service.KindUnauthenticated:
		redirect(w, r, loginPath)
	case service.KindValidation:
		respondWithJSON(w, http.StatusUnprocessableEntity, FormState{Errors: se.Fields, Message: validationMsg})
	case service.KindInvalidInput:
		respondWithJSON(w, http.StatusBadRequest, FormState{Message: validationMsg})
	case service.KindForbidden, service.KindQuotaExceeded:
		respondWithJSON(w, http.StatusForbidden, FormState{Message: se.Message})
	case service.KindNotFound:
		respondWithJSON(w, http.StatusNotFound, FormState{Message: se.Message})
	case service.KindRateLimited:
		s.metrics.rateLimited(routePattern(r))
		setRetryAfter(w, se.ResetAt)
		respondWithJSON(w, http.StatusTooManyRequests, FormState{Message: se.Message})
	case service.KindConflict:
		respondWithJSON(w, http.StatusConflict, FormState{Message: se.Message})
	default:
		respondWithJSON(w, http.StatusInternalServerError, FormState{Message: se.Message})
	}
}

func (s *Server) createTodoForm(w http.ResponseWriter, r *http.Request) {
	_, err := s.todos.CreateTodo(r.Context(), service.CallerFrom(r.Context()), formTodoInput(r))
	if err != nil {
		s.respondWithFormError(w, r, err, "Missing Fields. Failed to Create Todo.")
		return
	}
	redirect(w, r, todosPath)
}

func (s *Server) updateTodoForm(w http.ResponseWriter, r *http.Request) {
	_, err := s.todos.UpdateTodo(r.Context(), service.CallerFrom(r.Context()), chi.URLParam(r, "id"), formTodoInput(r))
	if err != nil {
		s.respondWithFormError(w, r, err, "Missing Fields. Failed to Update Todo.")
		return
	}
	redirect(w, r, todosPath)
}

func (s *Server) deleteTodoForm(w http.ResponseWriter, r *http.Request) {
	if err := s.todos.DeleteTodo(r.Context(), service.CallerFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.respondWithFormError(w, r, err, "")
		return
	}
	redirect(w, r, todosPath)
}

func (s *Server) setSession(w http.ResponseWriter, sess *identity.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     identity.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeRedirect only follows same-site absolute paths.
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return todosPath
	}
	return target
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithJSON(w, http.StatusBadRequest, FormState{Message: "Something went wrong."})
		return
	}
	caller := service.CallerFrom(r.Context())

	sess, err := s.users.Authenticate(r.Context(), caller, r.PostForm.Get("email"), r.PostForm.Get("password"))
	if err != nil {
		var authErr *identity.AuthError
		switch {
		case errors.As(err, &authErr) && authErr.Type == identity.CredentialsSignin:
			respondWithJSON(w, http.StatusUnauthorized, FormState{Message: "Invalid credentials."})
		case errors.As(err, &authErr):
			respondWithJSON(w, http.StatusBadRequest, FormState{Message: "Something went wrong."})
		case service.KindOf(err) == service.KindRateLimited:
			s.respondWithFormError(w, r, err, "")
		default:
			s.log.Error("sign-in failed", slog.String("ip", caller.ClientIP), slog.Any("error", err))
			respondWithJSON(w, http.StatusInternalServerError, FormState{Message: "Something went wrong."})
		}
		return
	}

	s.setSession(w, sess)
	redirect(w, r, safeRedirect(r.PostForm.Get("redirectTo")))
}

func (s *Server) registerForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithJSON(w, http.StatusBadRequest, FormState{Message: "Validation failed."})
		return
	}

	res, err := s.users.Register(r.Context(), service.CallerFrom(r.Context()), service.RegisterInput{
		Name:     r.PostForm.Get("name"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	})
	if err != nil {
		s.respondWithFormError(w, r, err, "Validation failed.")
		return
	}
	if res.Session == nil {
		respondWithJSON(w, http.StatusOK, FormState{Message: res.Message})
		return
	}

	s.setSession(w, res.Session)
	redirect(w, r, todosPath)
}

func (s *Server) logoutForm(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     identity.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	redirect(w, r, loginPath)
}
