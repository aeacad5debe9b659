// Package web serves the HTML pages: auth forms and the task list.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"taskAssistant/internal/auth"
	"taskAssistant/internal/logger"
	"taskAssistant/internal/models/task"
	"taskAssistant/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const genericError = "Something went wrong. Please try again."

type TaskService interface {
	CreateTask(ctx context.Context, title string, description *string) (*task.Task, error)
	ListActiveTasks(ctx context.Context, page, limit int) ([]*task.Task, error)
	ListCompletedTasks(ctx context.Context, page, limit int) ([]*task.Task, error)
	CompleteTask(ctx context.Context, id uuid.UUID) (*task.Task, error)
	ReactivateTask(ctx context.Context, id uuid.UUID) (*task.Task, error)
	RemoveTask(ctx context.Context, id uuid.UUID) (*task.Task, error)
}

type AuthService interface {
	SignUp(ctx context.Context, email, password, name string) (*auth.Tokens, error)
	SignIn(ctx context.Context, email, password string) (*auth.Tokens, error)
	SignOut(ctx context.Context, sessionID uuid.UUID) error
}

type Handler struct {
	tasks         TaskService
	auth          AuthService
	secureCookies bool
	pages         map[string]*template.Template
}

type pageData struct {
	Title     string
	SignedIn  bool
	Error     string
	Email     string
	Name      string
	Active    []*task.Task
	Completed []*task.Task
}

func New(tasks TaskService, authService AuthService, secureCookies bool) (*Handler, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"signin", "signup", "tasks"} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Handler{
		tasks:         tasks,
		auth:          authService,
		secureCookies: secureCookies,
		pages:         pages,
	}, nil
}

// Routes registers the pages on r. formLimits wrap the sign-in and sign-up posts.
func (h *Handler) Routes(r chi.Router, formLimits ...func(http.Handler) http.Handler) {
	r.Get("/", h.Index)
	r.Get("/signin", h.SignInPage)
	r.With(formLimits...).Post("/signin", h.SignIn)
	r.Get("/signup", h.SignUpPage)
	r.With(formLimits...).Post("/signup", h.SignUp)
	r.Post("/signout", h.SignOut)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.TasksPage)
		r.Post("/", h.CreateTask)
		r.Post("/{id}/complete", h.taskAction(h.tasks.CompleteTask))
		r.Post("/{id}/reactivate", h.taskAction(h.tasks.ReactivateTask))
		r.Post("/{id}/delete", h.taskAction(h.tasks.RemoveTask))
	})
}

func signedIn(r *http.Request) bool {
	_, ok := auth.IdentityFromContext(r.Context())
	return ok
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if signedIn(r) {
		http.Redirect(w, r, "/tasks", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/signin", http.StatusSeeOther)
}

func (h *Handler) SignInPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "signin", pageData{Title: "Sign in"})
}

func (h *Handler) SignUpPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "signup", pageData{Title: "Sign up"})
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "signin", pageData{Title: "Sign in", Error: "Could not read the form."})
		return
	}
	email := r.PostFormValue("email")

	tokens, err := h.auth.SignIn(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		h.render(w, statusFor(err), "signin", pageData{Title: "Sign in", Email: email, Error: errorMessage(err)})
		return
	}

	auth.SetCookies(w, tokens, h.secureCookies)
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "signup", pageData{Title: "Sign up", Error: "Could not read the form."})
		return
	}
	email, name := r.PostFormValue("email"), r.PostFormValue("name")

	tokens, err := h.auth.SignUp(r.Context(), email, r.PostFormValue("password"), name)
	if err != nil {
		h.render(w, statusFor(err), "signup", pageData{Title: "Sign up", Email: email, Name: name, Error: errorMessage(err)})
		return
	}

	auth.SetCookies(w, tokens, h.secureCookies)
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		if err := h.auth.SignOut(r.Context(), id.SessionID); err != nil {
			logger.Error("HTTP: Web sign out failed", err, zap.String("user_id", id.UserID.String()))
		}
	}
	auth.ClearCookies(w, h.secureCookies)
	http.Redirect(w, r, "/signin", http.StatusSeeOther)
}

func (h *Handler) TasksPage(w http.ResponseWriter, r *http.Request) {
	if !signedIn(r) {
		http.Redirect(w, r, "/signin", http.StatusSeeOther)
		return
	}
	h.renderTasks(w, r, http.StatusOK, "")
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	if !signedIn(r) {
		http.Redirect(w, r, "/signin", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderTasks(w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	var description *string
	if d := r.PostFormValue("description"); d != "" {
		description = &d
	}

	if _, err := h.tasks.CreateTask(r.Context(), r.PostFormValue("title"), description); err != nil {
		h.renderTasks(w, r, statusFor(err), errorMessage(err))
		return
	}
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

func (h *Handler) taskAction(apply func(context.Context, uuid.UUID) (*task.Task, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !signedIn(r) {
			http.Redirect(w, r, "/signin", http.StatusSeeOther)
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			h.renderTasks(w, r, http.StatusBadRequest, "Unknown task.")
			return
		}

		if _, err := apply(r.Context(), id); err != nil {
			h.renderTasks(w, r, statusFor(err), errorMessage(err))
			return
		}
		http.Redirect(w, r, "/tasks", http.StatusSeeOther)
	}
}

// renderTasks shows both task sections, with message in the banner if set.
func (h *Handler) renderTasks(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := pageData{Title: "Tasks", SignedIn: true, Error: message}

	active, err := h.tasks.ListActiveTasks(r.Context(), 0, 0)
	if err != nil {
		h.render(w, statusFor(err), "tasks", pageData{Title: "Tasks", SignedIn: true, Error: errorMessage(err)})
		return
	}
	completed, err := h.tasks.ListCompletedTasks(r.Context(), 0, 0)
	if err != nil {
		h.render(w, statusFor(err), "tasks", pageData{Title: "Tasks", SignedIn: true, Error: errorMessage(err)})
		return
	}

	data.Active, data.Completed = active, completed
	h.render(w, status, "tasks", data)
}

func (h *Handler) render(w http.ResponseWriter, status int, page string, data pageData) {
	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.Error("HTTP: Failed to render page", err, zap.String("page", page))
		http.Error(w, genericError, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn("HTTP: Failed to write page", zap.String("page", page), zap.Error(err))
	}
}

var userFacingAuthErrors = []error{
	auth.ErrInvalidEmail,
	auth.ErrWeakPassword,
	auth.ErrNameTooLong,
	auth.ErrEmailTaken,
	auth.ErrInvalidCredentials,
}

// errorMessage is the banner text; business errors are shown verbatim.
func errorMessage(err error) string {
	if busErr, ok := service.AsBusinessError(err); ok {
		return busErr.Message
	}
	for _, known := range userFacingAuthErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	logger.Error("HTTP: Web request failed", err)
	return genericError
}

func statusFor(err error) int {
	if busErr, ok := service.AsBusinessError(err); ok {
		switch busErr.Code {
		case service.CodeNotAuthenticated:
			return http.StatusUnauthorized
		case service.CodeRateLimited:
			return http.StatusTooManyRequests
		case service.CodeNotFound:
			return http.StatusNotFound
		case service.CodeNotAuthorized:
			return http.StatusForbidden
		}
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	for _, known := range userFacingAuthErrors {
		if errors.Is(err, known) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}
