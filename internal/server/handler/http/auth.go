package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/atinyakov/AuthPortal/internal/common"
	"github.com/atinyakov/AuthPortal/internal/middleware"
	"github.com/atinyakov/AuthPortal/internal/models"
	"go.uber.org/zap"
)

// Messages shown on re-rendered forms. Their wording is relied on by
// existing page assertions and must not change.
const (
	MsgPasswordMismatch   = "Your password and confrom password are not Same!!"
	MsgInvalidCredentials = "Username or Password is incorrect!!!"
	MsgEmptyCredentials   = "Username and password are required!!"
	MsgUserExists         = "Username already exists!!"
)

// AuthService defines the authentication operations required by the
// HTTP handlers.
type AuthService interface {
	// Signup validates the form and creates the user.
	Signup(ctx context.Context, form models.SignupForm) (*models.User, error)
	// Login checks credentials and opens a session.
	Login(ctx context.Context, username, password string) (*models.Session, error)
	// Logout destroys the session identified by token.
	Logout(ctx context.Context, token string) error
}

// AuthHandler handles the signup, login, home and logout pages.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	// Renderer writes HTML pages.
	Renderer Renderer
	// Log receives server-side failures.
	Log *zap.Logger
	// StudentID is shown in the #student-id header of every page.
	StudentID string
	// SecureCookies sets the Secure attribute on the session cookie.
	SecureCookies bool
}

// SignupForm serves the empty registration form.
func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, TemplateSignup, PageData{Title: "Sign Up"})
}

// Signup handles registration form posts.
// On success it redirects to the login page; validation failures
// re-render the form with status 200 and a message.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	form := models.SignupForm{
		Username:  r.PostFormValue("username"),
		Email:     r.PostFormValue("email"),
		Password1: r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
	}

	_, err := h.AuthService.Signup(r.Context(), form)
	if err == nil {
		http.Redirect(w, r, URLFor(RouteLogin), http.StatusFound)
		return
	}

	data := PageData{Title: "Sign Up", Username: form.Username, Email: form.Email}
	switch {
	case errors.Is(err, common.ErrPasswordMismatch):
		data.Error = MsgPasswordMismatch
	case errors.Is(err, common.ErrEmptyCredentials):
		data.Error = MsgEmptyCredentials
	case errors.Is(err, common.ErrUserExists):
		data.Error = MsgUserExists
	default:
		h.Log.Error("signup failed", zap.String("username", form.Username), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, http.StatusOK, TemplateSignup, data)
}

// LoginForm serves the empty login form.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, TemplateLogin, PageData{Title: "Login"})
}

// Login handles login form posts with fields "username" and "pass".
// Valid credentials set the session cookie and redirect home.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	session, err := h.AuthService.Login(r.Context(), username, r.PostFormValue("pass"))
	switch {
	case err == nil:
		middleware.SetSessionCookie(w, session, h.SecureCookies)
		http.Redirect(w, r, URLFor(RouteHome), http.StatusFound)
	case errors.Is(err, common.ErrInvalidCredentials):
		h.render(w, http.StatusOK, TemplateLogin, PageData{
			Title:    "Login",
			Error:    MsgInvalidCredentials,
			Username: username,
		})
	default:
		h.Log.Error("login failed", zap.String("username", username), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// Home always answers 200. Signed-in users get home.html, everyone else
// the welcome page.
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	if session == nil {
		h.render(w, http.StatusOK, TemplateWelcome, PageData{Title: "Welcome"})
		return
	}
	h.render(w, http.StatusOK, TemplateHome, PageData{Title: "Home", Username: session.Username})
}

// Logout destroys the current session, if any, and redirects to login.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := middleware.SessionFromContext(r.Context()); session != nil {
		if err := h.AuthService.Logout(r.Context(), session.Token); err != nil {
			h.Log.Error("logout failed", zap.String("username", session.Username), zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, URLFor(RouteLogin), http.StatusFound)
}

func (h *AuthHandler) render(w http.ResponseWriter, status int, name string, data PageData) {
	data.StudentID = h.StudentID
	if err := h.Renderer.Render(w, status, name, data); err != nil {
		h.Log.Error("render failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
