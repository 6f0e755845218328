// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/mileusna/useragent"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
	"github.com/galeria-cuadros/cuadros/internal/middleware"
	"github.com/galeria-cuadros/cuadros/internal/model"
	"github.com/galeria-cuadros/cuadros/internal/render"
	"github.com/galeria-cuadros/cuadros/internal/service"
	"github.com/galeria-cuadros/cuadros/internal/session"
)

const (
	msgLoginRequired = "Usuario y contraseña son obligatorios."
	maxLoginBody     = 64 << 10
)

// LoginRequest is the body of POST /login, sent as JSON or as a form.
type LoginRequest struct {
	Nombre   string `json:"nombre"`
	Password string `json:"password"`
}

// LoginResponse is the JSON answer to a successful login.
type LoginResponse struct {
	RedirectTo string            `json:"redirectTo"`
	Usuario    model.SessionUser `json:"usuario"`
}

// loginPage is the view model of pages/login.
type loginPage struct {
	Nombre string
	Error  string
}

// AuthHandler handles authentication routes.
type AuthHandler struct {
	auth            *service.Authenticator
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
	logger          *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. lp may be nil.
func NewAuthHandler(auth *service.Authenticator, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:            auth,
		renderer:        renderer,
		sessionManager:  sm,
		loginProtection: lp,
		logger:          logger,
	}
}

// LoginForm renders the login page. Authenticated users go to the panel.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r); ok {
		http.Redirect(w, r, RouteAdmin, http.StatusSeeOther)
		return
	}
	renderStatus(w, r, h.renderer, h.logger, http.StatusOK, "pages/login", render.TemplateData{
		Title: "Iniciar sesión",
		Data:  loginPage{},
	})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wantsJSON := middleware.WantsJSON(r) || middleware.SentJSON(r)

	req, err := decodeLogin(r)
	if err != nil {
		h.loginFailed(w, r, wantsJSON, http.StatusBadRequest, "", "Datos de inicio de sesión inválidos.")
		return
	}
	req.Nombre = strings.TrimSpace(req.Nombre)
	if req.Nombre == "" || req.Password == "" {
		h.loginFailed(w, r, wantsJSON, http.StatusBadRequest, req.Nombre, msgLoginRequired)
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(req.Nombre); locked {
			h.logger.WarnContext(ctx, "login attempt on locked account", loginAttrs(r, req.Nombre)...)
			h.loginFailed(w, r, wantsJSON, http.StatusTooManyRequests, req.Nombre, middleware.LockedMessage(remaining))
			return
		}
	}

	su, err := h.auth.Authenticate(ctx, req.Nombre, req.Password)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindAuth {
			respondError(w, r, h.renderer, h.logger, err)
			return
		}
		h.logger.WarnContext(ctx, "login failed", append(loginAttrs(r, req.Nombre), "reason", err.Error())...)
		if errors.Is(err, service.ErrInvalidCredentials) && h.loginProtection != nil {
			if locked, d := h.loginProtection.RecordFailedAttempt(req.Nombre); locked {
				h.loginFailed(w, r, wantsJSON, http.StatusTooManyRequests, req.Nombre, middleware.LockedMessage(d))
				return
			}
		}
		h.loginFailed(w, r, wantsJSON, http.StatusUnauthorized, req.Nombre, apperr.PublicMessage(err))
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(req.Nombre)
	}
	if err := session.PutUser(ctx, h.sessionManager, su); err != nil {
		respondError(w, r, h.renderer, h.logger, apperr.Persistence("renew session", err))
		return
	}
	h.logger.InfoContext(ctx, "user logged in", append(loginAttrs(r, su.Nombre), "user_id", su.ID, "rol", su.Rol)...)

	if wantsJSON {
		WriteJSON(w, http.StatusOK, LoginResponse{RedirectTo: RouteAdmin, Usuario: su})
		return
	}
	session.SetFlash(ctx, h.sessionManager, "Bienvenido, "+su.Nombre+".")
	http.Redirect(w, r, RouteAdmin, http.StatusSeeOther)
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if err := session.Destroy(r.Context(), h.sessionManager); err != nil {
		h.logger.ErrorContext(r.Context(), "session destroy error", "error", err)
	}
	h.logger.InfoContext(r.Context(), "user logged out", "user_id", userID)

	if middleware.WantsJSON(r) {
		WriteJSON(w, http.StatusOK, LoginResponse{RedirectTo: RouteLogin})
		return
	}
	http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
}

// loginFailed answers a rejected login: a JSON error or the login page
// re-rendered with the message.
func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, wantsJSON bool, status int, nombre, msg string) {
	if wantsJSON {
		code := apperr.KindAuth.String()
		switch status {
		case http.StatusBadRequest:
			code = apperr.KindValidation.String()
		case http.StatusTooManyRequests:
			code = "rate_limited"
		}
		middleware.WriteAPIError(w, status, code, msg, nil)
		return
	}
	renderStatus(w, r, h.renderer, h.logger, status, "pages/login", render.TemplateData{
		Title: "Iniciar sesión",
		Data:  loginPage{Nombre: nombre, Error: msg},
	})
}

// decodeLogin reads the credentials from a JSON body or a form.
func decodeLogin(r *http.Request) (LoginRequest, error) {
	var req LoginRequest
	if middleware.SentJSON(r) {
		err := json.NewDecoder(io.LimitReader(r.Body, maxLoginBody)).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Nombre = r.PostFormValue("nombre")
	req.Password = r.PostFormValue("password")
	return req, nil
}

// loginAttrs returns the audit attributes of a login attempt.
func loginAttrs(r *http.Request, nombre string) []any {
	ua := useragent.Parse(r.UserAgent())
	device := "desktop"
	switch {
	case ua.Bot:
		device = "bot"
	case ua.Mobile:
		device = "mobile"
	case ua.Tablet:
		device = "tablet"
	}
	browser := ua.Name
	if browser == "" {
		browser = "unknown"
	}
	return []any{
		"nombre", nombre,
		"ip", r.RemoteAddr,
		"browser", browser,
		"os", ua.OS,
		"device", device,
	}
}
