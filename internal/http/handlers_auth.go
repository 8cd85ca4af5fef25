package httpx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
	"github.com/coursehub/coursehub-ui/internal/ports"
	"github.com/coursehub/coursehub-ui/internal/session"
	"github.com/coursehub/coursehub-ui/internal/ui/nav"
)

// AuthManager is the slice of the session manager the auth endpoints use.
type AuthManager interface {
	SessionSource
	Login(ctx context.Context, role domainauth.Role, creds ports.Credentials) (domainauth.Principal, error)
	FederatedSignIn(ctx context.Context) (domainauth.Principal, error)
	Logout(ctx context.Context)
	State() session.State
	IsAuthenticated() bool
	IsAdmin() bool
}

// AuthHandlers provides HTTP handlers for session operations.
type AuthHandlers struct {
	Manager AuthManager
	Logger  *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type loginRequest struct {
	Role     string `json:"role"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type principalPayload struct {
	Role    domainauth.Role    `json:"role"`
	Profile domainauth.Profile `json:"profile"`
}

type loginResponse struct {
	Principal  principalPayload `json:"principal"`
	RedirectTo string           `json:"redirectTo"`
}

// Login handles POST /auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	role := domainauth.Role(req.Role)
	if !role.Valid() {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_role",
			Err:     fmt.Errorf("unknown role %q", req.Role),
		})
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_credentials",
			Err:     errors.New("email and password are required"),
		})
		return
	}

	creds := ports.Credentials{Password: &ports.PasswordCredentials{Email: req.Email, Password: req.Password}}
	principal, err := h.Manager.Login(r.Context(), role, creds)
	if err != nil {
		h.writeLoginError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, loginResponse{
		Principal:  principalPayload{Role: principal.Role(), Profile: principal.Profile()},
		RedirectTo: nav.LandingPath(principal.Role()),
	})
}

// Federated handles POST /auth/federated. The flow is learner-only.
func (h *AuthHandlers) Federated(w http.ResponseWriter, r *http.Request) {
	principal, err := h.Manager.FederatedSignIn(r.Context())
	if err != nil {
		h.writeLoginError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, loginResponse{
		Principal:  principalPayload{Role: principal.Role(), Profile: principal.Profile()},
		RedirectTo: nav.LandingPath(principal.Role()),
	})
}

// Logout handles POST /auth/logout. Logout never fails; repeating it is
// harmless.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Manager.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type statusResponse struct {
	Authenticated bool              `json:"authenticated"`
	IsAdmin       bool              `json:"isAdmin"`
	Principal     *principalPayload `json:"principal,omitempty"`
}

// Status handles GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Authenticated: h.Manager.IsAuthenticated(),
		IsAdmin:       h.Manager.IsAdmin(),
	}
	if principal := h.Manager.CurrentPrincipal(); principal != nil {
		resp.Principal = &principalPayload{Role: principal.Role(), Profile: principal.Profile()}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Nav handles GET /api/nav, returning the role-gated navigation model.
func (h *AuthHandlers) Nav(w http.ResponseWriter, r *http.Request) {
	snap := session.Snapshot{State: h.Manager.State(), Principal: h.Manager.CurrentPrincipal()}
	WriteJSON(w, http.StatusOK, nav.Build(snap))
}

// writeLoginError maps a login failure onto a status code, with the
// modal's inline text as the message.
func (h *AuthHandlers) writeLoginError(w http.ResponseWriter, r *http.Request, err error) {
	code, errCode := http.StatusInternalServerError, "login_failed"
	switch {
	case errors.Is(err, domainauth.ErrInvalidCredentials):
		code, errCode = http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, domainauth.ErrBusy):
		code, errCode = http.StatusConflict, "login_busy"
	case errors.Is(err, domainauth.ErrRoleMismatch):
		code, errCode = http.StatusConflict, "role_mismatch"
	case errors.Is(err, domainauth.ErrProviderDenied):
		code, errCode = http.StatusUnauthorized, "provider_denied"
	case errors.Is(err, domainauth.ErrNetworkFailure), errors.Is(err, domainauth.ErrProviderUnavailable):
		code, errCode = http.StatusBadGateway, "upstream_unavailable"
	}

	h.logger().Warn("login failed",
		slog.String("path", r.URL.Path),
		slog.String("error_code", errCode),
		slog.Any("error", err))
	WriteError(w, ErrorParams{Code: code, ErrCode: errCode, Err: errors.New(domainauth.UserMessage(err))})
}
