package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Manager AuthManager
	Logger  *slog.Logger
}

// NewRouter creates and configures the UI's HTTP surface.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	authHandlers := &AuthHandlers{Manager: services.Manager, Logger: logger}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	mux.Handle("POST /auth/login", http.HandlerFunc(authHandlers.Login))
	mux.Handle("POST /auth/federated", http.HandlerFunc(authHandlers.Federated))
	mux.Handle("POST /auth/logout", http.HandlerFunc(authHandlers.Logout))
	mux.Handle("GET /auth/status", http.HandlerFunc(authHandlers.Status))
	mux.Handle("GET /api/nav", http.HandlerFunc(authHandlers.Nav))

	requireAuth := RequireAuth(services.Manager)
	requireAdmin := RequireRole(services.Manager, domainauth.RoleInstructor)
	mux.Handle("GET /api/my-courses", requireAuth(http.HandlerFunc(myCoursesHandler)))
	mux.Handle("GET /api/admin/dashboard", requireAdmin(http.HandlerFunc(adminDashboardHandler)))

	var handler http.Handler = mux
	handler = Recover(logger)(handler)
	handler = Logging(logger)(handler)
	return handler
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// myCoursesHandler is the learner's enrolled-courses view. Course data
// lives behind the backend API; this endpoint scopes the request to the
// signed-in principal.
func myCoursesHandler(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	WriteJSON(w, http.StatusOK, map[string]any{
		"owner": sess.Principal.Profile().ID,
		"path":  "/my-courses",
	})
}

// adminDashboardHandler is the instructor dashboard entry point.
func adminDashboardHandler(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	WriteJSON(w, http.StatusOK, map[string]any{
		"admin": sess.Principal.Profile().Email,
		"path":  "/admin/dashboard",
	})
}
