// Package nav derives the navigation bar's view model from the session
// state. The bar itself is dumb; everything role-gated is decided here.
package nav

import (
	"sync"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
	"github.com/coursehub/coursehub-ui/internal/session"
)

// Landing paths after a successful sign-in.
const (
	LearnerLandingPath    = "/courses"
	InstructorLandingPath = "/admin/dashboard"
)

// LandingPath returns the post-login destination for a role.
func LandingPath(role domainauth.Role) string {
	if role == domainauth.RoleInstructor {
		return InstructorLandingPath
	}
	return LearnerLandingPath
}

// Item is one navigation link.
type Item struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// View is the rendered navigation model.
type View struct {
	Items []Item `json:"items"`
	// ShowLogin and ShowSignUp appear only while unauthenticated.
	ShowLogin  bool `json:"showLogin"`
	ShowSignUp bool `json:"showSignUp"`
	// UserFirstName fills the account chip when signed in.
	UserFirstName string `json:"userFirstName,omitempty"`
	AdminBadge    bool   `json:"adminBadge"`
	ShowLogout    bool   `json:"showLogout"`
}

// Build derives the view for a session snapshot.
func Build(snap session.Snapshot) View {
	view := View{
		Items: []Item{{Label: "Browse Courses", Path: "/courses"}},
	}

	switch p := snap.Principal.(type) {
	case domainauth.LearnerPrincipal:
		view.Items = append(view.Items, Item{Label: "My Courses", Path: "/my-courses"})
		view.UserFirstName = p.Prof.FirstName
		view.ShowLogout = true
	case domainauth.AdminPrincipal:
		view.Items = append(view.Items, Item{Label: "Dashboard", Path: InstructorLandingPath})
		view.UserFirstName = p.Prof.FirstName
		view.AdminBadge = true
		view.ShowLogout = true
	default:
		view.ShowLogin = true
		view.ShowSignUp = true
	}

	return view
}

// Controller keeps a View current by subscribing to the manager.
type Controller struct {
	unsubscribe func()
	onChange    func(View)

	mu   sync.Mutex
	view View
}

// NewController builds the initial view and re-derives it on every
// session notification. onChange is optional.
func NewController(mgr *session.Manager, onChange func(View)) *Controller {
	c := &Controller{onChange: onChange}
	c.apply(session.Snapshot{State: mgr.State(), Principal: mgr.CurrentPrincipal()})
	c.unsubscribe = mgr.Subscribe(c.apply)
	return c
}

func (c *Controller) apply(snap session.Snapshot) {
	view := Build(snap)
	c.mu.Lock()
	c.view = view
	c.mu.Unlock()
	if c.onChange != nil {
		c.onChange(view)
	}
}

// Current returns the latest view.
func (c *Controller) Current() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Close detaches the controller from the manager. Idempotent.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}
