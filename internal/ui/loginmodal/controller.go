// Package loginmodal holds the presentation state machine for the login
// dialog. It layers over the session manager: the manager owns the
// session, the controller owns visibility, the role selector, the
// submitting flag, and the inline error text.
package loginmodal

import (
	"context"
	"log/slog"
	"sync"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
	"github.com/coursehub/coursehub-ui/internal/ports"
)

// PointerEvent is a pointer press in view coordinates.
type PointerEvent struct {
	X, Y float64
}

// Region is the modal's visual bounds, used for outside-click dismissal.
type Region struct {
	Left, Top, Right, Bottom float64
}

// Contains reports whether the event falls inside the region.
func (r Region) Contains(e PointerEvent) bool {
	return e.X >= r.Left && e.X <= r.Right && e.Y >= r.Top && e.Y <= r.Bottom
}

// PointerSource delivers pointer presses while a listener is held. The
// controller acquires a listener when the modal opens and releases it on
// every exit path, so no events arrive after close.
type PointerSource interface {
	Listen(fn func(PointerEvent)) (release func())
}

// SessionManager is the slice of the session manager the modal drives.
type SessionManager interface {
	Login(ctx context.Context, role domainauth.Role, creds ports.Credentials) (domainauth.Principal, error)
	FederatedSignIn(ctx context.Context) (domainauth.Principal, error)
}

// Snapshot is the modal view model.
type Snapshot struct {
	Visible         bool
	Role            domainauth.Role
	Submitting      bool
	ErrorMessage    string
	PasswordVisible bool
	// FederatedEnabled is true only for the learner selector; there is
	// no federated instructor sign-in.
	FederatedEnabled bool
}

// Options configures a Controller.
type Options struct {
	Session SessionManager
	Pointer PointerSource
	Logger  *slog.Logger
	// Navigate is invoked after a successful login with the signed-in
	// role so the host can route to the role's landing view. Optional.
	Navigate func(domainauth.Role)
	// OnChange receives a snapshot after every state change. Optional.
	OnChange func(Snapshot)
}

// Controller is safe for concurrent use.
type Controller struct {
	session  SessionManager
	pointer  PointerSource
	logger   *slog.Logger
	navigate func(domainauth.Role)
	onChange func(Snapshot)

	// dispatchMu serializes OnChange delivery so observers see changes
	// in the order they were applied.
	dispatchMu sync.Mutex

	mu              sync.Mutex
	visible         bool
	role            domainauth.Role
	submitting      bool
	errorMessage    string
	passwordVisible bool
	bounds          Region
	release         func()
	// generation invalidates in-flight submissions: a completion whose
	// generation no longer matches is dropped, not applied.
	generation uint64
}

// NewController creates a closed modal controller with the learner role
// preselected.
func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		session:  opts.Session,
		pointer:  opts.Pointer,
		logger:   logger,
		navigate: opts.Navigate,
		onChange: opts.OnChange,
		role:     domainauth.RoleLearner,
	}
}

// Snapshot returns the current view model.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Visible:          c.visible,
		Role:             c.role,
		Submitting:       c.submitting,
		ErrorMessage:     c.errorMessage,
		PasswordVisible:  c.passwordVisible,
		FederatedEnabled: c.role == domainauth.RoleLearner,
	}
}

// Open shows the modal and starts listening for outside clicks.
// Opening an already-open modal is a no-op.
func (c *Controller) Open() {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	c.mu.Lock()
	if c.visible {
		c.mu.Unlock()
		return
	}
	c.visible = true
	c.errorMessage = ""
	if c.pointer != nil && c.release == nil {
		c.release = c.pointer.Listen(c.handlePointer)
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.deliver(snap)
}

// Close hides the modal and releases the pointer listener. Any login
// attempt still in flight is orphaned: its completion is ignored.
// Closing a closed modal is a no-op.
func (c *Controller) Close() {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()
	c.closeLocked()
}

func (c *Controller) closeLocked() {
	c.mu.Lock()
	if !c.visible {
		c.mu.Unlock()
		return
	}
	c.visible = false
	c.submitting = false
	c.errorMessage = ""
	c.passwordVisible = false
	c.generation++
	release := c.release
	c.release = nil
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if release != nil {
		release()
	}
	c.deliver(snap)
}

// ToggleRole flips the role selector. Ignored while a submission is in
// flight or the modal is closed.
func (c *Controller) ToggleRole() {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	c.mu.Lock()
	if !c.visible || c.submitting {
		c.mu.Unlock()
		return
	}
	if c.role == domainauth.RoleLearner {
		c.role = domainauth.RoleInstructor
	} else {
		c.role = domainauth.RoleLearner
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.deliver(snap)
}

// TogglePasswordVisibility flips the password field between masked and
// plain text.
func (c *Controller) TogglePasswordVisibility() {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	c.mu.Lock()
	if !c.visible {
		c.mu.Unlock()
		return
	}
	c.passwordVisible = !c.passwordVisible
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.deliver(snap)
}

// SetBounds updates the modal's visual bounds for outside-click
// detection.
func (c *Controller) SetBounds(r Region) {
	c.mu.Lock()
	c.bounds = r
	c.mu.Unlock()
}

// Submit runs a password login for the selected role. It blocks until
// the attempt completes; the view model transitions through submitting
// and ends either closed (success) or open with an inline error.
// Ignored while closed or already submitting.
func (c *Controller) Submit(ctx context.Context, email, password string) {
	creds := ports.Credentials{Password: &ports.PasswordCredentials{Email: email, Password: password}}
	c.submit(ctx, func(role domainauth.Role) error {
		_, err := c.session.Login(ctx, role, creds)
		return err
	})
}

// SubmitFederated runs the federated sign-in. Learner selector only;
// ignored otherwise.
func (c *Controller) SubmitFederated(ctx context.Context) {
	c.submit(ctx, func(role domainauth.Role) error {
		if role != domainauth.RoleLearner {
			return domainauth.ErrRoleMismatch
		}
		_, err := c.session.FederatedSignIn(ctx)
		return err
	})
}

func (c *Controller) submit(ctx context.Context, attempt func(domainauth.Role) error) {
	c.dispatchMu.Lock()
	c.mu.Lock()
	if !c.visible || c.submitting {
		c.mu.Unlock()
		c.dispatchMu.Unlock()
		return
	}
	c.submitting = true
	c.errorMessage = ""
	role := c.role
	gen := c.generation
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.deliver(snap)
	c.dispatchMu.Unlock()

	err := attempt(role)

	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	c.mu.Lock()
	if c.generation != gen {
		// The modal closed while the attempt was in flight.
		c.mu.Unlock()
		c.logger.Debug("login completion after modal close ignored", "role", role)
		return
	}
	c.submitting = false
	if err != nil {
		c.errorMessage = domainauth.UserMessage(err)
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.deliver(snap)
		return
	}
	c.mu.Unlock()

	c.closeLocked()
	if c.navigate != nil {
		c.navigate(role)
	}
}

// handlePointer dismisses the modal on presses outside its bounds.
func (c *Controller) handlePointer(e PointerEvent) {
	c.mu.Lock()
	if !c.visible || c.bounds.Contains(e) {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.Close()
}

func (c *Controller) deliver(snap Snapshot) {
	if c.onChange != nil {
		c.onChange(snap)
	}
}
