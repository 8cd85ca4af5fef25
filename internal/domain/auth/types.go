// Package auth contains domain-level types for principals, tokens, and
// sessions. It is pure and free of framework/adapter concerns.
package auth

// Role represents the authorization role a credential was issued for.
// Keep string form for easy persistence.
// Valid values are defined as constants below.
type Role string

const (
	RoleLearner    Role = "learner"
	RoleInstructor Role = "instructor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleLearner || r == RoleInstructor
}

// Profile holds the identifying attributes shared by both principal kinds.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Principal is the authenticated identity attached to a session. Exactly
// one concrete variant exists per role; the union is sealed by the
// unexported marker method so a session can never hold both shapes at
// once or a struct with optional fields for either.
type Principal interface {
	Role() Role
	Profile() Profile

	principal()
}

// LearnerPrincipal is the principal variant for learner sessions.
type LearnerPrincipal struct {
	Prof Profile
}

func (LearnerPrincipal) Role() Role         { return RoleLearner }
func (p LearnerPrincipal) Profile() Profile { return p.Prof }
func (LearnerPrincipal) principal()         {}

// AdminPrincipal is the principal variant for instructor/admin sessions.
type AdminPrincipal struct {
	Prof Profile
}

func (AdminPrincipal) Role() Role         { return RoleInstructor }
func (p AdminPrincipal) Profile() Profile { return p.Prof }
func (AdminPrincipal) principal()         {}

// NewPrincipal constructs the principal variant matching role.
func NewPrincipal(role Role, prof Profile) Principal {
	if role == RoleInstructor {
		return AdminPrincipal{Prof: prof}
	}
	return LearnerPrincipal{Prof: prof}
}

// SessionToken is an opaque bearer token tagged with the role it was
// issued for. A token issued for one role never authorizes the other;
// callers must reject cross-role use.
type SessionToken struct {
	Value string `json:"value"`
	Role  Role   `json:"role"`
}

// Session pairs a token with the principal it authenticates. Token and
// Principal are both present or both absent; there is no partial session.
type Session struct {
	Token     SessionToken
	Principal Principal
}

// IsAuthenticated reports whether a principal is present.
func (s Session) IsAuthenticated() bool { return s.Principal != nil }

// IsAdmin reports whether the active variant is AdminPrincipal.
func (s Session) IsAdmin() bool {
	_, ok := s.Principal.(AdminPrincipal)
	return ok
}

// SchemaVersion is the version stamped on persisted session records.
// Records carrying any other version are discarded on read.
const SchemaVersion = 1

// StoredSession is the durable serialized copy of a Session. The store
// is not authoritative while a manager is live in memory; it exists so a
// fresh process can rehydrate.
type StoredSession struct {
	SchemaVersion int     `json:"schemaVersion"`
	Role          Role    `json:"role"`
	Token         string  `json:"token"`
	Principal     Profile `json:"principal"`
}

// NewStoredSession serializes a live session for persistence.
func NewStoredSession(s Session) StoredSession {
	return StoredSession{
		SchemaVersion: SchemaVersion,
		Role:          s.Token.Role,
		Token:         s.Token.Value,
		Principal:     s.Principal.Profile(),
	}
}

// Validate checks the persisted shape. Any failure means the record must
// be discarded and treated as no session.
func (r StoredSession) Validate() error {
	if r.SchemaVersion != SchemaVersion {
		return ErrMalformedSession
	}
	if !r.Role.Valid() {
		return ErrMalformedSession
	}
	if r.Token == "" {
		return ErrMalformedSession
	}
	if r.Principal.ID == "" {
		return ErrMalformedSession
	}
	return nil
}

// Restore rebuilds a live Session from a validated record.
func (r StoredSession) Restore() Session {
	return Session{
		Token:     SessionToken{Value: r.Token, Role: r.Role},
		Principal: NewPrincipal(r.Role, r.Principal),
	}
}
