package domain

import "time"

// Claim is the decoded payload of a verified token. It is a statement made at
// issuance time, not a live fact about the user.
type Claim struct {
	SubjectID string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity is the authenticated caller attached to a request.
// CurrentRole is only set once the role guard has re-read the store.
type Identity struct {
	SubjectID   string
	ClaimedRole Role
	CurrentRole Role
}

// WithCurrentRole returns a copy of the identity carrying the freshly looked-up role.
func (i Identity) WithCurrentRole(r Role) Identity {
	i.CurrentRole = r
	return i
}
