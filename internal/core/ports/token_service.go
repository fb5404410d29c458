package ports

import "github.com/taskmanager/task-api/internal/core/domain"

// TokenIssuer signs identity claims. Implementations must not consult storage.
type TokenIssuer interface {
	Issue(subjectID string, role domain.Role) (string, error)
}

// TokenVerifier validates a token and returns its embedded claim unchanged.
type TokenVerifier interface {
	Verify(token string) (domain.Claim, error)
}
