package auth

import (
	"context"

	"budgetbook/internal/models"
)

// Authenticator resolves credentials to stable user records. It is the
// identity boundary for the rest of the system: services below it only
// ever see user ids and profiles.
type Authenticator interface {
	// Register creates a new user account with the given credential.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credential and returns the user if valid.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)
}
