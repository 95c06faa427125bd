package http

import (
	"context"

	"github.com/clarityhq/authgate/internal/entities"
	"github.com/clarityhq/authgate/internal/identity"
	"github.com/clarityhq/authgate/internal/profiles"
)

// This file consolidates the dependency interfaces used by HTTP controllers.
// Controllers depend on these rather than on concrete clients so tests can
// substitute fakes.

// CredentialService is the local credential store surface.
type CredentialService interface {
	CreateUser(email, password, name, externalUID string) (*entities.User, error)
	CheckCredentials(email, password string) (*entities.User, error)
}

// IdentityProvider is the remote identity service surface the handlers use.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password, displayName string) (*identity.Account, error)
	DeleteAccount(ctx context.Context, uid string) error
	VerifyToken(ctx context.Context, token string) (*identity.Token, error)
}

// ProfileStore is the document store surface the handlers use.
type ProfileStore interface {
	Put(ctx context.Context, doc profiles.Document) error
	Get(ctx context.Context, uid string) (*profiles.Document, error)
}
