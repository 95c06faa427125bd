package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clarityhq/authgate/internal/auth"
	"github.com/clarityhq/authgate/internal/identity"
	"github.com/clarityhq/authgate/internal/profiles"
)

// AccountController handles signup, signin, logout and profile fetching.
//
// Authentication policy: the identity provider's bearer token is the
// authoritative proof of authentication. The local password check on signin
// is a secondary, defense-in-depth gate; both must pass.
type AccountController struct {
	credentials CredentialService
	provider    IdentityProvider
	profiles    ProfileStore
}

// NewAccountController creates a new account controller.
func NewAccountController(credentials CredentialService, provider IdentityProvider, profileStore ProfileStore) *AccountController {
	return &AccountController{
		credentials: credentials,
		provider:    provider,
		profiles:    profileStore,
	}
}

// RegisterRoutes registers the account endpoints on the router.
func (ac *AccountController) RegisterRoutes(router *gin.Engine) {
	router.POST("/signup/", ac.Signup)
	router.POST("/signin/", ac.Signin)
	router.POST("/logout/", ac.Logout)
	router.POST("/user/", ac.Profile)
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup creates the provider account, mirrors it locally, and seeds an
// empty profile document. The profile write is best effort: a failure is
// logged and never surfaced to the caller.
func (ac *AccountController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondBadRequest(c, "email and password are required")
		return
	}

	ctx := c.Request.Context()

	account, err := ac.provider.CreateAccount(ctx, auth.NormalizeEmail(req.Email), req.Password, req.Name)
	if err != nil {
		if errors.Is(err, identity.ErrAlreadyExists) {
			respondBadRequest(c, "email already in use")
			return
		}
		log.Printf("Signup failed creating identity account: %v", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Message: "signup failed"})
		return
	}

	if _, err := ac.credentials.CreateUser(req.Email, req.Password, req.Name, account.UID); err != nil {
		// Compensate: the provider account must not outlive a failed
		// local mirror, or the email is burned forever.
		if delErr := ac.provider.DeleteAccount(ctx, account.UID); delErr != nil {
			log.Printf("Failed to delete identity account %s after local create failure: %v", account.UID, delErr)
		}
		log.Printf("Signup failed creating local user: %v", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Message: "signup failed"})
		return
	}

	if err := ac.profiles.Put(ctx, profiles.NewDocument(account.UID, req.Name)); err != nil {
		log.Printf("WARNING: failed to seed profile document for %s: %v", account.UID, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "user created successfully",
		"uid":     account.UID,
	})
}

// Signin checks the email/password pair locally, then verifies the bearer
// token with the provider. Both checks must pass.
func (ac *AccountController) Signin(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		respondBadRequest(c, "authorization token is required")
		return
	}

	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondBadRequest(c, "email and password are required")
		return
	}

	if _, err := ac.credentials.CheckCredentials(req.Email, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondUnauthorized(c, "invalid credentials")
			return
		}
		respondInternalError(c, err, "signin credential check")
		return
	}

	claims, err := ac.provider.VerifyToken(c.Request.Context(), token)
	if err != nil {
		respondBadRequest(c, "invalid credentials, check your email and password and try again")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "signed in successfully",
		"user":    claims,
	})
}

// Logout verifies the token and acknowledges. The gateway holds no session
// state, so there is nothing to revoke.
func (ac *AccountController) Logout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		respondBadRequest(c, "authorization token is required")
		return
	}

	if _, err := ac.provider.VerifyToken(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "logout failed",
			Message: "your session has expired, sign in again",
		})
		return
	}

	respondSuccess(c, "logout successful")
}

// Profile verifies the token and returns the caller's profile document. An
// invalid token short-circuits before the document store is touched.
func (ac *AccountController) Profile(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		respondBadRequest(c, "authorization token is required")
		return
	}

	claims, err := ac.provider.VerifyToken(c.Request.Context(), token)
	if err != nil {
		respondBadRequest(c, "invalid token")
		return
	}

	doc, err := ac.profiles.Get(c.Request.Context(), claims.UID)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			respondBadRequest(c, "no profile found")
			return
		}
		respondInternalError(c, err, "profile fetch")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": doc})
}
