package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/clarityhq/authgate/internal/auth"
	"github.com/clarityhq/authgate/internal/config"
	"github.com/clarityhq/authgate/internal/database/users"
	"github.com/clarityhq/authgate/internal/entities"
	"github.com/clarityhq/authgate/internal/identity"
	"github.com/clarityhq/authgate/internal/profiles"
)

// --- Fakes ---

// memRepo is an in-memory auth.UserRepository.
type memRepo struct {
	byEmail map[string]*entities.User
	nextID  uint
}

func newMemRepo() *memRepo {
	return &memRepo{byEmail: make(map[string]*entities.User)}
}

func (r *memRepo) Create(user *entities.User) error {
	r.nextID++
	user.ID = r.nextID
	r.byEmail[user.Email] = user
	return nil
}

func (r *memRepo) GetByEmail(email string) (*entities.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, users.ErrNotFound
	}
	return user, nil
}

// fakeProvider is an in-memory identity provider.
type fakeProvider struct {
	accounts  map[string]*identity.Account // keyed by email
	tokens    map[string]*identity.Token   // keyed by opaque token
	deleted   []string
	createErr error
	nextUID   int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		accounts: make(map[string]*identity.Account),
		tokens:   make(map[string]*identity.Token),
	}
}

func (p *fakeProvider) CreateAccount(_ context.Context, email, password, displayName string) (*identity.Account, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	if _, ok := p.accounts[email]; ok {
		return nil, identity.ErrAlreadyExists
	}
	p.nextUID++
	account := &identity.Account{
		UID:         fmt.Sprintf("uid-%d", p.nextUID),
		Email:       email,
		DisplayName: displayName,
	}
	p.accounts[email] = account
	return account, nil
}

func (p *fakeProvider) DeleteAccount(_ context.Context, uid string) error {
	p.deleted = append(p.deleted, uid)
	for email, account := range p.accounts {
		if account.UID == uid {
			delete(p.accounts, email)
		}
	}
	return nil
}

func (p *fakeProvider) VerifyToken(_ context.Context, token string) (*identity.Token, error) {
	claims, ok := p.tokens[token]
	if !ok {
		return nil, identity.ErrInvalidToken
	}
	return claims, nil
}

// mintToken registers a valid opaque token for a uid.
func (p *fakeProvider) mintToken(uid, email string) string {
	token := "token-" + uid
	p.tokens[token] = &identity.Token{UID: uid, Email: email}
	return token
}

// fakeProfiles is an in-memory profile document store.
type fakeProfiles struct {
	docs     map[string]profiles.Document
	putErr   error
	getCalls int
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{docs: make(map[string]profiles.Document)}
}

func (s *fakeProfiles) Put(_ context.Context, doc profiles.Document) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.docs[doc.UID] = doc
	return nil
}

func (s *fakeProfiles) Get(_ context.Context, uid string) (*profiles.Document, error) {
	s.getCalls++
	doc, ok := s.docs[uid]
	if !ok {
		return nil, profiles.ErrNotFound
	}
	return &doc, nil
}

// failingCredentials always fails user creation.
type failingCredentials struct{}

func (failingCredentials) CreateUser(string, string, string, string) (*entities.User, error) {
	return nil, errors.New("disk full")
}

func (failingCredentials) CheckCredentials(string, string) (*entities.User, error) {
	return nil, auth.ErrInvalidCredentials
}

// --- Setup ---

type testEnv struct {
	router   *gin.Engine
	repo     *memRepo
	provider *fakeProvider
	profiles *fakeProfiles
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMemRepo()
	provider := newFakeProvider()
	profileStore := newFakeProfiles()
	credentials := auth.NewService(repo, config.Auth{BcryptCost: bcrypt.MinCost})

	router := NewRouter(RouterConfig{
		Credentials: credentials,
		Provider:    provider,
		Profiles:    profileStore,
		Version:     "test",
	})

	return &testEnv{router: router, repo: repo, provider: provider, profiles: profileStore}
}

func (e *testEnv) post(path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(http.MethodPost, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) signup(t *testing.T, name, email, password string) string {
	t.Helper()
	w := e.post("/signup/", "", gin.H{"name": name, "email": email, "password": password})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		UID string `json:"uid"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.UID
}

// --- Signup ---

func TestSignup_Success(t *testing.T) {
	env := setupTestEnv(t)

	w := env.post("/signup/", "", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "hunter22secret",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Message string `json:"message"`
		UID     string `json:"uid"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user created successfully", resp.Message)

	// Exactly one provider account and one local mirror, matching emails,
	// and the response uid is the provider's.
	account := env.provider.accounts["alice@example.com"]
	require.NotNil(t, account)
	assert.Equal(t, account.UID, resp.UID)

	user, err := env.repo.GetByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.UID, user.ExternalUID)
	assert.True(t, user.IsActive)
	assert.Len(t, env.repo.byEmail, 1)
	assert.Len(t, env.provider.accounts, 1)

	// Profile document seeded with the identity uid and name.
	doc, ok := env.profiles.docs[account.UID]
	require.True(t, ok)
	assert.Equal(t, "Alice", doc.Username)
}

func TestSignup_MissingFields(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{name: "missing password", body: gin.H{"email": "alice@example.com"}},
		{name: "missing email", body: gin.H{"password": "hunter22secret"}},
		{name: "empty body", body: gin.H{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.post("/signup/", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "email and password are required")
		})
	}

	assert.Empty(t, env.provider.accounts)
	assert.Empty(t, env.repo.byEmail)
}

func TestSignup_MalformedBody(t *testing.T) {
	env := setupTestEnv(t)

	req, _ := http.NewRequest(http.MethodPost, "/signup/", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignup_Duplicate(t *testing.T) {
	env := setupTestEnv(t)

	env.signup(t, "Alice", "alice@example.com", "hunter22secret")

	// Second signup with the same email always fails with the duplicate
	// error and never creates a second local record.
	w := env.post("/signup/", "", gin.H{
		"name":     "Mallory",
		"email":    "alice@example.com",
		"password": "differentpass",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email already in use")
	assert.Len(t, env.repo.byEmail, 1)
}

func TestSignup_ProfileWriteFailureIsSwallowed(t *testing.T) {
	env := setupTestEnv(t)
	env.profiles.putErr = errors.New("document store down")

	w := env.post("/signup/", "", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "hunter22secret",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, env.repo.byEmail, 1)
}

func TestSignup_CompensatesWhenLocalCreateFails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	provider := newFakeProvider()
	router := NewRouter(RouterConfig{
		Credentials: failingCredentials{},
		Provider:    provider,
		Profiles:    newFakeProfiles(),
	})

	env := &testEnv{router: router, provider: provider}
	w := env.post("/signup/", "", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "hunter22secret",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "signup failed")

	// The provider account must have been deleted again.
	require.Len(t, provider.deleted, 1)
	assert.Empty(t, provider.accounts)
}

// --- Signin ---

func TestSignin_TruthTable(t *testing.T) {
	tests := []struct {
		name       string
		localOK    bool
		tokenOK    bool
		wantStatus int
	}{
		{name: "both pass", localOK: true, tokenOK: true, wantStatus: http.StatusOK},
		{name: "local pass token fail", localOK: true, tokenOK: false, wantStatus: http.StatusBadRequest},
		{name: "local fail token pass", localOK: false, tokenOK: true, wantStatus: http.StatusUnauthorized},
		{name: "both fail", localOK: false, tokenOK: false, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			uid := env.signup(t, "Alice", "alice@example.com", "hunter22secret")

			password := "hunter22secret"
			if !tt.localOK {
				password = "wrong password"
			}
			token := "bogus-token"
			if tt.tokenOK {
				token = env.provider.mintToken(uid, "alice@example.com")
			}

			w := env.post("/signin/", token, gin.H{
				"email":    "alice@example.com",
				"password": password,
			})

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestSignin_Success_ReturnsClaims(t *testing.T) {
	env := setupTestEnv(t)
	uid := env.signup(t, "Alice", "alice@example.com", "hunter22secret")
	token := env.provider.mintToken(uid, "alice@example.com")

	w := env.post("/signin/", token, gin.H{
		"email":    "alice@example.com",
		"password": "hunter22secret",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Message string         `json:"message"`
		User    identity.Token `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "signed in successfully", resp.Message)

	// Round-trip: the claims subject is the identity created at signup.
	assert.Equal(t, uid, resp.User.UID)
	assert.Equal(t, "alice@example.com", resp.User.Email)
}

func TestSignin_MissingToken(t *testing.T) {
	env := setupTestEnv(t)

	w := env.post("/signin/", "", gin.H{
		"email":    "alice@example.com",
		"password": "hunter22secret",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "authorization token is required")
}

func TestSignin_MissingFields(t *testing.T) {
	env := setupTestEnv(t)
	uid := env.signup(t, "Alice", "alice@example.com", "hunter22secret")
	token := env.provider.mintToken(uid, "alice@example.com")

	w := env.post("/signin/", token, gin.H{"email": "alice@example.com"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email and password are required")
}

// --- Logout ---

func TestLogout(t *testing.T) {
	env := setupTestEnv(t)
	uid := env.signup(t, "Alice", "alice@example.com", "hunter22secret")
	token := env.provider.mintToken(uid, "alice@example.com")

	t.Run("valid token", func(t *testing.T) {
		w := env.post("/logout/", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "logout successful")
	})

	t.Run("invalid token", func(t *testing.T) {
		w := env.post("/logout/", "bogus-token", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "logout failed")
	})

	t.Run("missing token is a client error, never a server error", func(t *testing.T) {
		w := env.post("/logout/", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// --- Profile ---

func TestProfile(t *testing.T) {
	env := setupTestEnv(t)
	uid := env.signup(t, "Alice", "alice@example.com", "hunter22secret")
	token := env.provider.mintToken(uid, "alice@example.com")

	t.Run("returns the stored document", func(t *testing.T) {
		w := env.post("/user/", token, nil)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data profiles.Document `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, uid, resp.Data.UID)
		assert.Equal(t, "Alice", resp.Data.Username)
	})

	t.Run("invalid token never reaches the document store", func(t *testing.T) {
		before := env.profiles.getCalls

		w := env.post("/user/", "bogus-token", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, before, env.profiles.getCalls)
	})

	t.Run("missing token", func(t *testing.T) {
		w := env.post("/user/", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing document", func(t *testing.T) {
		orphan := env.provider.mintToken("uid-none", "ghost@example.com")

		w := env.post("/user/", orphan, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "no profile found")
	})
}

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bare token", header: "opaque-token", want: "opaque-token"},
		{name: "bearer prefix", header: "Bearer opaque-token", want: "opaque-token"},
		{name: "absent", header: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request, _ = http.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}

			assert.Equal(t, tt.want, bearerToken(c))
		})
	}
}
