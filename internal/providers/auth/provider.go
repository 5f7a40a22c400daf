package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/GriffinCanCode/sitecraft/internal/shared/utils"
)

// SessionTTL is how long a login stays valid
const SessionTTL = 24 * time.Hour

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
)

// User is a registered account
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is an issued login token
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Principal is the authenticated caller passed explicitly to handlers
type Principal struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Provider implements registration, login and session verification.
// Users and sessions live in memory.
type Provider struct {
	users    sync.Map // id -> *User
	emails   sync.Map // normalized email -> id
	sessions sync.Map // token -> *Session
	regMu    sync.Mutex
	logger   *zap.Logger
	cost     int
	nowFunc  func() time.Time
}

// NewProvider creates an auth provider
func NewProvider(logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		logger:  logger.Named("auth"),
		cost:    bcrypt.DefaultCost,
		nowFunc: time.Now,
	}
}

// Register creates an account. Emails are unique, case-insensitively.
func (a *Provider) Register(name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	if err := utils.ValidateDisplayName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := utils.ValidateEmail(email, true); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("password hashing failed: %w", err)
	}

	a.regMu.Lock()
	defer a.regMu.Unlock()

	key := normalizeEmail(email)
	if _, exists := a.emails.Load(key); exists {
		return nil, ErrEmailTaken
	}

	user := &User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    a.nowFunc().UTC(),
	}
	a.users.Store(user.ID, user)
	a.emails.Store(key, user.ID)

	a.logger.Info("User registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and issues a session token
func (a *Provider) Login(email, password string) (*Session, *User, error) {
	// Don't reveal which check failed
	if utils.ValidateEmail(email, true) != nil || utils.ValidatePassword(password) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	idVal, ok := a.emails.Load(normalizeEmail(email))
	if !ok {
		return nil, nil, ErrInvalidCredentials
	}
	userVal, ok := a.users.Load(idVal)
	if !ok {
		return nil, nil, ErrInvalidCredentials
	}
	user := userVal.(*User)

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	now := a.nowFunc()
	session := &Session{
		Token:     generateToken(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}
	a.sessions.Store(session.Token, session)

	a.logger.Info("User logged in", zap.String("user_id", user.ID))
	return session, user, nil
}

// Logout ends a session. Unknown tokens are ignored.
func (a *Provider) Logout(token string) {
	a.sessions.Delete(token)
}

// Verify resolves a session token into the caller's principal
func (a *Provider) Verify(token string) (Principal, error) {
	if utils.ValidateToken(token) != nil {
		return Principal{}, ErrInvalidToken
	}

	sessionVal, ok := a.sessions.Load(token)
	if !ok {
		return Principal{}, ErrInvalidToken
	}
	session := sessionVal.(*Session)

	if a.nowFunc().After(session.ExpiresAt) {
		a.sessions.Delete(token)
		return Principal{}, ErrTokenExpired
	}

	userVal, ok := a.users.Load(session.UserID)
	if !ok {
		return Principal{}, ErrInvalidToken
	}
	user := userVal.(*User)
	return Principal{UserID: user.ID, Name: user.Name, Email: user.Email}, nil
}

// UserByEmail looks up an account
func (a *Provider) UserByEmail(email string) (*User, bool) {
	idVal, ok := a.emails.Load(normalizeEmail(email))
	if !ok {
		return nil, false
	}
	userVal, ok := a.users.Load(idVal)
	if !ok {
		return nil, false
	}
	return userVal.(*User), true
}

// EnsureUser registers an account unless the email is already taken, and
// returns it either way.
func (a *Provider) EnsureUser(name, email, password string) (*User, error) {
	if user, ok := a.UserByEmail(email); ok {
		return user, nil
	}
	user, err := a.Register(name, email, password)
	if errors.Is(err, ErrEmailTaken) {
		if user, ok := a.UserByEmail(email); ok {
			return user, nil
		}
	}
	return user, err
}

// PurgeExpired drops expired sessions and returns how many were removed
func (a *Provider) PurgeExpired() int {
	now := a.nowFunc()
	removed := 0
	a.sessions.Range(func(key, value any) bool {
		if now.After(value.(*Session).ExpiresAt) {
			a.sessions.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// never fall back to weak randomness
		panic(fmt.Sprintf("crypto/rand failed: %v - cannot generate secure token", err))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
