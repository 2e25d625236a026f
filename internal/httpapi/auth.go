package httpapi

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"warungpos/backend/internal/domain"
)

// LoginRequest is the credential payload for /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the signed token and the actor it represents.
type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	WarungID  string    `json:"warungId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type warungClaims struct {
	jwtlib.RegisteredClaims
	Role     string `json:"role"`
	WarungID string `json:"warung_id"`
}

type credential struct {
	passwordHash string
	role         string
}

// AuthManager verifies credentials and issues HS256 tokens scoped to one
// warung. Accounts come from configuration; this is a two-role system
// (owner and staff), not a user directory.
type AuthManager struct {
	mu       sync.RWMutex
	secret   []byte
	tokenTTL time.Duration
	warungID string
	users    map[string]credential
}

func NewAuthManager(secret string, tokenTTL time.Duration, warungID string) (*AuthManager, error) {
	if len(secret) < 32 {
		return nil, errors.New("auth secret must be at least 32 bytes")
	}
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	if warungID == "" {
		return nil, errors.New("warung id is required")
	}
	return &AuthManager{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		warungID: warungID,
		users:    make(map[string]credential),
	}, nil
}

// RegisterUser adds an account. Plain passwords are hashed here; values
// already in bcrypt form are stored as-is.
func (a *AuthManager) RegisterUser(username, password, role string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return errors.New("username is required")
	}
	if role != domain.RoleOwner && role != domain.RoleStaff {
		return fmt.Errorf("unknown role %q", role)
	}
	hash := password
	if !isPasswordHash(hash) {
		if strings.TrimSpace(password) == "" || len(password) < 8 {
			return errors.New("password must be at least 8 characters")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		hash = string(hashed)
	}
	a.mu.Lock()
	a.users[username] = credential{passwordHash: hash, role: role}
	a.mu.Unlock()
	return nil
}

func (a *AuthManager) Login(req LoginRequest) (*LoginResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	a.mu.RLock()
	cred, ok := a.users[username]
	a.mu.RUnlock()
	if !ok || !verifyPassword(cred.passwordHash, req.Password) {
		return nil, errors.New("invalid credentials")
	}

	expiresAt := time.Now().UTC().Add(a.tokenTTL)
	token, err := a.sign(username, cred.role, expiresAt)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{
		Token:     token,
		Username:  username,
		Role:      cred.role,
		WarungID:  a.warungID,
		ExpiresAt: expiresAt,
	}, nil
}

// ParseToken validates a bearer token and returns the actor it encodes.
func (a *AuthManager) ParseToken(token string) (domain.Actor, error) {
	claims := &warungClaims{}
	parsed, err := jwtlib.ParseWithClaims(token, claims, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return domain.Actor{}, errors.New("invalid token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Actor{}, errors.New("invalid token subject")
	}
	if claims.WarungID == "" {
		return domain.Actor{}, errors.New("token missing warung scope")
	}
	return domain.Actor{
		UID:      sub,
		Name:     sub,
		Role:     claims.Role,
		WarungID: claims.WarungID,
	}, nil
}

func (a *AuthManager) sign(username, role string, expiresAt time.Time) (string, error) {
	claims := warungClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    "warungpos",
		},
		Role:     role,
		WarungID: a.warungID,
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func verifyPassword(stored string, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" || !isPasswordHash(stored) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func isPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
