package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"freshtrack/internal/domain"
	"freshtrack/internal/repos"
)

var (
	ErrBadCreds     = errors.New("invalid email or password")
	ErrUnauthorized = errors.New("invalid or expired token")
)

// Claims are the bearer token claims. Subject is the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	Users  *repos.UserRepo
	Secret []byte
	TTL    time.Duration
}

func NewAuthService(users *repos.UserRepo, secret string, ttl time.Duration) *AuthService {
	return &AuthService{Users: users, Secret: []byte(secret), TTL: ttl}
}

// Register creates a USER account and returns it with a fresh token.
func (s *AuthService) Register(email, name, password string) (*domain.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}
	u := domain.User{
		ID:        uuid.NewString(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Name:      strings.TrimSpace(name),
		Hash:      string(hash),
		Role:      domain.RoleUser,
		CreatedAt: repos.Now(),
	}
	if err := s.Users.Create(u); err != nil {
		if errors.Is(err, repos.ErrConflict) {
			return nil, "", fmt.Errorf("email %s: %w", u.Email, ErrDuplicate)
		}
		return nil, "", err
	}
	tok, err := s.IssueToken(&u)
	if err != nil {
		return nil, "", err
	}
	return &u, tok, nil
}

func (s *AuthService) Login(email, password string) (*domain.User, string, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, "", ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, "", ErrBadCreds
	}
	tok, err := s.IssueToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// IssueToken signs an HS256 token with a random jti so it can be revoked.
func (s *AuthService) IssueToken(u *domain.User) (string, error) {
	jti, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generating JTI: %w", err)
	}
	now := time.Now()
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Authenticate validates a token, rejects revoked ones, and loads its user.
func (s *AuthService) Authenticate(token string) (*domain.User, *Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, nil, ErrUnauthorized
	}
	revoked, err := s.Users.IsRevoked(claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, ErrUnauthorized
	}
	u, err := s.Users.ByID(claims.Subject)
	if err != nil {
		return nil, nil, ErrUnauthorized
	}
	return u, claims, nil
}

// Logout revokes the token's jti until its natural expiry.
func (s *AuthService) Logout(claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	exp := time.Now().Add(s.TTL)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return s.Users.RevokeToken(claims.ID, repos.Timestamp(exp))
}
