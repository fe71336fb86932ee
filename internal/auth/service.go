// Package auth registers and logs in cloud users and issues bearer tokens.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"taskreward/internal/logx"
)

var (
	ErrInvalidEmail      = errors.New("invalid email")
	ErrMissingFields     = errors.New("email, password and username are required")
	ErrPasswordTooShort  = errors.New("password must be at least 6 characters")
	ErrUserExists        = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenRevoked      = errors.New("token revoked")
)

const MinPasswordLength = 6

type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserStore persists accounts. CreateUser also seeds the new user's data.
type UserStore interface {
	CreateUser(ctx context.Context, email, username, passwordHash string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, string, error)
	FindByID(ctx context.Context, id uint) (User, error)
}

// Claims are the registered JWT claims; Subject holds the user id.
type Claims struct {
	jwt.RegisteredClaims
}

type Options struct {
	Secret   string
	TokenTTL time.Duration
	Revoker  Revoker
	Logger   *log.Logger
	Now      func() time.Time
}

type Service struct {
	users   UserStore
	secret  []byte
	ttl     time.Duration
	revoker Revoker
	logger  *log.Logger
	now     func() time.Time
}

func NewService(users UserStore, opts Options) (*Service, error) {
	if strings.TrimSpace(opts.Secret) == "" {
		return nil, errors.New("auth: jwt secret is required")
	}
	s := &Service{
		users:   users,
		secret:  []byte(opts.Secret),
		ttl:     opts.TokenTTL,
		revoker: opts.Revoker,
		logger:  opts.Logger,
		now:     opts.Now,
	}
	if s.ttl <= 0 {
		s.ttl = 30 * 24 * time.Hour
	}
	if s.revoker == nil {
		s.revoker = NewMemoryRevoker()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || strings.ToLower(addr.Address) != email {
		return ErrInvalidEmail
	}
	return nil
}

func generateJTI() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

func (s *Service) Register(ctx context.Context, email, password, username string) (User, string, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if email == "" || password == "" || username == "" {
		return User{}, "", ErrMissingFields
	}
	if len(password) < MinPasswordLength {
		return User{}, "", ErrPasswordTooShort
	}
	if err := validateEmail(email); err != nil {
		return User{}, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, "", fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.CreateUser(ctx, email, username, string(hash))
	if err != nil {
		return User{}, "", err
	}
	token, err := s.issue(u)
	if err != nil {
		return User{}, "", err
	}
	logx.Info(s.logger, "user_registered", logx.Fields{"user_id": u.ID})
	return u, token, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, "", ErrMissingFields
	}
	u, hash, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return User{}, "", ErrInvalidCredential
	}
	if err != nil {
		return User{}, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return User{}, "", ErrInvalidCredential
	}
	token, err := s.issue(u)
	if err != nil {
		return User{}, "", err
	}
	return u, token, nil
}

func (s *Service) issue(u User) (string, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", err
	}
	now := s.now()
	claims := Claims{jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(u.ID), 10),
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse validates signature, algorithm, expiry and revocation.
func (s *Service) Parse(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	revoked, err := s.revoker.Revoked(ctx, claims.ID)
	if err != nil {
		logx.Error(s.logger, "revocation_check_failed", err, nil)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Verify resolves a token to its user.
func (s *Service) Verify(ctx context.Context, token string) (User, *Claims, error) {
	claims, err := s.Parse(ctx, token)
	if err != nil {
		return User{}, nil, err
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return User{}, nil, ErrInvalidToken
	}
	u, err := s.users.FindByID(ctx, uint(id))
	if err != nil {
		return User{}, nil, err
	}
	return u, claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.Parse(ctx, token)
	if err != nil {
		return err
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.revoker.Revoke(ctx, claims.ID, ttl)
}

// BearerToken reads "Authorization: Bearer <token>", falling back to
// X-Authorization for older clients.
func BearerToken(r *http.Request) string {
	for _, h := range []string{"Authorization", "X-Authorization"} {
		v := strings.TrimSpace(r.Header.Get(h))
		if v == "" {
			continue
		}
		if strings.HasPrefix(v, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(v, "Bearer "))
		}
	}
	return ""
}

func (s *Service) RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			writeUnauthorized(w)
			return
		}
		u, claims, err := s.Verify(r.Context(), token)
		if err != nil {
			writeUnauthorized(w)
			return
		}
		ctx := withClaimsContext(withUserContext(r.Context(), u), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": "Unauthorized"})
}
