package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelier-moda/fashion-shop/internal/domain"
	"github.com/atelier-moda/fashion-shop/internal/hash"
	"github.com/atelier-moda/fashion-shop/internal/logging"
	"github.com/atelier-moda/fashion-shop/internal/models"
	"github.com/atelier-moda/fashion-shop/internal/repo"
)

const accessTokenTTL = 24 * time.Hour

// registeredMessage is returned for both fresh and duplicate registrations so
// the endpoint cannot be used to enumerate existing accounts.
const registeredMessage = "if the email is valid you will receive a confirmation message"

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
}

func New(r *repo.GormRepo, secret []byte) *AuthService {
	return &AuthService{Repo: r, JWTSecret: secret}
}

type AccessClaims struct {
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

type AuthResult struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, email, password, name, phone string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password required", domain.ErrValidation)
	}

	_, err := s.Repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		l.Warn("register_rejected", "status", 409, "reason", "email already registered")
		return nil, fmt.Errorf("%w: %s", domain.ErrConflict, registeredMessage)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash password", "error", err)
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		Name:         name,
		Phone:        phone,
		Role:         models.RoleUser,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		l.Error("register_failed", "status", 500, "error", err)
		return nil, err
	}

	token, err := s.CreateAccessToken(user)
	if err != nil {
		return nil, err
	}

	l.Info("register_success", "user_id", user.ID)
	return &AuthResult{AccessToken: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_rejected", "status", 401, "reason", "unknown email")
			return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
		}
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_rejected", "status", 401, "reason", "bad password", "user_id", user.ID)
		return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}

	token, err := s.CreateAccessToken(user)
	if err != nil {
		return nil, err
	}

	l.Info("login_success", "user_id", user.ID)
	return &AuthResult{AccessToken: token, User: user}, nil
}

func (s *AuthService) CreateAccessToken(user *models.User) (string, error) {
	claims := AccessClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.JWTSecret)
}

// ParseAccessToken validates the token signature and expiry and returns the
// caller's identity.
func (s *AuthService) ParseAccessToken(raw string) (domain.Identity, error) {
	var claims AccessClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return domain.Identity{}, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: invalid token subject", domain.ErrUnauthorized)
	}
	return domain.Identity{UserID: userID, Role: claims.Role}, nil
}
