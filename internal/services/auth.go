package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brgy-records/apiserver/internal/ratelimit"
	"github.com/brgy-records/apiserver/internal/store"
	"github.com/brgy-records/apiserver/internal/validation"
	"github.com/brgy-records/apiserver/types"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 24 * time.Hour

var (
	// ErrInvalidCredentials covers unknown users, inactive users and wrong
	// passwords alike.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrTooManyAttempts = errors.New("too many login attempts")
	ErrTokenExpired    = errors.New("token expired")

	// ErrInvalidToken covers bad signatures and tokens of missing or
	// deactivated users.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the JWT payload. Subject holds the user id.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies access tokens.
type AuthService struct {
	users    UserRepository
	limiter  ratelimit.Limiter
	logger   *zap.Logger
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthService(users UserRepository, limiter ratelimit.Limiter, logger *zap.Logger, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	if limiter == nil {
		limiter = ratelimit.Noop{}
	}
	return &AuthService{
		users:    users,
		limiter:  limiter,
		logger:   logger,
		secret:   []byte(jwtSecret),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// Login checks credentials against active users only and returns a signed
// token. Failures are counted per username and client address; the limiter
// failing open keeps logins available when Redis is down.
func (s *AuthService) Login(ctx context.Context, creds validation.Credentials, remoteAddr string) (string, types.User, error) {
	key := ratelimit.LoginKey(creds.Username, remoteAddr)
	allowed, err := s.limiter.Allow(ctx, key)
	if err != nil {
		s.logger.Warn("Login limiter unavailable", zap.Error(err))
		allowed = true
	}
	if !allowed {
		return "", types.User{}, ErrTooManyAttempts
	}

	user, err := s.users.GetActiveByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.recordFailure(ctx, key)
			return "", types.User{}, ErrInvalidCredentials
		}
		return "", types.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		s.recordFailure(ctx, key)
		return "", types.User{}, ErrInvalidCredentials
	}

	if err := s.limiter.Reset(ctx, key); err != nil {
		s.logger.Warn("Failed to reset login attempts", zap.Error(err))
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", types.User{}, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

func (s *AuthService) recordFailure(ctx context.Context, key string) {
	if err := s.limiter.Fail(ctx, key); err != nil {
		s.logger.Warn("Failed to record login attempt", zap.Error(err))
	}
}

func (s *AuthService) IssueToken(user types.User) (string, error) {
	now := s.now()
	claims := Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Authenticate verifies tokenString and re-reads the user, so a deactivated
// account is rejected even while its token is unexpired.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (types.User, error) {
	claims := Claims{}
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return types.User{}, ErrTokenExpired
		}
		return types.User{}, ErrInvalidToken
	}

	userID, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || userID < 1 {
		return types.User{}, ErrInvalidToken
	}

	user, err := s.users.GetActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidToken
		}
		return types.User{}, err
	}
	return user, nil
}
