package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"cv-checker/internal/models"
	"cv-checker/internal/repositories"
)

var (
	ErrUserExists         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type Claims struct {
	jwt.RegisteredClaims
}

// AuthService is the legacy email/password surface. Users live in the
// database; revoked tokens live in a process-scoped set that is cleared on
// restart. Production use requires a persistent, shared revocation store.
type AuthService struct {
	userRepo    repositories.UserRepository
	secret      []byte
	tokenExpiry time.Duration
	logger      *zap.Logger

	mu            sync.RWMutex
	revokedTokens map[string]struct{}
}

func NewAuthService(userRepo repositories.UserRepository, secret string, tokenExpiry time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		secret:        []byte(secret),
		tokenExpiry:   tokenExpiry,
		logger:        logger,
		revokedTokens: make(map[string]struct{}),
	}
}

func (s *AuthService) Register(req *models.RegisterRequest) (*models.UserResponse, error) {
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashedStr := string(hashed)

	user := &models.User{
		ID:             uuid.New(),
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		HashedPassword: &hashedStr,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("email", user.Email))
	return models.NewUserResponse(user), nil
}

func (s *AuthService) Login(req *models.LoginRequest) (*models.TokenResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.HashedPassword == nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(user.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("email", user.Email))
	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        models.NewUserResponse(user),
	}, nil
}

// Logout adds the token to the in-memory revocation set.
func (s *AuthService) Logout(token string) {
	s.mu.Lock()
	s.revokedTokens[token] = struct{}{}
	s.mu.Unlock()
}

// Refresh issues a new token for the subject of a still-valid token.
func (s *AuthService) Refresh(token string) (*models.TokenResponse, error) {
	claims, err := s.verifyToken(token)
	if err != nil {
		return nil, err
	}

	newToken, err := s.issueToken(claims.Subject)
	if err != nil {
		return nil, err
	}

	return &models.TokenResponse{
		AccessToken: newToken,
		TokenType:   "bearer",
	}, nil
}

// CurrentUser resolves the user behind a bearer token.
func (s *AuthService) CurrentUser(token string) (*models.UserResponse, error) {
	claims, err := s.verifyToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return models.NewUserResponse(user), nil
}

func (s *AuthService) issueToken(email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) verifyToken(tokenString string) (*Claims, error) {
	s.mu.RLock()
	_, revoked := s.revokedTokens[tokenString]
	s.mu.RUnlock()
	if revoked {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
