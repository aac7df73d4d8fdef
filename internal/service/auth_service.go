package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"

	"wavenote-api/internal/metrics"
	"wavenote-api/internal/models"
	"wavenote-api/internal/repository"
	"wavenote-api/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var (
	ErrMissingCredentials = errors.New("Please fill in both fields")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrEmailInUse         = errors.New("email address is already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("not logged in")
)

type AuthEventType string

const (
	AuthSignedUp  AuthEventType = "signed_up"
	AuthLoggedIn  AuthEventType = "logged_in"
	AuthLoggedOut AuthEventType = "logged_out"
)

// AuthEvent is delivered to auth-state subscribers. User is nil on logout
// when the account no longer exists.
type AuthEvent struct {
	Type   AuthEventType
	User   *models.User
	UserID string
}

type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*models.User, string, error)
	LogIn(ctx context.Context, email, password string) (*models.User, string, error)
	CurrentUser(ctx context.Context, token string) (*models.User, error)
	LogOut(ctx context.Context, token string) error
	OnAuthStateChange(callback func(AuthEvent)) (unsubscribe func())
}

type authService struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	jwt    *utils.TokenManager
	logger *log.Logger
	cost   int

	mu          sync.RWMutex
	nextSubID   int
	subscribers map[int]func(AuthEvent)
}

func NewAuthService(users repository.UserRepository, tokens repository.TokenRepository, jwt *utils.TokenManager, logger *log.Logger) AuthService {
	if logger == nil {
		logger = log.Default()
	}
	return &authService{
		users:       users,
		tokens:      tokens,
		jwt:         jwt,
		logger:      logger,
		cost:        bcrypt.DefaultCost,
		subscribers: make(map[int]func(AuthEvent)),
	}
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

func (s *authService) SignUp(ctx context.Context, email, password string) (user *models.User, token string, err error) {
	defer func() { metrics.ObserveAuth("signup", err) }()

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", ErrMissingCredentials
	}
	if err := validateEmail(email); err != nil {
		return nil, "", err
	}
	if len(password) < minPasswordLength {
		return nil, "", ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user = &models.User{Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicated) {
			return nil, "", ErrEmailInUse
		}
		return nil, "", err
	}

	token, _, err = s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}

	s.logger.Printf("User signed up: %s", user.ID)
	s.notify(AuthEvent{Type: AuthSignedUp, User: user, UserID: user.ID.String()})
	return user, token, nil
}

func (s *authService) LogIn(ctx context.Context, email, password string) (user *models.User, token string, err error) {
	defer func() { metrics.ObserveAuth("login", err) }()

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", ErrMissingCredentials
	}

	user, err = s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, _, err = s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}

	s.notify(AuthEvent{Type: AuthLoggedIn, User: user, UserID: user.ID.String()})
	return user, token, nil
}

// CurrentUser resolves a bearer token to its user. An empty, invalid or
// revoked token yields (nil, ErrUnauthenticated).
func (s *authService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

func (s *authService) LogOut(ctx context.Context, token string) (err error) {
	defer func() { metrics.ObserveAuth("logout", err) }()

	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return ErrUnauthenticated
	}

	if err := s.tokens.Revoke(ctx, claims.ID, s.jwt.RemainingTTL(claims)); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		s.logger.Printf("Failed to load user %s on logout: %v", claims.UserID, err)
	}
	s.notify(AuthEvent{Type: AuthLoggedOut, User: user, UserID: claims.UserID.String()})
	return nil
}

func (s *authService) OnAuthStateChange(callback func(AuthEvent)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = callback
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *authService) notify(event AuthEvent) {
	s.mu.RLock()
	callbacks := make([]func(AuthEvent), 0, len(s.subscribers))
	for _, cb := range s.subscribers {
		callbacks = append(callbacks, cb)
	}
	s.mu.RUnlock()

	for _, cb := range callbacks {
		cb(event)
	}
}
