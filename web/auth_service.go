package web

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionDuration = 30 * 24 * time.Hour // 30 days
	tokenLength     = 32                  // 32 bytes = 256 bits
	minPasswordLen  = 8
)

type AuthService struct {
	userRepo    UserRepository
	sessionRepo UserSessionRepository
}

func NewAuthService(userRepo UserRepository, sessionRepo UserSessionRepository) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

// Register creates a new user account
func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*User, error) {
	if email == "" {
		return nil, errors.New("missing email")
	}

	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existingUser.ID != "" {
		return nil, errors.New("user already exists")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(passwordHash),
		FirstName:    firstName,
		LastName:     lastName,
		Status:       UserStatusActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*User, *UserSession, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, "", errors.New("invalid email or password")
	}

	if !user.IsActive() {
		return nil, nil, "", errors.New("user account is inactive or suspended")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, "", errors.New("invalid email or password")
	}

	token, tokenHash, err := generateToken()
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	session := &UserSession{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(sessionDuration),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	now := time.Now()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	_ = s.userRepo.Update(ctx, &user) // non-critical

	return &user, session, token, nil
}

// ValidateSession validates a session token and returns the user
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*User, *UserSession, error) {
	tokenHash := hashToken(token)

	session, err := s.sessionRepo.GetByToken(ctx, tokenHash)
	if err != nil {
		return nil, nil, errors.New("invalid session")
	}

	if !session.IsValid() {
		return nil, nil, errors.New("session expired")
	}

	user, err := s.userRepo.Get(ctx, session.UserID)
	if err != nil {
		return nil, nil, errors.New("user not found")
	}

	if !user.IsActive() {
		return nil, nil, errors.New("user account is inactive")
	}

	now := time.Now()
	session.LastUsedAt = &now
	_ = s.sessionRepo.Update(ctx, &session) // non-critical

	return &user, &session, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// LogoutAll invalidates all sessions for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.sessionRepo.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}

	return nil
}

// ChangePassword changes a user's password
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return errors.New("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return errors.New("invalid password")
	}

	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(passwordHash)
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, &user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	// Force re-login everywhere with the new password.
	_ = s.sessionRepo.DeleteByUser(ctx, userID)

	return nil
}

// generateToken generates a random token and its hash
func generateToken() (string, string, error) {
	b := make([]byte, tokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}

	token := base64.URLEncoding.EncodeToString(b)

	return token, hashToken(token), nil
}

// hashToken hashes a token using SHA-256
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", hash)
}
