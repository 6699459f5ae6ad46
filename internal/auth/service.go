package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/Purav2003/epimech-admin/internal/apperr"
	"github.com/Purav2003/epimech-admin/internal/models"
	"github.com/Purav2003/epimech-admin/internal/otp"
	"github.com/Purav2003/epimech-admin/internal/store"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, u models.User) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, u models.User) (*models.User, error)
}

// Mailer delivers plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, text string) error
}

var errInvalidCredentials = apperr.Auth("invalid credentials")

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// equalizeTiming burns a bcrypt comparison so unknown usernames take as
// long to reject as wrong passwords.
func equalizeTiming(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// Session is the result of a successful OTP verification.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Service implements the two-step login and admin account management.
type Service struct {
	users        UserStore
	otps         *otp.Manager
	tokens       *TokenIssuer
	mailer       Mailer
	otpRecipient string
}

// NewService wires the auth flow. When otpRecipient is set every code is
// mailed there instead of to the user's own address.
func NewService(users UserStore, otps *otp.Manager, tokens *TokenIssuer, mailer Mailer, otpRecipient string) *Service {
	return &Service{users: users, otps: otps, tokens: tokens, mailer: mailer, otpRecipient: otpRecipient}
}

// Tokens exposes the issuer for middleware.
func (s *Service) Tokens() *TokenIssuer { return s.tokens }

// Login checks the password and, on success, mails a fresh OTP.
func (s *Service) Login(ctx context.Context, username, password string) error {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		equalizeTiming(password)
		return errInvalidCredentials
	}
	if err != nil {
		return apperr.Upstream("login failed", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return errInvalidCredentials
	}

	to := s.otpRecipient
	if to == "" {
		to = user.Email
	}
	if to == "" {
		return apperr.Upstream("otp delivery unavailable", fmt.Errorf("no email for user %q", user.Username))
	}

	code, err := s.otps.Issue(ctx, user.Username)
	if err != nil {
		return apperr.Upstream("could not issue otp", err)
	}

	body := fmt.Sprintf("Your login OTP is: %s\n\nIt expires in %s.", code, s.otps.TTL())
	if err := s.mailer.Send(ctx, to, "Your OTP Code", body); err != nil {
		if derr := s.otps.Discard(ctx, user.Username); derr != nil {
			log.Warn().Err(derr).Str("username", user.Username).Msg("discard otp after mail failure")
		}
		return apperr.Upstream("failed to send otp", err)
	}

	log.Info().Str("username", user.Username).Msg("otp issued")
	return nil
}

// VerifyOTP consumes the pending code and issues a session token.
func (s *Service) VerifyOTP(ctx context.Context, username, code string) (*Session, error) {
	if err := s.otps.Verify(ctx, username, code); err != nil {
		if errors.Is(err, otp.ErrInvalid) {
			return nil, apperr.Auth("invalid or expired otp")
		}
		return nil, apperr.Upstream("otp verification failed", err)
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Auth("invalid or expired otp")
	}
	if err != nil {
		return nil, apperr.Upstream("otp verification failed", err)
	}

	token, exp, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, apperr.Upstream("could not issue session", err)
	}
	return &Session{Token: token, ExpiresAt: exp, User: user}, nil
}

// Signup creates another admin account.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Upstream("internal error", err)
	}

	user, err := s.users.CreateUser(ctx, models.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Password: hashed,
	})
	if errors.Is(err, store.ErrConflict) {
		return nil, apperr.Conflict("username already exists")
	}
	if err != nil {
		return nil, apperr.Upstream("failed to create user", err)
	}
	return user, nil
}

// Profile returns the account behind userID.
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Upstream("failed to load profile", err)
	}
	return user, nil
}

// UpdateProfile applies the non-empty fields of upd.
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(upd.Username); v != "" {
		user.Username = v
	}
	if v := strings.TrimSpace(upd.Email); v != "" {
		user.Email = v
	}
	if upd.Password != "" {
		hashed, err := HashPassword(upd.Password)
		if err != nil {
			return nil, apperr.Upstream("internal error", err)
		}
		user.Password = hashed
	}

	updated, err := s.users.UpdateUser(ctx, *user)
	switch {
	case errors.Is(err, store.ErrConflict):
		return nil, apperr.Conflict("username already exists")
	case errors.Is(err, store.ErrNotFound):
		return nil, apperr.NotFound("user not found")
	case err != nil:
		return nil, apperr.Upstream("failed to update profile", err)
	}
	return updated, nil
}

// HashPassword bcrypt-hashes a plaintext password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// SeedAdmin creates the account username unless it already exists. It
// reports whether an account was created.
func SeedAdmin(ctx context.Context, users UserStore, username, email, password string) (bool, error) {
	if username == "" || password == "" {
		return false, errors.New("seed admin: username and password are required")
	}
	_, err := users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, store.ErrNotFound):
		return false, fmt.Errorf("seed admin: %w", err)
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	_, err = users.CreateUser(ctx, models.User{Username: username, Email: email, Password: hashed})
	if errors.Is(err, store.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}
