// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth implements owner accounts: registration, password login
// with an optional TOTP second factor, and sign-in/sign-out events.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"folio/internal/models"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidCode is returned for a wrong TOTP code.
	ErrInvalidCode = errors.New("invalid code")
	// ErrNoTOTP is returned when verifying a code before setup.
	ErrNoTOTP = errors.New("two-factor authentication is not set up")
	// ErrWeakPassword is returned by Register for short passwords.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrInvalidEmail is returned by Register for malformed addresses.
	ErrInvalidEmail = errors.New("invalid email address")
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 8

// Users is the account storage the service needs.
type Users interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, email, password string) (*models.User, error)
	SetTOTPSecret(ctx context.Context, userID uuid.UUID, secret string) error
	EnableTOTP(ctx context.Context, userID uuid.UUID) error
	CheckPassword(user *models.User, password string) bool
}

// Service authenticates owners and announces state changes on a Hub.
type Service struct {
	users  Users
	hub    *Hub
	issuer string
}

// NewService returns a Service. issuer is the name shown in authenticator
// apps.
func NewService(users Users, hub *Hub, issuer string) *Service {
	if issuer == "" {
		issuer = "Folio"
	}
	return &Service{users: users, hub: hub, issuer: issuer}
}

// Hub returns the event hub the service publishes to.
func (s *Service) Hub() *Hub { return s.hub }

// Register creates an account. The caller signs the new user in.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	user, err := s.users.Create(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	slog.Info("account registered", "user_id", user.ID)
	return user, nil
}

// Login checks the password. When the account has TOTP enabled the
// returned user still needs VerifyCode before it may edit.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("login lookup: %w", err)
	}
	if user == nil || !s.users.CheckPassword(user, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// CurrentUser returns the account behind a session, or nil.
func (s *Service) CurrentUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return s.users.FindByID(ctx, id)
}

// SetupTOTP generates a new secret for the user and returns it with a
// QR code PNG for enrollment. The secret only takes effect after a
// successful VerifyCode.
func (s *Service) SetupTOTP(ctx context.Context, userID uuid.UUID) (secret string, qrPNG []byte, err error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", nil, fmt.Errorf("totp setup lookup: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: user.Email,
	})
	if err != nil {
		return "", nil, fmt.Errorf("totp generate: %w", err)
	}
	if err := s.users.SetTOTPSecret(ctx, userID, key.Secret()); err != nil {
		return "", nil, fmt.Errorf("save totp secret: %w", err)
	}

	qrPNG, err = qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return "", nil, fmt.Errorf("qr code: %w", err)
	}
	return key.Secret(), qrPNG, nil
}

// VerifyCode validates a TOTP code. The first valid code after setup
// enables TOTP for the account.
func (s *Service) VerifyCode(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("totp verify lookup: %w", err)
	}
	if user == nil || user.TOTPSecret == nil {
		return ErrNoTOTP
	}
	if !totp.Validate(strings.TrimSpace(code), *user.TOTPSecret) {
		return ErrInvalidCode
	}
	if !user.TOTPEnabled {
		if err := s.users.EnableTOTP(ctx, userID); err != nil {
			return fmt.Errorf("enable totp: %w", err)
		}
		slog.Info("totp enabled", "user_id", userID)
	}
	return nil
}

// SignedIn announces that a session for owner completed authentication.
func (s *Service) SignedIn(ctx context.Context, owner uuid.UUID, email string) {
	s.hub.Publish(ctx, Event{Kind: SignedIn, UserID: owner, Email: email})
}

// SignedOut announces that a session for owner ended.
func (s *Service) SignedOut(ctx context.Context, owner uuid.UUID) {
	s.hub.Publish(ctx, Event{Kind: SignedOut, UserID: owner})
}
