// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/marquee/internal/apperr"
	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/events"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/store"
	"github.com/tomtom215/marquee/internal/validation"
)

// MsgMissingFields is returned when login is attempted without both fields.
const MsgMissingFields = "Please enter all fields"

// TokenIssuer signs tokens for authenticated accounts.
type TokenIssuer interface {
	Issue(accountID, username, email string) (string, error)
}

// RegisterInput is the raw registration request. Name is only consulted
// when Username is blank.
type RegisterInput struct {
	Username string
	Name     string
	Email    string
	Password string
}

type registration struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Session is the result of a successful register or login.
type Session struct {
	Token string               `json:"token"`
	User  models.PublicAccount `json:"user"`
}

// Service implements registration, login, logout and profile lookup.
type Service struct {
	store      store.AccountStore
	tokens     TokenIssuer
	lockout    *auth.Lockout
	revocation auth.RevocationList
	events     events.Publisher
	now        func() time.Time
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithLockout enables per-email login lockout.
func WithLockout(l *auth.Lockout) Option {
	return func(s *Service) { s.lockout = l }
}

// WithRevocation enables logout revocation.
func WithRevocation(r auth.RevocationList) Option {
	return func(s *Service) { s.revocation = r }
}

// WithPublisher sets the domain event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// NewService creates an account service.
func NewService(accounts store.AccountStore, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		store:  accounts,
		tokens: tokens,
		events: events.NopPublisher{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func usernameFallback(in RegisterInput) string {
	if u := strings.TrimSpace(in.Username); u != "" {
		return u
	}
	if n := strings.TrimSpace(in.Name); n != "" {
		return n
	}
	email := strings.TrimSpace(in.Email)
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return ""
}

// Register creates an account and signs its first token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	reg := registration{
		Username: usernameFallback(in),
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
	}
	if err := validation.ValidateStruct(reg); err != nil {
		metrics.RecordAuth("register", "invalid")
		return nil, err
	}

	if err := s.checkAvailable(ctx, reg.Email, reg.Username); err != nil {
		s.registerFailed(ctx, reg.Email, err)
		return nil, err
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperr.NewValidationError("", apperr.FieldError{Field: "password", Message: "password must be at most 72 characters"})
		}
		return nil, err
	}

	created, err := s.store.CreateAccount(ctx, &models.Account{
		Username:   reg.Username,
		Email:      reg.Email,
		SecretHash: hash,
		Watchlist:  []models.WatchlistEntry{},
	})
	if err != nil {
		s.registerFailed(ctx, reg.Email, err)
		return nil, err
	}

	token, err := s.tokens.Issue(created.ID, created.Username, created.Email)
	if err != nil {
		return nil, err
	}

	metrics.RecordAuth("register", "success")
	logging.LogAuthEvent(ctx, logging.AuthEvent{Event: "register", AccountID: created.ID, Email: created.Email, Success: true})

	s.publish(ctx, events.TopicAccountRegistered, events.AccountRegistered{
		AccountID:  created.ID,
		Username:   created.Username,
		OccurredAt: s.now().UTC(),
	})

	return &Session{Token: token, User: created.Public()}, nil
}

// checkAvailable reports duplicate email before duplicate username. The
// store's unique indexes remain the final word under concurrent
// registrations.
func (s *Service) checkAvailable(ctx context.Context, email, username string) error {
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return apperr.ErrDuplicateEmail
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	if _, err := s.store.FindByUsername(ctx, username); err == nil {
		return apperr.ErrDuplicateUsername
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return nil
}

func (s *Service) registerFailed(ctx context.Context, email string, err error) {
	reason := "error"
	switch {
	case errors.Is(err, apperr.ErrDuplicateEmail):
		reason = "duplicate_email"
	case errors.Is(err, apperr.ErrDuplicateUsername):
		reason = "duplicate_username"
	}
	metrics.RecordAuth("register", reason)
	logging.LogAuthEvent(ctx, logging.AuthEvent{Event: "register", Email: email, Reason: reason})
}

// Login verifies credentials. Unknown email and wrong password both return
// apperr.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		metrics.RecordAuth("login", "invalid")
		return nil, apperr.NewValidationError(MsgMissingFields)
	}

	if locked, remaining := s.lockout.Locked(email); locked {
		metrics.RecordAuth("login", "locked")
		logging.LogAuthEvent(ctx, logging.AuthEvent{Event: "login", Email: email, Reason: "locked_out"})
		return nil, fmt.Errorf("%w: retry in %s", apperr.ErrLockedOut, remaining.Round(time.Second))
	}

	acct, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, s.loginFailed(ctx, email, "unknown_email")
		}
		metrics.RecordAuth("login", "error")
		return nil, err
	}

	if !auth.CheckPassword(acct.SecretHash, password) {
		return nil, s.loginFailed(ctx, email, "wrong_password")
	}

	s.lockout.RecordSuccess(email)

	token, err := s.tokens.Issue(acct.ID, acct.Username, acct.Email)
	if err != nil {
		return nil, err
	}

	metrics.RecordAuth("login", "success")
	logging.LogAuthEvent(ctx, logging.AuthEvent{Event: "login", AccountID: acct.ID, Email: email, Success: true})
	return &Session{Token: token, User: acct.Public()}, nil
}

func (s *Service) loginFailed(ctx context.Context, email, reason string) error {
	if s.lockout.RecordFailure(email) {
		reason += ",locked"
	}
	metrics.RecordAuth("login", "failure")
	logging.LogAuthEvent(ctx, logging.AuthEvent{Event: "login", Email: email, Reason: reason})
	return apperr.ErrInvalidCredentials
}

// CurrentAccount re-reads the account behind identity.
func (s *Service) CurrentAccount(ctx context.Context, identity *models.Identity) (*models.AccountWithList, error) {
	if identity == nil {
		return nil, apperr.ErrUnauthorized
	}
	acct, err := s.store.FindByID(ctx, identity.AccountID)
	if err != nil {
		return nil, err
	}
	view := acct.WithList()
	return &view, nil
}

// Logout revokes the presented token when revocation is enabled and does
// nothing otherwise.
func (s *Service) Logout(ctx context.Context, identity *models.Identity) error {
	if identity == nil {
		return apperr.ErrUnauthorized
	}
	if s.revocation == nil || identity.TokenID == "" {
		return nil
	}
	if err := s.revocation.Revoke(ctx, identity.TokenID, identity.ExpiresAt); err != nil {
		metrics.RecordAuth("logout", "error")
		return fmt.Errorf("revoke token: %w", err)
	}
	metrics.RecordAuth("logout", "success")
	logging.LogAuthEvent(ctx, logging.AuthEvent{Event: "logout", AccountID: identity.AccountID, Success: true})
	return nil
}

// RevocationEnabled reports whether Logout has any effect.
func (s *Service) RevocationEnabled() bool {
	return s.revocation != nil
}

func (s *Service) publish(ctx context.Context, topic string, event any) {
	if err := s.events.Publish(ctx, topic, event); err != nil {
		logging.CtxErr(ctx, err).Str("topic", topic).Msg("failed to publish event")
	}
}
