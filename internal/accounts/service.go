package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Enqueuer hands a verification email to the delivery pipeline. Dispatch is a
// side effect that runs after the account state is committed; a failure here
// never rolls the record back.
type Enqueuer interface {
	EnqueueVerificationMail(ctx context.Context, to, name, token string) error
}

// Service wraps account registry business rules.
type Service struct {
	repo   Repository
	mail   Enqueuer
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository, mail Enqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, mail: mail, logger: logger, now: time.Now}
}

func validateRegistration(req RegisterRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name must not be blank", ErrValidation)
	}
	if strings.TrimSpace(req.Email) == "" {
		return fmt.Errorf("%w: email must not be blank", ErrValidation)
	}
	if len(req.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters long", ErrValidation)
	}
	if strings.TrimSpace(req.Password) == "" {
		return fmt.Errorf("%w: password must not be blank", ErrValidation)
	}
	return nil
}

// Register creates a fresh unverified account, or rotates the verification
// token when an unverified account already holds the email. A verified
// account wins with ErrEmailTaken.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	token, err := NewVerificationToken()
	if err != nil {
		return nil, err
	}
	expiry := s.now().Add(TokenTTL)

	existing, err := s.repo.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		if existing.IsVerified {
			return nil, ErrEmailTaken
		}
		if err := s.repo.RotateToken(ctx, req.Email, token, expiry); err != nil {
			if errors.Is(err, ErrAlreadyVerified) {
				return nil, ErrEmailTaken
			}
			return nil, err
		}
		result := &RegisterResult{UserID: existing.ID, Resent: true, MailQueued: true}
		if err := s.mail.EnqueueVerificationMail(ctx, req.Email, existing.Name, token); err != nil {
			s.logger.Error("enqueue verification mail", slog.String("email", req.Email), slog.Any("error", err))
			result.MailQueued = false
		}
		return result, nil

	case errors.Is(err, ErrNotFound):
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("accounts: hash password: %w", err)
		}
		id, err := s.repo.Create(ctx, NewUser{
			Name:              req.Name,
			Email:             req.Email,
			PasswordHash:      string(hash),
			VerificationToken: token,
			TokenExpiry:       expiry,
		})
		if err != nil {
			return nil, err
		}
		result := &RegisterResult{UserID: id, MailQueued: true}
		if err := s.mail.EnqueueVerificationMail(ctx, req.Email, req.Name, token); err != nil {
			s.logger.Error("enqueue verification mail", slog.String("email", req.Email), slog.Any("error", err))
			result.MailQueued = false
		}
		return result, nil

	default:
		return nil, err
	}
}

// VerifyEmail consumes a verification token, transitioning the account to
// verified. The transition is one-shot: presenting the same token again fails
// because the stored token is already cleared.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	return s.repo.ConsumeToken(ctx, token, s.now())
}

// Login authenticates by email and password. Verification is a hard
// precondition: a correct password on an unverified account still fails.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.IsVerified {
		return nil, ErrUnverified
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ResendVerification rotates the token of an unverified account and queues a
// fresh verification email. Returns whether the mail was queued.
func (s *Service) ResendVerification(ctx context.Context, email string) (bool, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if user.IsVerified {
		return false, ErrAlreadyVerified
	}

	token, err := NewVerificationToken()
	if err != nil {
		return false, err
	}
	if err := s.repo.RotateToken(ctx, email, token, s.now().Add(TokenTTL)); err != nil {
		return false, err
	}
	if err := s.mail.EnqueueVerificationMail(ctx, email, user.Name, token); err != nil {
		s.logger.Error("enqueue verification mail", slog.String("email", email), slog.Any("error", err))
		return false, nil
	}
	return true, nil
}

// GetUser fetches an account by exact email match.
func (s *Service) GetUser(ctx context.Context, email string) (*User, error) {
	return s.repo.FindByEmail(ctx, email)
}
