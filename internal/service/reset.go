package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/campusbuzz/event-registration/internal/auth"
	"github.com/campusbuzz/event-registration/internal/mailer"
	"github.com/campusbuzz/event-registration/internal/model"
	"github.com/campusbuzz/event-registration/internal/repository"
)

// ResetTokenTTL bounds how long an issued reset token stays redeemable.
const ResetTokenTTL = 10 * time.Minute

// ErrDeliveryFailed is returned by Issue when the reset email could not
// be sent. It is the only non-generic outcome of the forgot-password
// flow; the reset fields are rolled back before it is surfaced.
var ErrDeliveryFailed = errors.New("reset email could not be sent")

// ResetService drives the password-reset lifecycle per user:
// Idle -> Issued -> {Consumed | Expired} -> Idle. Only the SHA-256 hash
// of a token is ever persisted; the plaintext leaves the process exactly
// once, inside the reset email.
type ResetService struct {
	Users      UserStore
	Mail       mailer.Mailer
	BaseURL    string // client base URL the reset link points at
	BcryptCost int
	Now        func() time.Time
}

func NewResetService(users UserStore, mail mailer.Mailer, baseURL string, bcryptCost int) *ResetService {
	return &ResetService{
		Users:      users,
		Mail:       mail,
		BaseURL:    baseURL,
		BcryptCost: bcryptCost,
		Now:        time.Now,
	}
}

// Issue generates a reset token for the account behind email and mails
// the reset link. An unknown email is a silent no-op returning nil so
// the caller's response cannot be used to probe which addresses are
// registered. Issuing overwrites any earlier unconsumed token, keeping
// at most one live token per user.
func (s *ResetService) Issue(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}

	plain, err := newResetToken()
	if err != nil {
		return err
	}
	expires := s.Now().UTC().Add(ResetTokenTTL)
	if err := s.Users.SetResetToken(ctx, u.ID, hashResetToken(plain), expires); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/resetpassword/%s", s.BaseURL, plain)
	body := fmt.Sprintf(`<h1>Password Reset Request</h1>
<p>You are receiving this because you (or someone else) requested a password reset for your account.</p>
<p>Click the link below to reset your password. The link expires in 10 minutes.</p>
<a href="%s">%s</a>
<p>If you did not request this, ignore this email and your password will remain unchanged.</p>`,
		resetURL, resetURL)

	if err := s.Mail.Send(u.Email, "CampusBuzz Password Reset", body); err != nil {
		// Roll the user back to Idle so the undeliverable token cannot
		// linger.
		_ = s.Users.ClearResetToken(ctx, u.ID)
		return ErrDeliveryFailed
	}
	return nil
}

// Consume redeems a reset token and installs the new password. Matching
// requires hash equality and an unexpired token in one atomic store
// operation; wrong, expired and already-used tokens all fail with
// repository.ErrResetTokenInvalid. On success both reset fields are
// cleared and the updated user is returned.
func (s *ResetService) Consume(ctx context.Context, plainToken, newPassword string) (model.User, error) {
	newHash, err := auth.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		return model.User{}, err
	}
	return s.Users.ConsumeResetToken(ctx, hashResetToken(plainToken), newHash, s.Now().UTC())
}

// newResetToken returns 20 bytes of cryptographically secure randomness
// as a 40-character hex string.
func newResetToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// hashResetToken is the persisted form of a reset token. Comparison is
// always performed on these hashes, never on plaintext.
func hashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
