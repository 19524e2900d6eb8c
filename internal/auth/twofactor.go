package auth

import (
	"context"
	"image/png"
	"io"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"

	"github.com/elskow/transcendence/internal/apperr"
)

var ErrInvalidTwoFactorCode = apperr.BadCredential("wrong authentication code")

// TwoFactorSecret is what a client needs to enrol an authenticator app.
type TwoFactorSecret struct {
	Secret     string
	OtpauthURL string
}

// GenerateTwoFactorSecret stores a fresh TOTP secret for the user. Two-factor
// stays disabled until TurnOnTwoFactor confirms a code. It is refused while
// two-factor is on; turn it off first to enrol a new device.
func (s *Service) GenerateTwoFactorSecret(ctx context.Context, userID uuid.UUID) (*TwoFactorSecret, error) {
	user, err := s.repository.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TwoFactorEnabled {
		return nil, apperr.Conflict("two-factor authentication is already enabled")
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.twoFactor.AppName,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repository.SetTwoFactorSecret(ctx, user.ID, key.Secret()); err != nil {
		return nil, err
	}

	return &TwoFactorSecret{Secret: key.Secret(), OtpauthURL: key.URL()}, nil
}

// WriteQRCode renders the otpauth URL as a PNG.
func (s *Service) WriteQRCode(w io.Writer, otpauthURL string) error {
	key, err := otp.NewKeyFromURL(otpauthURL)
	if err != nil {
		return err
	}

	size := s.twoFactor.QRSize
	if size <= 0 {
		size = 256
	}

	img, err := key.Image(size, size)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func (s *Service) IsTwoFactorCodeValid(code string, user *User) bool {
	if user.TwoFactorSecret == "" || code == "" {
		return false
	}
	return totp.Validate(code, user.TwoFactorSecret)
}

func (s *Service) TurnOnTwoFactor(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := s.repository.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.IsTwoFactorCodeValid(code, user) {
		return ErrInvalidTwoFactorCode
	}

	if err := s.repository.SetTwoFactorEnabled(ctx, user.ID, true); err != nil {
		return err
	}
	s.log.Info("two-factor authentication enabled", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *Service) TurnOffTwoFactor(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := s.repository.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TwoFactorEnabled {
		return apperr.PolicyViolation("two-factor authentication is not enabled")
	}
	if !s.IsTwoFactorCodeValid(code, user) {
		return ErrInvalidTwoFactorCode
	}

	if err := s.repository.SetTwoFactorEnabled(ctx, user.ID, false); err != nil {
		return err
	}
	return s.repository.SetTwoFactorSecret(ctx, user.ID, "")
}

// AuthenticateSecondFactor checks the code and returns a session token that
// carries the second factor.
func (s *Service) AuthenticateSecondFactor(ctx context.Context, userID uuid.UUID, code string) (string, error) {
	user, err := s.repository.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !user.TwoFactorEnabled {
		return "", apperr.PolicyViolation("two-factor authentication is not enabled")
	}
	if !s.IsTwoFactorCodeValid(code, user) {
		return "", ErrInvalidTwoFactorCode
	}

	return s.IssueSession(user.ID, true)
}
