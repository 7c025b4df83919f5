package authflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkarlovs/tacpanel/internal/common"
)

// totpCodeLength is the number of digits an authenticator code carries.
const totpCodeLength = 6

// NormalizeCode strips everything but digits from raw input and truncates to
// the code length, so pasted values like "123 456" or "12a3!45678" become
// "123456".
func NormalizeCode(raw string) string {
	out := make([]byte, 0, totpCodeLength)
	for i := 0; i < len(raw) && len(out) < totpCodeLength; i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			out = append(out, raw[i])
		}
	}
	return string(out)
}

// Enrollment is the two-step TOTP setup flow: provision a secret, then
// verify one code generated from it.
//
// The secret is provisioned exactly once per flow; navigating back to the
// secret display and forward again must not rotate it, otherwise the user's
// authenticator and the server would disagree.
type Enrollment struct {
	backend Backend
	token   string

	Secret     string
	QRCodeURL  string
	OtpauthURL string

	provisioned bool
	code        string
}

func NewEnrollment(backend Backend, token string) *Enrollment {
	return &Enrollment{backend: backend, token: token}
}

// Begin provisions the secret on first call and is a no-op afterwards.
func (e *Enrollment) Begin(ctx context.Context) error {
	if e.provisioned {
		return nil
	}

	setup, err := e.backend.TOTPSetup(ctx, e.token)
	if err != nil {
		return err
	}

	e.Secret = setup.Secret
	e.QRCodeURL = setup.QRCodeURL
	e.OtpauthURL = setup.OtpauthURL
	e.provisioned = true
	return nil
}

// SetCode stores normalized user input.
func (e *Enrollment) SetCode(raw string) {
	e.code = NormalizeCode(raw)
}

func (e *Enrollment) Code() string { return e.code }

// Verify submits the entered code. A rejected code is cleared so the user
// retypes it, but the provisioned secret stays valid for the retry.
func (e *Enrollment) Verify(ctx context.Context) error {
	if !e.provisioned {
		return fmt.Errorf("%w: enrollment not started", common.ErrorValidation)
	}
	if len(e.code) != totpCodeLength {
		return fmt.Errorf("%w: enter the %d-digit code", common.ErrorValidation, totpCodeLength)
	}

	if err := e.backend.TOTPVerify(ctx, e.token, e.code); err != nil {
		if errors.Is(err, common.ErrInvalidTOTPCode) {
			e.code = ""
		}
		return err
	}
	return nil
}
