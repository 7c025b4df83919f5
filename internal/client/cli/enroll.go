package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkarlovs/tacpanel/internal/client/authflow"
	"github.com/dkarlovs/tacpanel/internal/common"
)

// Enroll2FA runs the interactive authenticator setup: show the secret, then
// verify one code. Re-entering the command reuses the pending enrollment so
// the secret shown earlier stays valid.
func (a *App) Enroll2FA(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	if a.enrollment == nil {
		a.enrollment = authflow.NewEnrollment(a.backend, a.token())
	}
	e := a.enrollment

	if err := e.Begin(ctx); err != nil {
		a.reportAPIError("start 2FA setup", err)
		return err
	}

	fmt.Fprintln(a.out, "Add this secret to your authenticator app:")
	fmt.Fprintf(a.out, "  %s\n", e.Secret)
	if e.OtpauthURL != "" {
		fmt.Fprintf(a.out, "Or scan: %s\n", e.OtpauthURL)
	}

	for {
		raw, err := GetSimpleText(a.reader, "Enter the 6-digit code from the app (empty to cancel)", a.out)
		if err != nil {
			return err
		}
		if raw == "" {
			fmt.Fprintln(a.out, "2FA setup postponed. Run 'enroll-2fa' to continue.")
			a.controller.SkipEnrollment()
			return nil
		}

		e.SetCode(raw)
		err = e.Verify(ctx)
		if err == nil {
			break
		}
		if errors.Is(err, common.ErrInvalidTOTPCode) || errors.Is(err, common.ErrorValidation) {
			fmt.Fprintln(a.out, "That code did not work. Check the app and try again.")
			continue
		}
		a.reportAPIError("verify the code", err)
		return err
	}

	a.controller.EnrollmentDone()
	a.enrollment = nil
	fmt.Fprintln(a.out, "Two-factor authentication enabled.")
	return nil
}
