package cli

import (
	"context"
	"fmt"

	"github.com/dkarlovs/tacpanel/internal/client/authflow"
	"github.com/dkarlovs/tacpanel/internal/common"
)

// securityQuestions are the four recovery prompts shown during account
// setup. The backend stores only the answers.
var securityQuestions = [4]string{
	"What was the name of your first pet?",
	"In what city were you born?",
	"What is your mother's maiden name?",
	"What was the name of your elementary school?",
}

const secondFactorAttempts = 3

// Login runs the interactive login flow, including the second-factor prompt
// when the account has an enrolled authenticator.
func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	pw, err := GetPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	outcome, err := a.controller.Login(ctx, username, string(pw), "")
	if err != nil {
		fmt.Fprintf(a.out, "Login failed: %v\n", err)
		return err
	}

	if outcome == authflow.OutcomeBadCredentials {
		fmt.Fprintln(a.out, "Invalid username or password.")
		return nil
	}

	// The password is retained so the user only re-enters the code.
	for attempt := 0; outcome == authflow.OutcomeSecondFactor; attempt++ {
		if attempt == secondFactorAttempts {
			fmt.Fprintln(a.out, "Too many invalid codes.")
			return nil
		}
		if attempt > 0 {
			fmt.Fprintln(a.out, "Invalid code, try again.")
		}

		raw, err := GetSimpleText(a.reader, "Enter the 6-digit code from your authenticator app", a.out)
		if err != nil {
			return err
		}

		outcome, err = a.controller.Login(ctx, username, string(pw), authflow.NormalizeCode(raw))
		if err != nil {
			fmt.Fprintf(a.out, "Login failed: %v\n", err)
			return err
		}
	}

	if outcome != authflow.OutcomeSuccess {
		fmt.Fprintln(a.out, "Invalid username or password.")
		return nil
	}

	rec := a.controller.Session()
	fmt.Fprintf(a.out, "Logged in as %s.\n", rec.Username)
	a.maybeShowTour()

	if a.controller.ShouldOfferEnrollment() {
		answer, err := GetSimpleText(a.reader, "Two-factor authentication is not set up. Set it up now? (y/n)", a.out)
		if err != nil {
			return err
		}
		if answer == "y" || answer == "yes" {
			return a.Enroll2FA(ctx)
		}
		a.controller.SkipEnrollment()
	}
	return nil
}

// Setup runs the interactive first-time setup: the initial admin account
// plus its four security answers.
func (a *App) Setup(ctx context.Context) error {
	fmt.Fprintln(a.out, "Create the administrator account.")

	username, err := GetSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		return err
	}

	if pc, err := a.backend.PasswordConfig(ctx); err == nil {
		fmt.Fprintf(a.out, "Password must be at least %d characters.\n", pc.MinLength)
	}

	pw, err := GetPassword("Choose a password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	confirm, err := GetPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(pw) != string(confirm) {
		fmt.Fprintln(a.out, "Passwords do not match.")
		return nil
	}

	fmt.Fprintln(a.out, "Answer the following questions. They are the only way to recover a forgotten password.")
	var answers [4]string
	for i, q := range securityQuestions {
		answers[i], err = GetSimpleText(a.reader, q, a.out)
		if err != nil {
			return err
		}
	}

	if err := a.controller.FirstTimeSetup(ctx, username, string(pw), answers); err != nil {
		fmt.Fprintf(a.out, "Setup failed: %v\n", err)
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s! The administrator account is ready.\n", username)
	a.maybeShowTour()

	if a.controller.ShouldOfferEnrollment() {
		answer, err := GetSimpleText(a.reader, "Set up two-factor authentication now? (y/n)", a.out)
		if err != nil {
			return err
		}
		if answer == "y" || answer == "yes" {
			return a.Enroll2FA(ctx)
		}
		a.controller.SkipEnrollment()
	}
	return nil
}

// Reset runs the interactive three-step password recovery flow.
func (a *App) Reset(ctx context.Context) error {
	flow := authflow.NewResetFlow(a.backend)

	username, err := GetSimpleText(a.reader, "Enter your username", a.out)
	if err != nil {
		return err
	}
	if err := flow.Identify(ctx, username); err != nil {
		fmt.Fprintf(a.out, "Cannot start recovery: %v\n", err)
		return err
	}

	fmt.Fprintln(a.out, "Answer your security questions.")
	var answers [4]string
	for i, q := range securityQuestions {
		answers[i], err = GetSimpleText(a.reader, q, a.out)
		if err != nil {
			return err
		}
	}
	if err := flow.SubmitAnswers(answers); err != nil {
		fmt.Fprintf(a.out, "%v\n", err)
		return err
	}

	pw, err := GetPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	confirm, err := GetPassword("Confirm new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := flow.Commit(ctx, string(pw), string(confirm)); err != nil {
		fmt.Fprintf(a.out, "Password reset failed: %v\n", err)
		return err
	}

	fmt.Fprintln(a.out, "Password reset successfully. You can now log in.")
	return nil
}

// Status prints the current session details.
func (a *App) Status(ctx context.Context) error {
	rec := a.controller.Session()
	if rec == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	fmt.Fprintf(a.out, "Logged in as %s.\n", rec.Username)
	if minutes, ok := a.timer.Remaining(); ok {
		fmt.Fprintf(a.out, "Session expires in %d minute(s).\n", minutes)
	} else {
		fmt.Fprintln(a.out, "Session does not expire.")
	}

	enabled, err := a.backend.TOTPStatus(ctx, rec.Token)
	if err == nil {
		if enabled {
			fmt.Fprintln(a.out, "Two-factor authentication: enabled.")
		} else {
			fmt.Fprintln(a.out, "Two-factor authentication: not set up.")
		}
	}
	return nil
}

// Refresh extends the current session window.
func (a *App) Refresh(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	if err := a.timer.Refresh(); err != nil {
		fmt.Fprintf(a.out, "Could not refresh the session: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Session extended.")
	return nil
}

// Logout drops the session. Safe to call when already logged out.
func (a *App) Logout(ctx context.Context) error {
	if err := a.controller.Logout(); err != nil {
		fmt.Fprintf(a.out, "Logout failed: %v\n", err)
		return err
	}
	a.enrollment = nil
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
