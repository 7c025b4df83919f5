package authflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/dkarlovs/tacpanel/internal/common"
)

// ResetStep is the current stage of the password recovery flow.
type ResetStep int

const (
	// StepIdentify asks for the username and confirms recovery questions
	// exist for it.
	StepIdentify ResetStep = iota
	// StepAnswers collects all four security answers. No network call
	// happens here; answers are only verified together with the new
	// password at commit.
	StepAnswers
	// StepNewPassword collects and submits the replacement password.
	StepNewPassword
)

// minResetPasswordLength is the floor enforced locally before submitting.
const minResetPasswordLength = 6

// ResetFlow is the three-step security-question password recovery flow.
// Entered answers survive a failed commit so the user can correct just the
// password (or a single answer) without starting over.
type ResetFlow struct {
	backend Backend

	step     ResetStep
	Username string
	Answers  [4]string
}

func NewResetFlow(backend Backend) *ResetFlow {
	return &ResetFlow{backend: backend, step: StepIdentify}
}

func (f *ResetFlow) Step() ResetStep { return f.step }

// Identify checks that recovery is possible for the username and advances.
func (f *ResetFlow) Identify(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("%w: enter your username", common.ErrorValidation)
	}

	if err := f.backend.SecurityQuestionsExist(ctx, username); err != nil {
		return err
	}

	f.Username = username
	f.step = StepAnswers
	return nil
}

// SubmitAnswers validates that every answer is filled in and advances. The
// answers are deliberately not sent anywhere yet.
func (f *ResetFlow) SubmitAnswers(answers [4]string) error {
	if f.step != StepAnswers {
		return fmt.Errorf("%w: answers are not expected at this step", common.ErrorValidation)
	}
	for _, a := range answers {
		if strings.TrimSpace(a) == "" {
			return fmt.Errorf("%w: answer all security questions", common.ErrorValidation)
		}
	}
	f.Answers = answers
	f.step = StepNewPassword
	return nil
}

// Commit runs the local password checks, then submits answers and the new
// password together. On failure the flow stays at this step with the
// answers intact.
func (f *ResetFlow) Commit(ctx context.Context, newPassword, confirm string) error {
	if f.step != StepNewPassword {
		return fmt.Errorf("%w: a new password is not expected at this step", common.ErrorValidation)
	}
	if newPassword != confirm {
		return fmt.Errorf("%w: passwords do not match", common.ErrorValidation)
	}
	if len(newPassword) < minResetPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, minResetPasswordLength)
	}

	return f.backend.ResetPassword(ctx, f.Username, f.Answers, newPassword)
}

// Back moves one step towards the start, keeping entered data.
func (f *ResetFlow) Back() {
	if f.step > StepIdentify {
		f.step--
	}
}
