// Package authflow drives the client's authentication lifecycle: bootstrap
// (first-run detection), login with an optional second factor, logout,
// session expiry, TOTP enrollment, and security-question password recovery.
package authflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkarlovs/tacpanel/internal/client/api"
	"github.com/dkarlovs/tacpanel/internal/client/session"
	"github.com/dkarlovs/tacpanel/internal/common"
)

// Backend is the slice of the API client the flows depend on.
type Backend interface {
	CheckFirstRun(ctx context.Context) (bool, error)
	PasswordConfig(ctx context.Context) (*api.PasswordConfig, error)
	Login(ctx context.Context, username, password, totpCode string) (*api.TokenResponse, error)
	FirstTimeSetup(ctx context.Context, username, password string, answers [4]string) (*api.TokenResponse, error)
	SecurityQuestionsExist(ctx context.Context, username string) error
	ResetPassword(ctx context.Context, username string, answers [4]string, newPassword string) error
	TOTPSetup(ctx context.Context, token string) (*api.TOTPSetup, error)
	TOTPVerify(ctx context.Context, token, code string) error
	TOTPStatus(ctx context.Context, token string) (bool, error)
}

// State is the top-level screen the client should present.
type State int

const (
	StateLoading State = iota
	StateFirstRunSetup
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateFirstRunSetup:
		return "first-run-setup"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// LoginOutcome classifies a login attempt for the UI.
type LoginOutcome int

const (
	// OutcomeSuccess means the session is established.
	OutcomeSuccess LoginOutcome = iota
	// OutcomeBadCredentials means username or password was rejected.
	OutcomeBadCredentials
	// OutcomeSecondFactor means credentials were accepted but a valid TOTP
	// code is still needed. The password is retained by the caller so the
	// user only enters the code.
	OutcomeSecondFactor
)

// Controller owns the top-level auth state machine.
type Controller struct {
	backend Backend
	store   session.Store
	clock   session.Clock

	state         State
	expiredNotice bool
	totpSkipped   bool
}

func NewController(backend Backend, store session.Store, clock session.Clock) *Controller {
	return &Controller{
		backend: backend,
		store:   store,
		clock:   clock,
		state:   StateLoading,
	}
}

func (c *Controller) State() State { return c.state }

// Session returns the current record, or nil when unauthenticated.
func (c *Controller) Session() *session.Record {
	if c.state != StateAuthenticated {
		return nil
	}
	rec, err := c.store.Read()
	if err != nil {
		return nil
	}
	return rec
}

// Bootstrap decides the initial state. First-run setup takes precedence over
// any stored token: a wiped backend invalidates old sessions, so the stale
// record is discarded before entering setup.
func (c *Controller) Bootstrap(ctx context.Context) error {
	c.state = StateLoading

	firstRun, err := c.backend.CheckFirstRun(ctx)
	if err != nil {
		// Unreachable backend: fall through to the stored session if there
		// is one, otherwise show login.
		if errors.Is(err, api.ErrUnavailable) {
			if rec, rerr := c.store.Read(); rerr == nil && rec != nil {
				c.state = StateAuthenticated
				return nil
			}
			c.state = StateUnauthenticated
			return err
		}
		c.state = StateUnauthenticated
		return err
	}

	if firstRun {
		_ = c.store.Clear()
		c.state = StateFirstRunSetup
		return nil
	}

	rec, err := c.store.Read()
	if err == nil && rec != nil {
		c.state = StateAuthenticated
		return nil
	}
	c.state = StateUnauthenticated
	return nil
}

// Login attempts authentication. Second-factor outcomes (missing or invalid
// code) are reported as OutcomeSecondFactor, not as bad credentials.
func (c *Controller) Login(ctx context.Context, username, password, totpCode string) (LoginOutcome, error) {
	res, err := c.backend.Login(ctx, username, password, totpCode)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrSecondFactorRequired), errors.Is(err, common.ErrInvalidTOTPCode):
			return OutcomeSecondFactor, nil
		case errors.Is(err, common.ErrorUnauthorized):
			return OutcomeBadCredentials, nil
		default:
			return OutcomeBadCredentials, err
		}
	}

	return OutcomeSuccess, c.establish(res)
}

// FirstTimeSetup creates the initial admin account and establishes the
// session in one step.
func (c *Controller) FirstTimeSetup(ctx context.Context, username, password string, answers [4]string) error {
	res, err := c.backend.FirstTimeSetup(ctx, username, password, answers)
	if err != nil {
		return err
	}
	return c.establish(res)
}

func (c *Controller) establish(res *api.TokenResponse) error {
	rec := &session.Record{
		Token:             res.AccessToken,
		Username:          res.Username,
		LoginAt:           c.clock.Now(),
		TimeoutMinutes:    res.SessionTimeoutMinutes,
		RequiresTOTPSetup: res.RequiresTOTPSetup,
	}
	if err := c.store.Save(rec); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	c.state = StateAuthenticated
	c.expiredNotice = false
	return nil
}

// Logout clears the session. Calling it while already logged out is a no-op.
func (c *Controller) Logout() error {
	err := c.store.Clear()
	c.state = StateUnauthenticated
	c.expiredNotice = false
	return err
}

// SessionExpired transitions to the login state with the expiry notice set.
// The timer clears the store before invoking this, but the clear here keeps
// the transition safe when called directly.
func (c *Controller) SessionExpired() {
	_ = c.store.Clear()
	c.state = StateUnauthenticated
	c.expiredNotice = true
}

// ConsumeExpiredNotice reports whether the last transition to the login
// state was caused by expiry, and resets the flag. The notice is shown once.
func (c *Controller) ConsumeExpiredNotice() bool {
	notice := c.expiredNotice
	c.expiredNotice = false
	return notice
}

// ShouldOfferEnrollment reports whether the UI should push TOTP enrollment
// after login. A skip is remembered for the lifetime of the process only.
func (c *Controller) ShouldOfferEnrollment() bool {
	if c.totpSkipped {
		return false
	}
	rec := c.Session()
	return rec != nil && rec.RequiresTOTPSetup
}

// SkipEnrollment suppresses further enrollment prompts for this process.
func (c *Controller) SkipEnrollment() { c.totpSkipped = true }

// EnrollmentDone marks the session as no longer needing setup.
func (c *Controller) EnrollmentDone() {
	rec, err := c.store.Read()
	if err != nil || rec == nil {
		return
	}
	rec.RequiresTOTPSetup = false
	_ = c.store.Save(rec)
}
