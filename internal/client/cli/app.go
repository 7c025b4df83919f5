// Package cli implements the interactive command-line client for the panel:
// a small REPL over the auth flows and the server management API.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dkarlovs/tacpanel/internal/client/api"
	"github.com/dkarlovs/tacpanel/internal/client/authflow"
	"github.com/dkarlovs/tacpanel/internal/client/config"
	"github.com/dkarlovs/tacpanel/internal/client/session"
	"github.com/dkarlovs/tacpanel/internal/common"
)

type App struct {
	config     *config.Config
	backend    *api.Client
	controller *authflow.Controller
	store      session.Store
	timer      *session.Timer
	reader     *bufio.Reader
	out        io.Writer

	// enrollment survives back-navigation within a single setup flow so the
	// provisioned secret is not rotated.
	enrollment *authflow.Enrollment
}

func NewApp(c *config.Config) (*App, error) {
	store, err := session.NewFileStore(c.SessionFile)
	if err != nil {
		return nil, err
	}

	backend := api.New(c.ServerBaseURL)
	clock := session.RealClock{}

	a := &App{
		config:     c,
		backend:    backend,
		controller: authflow.NewController(backend, store, clock),
		store:      store,
		reader:     bufio.NewReader(os.Stdin),
		out:        os.Stdout,
	}
	a.timer = session.NewTimer(store, clock, c.SessionCheckInterval, a.onSessionWarning, a.onSessionExpired)
	return a, nil
}

func (a *App) onSessionWarning(minutesLeft int) {
	fmt.Fprintf(a.out, "\nWarning: your session expires in %d minute(s). Type 'refresh' to extend it.\n", minutesLeft)
}

func (a *App) onSessionExpired() {
	a.controller.SessionExpired()
	// Expiry is reported once; the notice flag arbitrates between the timer
	// and a rejected request.
	if a.controller.ConsumeExpiredNotice() {
		fmt.Fprintln(a.out, "\nYour session has expired. Please log in again.")
	}
}

// reportAPIError prints the failure of an authenticated request. A rejected
// bearer token takes the same path as timer expiry: drop the session and ask
// for a fresh login, with a message distinct from a plain error.
func (a *App) reportAPIError(action string, err error) {
	if errors.Is(err, common.ErrorUnauthorized) {
		a.controller.SessionExpired()
		if a.controller.ConsumeExpiredNotice() {
			fmt.Fprintln(a.out, "Your session is no longer valid. Please log in again.")
		}
		return
	}
	fmt.Fprintf(a.out, "Could not %s: %v\n", action, err)
}

func (a *App) isLoggedIn() bool {
	return a.controller.State() == authflow.StateAuthenticated
}

// token returns the current bearer token, or "" when logged out.
func (a *App) token() string {
	rec := a.controller.Session()
	if rec == nil {
		return ""
	}
	return rec.Token
}

func (a *App) Run(ctx context.Context) {
	if err := a.controller.Bootstrap(ctx); err != nil {
		fmt.Fprintf(a.out, "Warning: could not reach the server: %v\n", err)
	}

	a.timer.Start(ctx)
	defer a.timer.Stop()

	if a.controller.State() == authflow.StateFirstRunSetup {
		fmt.Fprintln(a.out, "No administrator account exists yet.")
		_ = a.Setup(ctx)
	}

	if a.isLoggedIn() {
		a.maybeShowTour()
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

// maybeShowTour prints the first-use walkthrough. The flag survives logout,
// so the tour appears once per machine.
func (a *App) maybeShowTour() {
	if a.store.OnboardingCompleted() {
		return
	}
	fmt.Fprintln(a.out, "Welcome to the panel. A quick tour:")
	fmt.Fprintln(a.out, "  servers            list your game servers")
	fmt.Fprintln(a.out, "  create             register a new server")
	fmt.Fprintln(a.out, "  start|stop|restart <id>   control a server")
	fmt.Fprintln(a.out, "  status             show session and 2FA state")
	fmt.Fprintln(a.out, "  enroll-2fa         set up an authenticator app")
	fmt.Fprintln(a.out, "Type 'help' to see this list again.")
	if err := a.store.MarkOnboardingCompleted(); err != nil {
		fmt.Fprintf(a.out, "Warning: could not record tour completion: %v\n", err)
	}
}

func (a *App) getStatus() string {
	rec := a.controller.Session()
	if rec == nil {
		return ""
	}
	s := rec.Username
	if minutes, ok := a.timer.Remaining(); ok {
		s = fmt.Sprintf("%s %dm", s, minutes)
	}
	return fmt.Sprintf("(%s)", s)
}
