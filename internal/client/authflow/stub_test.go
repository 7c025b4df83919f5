package authflow

import (
	"context"

	"github.com/dkarlovs/tacpanel/internal/client/api"
)

// stubBackend counts calls so tests can assert which steps touch the network.
type stubBackend struct {
	firstRun    bool
	firstRunErr error

	loginRes *api.TokenResponse
	loginErr error

	setupRes *api.TokenResponse
	setupErr error

	questionsErr error
	resetErr     error

	totpSetupRes *api.TOTPSetup
	totpSetupErr error
	verifyErr    error

	calls map[string]int
}

func newStubBackend() *stubBackend {
	return &stubBackend{calls: map[string]int{}}
}

func (s *stubBackend) count(name string) { s.calls[name]++ }

func (s *stubBackend) CheckFirstRun(context.Context) (bool, error) {
	s.count("CheckFirstRun")
	return s.firstRun, s.firstRunErr
}

func (s *stubBackend) PasswordConfig(context.Context) (*api.PasswordConfig, error) {
	s.count("PasswordConfig")
	return &api.PasswordConfig{MinLength: 6}, nil
}

func (s *stubBackend) Login(_ context.Context, _, _, _ string) (*api.TokenResponse, error) {
	s.count("Login")
	return s.loginRes, s.loginErr
}

func (s *stubBackend) FirstTimeSetup(_ context.Context, _, _ string, _ [4]string) (*api.TokenResponse, error) {
	s.count("FirstTimeSetup")
	return s.setupRes, s.setupErr
}

func (s *stubBackend) SecurityQuestionsExist(context.Context, string) error {
	s.count("SecurityQuestionsExist")
	return s.questionsErr
}

func (s *stubBackend) ResetPassword(_ context.Context, _ string, _ [4]string, _ string) error {
	s.count("ResetPassword")
	return s.resetErr
}

func (s *stubBackend) TOTPSetup(context.Context, string) (*api.TOTPSetup, error) {
	s.count("TOTPSetup")
	return s.totpSetupRes, s.totpSetupErr
}

func (s *stubBackend) TOTPVerify(context.Context, string, string) error {
	s.count("TOTPVerify")
	return s.verifyErr
}

func (s *stubBackend) TOTPStatus(context.Context, string) (bool, error) {
	s.count("TOTPStatus")
	return false, nil
}
