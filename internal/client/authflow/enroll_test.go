package authflow

import (
	"context"
	"testing"

	"github.com/dkarlovs/tacpanel/internal/client/api"
	"github.com/dkarlovs/tacpanel/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123456", "123456"},
		{"123 456", "123456"},
		{"12a3!45678", "123456"},
		{"  1 2 3 4 5 6  ", "123456"},
		{"abc", ""},
		{"12", "12"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCode(tt.in), "input %q", tt.in)
	}
}

func TestEnrollment_BeginProvisionsOnce(t *testing.T) {
	backend := newStubBackend()
	backend.totpSetupRes = &api.TOTPSetup{Secret: "SECRET", QRCodeURL: "/api/auth/totp/qr"}

	e := NewEnrollment(backend, "tok")
	ctx := context.Background()

	require.NoError(t, e.Begin(ctx))
	assert.Equal(t, "SECRET", e.Secret)

	// Navigating back and forth must not rotate the secret.
	require.NoError(t, e.Begin(ctx))
	require.NoError(t, e.Begin(ctx))
	assert.Equal(t, 1, backend.calls["TOTPSetup"])
	assert.Equal(t, "SECRET", e.Secret)
}

func TestEnrollment_VerifyShortCodeNoNetwork(t *testing.T) {
	backend := newStubBackend()
	backend.totpSetupRes = &api.TOTPSetup{Secret: "SECRET"}

	e := NewEnrollment(backend, "tok")
	ctx := context.Background()
	require.NoError(t, e.Begin(ctx))

	e.SetCode("123")
	err := e.Verify(ctx)
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.Zero(t, backend.calls["TOTPVerify"])
}

func TestEnrollment_VerifyBeforeBegin(t *testing.T) {
	e := NewEnrollment(newStubBackend(), "tok")
	e.SetCode("123456")
	assert.ErrorIs(t, e.Verify(context.Background()), common.ErrorValidation)
}

func TestEnrollment_FailedVerifyClearsCodeKeepsSecret(t *testing.T) {
	backend := newStubBackend()
	backend.totpSetupRes = &api.TOTPSetup{Secret: "SECRET"}
	backend.verifyErr = common.ErrInvalidTOTPCode

	e := NewEnrollment(backend, "tok")
	ctx := context.Background()
	require.NoError(t, e.Begin(ctx))

	e.SetCode("12a3!45678")
	require.Equal(t, "123456", e.Code())

	err := e.Verify(ctx)
	assert.ErrorIs(t, err, common.ErrInvalidTOTPCode)
	assert.Empty(t, e.Code())
	assert.Equal(t, "SECRET", e.Secret)

	// Retry succeeds without re-provisioning.
	backend.verifyErr = nil
	e.SetCode("654321")
	require.NoError(t, e.Verify(ctx))
	assert.Equal(t, 1, backend.calls["TOTPSetup"])
}
