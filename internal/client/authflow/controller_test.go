package authflow

import (
	"context"
	"testing"
	"time"

	"github.com/dkarlovs/tacpanel/internal/client/api"
	"github.com/dkarlovs/tacpanel/internal/client/session"
	"github.com/dkarlovs/tacpanel/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newController(backend *stubBackend, store session.Store) (*Controller, *session.FakeClock) {
	clock := session.NewFakeClock(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC))
	return NewController(backend, store, clock), clock
}

func TestBootstrap_FirstRunSupersedesStoredToken(t *testing.T) {
	backend := newStubBackend()
	backend.firstRun = true

	store := session.NewMemStore()
	require.NoError(t, store.Save(&session.Record{Token: "stale", Username: "old"}))

	c, _ := newController(backend, store)
	require.NoError(t, c.Bootstrap(context.Background()))

	assert.Equal(t, StateFirstRunSetup, c.State())

	// The stale session was discarded, not kept around for later.
	rec, err := store.Read()
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestBootstrap_StoredSession(t *testing.T) {
	backend := newStubBackend()
	store := session.NewMemStore()
	require.NoError(t, store.Save(&session.Record{Token: "tok", Username: "admin"}))

	c, _ := newController(backend, store)
	require.NoError(t, c.Bootstrap(context.Background()))
	assert.Equal(t, StateAuthenticated, c.State())
}

func TestBootstrap_NoSession(t *testing.T) {
	backend := newStubBackend()
	c, _ := newController(backend, session.NewMemStore())

	require.NoError(t, c.Bootstrap(context.Background()))
	assert.Equal(t, StateUnauthenticated, c.State())
}

func TestBootstrap_BackendUnavailable(t *testing.T) {
	backend := newStubBackend()
	backend.firstRunErr = api.ErrUnavailable

	t.Run("with stored session stays authenticated", func(t *testing.T) {
		store := session.NewMemStore()
		require.NoError(t, store.Save(&session.Record{Token: "tok"}))

		c, _ := newController(backend, store)
		require.NoError(t, c.Bootstrap(context.Background()))
		assert.Equal(t, StateAuthenticated, c.State())
	})

	t.Run("without stored session reports the error", func(t *testing.T) {
		c, _ := newController(backend, session.NewMemStore())
		err := c.Bootstrap(context.Background())
		assert.ErrorIs(t, err, api.ErrUnavailable)
		assert.Equal(t, StateUnauthenticated, c.State())
	})
}

func TestLogin_Success(t *testing.T) {
	backend := newStubBackend()
	backend.loginRes = &api.TokenResponse{
		AccessToken: "tok", Username: "admin",
		RequiresTOTPSetup: true, SessionTimeoutMinutes: 60,
	}
	store := session.NewMemStore()
	c, clock := newController(backend, store)

	outcome, err := c.Login(context.Background(), "admin", "pw", "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)
	assert.Equal(t, StateAuthenticated, c.State())

	rec, err := store.Read()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "tok", rec.Token)
	assert.Equal(t, 60, rec.TimeoutMinutes)
	assert.True(t, rec.LoginAt.Equal(clock.Now()))
	assert.True(t, rec.RequiresTOTPSetup)
}

func TestLogin_Outcomes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want LoginOutcome
	}{
		{"bad credentials", common.ErrorUnauthorized, OutcomeBadCredentials},
		{"second factor required", common.ErrSecondFactorRequired, OutcomeSecondFactor},
		{"invalid second factor", common.ErrInvalidTOTPCode, OutcomeSecondFactor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newStubBackend()
			backend.loginErr = tt.err
			c, _ := newController(backend, session.NewMemStore())

			outcome, err := c.Login(context.Background(), "admin", "pw", "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, outcome)
			assert.NotEqual(t, StateAuthenticated, c.State())
		})
	}
}

func TestLogin_TransportErrorSurfaced(t *testing.T) {
	backend := newStubBackend()
	backend.loginErr = api.ErrUnavailable
	c, _ := newController(backend, session.NewMemStore())

	_, err := c.Login(context.Background(), "admin", "pw", "")
	assert.ErrorIs(t, err, api.ErrUnavailable)
}

func TestLogout_Idempotent(t *testing.T) {
	backend := newStubBackend()
	backend.loginRes = &api.TokenResponse{AccessToken: "tok", Username: "admin"}
	store := session.NewMemStore()
	c, _ := newController(backend, store)

	_, err := c.Login(context.Background(), "admin", "pw", "")
	require.NoError(t, err)

	require.NoError(t, c.Logout())
	assert.Equal(t, StateUnauthenticated, c.State())
	assert.False(t, c.ConsumeExpiredNotice())

	// A second logout changes nothing and does not fail.
	require.NoError(t, c.Logout())
	assert.Equal(t, StateUnauthenticated, c.State())
}

func TestSessionExpired_NoticeShownOnce(t *testing.T) {
	backend := newStubBackend()
	store := session.NewMemStore()
	require.NoError(t, store.Save(&session.Record{Token: "tok"}))
	c, _ := newController(backend, store)

	c.SessionExpired()
	assert.Equal(t, StateUnauthenticated, c.State())

	rec, err := store.Read()
	require.NoError(t, err)
	assert.Nil(t, rec)

	assert.True(t, c.ConsumeExpiredNotice())
	assert.False(t, c.ConsumeExpiredNotice())
}

func TestLoginClearsExpiredNotice(t *testing.T) {
	backend := newStubBackend()
	backend.loginRes = &api.TokenResponse{AccessToken: "tok", Username: "admin"}
	c, _ := newController(backend, session.NewMemStore())

	c.SessionExpired()
	_, err := c.Login(context.Background(), "admin", "pw", "")
	require.NoError(t, err)
	assert.False(t, c.ConsumeExpiredNotice())
}

func TestFirstTimeSetup(t *testing.T) {
	backend := newStubBackend()
	backend.setupRes = &api.TokenResponse{AccessToken: "tok", Username: "admin", SessionTimeoutMinutes: 60}
	store := session.NewMemStore()
	c, _ := newController(backend, store)

	err := c.FirstTimeSetup(context.Background(), "admin", "password1", [4]string{"a", "b", "c", "d"})
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, c.State())

	rec, err := store.Read()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "admin", rec.Username)
}

func TestEnrollmentOffer(t *testing.T) {
	backend := newStubBackend()
	backend.loginRes = &api.TokenResponse{AccessToken: "tok", Username: "admin", RequiresTOTPSetup: true}
	c, _ := newController(backend, session.NewMemStore())

	_, err := c.Login(context.Background(), "admin", "pw", "")
	require.NoError(t, err)
	assert.True(t, c.ShouldOfferEnrollment())

	// Skipping is remembered for the process, even across logins.
	c.SkipEnrollment()
	assert.False(t, c.ShouldOfferEnrollment())

	_, err = c.Login(context.Background(), "admin", "pw", "")
	require.NoError(t, err)
	assert.False(t, c.ShouldOfferEnrollment())
}

func TestEnrollmentDone(t *testing.T) {
	backend := newStubBackend()
	backend.loginRes = &api.TokenResponse{AccessToken: "tok", Username: "admin", RequiresTOTPSetup: true}
	store := session.NewMemStore()
	c, _ := newController(backend, store)

	_, err := c.Login(context.Background(), "admin", "pw", "")
	require.NoError(t, err)

	c.EnrollmentDone()
	assert.False(t, c.ShouldOfferEnrollment())

	rec, err := store.Read()
	require.NoError(t, err)
	assert.False(t, rec.RequiresTOTPSetup)
}
