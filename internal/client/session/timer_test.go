package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timerFixture struct {
	store   *MemStore
	clock   *FakeClock
	timer   *Timer
	warns   []int
	expires int
}

func newTimerFixture(t *testing.T, rec *Record) *timerFixture {
	t.Helper()
	f := &timerFixture{
		store: NewMemStore(),
		clock: NewFakeClock(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)),
	}
	if rec != nil {
		require.NoError(t, f.store.Save(rec))
	}
	f.timer = NewTimer(f.store, f.clock, time.Minute,
		func(m int) { f.warns = append(f.warns, m) },
		func() { f.expires++ },
	)
	return f
}

func TestTimer_WarnsOnceNearExpiry(t *testing.T) {
	f := newTimerFixture(t, &Record{Token: "tok", LoginAt: f0Clock(), TimeoutMinutes: 60})

	// 30 minutes in: nothing.
	f.clock.Advance(30 * time.Minute)
	f.timer.Check()
	assert.Empty(t, f.warns)

	// 54m30s in: 5m30s remaining is still above the threshold even though it
	// floors to 5 minutes.
	f.clock.Advance(24*time.Minute + 30*time.Second)
	f.timer.Check()
	assert.Empty(t, f.warns)

	// 55m in: exactly 5m remaining, warn fires with the floored value.
	f.clock.Advance(30 * time.Second)
	f.timer.Check()
	require.Equal(t, []int{5}, f.warns)

	// Further checks do not warn again.
	f.clock.Advance(time.Minute)
	f.timer.Check()
	f.timer.Check()
	assert.Equal(t, []int{5}, f.warns)
	assert.Zero(t, f.expires)
}

func TestTimer_RefreshRearmsWarning(t *testing.T) {
	f := newTimerFixture(t, &Record{Token: "tok", LoginAt: f0Clock(), TimeoutMinutes: 10})

	f.clock.Advance(6 * time.Minute)
	f.timer.Check()
	require.Len(t, f.warns, 1)

	require.NoError(t, f.timer.Refresh())

	// Fresh window: no warning right away, but again near the new expiry.
	f.timer.Check()
	assert.Len(t, f.warns, 1)

	f.clock.Advance(6 * time.Minute)
	f.timer.Check()
	assert.Len(t, f.warns, 2)
	assert.Zero(t, f.expires)
}

func TestTimer_ExpiresOnceAndClearsStore(t *testing.T) {
	f := newTimerFixture(t, &Record{Token: "tok", LoginAt: f0Clock(), TimeoutMinutes: 30})

	f.clock.Advance(31 * time.Minute)
	f.timer.Check()
	require.Equal(t, 1, f.expires)

	// Store cleared synchronously.
	rec, err := f.store.Read()
	require.NoError(t, err)
	assert.Nil(t, rec)

	// Subsequent checks stay quiet.
	f.timer.Check()
	f.timer.Check()
	assert.Equal(t, 1, f.expires)
}

func TestTimer_NewLoginAfterExpiryRearms(t *testing.T) {
	f := newTimerFixture(t, &Record{Token: "tok", LoginAt: f0Clock(), TimeoutMinutes: 30})

	f.clock.Advance(31 * time.Minute)
	f.timer.Check()
	require.Equal(t, 1, f.expires)

	require.NoError(t, f.store.Save(&Record{Token: "tok2", LoginAt: f.clock.Now(), TimeoutMinutes: 30}))

	f.clock.Advance(31 * time.Minute)
	f.timer.Check()
	assert.Equal(t, 2, f.expires)
}

func TestTimer_MissingLoginAtInitialized(t *testing.T) {
	f := newTimerFixture(t, &Record{Token: "tok", TimeoutMinutes: 30})

	f.timer.Check()

	rec, err := f.store.Read()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.LoginAt.Equal(f.clock.Now()))
	assert.Zero(t, f.expires)

	// The initialized timestamp then expires normally.
	f.clock.Advance(31 * time.Minute)
	f.timer.Check()
	assert.Equal(t, 1, f.expires)
}

func TestTimer_NoTimeoutDisablesExpiry(t *testing.T) {
	f := newTimerFixture(t, &Record{Token: "tok", LoginAt: f0Clock(), TimeoutMinutes: 0})

	f.clock.Advance(1000 * time.Hour)
	f.timer.Check()
	assert.Empty(t, f.warns)
	assert.Zero(t, f.expires)

	rec, err := f.store.Read()
	require.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestTimer_NoSessionIsQuiet(t *testing.T) {
	f := newTimerFixture(t, nil)
	f.timer.Check()
	assert.Empty(t, f.warns)
	assert.Zero(t, f.expires)
}

func TestTimer_StartRunsImmediateCheck(t *testing.T) {
	f := newTimerFixture(t, &Record{Token: "tok", LoginAt: f0Clock(), TimeoutMinutes: 30})
	f.clock.Advance(31 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The expiry fires during Start, before the first tick.
	f.timer.Start(ctx)
	assert.Equal(t, 1, f.expires)
	f.timer.Stop()
}

func TestTimer_Remaining(t *testing.T) {
	f := newTimerFixture(t, &Record{Token: "tok", LoginAt: f0Clock(), TimeoutMinutes: 60})

	f.clock.Advance(30*time.Minute + 45*time.Second)
	minutes, ok := f.timer.Remaining()
	require.True(t, ok)
	assert.Equal(t, 29, minutes)

	require.NoError(t, f.store.Clear())
	_, ok = f.timer.Remaining()
	assert.False(t, ok)
}

// f0Clock is the fixed instant timer fixtures start at.
func f0Clock() time.Time {
	return time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
}
