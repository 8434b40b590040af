package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

// countingSlot wraps a MemorySlot and records mutations.
type countingSlot struct {
	*MemorySlot
	writes   int
	clears   int
	readErr  error
	writeErr error
}

func newCountingSlot() *countingSlot {
	return &countingSlot{MemorySlot: NewMemorySlot()}
}

func (s *countingSlot) Read(ctx context.Context) ([]byte, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.MemorySlot.Read(ctx)
}

func (s *countingSlot) Write(ctx context.Context, value []byte) error {
	s.writes++
	if s.writeErr != nil {
		return s.writeErr
	}
	return s.MemorySlot.Write(ctx, value)
}

func (s *countingSlot) Clear(ctx context.Context) error {
	s.clears++
	return s.MemorySlot.Clear(ctx)
}

func (s *countingSlot) present() bool {
	_, err := s.MemorySlot.Read(context.Background())
	return err == nil
}

func seed(t *testing.T, slot Slot, record Record) {
	t.Helper()
	data, err := JSONCodec{}.Encode(record)
	require.NoError(t, err)
	require.NoError(t, slot.Write(context.Background(), data))
}

// =============================================================================
// IsValid
// =============================================================================

func TestIsValid_ByRecordAge(t *testing.T) {
	tests := []struct {
		name  string
		age   time.Duration
		valid bool
	}{
		{name: "just issued", age: 0, valid: true},
		{name: "one hour old", age: time.Hour, valid: true},
		{name: "one millisecond before expiry", age: TTL - time.Millisecond, valid: true},
		{name: "exactly at ttl", age: TTL, valid: false},
		{name: "two days old", age: 48 * time.Hour, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			clock := newFakeClock()
			slot := newCountingSlot()
			seed(t, slot.MemorySlot, Record{Authorized: true, IssuedAt: clock.Now().Add(-tt.age)})

			store := NewStore(slot, JSONCodec{}, clock.Now)

			assert.Equal(t, tt.valid, store.IsValid(ctx))
			assert.Equal(t, tt.valid, slot.present(), "expired records must be deleted")
		})
	}
}

func TestIsValid_MissingRecord_NoMutation(t *testing.T) {
	slot := newCountingSlot()
	store := NewStore(slot, JSONCodec{}, newFakeClock().Now)

	assert.False(t, store.IsValid(context.Background()))
	assert.Equal(t, 0, slot.writes)
	assert.Equal(t, 0, slot.clears)
}

func TestIsValid_MalformedRecord_Deleted(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "{not-json"},
		{name: "json null", raw: "null"},
		{name: "wrong types", raw: `{"loggedIn":"yes","timestamp":"today"}`},
		{name: "missing timestamp", raw: `{"loggedIn":true}`},
		{name: "missing flag", raw: `{"timestamp":1700000000000}`},
		{name: "array", raw: `[true, 1700000000000]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			slot := newCountingSlot()
			require.NoError(t, slot.MemorySlot.Write(ctx, []byte(tt.raw)))

			store := NewStore(slot, JSONCodec{}, newFakeClock().Now)

			assert.False(t, store.IsValid(ctx))
			assert.False(t, slot.present())
			assert.Equal(t, 1, slot.clears)
		})
	}
}

func TestIsValid_NotAuthorized_KeepsRecord(t *testing.T) {
	clock := newFakeClock()
	slot := newCountingSlot()
	seed(t, slot.MemorySlot, Record{Authorized: false, IssuedAt: clock.Now()})

	store := NewStore(slot, JSONCodec{}, clock.Now)

	assert.False(t, store.IsValid(context.Background()))
	assert.True(t, slot.present())
	assert.Equal(t, 0, slot.clears)
}

func TestIsValid_ReadFault_DeletesAndReturnsFalse(t *testing.T) {
	slot := newCountingSlot()
	slot.readErr = errors.New("storage disabled")

	store := NewStore(slot, JSONCodec{}, newFakeClock().Now)

	assert.False(t, store.IsValid(context.Background()))
	assert.Equal(t, 1, slot.clears)
}

// =============================================================================
// Grant / Revoke
// =============================================================================

func TestGrant_ThenIsValid(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemorySlot(), JSONCodec{}, newFakeClock().Now)

	require.NoError(t, store.Grant(ctx))
	assert.True(t, store.IsValid(ctx))
}

func TestGrant_OverwritesPriorRecord(t *testing.T) {
	tests := []struct {
		name  string
		prior string
	}{
		{name: "expired", prior: `{"loggedIn":true,"timestamp":0}`},
		{name: "not authorized", prior: `{"loggedIn":false,"timestamp":0}`},
		{name: "garbage", prior: `%%%`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			slot := NewMemorySlot()
			require.NoError(t, slot.Write(ctx, []byte(tt.prior)))

			store := NewStore(slot, JSONCodec{}, newFakeClock().Now)

			require.NoError(t, store.Grant(ctx))
			assert.True(t, store.IsValid(ctx))
		})
	}
}

func TestGrant_Twice_UpdatesIssuedAt(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	slot := NewMemorySlot()
	store := NewStore(slot, JSONCodec{}, clock.Now)

	require.NoError(t, store.Grant(ctx))
	clock.Advance(10 * time.Hour)
	require.NoError(t, store.Grant(ctx))

	data, err := slot.Read(ctx)
	require.NoError(t, err)
	record, err := JSONCodec{}.Decode(data)
	require.NoError(t, err)

	assert.True(t, record.Authorized)
	assert.Equal(t, clock.Now().UnixMilli(), record.IssuedAt.UnixMilli())

	// Valid for a full TTL from the second grant.
	clock.Advance(20 * time.Hour)
	assert.True(t, store.IsValid(ctx))
}

func TestGrant_WriteFault_Propagates(t *testing.T) {
	slot := newCountingSlot()
	slot.writeErr = errors.New("quota exceeded")

	store := NewStore(slot, JSONCodec{}, newFakeClock().Now)

	err := store.Grant(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, slot.writeErr)
}

func TestRevoke_DeletesRecord(t *testing.T) {
	ctx := context.Background()
	slot := newCountingSlot()
	store := NewStore(slot, JSONCodec{}, newFakeClock().Now)

	require.NoError(t, store.Grant(ctx))
	require.NoError(t, store.Revoke(ctx))

	assert.False(t, slot.present())
	assert.False(t, store.IsValid(ctx))
}

func TestRevoke_WithoutRecord(t *testing.T) {
	store := NewStore(NewMemorySlot(), JSONCodec{}, newFakeClock().Now)
	assert.NoError(t, store.Revoke(context.Background()))
}

// =============================================================================
// Lifecycle
// =============================================================================

func TestLifecycle_LazyExpiry(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	slot := newCountingSlot()
	store := NewStore(slot, JSONCodec{}, clock.Now)

	require.NoError(t, store.Grant(ctx))

	clock.Advance(23*time.Hour + 59*time.Minute)
	assert.True(t, store.IsValid(ctx))

	// Nothing happens until the record is read again.
	clock.Advance(2 * time.Minute)
	assert.True(t, slot.present())
	assert.False(t, store.IsValid(ctx))

	clock.Advance(time.Minute)
	assert.False(t, slot.present())
	assert.False(t, store.IsValid(ctx))
}
