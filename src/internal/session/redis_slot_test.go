package session

import (
	"context"
	"net/http"
	"testing"
	"time"

	"blog-admin-svc/src/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const redisSlotExpiration = 30 * 24 * time.Hour

type redisFixture struct {
	server   *miniredis.Miniredis
	client   *redis.Client
	clock    *fakeClock
	provider Provider
}

func newRedisFixture(t *testing.T) *redisFixture {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := newFakeClock()
	return &redisFixture{
		server:   server,
		client:   client,
		clock:    clock,
		provider: NewProvider(RedisSlots(client, CookieOptions{MaxAge: 3600}, redisSlotExpiration), JSONCodec{}, clock.Now),
	}
}

func deviceKey(id string) string {
	return "session:device:" + id
}

// =============================================================================
// RedisSlot
// =============================================================================

func TestRedisSlot_GrantStoresRecordUnderDeviceKey(t *testing.T) {
	f := newRedisFixture(t)
	c, w := newTestContext()

	require.NoError(t, f.provider.For(c).Grant(context.Background()))

	device := responseCookie(w, DeviceCookieName)
	require.NotNil(t, device)
	assert.Equal(t, 3600, device.MaxAge)
	assert.Nil(t, responseCookie(w, SlotKey), "the record itself stays in redis")

	stored, err := f.server.Get(deviceKey(device.Value))
	require.NoError(t, err)
	assert.JSONEq(t, `{"loggedIn":true,"timestamp":1709294400000}`, stored)
	assert.Equal(t, redisSlotExpiration, f.server.TTL(deviceKey(device.Value)))
}

func TestRedisSlot_Lifecycle(t *testing.T) {
	f := newRedisFixture(t)
	ctx := context.Background()

	first, w := newTestContext()
	require.NoError(t, f.provider.For(first).Grant(ctx))
	device := responseCookie(w, DeviceCookieName)
	require.NotNil(t, device)
	key := deviceKey(device.Value)

	second, w2 := newTestContext(&http.Cookie{Name: DeviceCookieName, Value: device.Value})
	assert.True(t, f.provider.For(second).IsValid(ctx))
	assert.Nil(t, responseCookie(w2, DeviceCookieName), "a known device is not issued a new id")

	f.clock.Advance(TTL)
	third, _ := newTestContext(&http.Cookie{Name: DeviceCookieName, Value: device.Value})
	assert.False(t, f.provider.For(third).IsValid(ctx))
	assert.False(t, f.server.Exists(key), "expired record is deleted")

	fourth, _ := newTestContext(&http.Cookie{Name: DeviceCookieName, Value: device.Value})
	assert.False(t, f.provider.For(fourth).IsValid(ctx))
}

func TestRedisSlot_DeviceCookieReusedOnNextWrite(t *testing.T) {
	f := newRedisFixture(t)
	ctx := context.Background()

	first, w := newTestContext()
	require.NoError(t, f.provider.For(first).Grant(ctx))
	device := responseCookie(w, DeviceCookieName)
	require.NotNil(t, device)

	f.clock.Advance(time.Hour)
	second, w2 := newTestContext(&http.Cookie{Name: DeviceCookieName, Value: device.Value})
	require.NoError(t, f.provider.For(second).Grant(ctx))

	assert.Nil(t, responseCookie(w2, DeviceCookieName))
	assert.Equal(t, []string{deviceKey(device.Value)}, f.server.Keys())

	stored, err := f.server.Get(deviceKey(device.Value))
	require.NoError(t, err)
	assert.JSONEq(t, `{"loggedIn":true,"timestamp":1709298000000}`, stored)
}

func TestRedisSlot_DevicesAreIsolated(t *testing.T) {
	f := newRedisFixture(t)
	ctx := context.Background()

	first, _ := newTestContext()
	require.NoError(t, f.provider.For(first).Grant(ctx))

	other, w := newTestContext()
	assert.False(t, f.provider.For(other).IsValid(ctx))
	assert.Nil(t, responseCookie(w, DeviceCookieName), "reads never issue a device id")
}

func TestRedisSlot_MissingKeyIsEmpty(t *testing.T) {
	f := newRedisFixture(t)
	c, _ := newTestContext(&http.Cookie{Name: DeviceCookieName, Value: "0b7e5b7e-2d1c-4c52-9a3e-1f1f3f1c2b9a"})
	slot := RedisSlots(f.client, CookieOptions{}, redisSlotExpiration)(c)

	_, err := slot.Read(context.Background())
	assert.ErrorIs(t, err, ErrSlotEmpty)
}

func TestRedisSlot_InvalidDeviceCookieIgnored(t *testing.T) {
	f := newRedisFixture(t)
	ctx := context.Background()
	f.server.Set(deviceKey("not-a-uuid"), `{"loggedIn":true,"timestamp":1709294400000}`)

	c, w := newTestContext(&http.Cookie{Name: DeviceCookieName, Value: "not-a-uuid"})
	store := f.provider.For(c)
	assert.False(t, store.IsValid(ctx))

	require.NoError(t, store.Grant(ctx))
	device := responseCookie(w, DeviceCookieName)
	require.NotNil(t, device)
	assert.NotEqual(t, "not-a-uuid", device.Value)
	assert.True(t, f.server.Exists(deviceKey(device.Value)))
}

func TestRedisSlot_ClearWithoutDeviceIsNoop(t *testing.T) {
	f := newRedisFixture(t)
	f.server.Set(deviceKey("0b7e5b7e-2d1c-4c52-9a3e-1f1f3f1c2b9a"), "x")

	c, w := newTestContext()
	require.NoError(t, f.provider.For(c).Revoke(context.Background()))

	assert.Nil(t, responseCookie(w, DeviceCookieName))
	assert.Len(t, f.server.Keys(), 1)
}

func TestRedisSlot_RevokeDeletesKey(t *testing.T) {
	f := newRedisFixture(t)
	ctx := context.Background()

	first, w := newTestContext()
	require.NoError(t, f.provider.For(first).Grant(ctx))
	device := responseCookie(w, DeviceCookieName)
	require.NotNil(t, device)

	second, _ := newTestContext(&http.Cookie{Name: DeviceCookieName, Value: device.Value})
	require.NoError(t, f.provider.For(second).Revoke(ctx))
	assert.False(t, f.server.Exists(deviceKey(device.Value)))
}

func TestRedisSlot_MalformedRecordDeleted(t *testing.T) {
	f := newRedisFixture(t)
	id := "0b7e5b7e-2d1c-4c52-9a3e-1f1f3f1c2b9a"
	f.server.Set(deviceKey(id), `{"loggedIn":true}`)

	c, _ := newTestContext(&http.Cookie{Name: DeviceCookieName, Value: id})
	assert.False(t, f.provider.For(c).IsValid(context.Background()))
	assert.False(t, f.server.Exists(deviceKey(id)))
}

func TestRedisSlot_ReadFault(t *testing.T) {
	f := newRedisFixture(t)
	id := "0b7e5b7e-2d1c-4c52-9a3e-1f1f3f1c2b9a"
	f.server.Set(deviceKey(id), `{"loggedIn":true,"timestamp":1709294400000}`)
	f.server.SetError("ERR injected read fault")

	c, _ := newTestContext(&http.Cookie{Name: DeviceCookieName, Value: id})
	slot := RedisSlots(f.client, CookieOptions{}, redisSlotExpiration)(c)

	_, err := slot.Read(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrRedisGet)
	assert.NotErrorIs(t, err, ErrSlotEmpty)

	// The store reports false and swallows the failed cleanup.
	store := NewStore(slot, JSONCodec{}, f.clock.Now)
	assert.False(t, store.IsValid(context.Background()))

	f.server.SetError("")
	assert.True(t, f.server.Exists(deviceKey(id)), "cleanup failed while redis was down")
}

func TestRedisSlot_WriteFaultPropagates(t *testing.T) {
	f := newRedisFixture(t)
	f.server.SetError("ERR injected write fault")

	c, _ := newTestContext()
	err := f.provider.For(c).Grant(context.Background())
	assert.ErrorIs(t, err, models.ErrRedisSet)
}
