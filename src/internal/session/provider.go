package session

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const storeContextKey = "session_store"

// Provider binds a Store to the device that sent the request.
type Provider interface {
	For(c *gin.Context) Store
}

// SlotFactory returns the slot belonging to the request's device.
type SlotFactory func(c *gin.Context) Slot

type provider struct {
	slots SlotFactory
	codec Codec
	now   Clock
}

func NewProvider(slots SlotFactory, codec Codec, now Clock) Provider {
	return &provider{slots: slots, codec: codec, now: now}
}

// For returns the request's Store, creating it on first use so the guard and
// the handlers of one request share a slot.
func (p *provider) For(c *gin.Context) Store {
	if v, ok := c.Get(storeContextKey); ok {
		if s, ok := v.(Store); ok {
			return s
		}
	}

	s := NewStore(p.slots(c), p.codec, p.now)
	c.Set(storeContextKey, s)
	return s
}

// CookieSlots keeps the record in a cookie on the device.
func CookieSlots(opts CookieOptions) SlotFactory {
	return func(c *gin.Context) Slot {
		return NewCookieSlot(c, opts)
	}
}

// RedisSlots keeps the record in redis, one key per device cookie.
func RedisSlots(client *redis.Client, opts CookieOptions, expiration time.Duration) SlotFactory {
	return func(c *gin.Context) Slot {
		return &RedisSlot{
			client:     client,
			device:     newDevice(c, opts),
			expiration: expiration,
		}
	}
}

// MemorySlots keeps the record in process memory, one slot per device cookie.
// Records do not survive a restart.
func MemorySlots(opts CookieOptions) SlotFactory {
	registry := newMemoryRegistry()
	return func(c *gin.Context) Slot {
		return &deviceMemorySlot{
			registry: registry,
			device:   newDevice(c, opts),
		}
	}
}
