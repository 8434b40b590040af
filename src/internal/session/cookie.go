package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DeviceCookieName identifies the browser for server-side slot backends.
const DeviceCookieName = "device_id"

// CookieOptions defines how slot and device cookies are issued.
type CookieOptions struct {
	Name     string
	Path     string
	MaxAge   int
	Secure   bool
	SameSite http.SameSite
}

// normalize fills in defaults for unset fields.
func (o CookieOptions) normalize() CookieOptions {
	if o.Name == "" {
		o.Name = SlotKey
	}
	if o.Path == "" {
		o.Path = "/"
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

func (o CookieOptions) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     o.Name,
		Value:    value,
		Path:     o.Path,
		MaxAge:   o.MaxAge,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	}
}

func (o CookieOptions) expired() *http.Cookie {
	c := o.cookie("")
	c.MaxAge = -1
	return c
}

// device reads or issues the device id cookie for one request.
type device struct {
	c      *gin.Context
	opts   CookieOptions
	issued string
}

func newDevice(c *gin.Context, opts CookieOptions) *device {
	opts.Name = DeviceCookieName
	return &device{c: c, opts: opts.normalize()}
}

// id returns the device id. When none is present and create is set,
// a new one is issued on the response.
func (d *device) id(create bool) (string, bool) {
	if d.issued != "" {
		return d.issued, true
	}

	if cookie, err := d.c.Request.Cookie(DeviceCookieName); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			return cookie.Value, true
		}
	}

	if !create {
		return "", false
	}

	d.issued = uuid.NewString()
	http.SetCookie(d.c.Writer, d.opts.cookie(d.issued))
	return d.issued, true
}
