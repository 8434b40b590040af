package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"blog-admin-svc/src/internal/models"

	"github.com/gin-gonic/gin"
)

// CookieSlot keeps the value in a persistent browser cookie, so the record
// is stored on the device itself. Writes made during a request are visible
// to later reads of the same request.
type CookieSlot struct {
	c       *gin.Context
	opts    CookieOptions
	pending []byte
	touched bool
}

func NewCookieSlot(c *gin.Context, opts CookieOptions) *CookieSlot {
	return &CookieSlot{c: c, opts: opts.normalize()}
}

func (s *CookieSlot) Read(_ context.Context) ([]byte, error) {
	if s.touched {
		if s.pending == nil {
			return nil, ErrSlotEmpty
		}
		return s.pending, nil
	}

	cookie, err := s.c.Request.Cookie(s.opts.Name)
	if err != nil || cookie.Value == "" {
		return nil, ErrSlotEmpty
	}

	value, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSessionRead, err)
	}
	return value, nil
}

func (s *CookieSlot) Write(_ context.Context, value []byte) error {
	if s.c.Writer.Written() {
		return fmt.Errorf("%w: response already written", models.ErrSessionWrite)
	}

	http.SetCookie(s.c.Writer, s.opts.cookie(base64.RawURLEncoding.EncodeToString(value)))
	s.pending = append([]byte(nil), value...)
	s.touched = true
	return nil
}

func (s *CookieSlot) Clear(_ context.Context) error {
	if s.c.Writer.Written() {
		return fmt.Errorf("%w: response already written", models.ErrSessionDelete)
	}

	http.SetCookie(s.c.Writer, s.opts.expired())
	s.pending = nil
	s.touched = true
	return nil
}
