// Package notify delivers short user-visible messages (toasts) to rendered pages.
package notify

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	flashCookieName = "flash"
	flashContextKey = "flash_messages"
)

// Level of a message.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Message is one notification.
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Notifier is fire-and-forget: it never reports failures to the caller.
type Notifier interface {
	Success(c *gin.Context, text string)
	Error(c *gin.Context, text string)
	// Pop returns pending messages for the current render and clears them.
	Pop(c *gin.Context) []Message
}

// FlashNotifier keeps messages in the request context for the current render
// and in a short-lived cookie so they survive one redirect.
type FlashNotifier struct {
	secure bool
}

func NewFlashNotifier(secure bool) *FlashNotifier {
	return &FlashNotifier{secure: secure}
}

func (n *FlashNotifier) Success(c *gin.Context, text string) {
	n.add(c, Message{Level: LevelSuccess, Text: text})
}

func (n *FlashNotifier) Error(c *gin.Context, text string) {
	n.add(c, Message{Level: LevelError, Text: text})
}

func (n *FlashNotifier) Pop(c *gin.Context) []Message {
	messages := pending(c)
	carriedCookie := len(messages) > 0

	if cookie, err := c.Request.Cookie(flashCookieName); err == nil {
		if carried, ok := decode(cookie.Value); ok {
			messages = append(carried, messages...)
		}
		carriedCookie = true
	}

	if carriedCookie {
		n.setCookie(c, "", -1)
	}

	c.Set(flashContextKey, []Message(nil))
	return messages
}

func (n *FlashNotifier) add(c *gin.Context, message Message) {
	messages := append(pending(c), message)
	c.Set(flashContextKey, messages)

	data, err := json.Marshal(messages)
	if err != nil {
		logrus.WithError(err).Warn("Failed to encode flash messages")
		return
	}
	n.setCookie(c, base64.RawURLEncoding.EncodeToString(data), 60)
}

func (n *FlashNotifier) setCookie(c *gin.Context, value string, maxAge int) {
	if c.Writer.Written() {
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   n.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func pending(c *gin.Context) []Message {
	if v, ok := c.Get(flashContextKey); ok {
		if messages, ok := v.([]Message); ok {
			return messages
		}
	}
	return nil
}

func decode(value string) ([]Message, bool) {
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, false
	}
	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, false
	}
	return messages, true
}
