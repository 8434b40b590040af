package notify

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(cookies ...*http.Cookie) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/login", nil)
	for _, cookie := range cookies {
		c.Request.AddCookie(cookie)
	}
	return c, w
}

func TestFlash_SameRequest(t *testing.T) {
	n := NewFlashNotifier(false)
	c, _ := newTestContext()

	n.Error(c, "Invalid email or password")

	messages := n.Pop(c)
	require.Len(t, messages, 1)
	assert.Equal(t, LevelError, messages[0].Level)
	assert.Equal(t, "Invalid email or password", messages[0].Text)
	assert.Empty(t, n.Pop(c))
}

func TestFlash_SurvivesRedirect(t *testing.T) {
	n := NewFlashNotifier(false)

	first, w := newTestContext()
	n.Success(first, "Login successful")

	var carried *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == flashCookieName {
			carried = cookie
		}
	}
	require.NotNil(t, carried)

	second, _ := newTestContext(carried)
	messages := n.Pop(second)
	require.Len(t, messages, 1)
	assert.Equal(t, LevelSuccess, messages[0].Level)
}

func TestFlash_IgnoresGarbageCookie(t *testing.T) {
	n := NewFlashNotifier(false)
	c, _ := newTestContext(&http.Cookie{Name: flashCookieName, Value: "not-base64!"})

	assert.Empty(t, n.Pop(c))
}
