package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type seen struct {
	gin string
	ctx string
}

func serve(header string) (*httptest.ResponseRecorder, seen) {
	gin.SetMode(gin.TestMode)
	var got seen
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		got = seen{gin: Value(c), ctx: FromContext(c.Request.Context())}
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(Header, header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec, got
}

func TestMiddlewareReusesIncomingID(t *testing.T) {
	rec, got := serve("abc-123")
	assert.Equal(t, seen{gin: "abc-123", ctx: "abc-123"}, got)
	assert.Equal(t, "abc-123", rec.Header().Get(Header))
}

func TestMiddlewareReplacesUnsafeIDs(t *testing.T) {
	for _, header := range []string{"", strings.Repeat("x", maxLength+1), "line\tbreak", "olá"} {
		rec, got := serve(header)
		assert.Len(t, got.gin, 36, "header %q", header)
		assert.Equal(t, got.gin, got.ctx)
		assert.Equal(t, got.gin, rec.Header().Get(Header))
	}
}

func TestFromContextOutsideRequest(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
}
