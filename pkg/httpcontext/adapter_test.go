package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bearer", header: "Bearer abc123", want: "abc123"},
		{name: "lowercase scheme", header: "bearer abc123", want: "abc123"},
		{name: "missing", header: ""},
		{name: "raw token", header: "abc123"},
		{name: "other scheme", header: "Basic dXNlcjpwdw=="},
		{name: "empty bearer", header: "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctx fasthttp.RequestCtx
			if tt.header != "" {
				ctx.Request.Header.Set(fasthttp.HeaderAuthorization, tt.header)
			}
			assert.Equal(t, tt.want, BearerToken(&ctx))
		})
	}
}

func TestAttach_CarriesRequestMetadata(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.Set("X-Request-ID", "req-1")
	SetIdentity(&ctx, "user-1")

	stdCtx, cancel := NewAdapter(time.Second).Attach(&ctx)
	defer cancel()

	deadline, ok := stdCtx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 100*time.Millisecond)
	assert.Equal(t, "user-1", stdCtx.Value(KeyIdentity))
	assert.Equal(t, "req-1", string(ctx.Response.Header.Peek("X-Request-ID")))
}

func TestRequestID_GeneratedOnce(t *testing.T) {
	var ctx fasthttp.RequestCtx
	first := RequestID(&ctx)
	assert.NotEmpty(t, first)
	assert.Equal(t, first, RequestID(&ctx))
}
