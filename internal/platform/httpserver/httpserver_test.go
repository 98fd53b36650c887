package httpserver

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	srv := New(":0", http.NotFoundHandler())
	assert.Equal(t, ":0", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 30*time.Second, srv.WriteTimeout)
	assert.Nil(t, srv.ErrorLog)
}

func TestNew_Options(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	srv := New(":0", http.NotFoundHandler(),
		WithTimeouts(time.Second, 0, time.Minute),
		WithLogger(logger),
	)
	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.Equal(t, 30*time.Second, srv.WriteTimeout, "zero keeps the default")
	assert.Equal(t, time.Minute, srv.IdleTimeout)

	srv.ErrorLog.Print("tls handshake error")
	assert.Contains(t, buf.String(), "tls handshake error")
	assert.Contains(t, buf.String(), "level=WARN")
}
