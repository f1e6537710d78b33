package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHTTPProbe_Ok(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewHTTPProbe()
	result := p.Probe(context.Background(), srv.URL, time.Now().Add(2*time.Second))
	assert.Equal(t, StatusOk, result.Status)
	assert.True(t, result.LatencyValid)
}

func TestHTTPProbe_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewHTTPProbe()
	result := p.Probe(context.Background(), srv.URL, time.Now().Add(2*time.Second))
	assert.Equal(t, StatusProtocolError, result.Status)
	assert.Equal(t, 503, result.ProtocolCode)
	assert.Equal(t, "HTTP 503", result.Detail)
}

func TestHTTPProbe_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewHTTPProbe()
	result := p.Probe(context.Background(), srv.URL, time.Now().Add(20*time.Millisecond))
	assert.Equal(t, StatusTimeout, result.Status)
}

func TestHTTPProbe_Redirects(t *testing.T) {
	var final *httptest.Server
	final = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer final.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusFound)
	}))
	defer srv.Close()

	p := NewHTTPProbe()
	result := p.Probe(context.Background(), srv.URL, time.Now().Add(2*time.Second))
	assert.Equal(t, StatusOk, result.Status)
}
