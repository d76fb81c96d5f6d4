package wunderground

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"piweather/internal/types"
)

func reading() types.Reading {
	return types.Reading{
		TempF:            71.26,
		BlendedDewPointF: 50.4,
		GPIOHumidity:     45,
		PressureInHg:     29.92,
	}
}

func TestQuery(t *testing.T) {
	c := NewClient("http://example.invalid/update.php", "KXX1", "secret", time.Second)
	q := c.Query(reading())

	want := map[string]string{
		"action":   "updateraw",
		"ID":       "KXX1",
		"PASSWORD": "secret",
		"dateutc":  "now",
		"tempf":    "71.3",
		"dewPtF":   "50.4",
		"humidity": "45",
		"baromin":  "29.9",
	}
	if len(q) != len(want) {
		t.Errorf("query has %d params, want %d: %v", len(q), len(want), q)
	}
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestUpload_Success(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		got = r.URL.Query()
		_, _ = w.Write([]byte("success\n"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/weatherstation/updateweatherstation.php", "KXX1", "secret", time.Second)
	res, err := c.Upload(context.Background(), reading())
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.StatusCode != http.StatusOK || res.Body != "success" {
		t.Errorf("result = %+v", res)
	}
	if got.Get("action") != "updateraw" || got.Get("tempf") != "71.3" {
		t.Errorf("server saw %v", got)
	}
}

func TestUpload_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "INVALIDPASSWORDID", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "KXX1", "wrong", time.Second)
	res, err := c.Upload(context.Background(), reading())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusUnauthorized || res.Body != "INVALIDPASSWORDID" {
		t.Errorf("status = %d body = %q", se.StatusCode, res.Body)
	}
}

func TestUpload_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, "KXX1", "secret", 50*time.Millisecond)
	if _, err := c.Upload(context.Background(), reading()); err == nil {
		t.Fatal("Upload() error = nil, want timeout")
	}
}

func TestUpload_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	c := NewClient(endpoint, "KXX1", "secret", time.Second)
	if _, err := c.Upload(context.Background(), reading()); err == nil {
		t.Fatal("Upload() error = nil, want connection error")
	}
}
