package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientInjectsDefaultHeaders(t *testing.T) {
	var gotUA, gotXRW string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotXRW = r.Header.Get("X-Requested-With")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(5*time.Second, "eodscraper-test/1.0")
	c.Headers.Set("X-Requested-With", "XMLHttpRequest")

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	_ = resp.Body.Close()

	if gotUA != "eodscraper-test/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotXRW != "XMLHttpRequest" {
		t.Errorf("X-Requested-With = %q", gotXRW)
	}
}

func TestClientKeepsCallerHeaders(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c := New(5*time.Second, "default-agent")
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("User-Agent", "caller-agent")
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	_ = resp.Body.Close()

	if gotUA != "caller-agent" {
		t.Errorf("User-Agent = %q, want caller-agent", gotUA)
	}
}
