package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchValue(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("42"))
	}))
	defer ts.Close()

	c := New(ts.URL, nil)
	v, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if v != 42 {
		t.Errorf("value = %d, want 42", v)
	}
}

func TestFetchTrimsTrailingSlash(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("0"))
	}))
	defer ts.Close()

	c := New(ts.URL+"/", nil)
	if _, err := c.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotPath != "/" {
		t.Errorf("request path = %q, want \"/\"", gotPath)
	}
}

func TestIncrementPostsToRoute(t *testing.T) {
	var gotMethod, gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
	}))
	defer ts.Close()

	c := New(ts.URL, nil)
	if err := c.Increment(context.Background()); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/increment" {
		t.Errorf("request = %s %s, want POST /increment", gotMethod, gotPath)
	}
}

func TestBadStatusClassification(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	c := New(ts.URL, nil)
	err := c.Increment(context.Background())
	if err == nil {
		t.Fatal("Increment against 400 returned nil error")
	}

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error type = %T, want *RequestError", err)
	}
	if reqErr.Kind != KindBadStatus {
		t.Errorf("Kind = %v, want KindBadStatus", reqErr.Kind)
	}
	if got := reqErr.Error(); got != "BadStatus 400" {
		t.Errorf("Error() = %q, want \"BadStatus 400\"", got)
	}
}

func TestBadBodyClassification(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not-a-number"))
	}))
	defer ts.Close()

	c := New(ts.URL, nil)
	_, err := c.Fetch(context.Background())

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error type = %T, want *RequestError", err)
	}
	if reqErr.Kind != KindBadBody {
		t.Errorf("Kind = %v, want KindBadBody", reqErr.Kind)
	}
	if got := reqErr.Error(); got != "BadBody not a counter value: not-a-number" {
		t.Errorf("Error() = %q", got)
	}
}

func TestNetworkErrorClassification(t *testing.T) {
	// Closed server: connection refused.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	c := New(ts.URL, nil)
	_, err := c.Fetch(context.Background())

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error type = %T, want *RequestError", err)
	}
	if reqErr.Kind != KindNetworkError {
		t.Errorf("Kind = %v, want KindNetworkError", reqErr.Kind)
	}
	if got := reqErr.Error(); got != "NetworkError" {
		t.Errorf("Error() = %q, want \"NetworkError\"", got)
	}
}

func TestTimeoutClassification(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("0"))
	}))
	defer ts.Close()

	c := New(ts.URL, &http.Client{Timeout: 20 * time.Millisecond})
	_, err := c.Fetch(context.Background())

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error type = %T, want *RequestError", err)
	}
	if reqErr.Kind != KindTimeout {
		t.Errorf("Kind = %v, want KindTimeout", reqErr.Kind)
	}
	if got := reqErr.Error(); got != "Timeout" {
		t.Errorf("Error() = %q, want \"Timeout\"", got)
	}
}

func TestBadURLClassification(t *testing.T) {
	c := New("http://host\x00bad", nil)
	_, err := c.Fetch(context.Background())

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error type = %T, want *RequestError", err)
	}
	if reqErr.Kind != KindBadURL {
		t.Errorf("Kind = %v, want KindBadURL", reqErr.Kind)
	}
}
