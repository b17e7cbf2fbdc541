// ABOUTME: Tests for the shelter admin API client
// ABOUTME: Uses httptest to mock backend responses and record outgoing requests

package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type staticTokens string

func (s staticTokens) Token() (string, bool) {
	return string(s), s != ""
}

func TestOperations_NoTokenSkipsNetwork(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx := context.Background()
	for _, c := range []*Client{New(server.URL, nil), New(server.URL, staticTokens(""))} {
		ops := map[string]func() error{
			"list":   func() error { _, err := c.GetList(ctx, "users/users", ListParams{}); return err },
			"one":    func() error { _, err := c.GetOne(ctx, "users/users", "1"); return err },
			"many":   func() error { _, err := c.GetMany(ctx, "users/users", []string{"1"}); return err },
			"create": func() error { _, err := c.Create(ctx, "users/users", Record{"name": "x"}); return err },
			"update": func() error { _, err := c.Update(ctx, "users/users", "1", Record{"name": "x"}); return err },
			"delete": func() error { _, err := c.Delete(ctx, "users/users", "1"); return err },
		}
		for name, op := range ops {
			t.Run(name, func(t *testing.T) {
				if err := op(); !errors.Is(err, ErrUnauthenticated) {
					t.Errorf("expected ErrUnauthenticated, got %v", err)
				}
			})
		}
	}

	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Errorf("expected no requests without a token, got %d", n)
	}
}

func TestOperations_AttachBearerToken(t *testing.T) {
	type seen struct {
		method string
		path   string
		auth   string
	}
	var requests []seen
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, seen{r.Method, r.URL.Path, r.Header.Get("Authorization")})
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet && r.URL.Path == "/shelters/shelters" {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`{"id": 7}`))
	}))
	defer server.Close()

	c := New(server.URL, staticTokens("secret-token"))
	ctx := context.Background()

	c.GetList(ctx, "shelters/shelters", ListParams{})
	c.GetOne(ctx, "shelters/shelters", "7")
	c.Create(ctx, "shelters/shelters", Record{"name": "North"})
	c.Update(ctx, "shelters/shelters", "7", Record{"name": "South"})
	c.Delete(ctx, "shelters/shelters", "7")

	expected := []seen{
		{http.MethodGet, "/shelters/shelters", "Bearer secret-token"},
		{http.MethodGet, "/shelters/shelters/7", "Bearer secret-token"},
		{http.MethodPost, "/shelters/shelters", "Bearer secret-token"},
		{http.MethodPut, "/shelters/shelters/7", "Bearer secret-token"},
		{http.MethodDelete, "/shelters/shelters/7", "Bearer secret-token"},
	}
	if len(requests) != len(expected) {
		t.Fatalf("expected %d requests, got %d", len(expected), len(requests))
	}
	for i, want := range expected {
		if requests[i] != want {
			t.Errorf("request %d: expected %+v, got %+v", i, want, requests[i])
		}
	}
}

func TestGetList_EncodesParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("sort"); got != `["name","DESC"]` {
			t.Errorf("unexpected sort %s", got)
		}
		if got := q.Get("range"); got != "[25,49]" {
			t.Errorf("unexpected range %s", got)
		}
		if got := q.Get("filter"); got != `{"q":"north"}` {
			t.Errorf("unexpected filter %s", got)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := New(server.URL, staticTokens("t"))
	_, err := c.GetList(context.Background(), "shelters/shelters", ListParams{
		Filter:     map[string]any{"q": "north"},
		Pagination: Pagination{Page: 2, PerPage: 25},
		Sort:       Sort{Field: "name", Order: "desc"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetList_OmitsEmptyParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("expected no query, got %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := New(server.URL, staticTokens("t"))
	if _, err := c.GetList(context.Background(), "users/users", ListParams{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetList_Total(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		body    string
		want    int
	}{
		{"content range", map[string]string{"Content-Range": "users 0-1/319"}, `[{"id":1},{"id":2}]`, 319},
		{"x total count", map[string]string{"X-Total-Count": "42"}, `[{"id":1}]`, 42},
		{"fallback to length", nil, `[{"id":1},{"id":2},{"id":3}]`, 3},
		{"unparsable header falls back", map[string]string{"Content-Range": "users 0-1/*"}, `[{"id":1},{"id":2}]`, 2},
		{"envelope total", nil, `{"data":[{"id":1}],"total":10}`, 10},
		{"envelope without total", nil, `{"data":[{"id":1},{"id":2}]}`, 2},
		{"empty body", nil, ``, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tc.headers {
					w.Header().Set(k, v)
				}
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			c := New(server.URL, staticTokens("t"))
			res, err := c.GetList(context.Background(), "users/users", ListParams{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Total != tc.want {
				t.Errorf("expected total %d, got %d", tc.want, res.Total)
			}
			if res.Data == nil {
				t.Error("expected non-nil data slice")
			}
		})
	}
}

func TestGetMany_FiltersByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filter"); got != `{"id":["1","2"]}` {
			t.Errorf("unexpected filter %s", got)
		}
		w.Write([]byte(`[{"id":1},{"id":2}]`))
	}))
	defer server.Close()

	c := New(server.URL, staticTokens("t"))
	res, err := c.GetMany(context.Background(), "users/users", []string{"1", "2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Data) != 2 {
		t.Errorf("expected 2 records, got %d", len(res.Data))
	}
}

func TestGetOne_UnwrapsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"id":"abc","name":"North"}}`))
	}))
	defer server.Close()

	c := New(server.URL, staticTokens("t"))
	res, err := c.GetOne(context.Background(), "shelters/shelters", "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Data.ID() != "abc" || res.Data["name"] != "North" {
		t.Errorf("unexpected record %v", res.Data)
	}
}

func TestGetOne_EscapesID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/blocked-paths/blocked-paths/a%2Fb" {
			t.Errorf("unexpected path %s", r.URL.EscapedPath())
		}
		w.Write([]byte(`{"id":"a/b"}`))
	}))
	defer server.Close()

	c := New(server.URL, staticTokens("t"))
	if _, err := c.GetOne(context.Background(), "blocked-paths/blocked-paths", "a/b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreate_MergesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected JSON content type, got %s", r.Header.Get("Content-Type"))
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["name"] != "North" {
			t.Errorf("expected submitted name, got %v", body)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 12}`))
	}))
	defer server.Close()

	c := New(server.URL, staticTokens("t"))
	res, err := c.Create(context.Background(), "shelters/shelters", Record{"name": "North", "capacity": 40})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Data.ID() != "12" {
		t.Errorf("expected id 12, got %q", res.Data.ID())
	}
	if res.Data["name"] != "North" {
		t.Errorf("expected submitted fields kept, got %v", res.Data)
	}
}

func TestUpdateAndDelete_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := New(server.URL, staticTokens("t"))
	upd, err := c.Update(context.Background(), "users/users", "5", Record{"name": "Ada"})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if upd.Data.ID() != "5" || upd.Data["name"] != "Ada" {
		t.Errorf("unexpected update result %v", upd.Data)
	}

	del, err := c.Delete(context.Background(), "users/users", "5")
	if err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if del.Data.ID() != "5" {
		t.Errorf("unexpected delete result %v", del.Data)
	}
}

func TestDeleteMany_StopsAtFirstFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/users/2" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := New(server.URL, staticTokens("t"))
	deleted, err := c.DeleteMany(context.Background(), "users/users", []string{"1", "2", "3"})

	var herr *HTTPError
	if !errors.As(err, &herr) || herr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
	if len(deleted) != 1 || deleted[0] != "1" {
		t.Errorf("expected only id 1 deleted, got %v", deleted)
	}
}

func TestHTTPError_Propagated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"message": "admins only"})
	}))
	defer server.Close()

	c := New(server.URL, staticTokens("t"))
	_, err := c.GetList(context.Background(), "users/users", ListParams{})

	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("expected HTTPError, got %T %v", err, err)
	}
	if herr.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", herr.StatusCode)
	}
	if herr.Message != "admins only" {
		t.Errorf("expected backend message, got %q", herr.Message)
	}
	if IsUnauthorized(err) {
		t.Error("403 should not count as unauthorized")
	}
}

func TestIsUnauthorized(t *testing.T) {
	if !IsUnauthorized(ErrUnauthenticated) {
		t.Error("expected ErrUnauthenticated to be unauthorized")
	}
	if !IsUnauthorized(&HTTPError{StatusCode: http.StatusUnauthorized}) {
		t.Error("expected 401 to be unauthorized")
	}
	if IsUnauthorized(errors.New("boom")) {
		t.Error("expected plain error not unauthorized")
	}
}

func TestHTTPError_Message(t *testing.T) {
	if got := (&HTTPError{StatusCode: 500}).Error(); got != "backend returned status 500" {
		t.Errorf("unexpected message %q", got)
	}
	if got := (&HTTPError{StatusCode: 400, Message: "bad"}).Error(); got != "backend error (400): bad" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestConnectionError(t *testing.T) {
	c := New("http://localhost:99999", staticTokens("t"))
	_, err := c.GetList(context.Background(), "users/users", ListParams{})
	if err == nil {
		t.Error("expected connection error, got nil")
	}
	if errors.Is(err, ErrUnauthenticated) {
		t.Error("connection error must not look unauthenticated")
	}
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := New(server.URL, staticTokens("t"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := c.GetList(ctx, "users/users", ListParams{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestLogin_DecodesAnyStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not send an Authorization header")
		}
		body, _ := io.ReadAll(r.Body)
		var creds LoginRequest
		json.Unmarshal(body, &creds)
		if creds.Email != "ada@example.com" || creds.Password != "pw" {
			t.Errorf("unexpected credentials %+v", creds)
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"bad credentials"}`))
	}))
	defer server.Close()

	c := New(server.URL, nil)
	resp, err := c.Login(context.Background(), "ada@example.com", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", resp.StatusCode)
	}
	if resp.User != nil || resp.Token != "" {
		t.Errorf("expected empty principal, got %+v", resp)
	}
}

func TestLogin_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"jwt","user":{"name":"Ada","role":"admin"}}`))
	}))
	defer server.Close()

	c := New(server.URL, nil)
	resp, err := c.Login(context.Background(), "ada@example.com", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Token != "jwt" || resp.User == nil || resp.User.Name != "Ada" || resp.User.Role != "admin" {
		t.Errorf("unexpected login response %+v", resp)
	}
}

func TestLogin_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer server.Close()

	c := New(server.URL, nil)
	if _, err := c.Login(context.Background(), "a", "b"); err == nil {
		t.Error("expected decode error, got nil")
	}
}

func TestRecordID(t *testing.T) {
	tests := []struct {
		rec  Record
		want string
	}{
		{Record{"id": "abc"}, "abc"},
		{Record{"id": float64(12)}, "12"},
		{Record{"id": json.Number("7")}, "7"},
		{Record{"id": true}, "true"},
		{Record{}, ""},
	}
	for _, tc := range tests {
		if got := tc.rec.ID(); got != tc.want {
			t.Errorf("ID() = %q, want %q", got, tc.want)
		}
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:3000/", nil)
	if c.BaseURL() != "http://localhost:3000" {
		t.Errorf("unexpected base URL %s", c.BaseURL())
	}
}

func TestWithTimeout_DoesNotModifySharedClient(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	c := New("http://localhost:3000", nil, WithHTTPClient(shared), WithTimeout(5*time.Second))

	if shared.Timeout != time.Minute {
		t.Errorf("expected shared client untouched, got timeout %s", shared.Timeout)
	}
	if c.httpClient == shared || c.httpClient.Timeout != 5*time.Second {
		t.Errorf("expected a copy with 5s timeout, got %s", c.httpClient.Timeout)
	}

	// Option order does not matter
	c = New("http://localhost:3000", nil, WithTimeout(5*time.Second), WithHTTPClient(shared))
	if c.httpClient.Timeout != 5*time.Second || shared.Timeout != time.Minute {
		t.Error("expected timeout applied to a copy regardless of option order")
	}
}

func TestWithHTTPClient_NilKeepsDefault(t *testing.T) {
	c := New("http://localhost:3000", nil, WithHTTPClient(nil), WithTimeout(time.Second))

	if c.httpClient == nil || c.httpClient.Timeout != time.Second {
		t.Errorf("expected default client with 1s timeout, got %+v", c.httpClient)
	}

	c = New("http://localhost:3000", nil)
	if c.httpClient.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %s", c.httpClient.Timeout)
	}
}
