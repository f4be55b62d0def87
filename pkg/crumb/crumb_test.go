package crumb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatic(t *testing.T) {
	got, err := Static("crumb-value").Crumb(context.Background())
	if err != nil {
		t.Fatalf("Crumb() unexpected error: %v", err)
	}
	if got != "crumb-value" {
		t.Errorf("Crumb() = %q, want %q", got, "crumb-value")
	}

	if _, err := Static("").Crumb(context.Background()); err == nil {
		t.Error("Crumb() on empty Static expected error")
	}
}

func newPageServer(t *testing.T, html string, requests *int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			*requests++
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
	}))
	t.Cleanup(server.Close)
	return server
}

func newPageSource(t *testing.T, url string) *PageSource {
	t.Helper()
	src, err := NewPageSource(PageConfig{
		PageURL:  url,
		ClientID: "cid-1",
		Session:  "sess-1",
	})
	if err != nil {
		t.Fatalf("NewPageSource() unexpected error: %v", err)
	}
	return src
}

func TestNewPageSource_Validation(t *testing.T) {
	if _, err := NewPageSource(PageConfig{Session: "s"}); err == nil {
		t.Error("NewPageSource() without client id expected error")
	}
	if _, err := NewPageSource(PageConfig{ClientID: "c"}); err == nil {
		t.Error("NewPageSource() without session expected error")
	}
}

func TestPageSource_Extraction(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "data-crumb attribute",
			html: `<html><body><div id="page" data-crumb="crumb-from-attr"></div></body></html>`,
			want: "crumb-from-attr",
		},
		{
			name: "script json",
			html: `<html><head><script>var pagedata = {"crumb": "crumb-from-script"};</script></head></html>`,
			want: "crumb-from-script",
		},
		{
			name: "escaped page blob",
			html: `<html><div data-blob="{&quot;crumb&quot;:&quot;crumb-from-blob&quot;}"></div></html>`,
			want: "crumb-from-blob",
		},
		{
			name: "attribute preferred over script",
			html: `<html><div data-crumb="attr-wins"></div><script>{"crumb": "script-loses"}</script></html>`,
			want: "attr-wins",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newPageServer(t, tt.html, nil)
			src := newPageSource(t, server.URL)

			got, err := src.Crumb(context.Background())
			if err != nil {
				t.Fatalf("Crumb() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Crumb() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPageSource_NotFound(t *testing.T) {
	server := newPageServer(t, `<html><body>nothing here</body></html>`, nil)
	src := newPageSource(t, server.URL)

	_, err := src.Crumb(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Crumb() error = %v, want ErrNotFound", err)
	}
}

func TestPageSource_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	src := newPageSource(t, server.URL)
	if _, err := src.Crumb(context.Background()); err == nil {
		t.Error("Crumb() on 403 page expected error")
	}
}

func TestPageSource_CachesCrumb(t *testing.T) {
	requests := 0
	server := newPageServer(t, `<div data-crumb="cached-crumb"></div>`, &requests)
	src := newPageSource(t, server.URL)

	for i := 0; i < 3; i++ {
		got, err := src.Crumb(context.Background())
		if err != nil {
			t.Fatalf("Crumb() unexpected error: %v", err)
		}
		if got != "cached-crumb" {
			t.Errorf("Crumb() = %q, want %q", got, "cached-crumb")
		}
	}

	if requests != 1 {
		t.Errorf("page fetched %d times, want 1 (cached)", requests)
	}
}

func TestPageSource_SendsSessionCookies(t *testing.T) {
	var gotCookies map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookies = map[string]string{}
		for _, c := range r.Cookies() {
			gotCookies[c.Name] = c.Value
		}
		w.Write([]byte(`<div data-crumb="c"></div>`))
	}))
	defer server.Close()

	src, err := NewPageSource(PageConfig{
		PageURL:  server.URL,
		ClientID: "cid-1",
		Session:  "sess-1",
		Identity: "ident-1",
	})
	if err != nil {
		t.Fatalf("NewPageSource() unexpected error: %v", err)
	}
	if _, err := src.Crumb(context.Background()); err != nil {
		t.Fatalf("Crumb() unexpected error: %v", err)
	}

	expected := map[string]string{
		"client_id":    "cid-1",
		"session":      "sess-1",
		"js_logged_in": "1",
		"identity":     "ident-1",
	}
	for name, want := range expected {
		if gotCookies[name] != want {
			t.Errorf("cookie %s = %q, want %q", name, gotCookies[name], want)
		}
	}
}
