package httpwire_test

import (
	"testing"

	"github.com/Garcia6l20/g6-web/pkg/httpwire"
	"github.com/google/go-cmp/cmp"
)

func TestHeadersCaseInsensitiveLookup(t *testing.T) {
	h := httpwire.NewHeaders()
	h.Set("Content-Type", "text/plain")

	if got, ok := h.Get("content-type"); !ok || got != "text/plain" {
		t.Errorf("Get(\"content-type\") = %q, %v, want %q, true", got, ok, "text/plain")
	}
	if got, ok := h.Get("CONTENT-TYPE"); !ok || got != "text/plain" {
		t.Errorf("Get(\"CONTENT-TYPE\") = %q, %v, want %q, true", got, ok, "text/plain")
	}
}

func TestHeadersMultiValueAndOrder(t *testing.T) {
	h := httpwire.NewHeaders()
	h.Add("Set-Cookie", "a=1")
	h.Add("X-Trace", "1")
	h.Add("Set-Cookie", "b=2")

	want := []httpwire.Entry{
		{Field: "Set-Cookie", Value: "a=1"},
		{Field: "X-Trace", Value: "1"},
		{Field: "Set-Cookie", Value: "b=2"},
	}
	got := h.Entries()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}

	values := h.Values("set-cookie")
	wantValues := []string{"a=1", "b=2"}
	if diff := cmp.Diff(wantValues, values); diff != "" {
		t.Errorf("Values(\"set-cookie\") mismatch (-want +got):\n%s", diff)
	}
}

func TestHeadersDel(t *testing.T) {
	h := httpwire.NewHeaders()
	h.Set("X-A", "1")
	h.Set("X-B", "2")
	h.Del("x-a")

	if h.Has("X-A") {
		t.Error("Has(\"X-A\") = true after Del, want false")
	}
	if !h.Has("X-B") {
		t.Error("Has(\"X-B\") = false, want true")
	}
}

func TestCookiesParsing(t *testing.T) {
	h := httpwire.NewHeaders()
	h.Add("Cookie", "session=abc123; theme = dark ;empty=")
	h.Add("Cookie", "lang=en")

	want := map[string]string{
		"session": "abc123",
		"theme":   "dark",
		"empty":   "",
		"lang":    "en",
	}
	got := h.Cookies()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Cookies() mismatch (-want +got):\n%s", diff)
	}
}

func TestCookiesSkipsMalformedPairs(t *testing.T) {
	h := httpwire.NewHeaders()
	h.Add("Cookie", "novalue; =noname; ok=1")

	want := map[string]string{"ok": "1"}
	got := h.Cookies()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Cookies() mismatch (-want +got):\n%s", diff)
	}
}
