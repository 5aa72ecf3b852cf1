package logger

import (
	"net/http"
	"testing"
)

func TestMaskAuthorizationKeepsScheme(t *testing.T) {
	if got := MaskAuthorization("Bearer feedkey99887766"); got != "Bearer ****7766" {
		t.Fatalf("masked = %q", got)
	}
	if got := MaskAuthorization("rawsecretvalue"); got != "****alue" {
		t.Fatalf("masked = %q", got)
	}
}

func TestMaskCookiePreservesNames(t *testing.T) {
	got := MaskCookie("dash_session=abcdef1234; theme=dark")
	want := "dash_session=****1234; theme=****dark"
	if got != want {
		t.Fatalf("masked = %q, want %q", got, want)
	}
}

func TestMaskHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer feedkey99887766")
	headers.Set("Content-Type", "application/json")

	masked := MaskHeaders(headers)

	if masked["Authorization"] != "Bearer ****7766" {
		t.Fatalf("authorization = %q", masked["Authorization"])
	}
	if masked["Content-Type"] != "application/json" {
		t.Fatalf("content-type must pass through, got %q", masked["Content-Type"])
	}
}

func TestMaskJSONMasksSensitiveKeysDeep(t *testing.T) {
	input := map[string]any{
		"papp":    1200,
		"api_key": "key_12345678",
		"notify": map[string]any{
			"smtp_password": "hunter2",
		},
	}

	masked := MaskJSON(input)

	if masked["papp"] != 1200 {
		t.Fatalf("papp changed: %v", masked["papp"])
	}
	if masked["api_key"] != "****5678" {
		t.Fatalf("api_key = %v", masked["api_key"])
	}
	nested, ok := masked["notify"].(map[string]any)
	if !ok {
		t.Fatal("expected nested map")
	}
	if nested["smtp_password"] != "****ter2" {
		t.Fatalf("smtp_password = %v", nested["smtp_password"])
	}
}

func TestMaskLast4ShortValues(t *testing.T) {
	if got := maskLast4("ab"); got != "****ab" {
		t.Fatalf("short value = %q", got)
	}
}
