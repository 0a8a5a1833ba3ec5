package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVsRedactsSensitiveKeys(t *testing.T) {
	t.Parallel()

	out := sanitizeKVs([]interface{}{
		"password", "hunter2",
		"access_token", "abc",
		"user_email", "a@b.c",
		"path", "/api/posts",
	})
	if len(out) != 8 {
		t.Fatalf("unexpected length: %d", len(out))
	}
	for i, want := range []interface{}{"[REDACTED]", "[REDACTED]", "[REDACTED]", "/api/posts"} {
		if got := out[i*2+1]; got != want {
			t.Fatalf("value %d: got=%v want=%v", i, got, want)
		}
	}
}

func TestSanitizeKVsHashesIdentifiers(t *testing.T) {
	t.Parallel()

	out := sanitizeKVs([]interface{}{"user_id", "7d1c3c52-7f5e-4c1e-9a57-0a1f2f0c9f11"})
	got, _ := out[1].(string)
	if !strings.HasPrefix(got, "hash:") || len(got) != len("hash:")+12 {
		t.Fatalf("expected hashed user id, got %q", got)
	}
	again := sanitizeKVs([]interface{}{"user_id", "7d1c3c52-7f5e-4c1e-9a57-0a1f2f0c9f11"})
	if again[1] != got {
		t.Fatalf("hash should be stable: %v vs %v", again[1], got)
	}
}

func TestSanitizeKVsRedactsJWTValuesAndNestedMaps(t *testing.T) {
	t.Parallel()

	jwtish := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig"
	out := sanitizeKVs([]interface{}{
		"header", jwtish,
		"payload", map[string]interface{}{"secret": "x", "title": "ok"},
	})
	if out[1] != "[REDACTED]" {
		t.Fatalf("jwt value not redacted: %v", out[1])
	}
	nested, ok := out[3].(map[string]interface{})
	if !ok {
		t.Fatalf("expected map, got %T", out[3])
	}
	if nested["secret"] != "[REDACTED]" || nested["title"] != "ok" {
		t.Fatalf("unexpected nested map: %+v", nested)
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	t.Parallel()

	out := sanitizeKVs([]interface{}{"k", "v", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected: %+v", out)
	}
}

func TestNewModes(t *testing.T) {
	t.Parallel()

	for _, mode := range []string{"development", "production", "test"} {
		log, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		log.With("component", "test").Debug("hello", "k", "v")
	}
}
