package shared

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Run("writes to the provided writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(buf)

		logger.Info("hello")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output, got %q", buf.String())
		}
	})

	t.Run("nil writer defaults to stderr", func(t *testing.T) {
		logger := NewLogger(nil)
		if logger == nil {
			t.Fatal("expected a logger")
		}
	})

	t.Run("WithLogger attaches fields", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := WithLogger(NewLogger(buf), "component", "engine")

		logger.Info("ready")

		if !strings.Contains(buf.String(), "component") {
			t.Errorf("expected attached field, got %q", buf.String())
		}
	})
}

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for range 10 {
		id := GenerateID()
		if len(id) != 36 {
			t.Errorf("expected UUID length 36, got %d", len(id))
		}
		if seen[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestGenerateState(t *testing.T) {
	first, err := GenerateState()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(first) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(first))
	}

	second, err := GenerateState()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first == second {
		t.Error("expected distinct state tokens")
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]string{"key": "value"}

	t.Run("compact", func(t *testing.T) {
		out, err := MarshalJSON(data, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(out) != `{"key":"value"}` {
			t.Errorf("expected compact JSON, got %s", out)
		}
	})

	t.Run("pretty", func(t *testing.T) {
		out, err := MarshalJSON(data, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(string(out), "\n") {
			t.Errorf("expected indented JSON, got %s", out)
		}
	})

	t.Run("non-serializable data errors", func(t *testing.T) {
		if _, err := MarshalJSON(make(chan int), false); err == nil {
			t.Error("expected marshal error")
		}
	})
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		ms   int
		want string
	}{
		{0, "0:00"},
		{1000, "0:01"},
		{61000, "1:01"},
		{201000, "3:21"},
		{3600000, "60:00"},
	}

	for _, tc := range cases {
		if got := FormatDuration(tc.ms); got != tc.want {
			t.Errorf("FormatDuration(%d): expected %s, got %s", tc.ms, tc.want, got)
		}
	}
}

func TestVisibilityString(t *testing.T) {
	if got := VisibilityString(true); got != "Public" {
		t.Errorf("expected Public, got %s", got)
	}
	if got := VisibilityString(false); got != "Private" {
		t.Errorf("expected Private, got %s", got)
	}
}
