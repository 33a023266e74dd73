package shared

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestErrorTaxonomy(t *testing.T) {
	t.Run("TransportError", func(t *testing.T) {
		err := error(&TransportError{Op: "saved tracks", Err: io.ErrUnexpectedEOF})

		if !errors.Is(err, ErrAPIRequest) {
			t.Error("expected TransportError to match ErrAPIRequest")
		}
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Error("expected TransportError to expose its cause")
		}
		if !IsTransport(err) {
			t.Error("expected IsTransport to report true")
		}

		status := &TransportError{Op: "create playlist", Status: 403}
		if !strings.Contains(status.Error(), "403") {
			t.Errorf("expected status in message, got %s", status.Error())
		}
		if !errors.Is(status, ErrAPIRequest) {
			t.Error("status-only TransportError should still match ErrAPIRequest")
		}
	})

	t.Run("ShapeError", func(t *testing.T) {
		err := error(&ShapeError{Op: "playlists", Field: "items"})
		if !errors.Is(err, ErrUnexpectedShape) {
			t.Error("expected ShapeError to match ErrUnexpectedShape")
		}
		if IsTransport(err) {
			t.Error("ShapeError is not a transport failure")
		}
	})

	t.Run("ParseError", func(t *testing.T) {
		missing := &ParseError{Field: "added_at"}
		if !errors.Is(missing, ErrParse) {
			t.Error("expected ParseError to match ErrParse")
		}
		if !strings.Contains(missing.Error(), "missing") {
			t.Errorf("unexpected message %s", missing.Error())
		}
	})

	t.Run("ValidationError", func(t *testing.T) {
		err := &ValidationError{Field: "type", Want: "playlist", Got: "album"}
		if !errors.Is(err, ErrValidation) {
			t.Error("expected ValidationError to match ErrValidation")
		}
	})
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}
	b, _ := GenerateState()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty states, got %q and %q", a, b)
	}
}
