package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "typed error", err: New(NotFound, "order not found"), want: NotFound},
		{name: "wrapped typed error", err: fmt.Errorf("load order: %w", New(Conflict, "duplicate")), want: Conflict},
		{name: "plain error", err: errors.New("connection refused"), want: Internal},
		{name: "nil error", err: nil, want: Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageOf(t *testing.T) {
	if got := MessageOf(New(Validation, "quantity must be at least 1")); got != "quantity must be at least 1" {
		t.Fatalf("MessageOf() = %q", got)
	}

	// Текст нетипизированной ошибки не должен уходить клиенту.
	if got := MessageOf(errors.New("dial tcp: connection refused")); got != "internal server error" {
		t.Fatalf("MessageOf() = %q", got)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(Internal, "storage unavailable", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("wrapped cause is lost")
	}
	if err.Error() != "storage unavailable: dial tcp: connection refused" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if MessageOf(err) != "storage unavailable" {
		t.Fatalf("MessageOf() = %q", MessageOf(err))
	}
}
