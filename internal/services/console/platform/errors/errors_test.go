package errors

import (
	"fmt"
	"net/http"
	"testing"
)

type upstreamErr struct{ status int }

func (e upstreamErr) Error() string   { return "upstream" }
func (e upstreamErr) HTTPStatus() int { return e.status }

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "invalid input", err: E(KindInvalidInput, "bad"), want: http.StatusBadRequest},
		{name: "validation", err: EK(KindValidation, "moderation.reason_required", "reason"), want: http.StatusUnprocessableEntity},
		{name: "unauthorized", err: E(KindUnauthorized, "no"), want: http.StatusUnauthorized},
		{name: "forbidden", err: E(KindForbidden, "no"), want: http.StatusForbidden},
		{name: "not found", err: E(KindNotFound, "gone"), want: http.StatusNotFound},
		{name: "conflict", err: E(KindConflict, "busy"), want: http.StatusConflict},
		{name: "unavailable", err: E(KindUnavailable, "down"), want: http.StatusServiceUnavailable},
		{name: "wrapped typed", err: fmt.Errorf("load: %w", E(KindNotFound, "gone")), want: http.StatusNotFound},
		{name: "upstream status", err: fmt.Errorf("fetch: %w", upstreamErr{status: http.StatusBadGateway}), want: http.StatusBadGateway},
		{name: "upstream out of range", err: upstreamErr{status: 200}, want: http.StatusInternalServerError},
		{name: "plain", err: fmt.Errorf("boom"), want: http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := HTTPStatus(tc.err); got != tc.want {
				t.Fatalf("HTTPStatus() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestLocalizationKeyAndKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", EK(KindValidation, "  moderation.status_required ", "status"))
	if got := LocalizationKey(err); got != "moderation.status_required" {
		t.Fatalf("LocalizationKey() = %q", got)
	}
	if got := KindOf(err); got != KindValidation {
		t.Fatalf("KindOf() = %q", got)
	}
	if got := LocalizationKey(fmt.Errorf("plain")); got != "" {
		t.Fatalf("LocalizationKey(plain) = %q", got)
	}
	if got := KindOf(nil); got != KindUnknown {
		t.Fatalf("KindOf(nil) = %q", got)
	}
}

func TestErrorMessageFallsBackToKind(t *testing.T) {
	if got := (Error{Kind: KindForbidden}).Error(); got != "forbidden" {
		t.Fatalf("Error() = %q", got)
	}
}
