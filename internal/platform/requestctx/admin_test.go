package requestctx

import (
	"context"
	"testing"
)

func TestAdminFromContextRoundTrip(t *testing.T) {
	ctx := WithAdmin(context.Background(), Admin{Email: "ops@sikiya.com", Role: "admin"})
	got, ok := AdminFromContext(ctx)
	if !ok {
		t.Fatal("expected admin in context")
	}
	if got.Email != "ops@sikiya.com" || got.Role != "admin" {
		t.Fatalf("AdminFromContext = %+v", got)
	}
}

func TestAdminFromContextEmpty(t *testing.T) {
	if _, ok := AdminFromContext(context.Background()); ok {
		t.Fatal("expected no admin in empty context")
	}
}

func TestAdminFromContextNil(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract.
	if _, ok := AdminFromContext(nil); ok {
		t.Fatal("expected no admin for nil context")
	}
}

func TestWithAdminNilContext(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract.
	ctx := WithAdmin(nil, Admin{Email: "a@b.c"})
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	if got, _ := AdminFromContext(ctx); got.Email != "a@b.c" {
		t.Fatalf("AdminFromContext = %+v", got)
	}
}
