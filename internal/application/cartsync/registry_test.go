package cartsync

import (
	"context"
	"testing"
	"time"

	"github.com/vitrine/checkout-service/internal/pkg/logger"
)

func TestRegistryReturnsSameManagerPerSession(t *testing.T) {
	r := NewRegistry(newFakeCartRepo(), newFakeSessionStore(), &fakeStoreRepo{}, logger.NewNop(), 5*time.Millisecond)

	a, err := r.Get(context.Background(), "store-1", "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Get(context.Background(), "store-1", "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("expected the same manager for the same session")
	}

	other, err := r.Get(context.Background(), "store-1", "sess-2")
	if err != nil {
		t.Fatal(err)
	}
	if other == a {
		t.Error("expected distinct managers per session")
	}
}

func TestRegistryHydratesOnFirstGet(t *testing.T) {
	r := NewRegistry(newFakeCartRepo(), newFakeSessionStore(), &fakeStoreRepo{}, logger.NewNop(), 5*time.Millisecond)

	m, err := r.Get(context.Background(), "store-1", "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if m.State() != StateIdle {
		t.Errorf("expected hydrated manager, got %s", m.State())
	}
}
