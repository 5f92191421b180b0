package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemorySetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	val, err := store.Get(ctx, "missing")
	if err != nil {
		t.Fatal(err)
	}
	if val != "" {
		t.Fatalf("missing key returned %q", val)
	}

	if err := store.Set(ctx, "k", "v", 0); err != nil {
		t.Fatal(err)
	}
	val, err = store.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if val != "v" {
		t.Fatalf("Get = %q, want v", val)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	val, _ = store.Get(ctx, "k")
	if val != "" {
		t.Error("expected empty after delete")
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if err := store.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if val, _ := store.Get(ctx, "k"); val != "v" {
		t.Fatalf("Get before expiry = %q", val)
	}

	time.Sleep(20 * time.Millisecond)
	if val, _ := store.Get(ctx, "k"); val != "" {
		t.Errorf("Get after expiry = %q, want empty", val)
	}
}

func TestMemoryValueCoercion(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if err := store.Set(ctx, "bytes", []byte("payload"), 0); err != nil {
		t.Fatal(err)
	}
	if val, _ := store.Get(ctx, "bytes"); val != "payload" {
		t.Errorf("bytes value = %q", val)
	}

	if err := store.Set(ctx, "int", 42, 0); err != nil {
		t.Fatal(err)
	}
	if val, _ := store.Get(ctx, "int"); val != "42" {
		t.Errorf("int value = %q", val)
	}
}
