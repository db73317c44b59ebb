package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tyotilasto/internal/adapters"
	"tyotilasto/internal/config"
	"tyotilasto/internal/docstore/firestore"
	"tyotilasto/internal/docstore/memory"
)

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	f := NewFactory(nil)

	t.Run("memory", func(t *testing.T) {
		res, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
		if err != nil {
			t.Fatalf("CreateBackend: %v", err)
		}
		if _, ok := res.Backend.(*memory.Store); !ok {
			t.Fatalf("got %T", res.Backend)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		res, err := f.CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "m.db")})
		if err != nil {
			t.Fatalf("CreateBackend: %v", err)
		}
		defer res.Cleanup()
		a, ok := res.Backend.(*adapters.SQLiteAdapter)
		if !ok {
			t.Fatalf("got %T", res.Backend)
		}
		var _ Pinger = a
		if err := a.Ping(context.Background()); err != nil {
			t.Fatalf("Ping: %v", err)
		}
	})

	t.Run("firestore emulator", func(t *testing.T) {
		res, err := f.CreateBackend(context.Background(), Config{
			Type:                  FirestoreBackend,
			FirestoreProjectID:    "demo",
			FirestoreEmulatorHost: "localhost:8085",
		})
		if err != nil {
			t.Fatalf("CreateBackend: %v", err)
		}
		if _, ok := res.Backend.(*firestore.Client); !ok {
			t.Fatalf("got %T", res.Backend)
		}
	})

	t.Run("firestore without credentials", func(t *testing.T) {
		_, err := f.CreateBackend(context.Background(), Config{Type: FirestoreBackend})
		if err == nil || !strings.Contains(err.Error(), "credentials") {
			t.Fatalf("expected credentials error, got %v", err)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := f.CreateBackend(context.Background(), Config{Type: "sheets"}); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("broken memory fixture", func(t *testing.T) {
		bad := t.TempDir()
		if err := os.WriteFile(filepath.Join(bad, memory.ObservationsFile), []byte("{"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: bad}); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil, nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	cfg := &config.Config{
		DataBackend:                  "firestore",
		GoogleApplicationCredentials: "/secrets/sa.json",
		DataDir:                      "fixtures",
	}
	bc, err := FromAppConfig(cfg, nil)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if bc.Type != FirestoreBackend || bc.GoogleServiceAccountFile != "/secrets/sa.json" || bc.DataDirectory != "fixtures" {
		t.Fatalf("unexpected backend config: %+v", bc)
	}

	cfg.DataBackend = "sheets"
	if _, err := FromAppConfig(cfg, nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := strings.Join(GetBackendTypeStrings(), ",")
	if got != "memory,firestore,sqlite" {
		t.Fatalf("got %s", got)
	}
}
