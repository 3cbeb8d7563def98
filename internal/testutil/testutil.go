// Package testutil provides shared test helpers for setting up vaults and user stores.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/wunjo/internal/auth"
	"github.com/starford/wunjo/internal/storage"
)

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// TestUserStore creates a temporary SQLite user store that is cleaned up
// automatically. It carries the seeded admin/admin account.
func TestUserStore(t *testing.T) *auth.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "wunjo-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	users, err := auth.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { users.Close() })
	return users
}
