package auth

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"ytmb/internal/shared"
)

func TestFileStore(t *testing.T) {
	t.Run("Load missing file returns ErrNotAuthenticated", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "credential.json"))

		_, err := store.Load()
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Save and Load round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "credential.json")
		store := NewFileStore(path)

		saved := &Credential{
			Kind:         KindToken,
			AccessToken:  "access",
			RefreshToken: "refresh",
			TokenType:    "Bearer",
			ExpiresAt:    1234567890,
			ClientID:     "client",
			ClientSecret: "secret",
		}

		if err := store.Save(saved); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		loaded, err := store.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if !reflect.DeepEqual(loaded, saved) {
			t.Errorf("loaded credential %+v, want %+v", loaded, saved)
		}
	})

	t.Run("Save sets restrictive permissions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credential.json")
		store := NewFileStore(path)

		cred := &Credential{Kind: KindHeaders, Headers: map[string]string{"Cookie": "a=b"}}
		if err := store.Save(cred); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("expected 0600 permissions, got %o", perm)
		}
	})

	t.Run("Save leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileStore(filepath.Join(dir, "credential.json"))

		cred := &Credential{Kind: KindHeaders, Headers: map[string]string{"Cookie": "a=b"}}
		if err := store.Save(cred); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir failed: %v", err)
		}
		for _, entry := range entries {
			if strings.HasSuffix(entry.Name(), ".tmp") {
				t.Errorf("temp file left behind: %s", entry.Name())
			}
		}
	})

	t.Run("Save rejects invalid credential", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "credential.json"))

		if err := store.Save(&Credential{Kind: KindToken}); err == nil {
			t.Error("expected error for token credential without access token")
		}
	})

	t.Run("Load rejects corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credential.json")
		if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
			t.Fatal(err)
		}

		if _, err := NewFileStore(path).Load(); err == nil {
			t.Error("expected error for corrupt credential file")
		}
	})

	t.Run("Clear removes file and tolerates absence", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credential.json")
		store := NewFileStore(path)

		cred := &Credential{Kind: KindHeaders, Headers: map[string]string{"Cookie": "a=b"}}
		if err := store.Save(cred); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if err := store.Clear(); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Error("expected credential file to be removed")
		}

		if err := store.Clear(); err != nil {
			t.Errorf("Clear on missing file should succeed, got %v", err)
		}
	})
}

func TestCredentialValidate(t *testing.T) {
	tt := []struct {
		name    string
		cred    Credential
		wantErr bool
	}{
		{
			name: "valid token",
			cred: Credential{Kind: KindToken, AccessToken: "abc"},
		},
		{
			name:    "token missing access token",
			cred:    Credential{Kind: KindToken},
			wantErr: true,
		},
		{
			name: "valid headers with cookie",
			cred: Credential{Kind: KindHeaders, Headers: map[string]string{"Cookie": "a=b"}},
		},
		{
			name: "valid headers with authorization",
			cred: Credential{Kind: KindHeaders, Headers: map[string]string{"Authorization": "SAPISIDHASH x"}},
		},
		{
			name:    "headers without session value",
			cred:    Credential{Kind: KindHeaders, Headers: map[string]string{"Accept": "*/*"}},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			cred:    Credential{Kind: "basic"},
			wantErr: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cred.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
