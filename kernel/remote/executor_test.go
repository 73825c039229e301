package remote

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/friendo-bot/friendo/kernel/model"
	"golang.org/x/crypto/ssh"
)

func writeTestKey(t *testing.T, passphrase string) string {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	var block *pem.Block
	if passphrase == "" {
		block, err = ssh.MarshalPrivateKey(priv, "")
	} else {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(priv, "", []byte(passphrase))
	}
	if err != nil {
		t.Fatalf("failed to marshal key: %v", err)
	}

	path := filepath.Join(t.TempDir(), "id_ed25519")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0600); err != nil {
		t.Fatalf("failed to write key: %v", err)
	}
	return path
}

func TestLoadSigner(t *testing.T) {
	path := writeTestKey(t, "")

	signer, err := loadSigner(path)
	if err != nil {
		t.Fatalf("loadSigner failed: %v", err)
	}
	if signer == nil {
		t.Fatal("expected a signer")
	}
}

func TestLoadSigner_MissingFile(t *testing.T) {
	if _, err := loadSigner("/nonexistent/id_ed25519"); err == nil {
		t.Fatal("expected error for missing key file")
	}
}

// Encrypted keys need a passphrase prompt; without a terminal attached the
// load must fail with a clear error instead of hanging.
func TestLoadSigner_EncryptedWithoutTerminal(t *testing.T) {
	path := writeTestKey(t, "hunter2")

	if _, err := loadSigner(path); err == nil {
		t.Fatal("expected error for encrypted key without terminal")
	}
}

func TestNewExecutor(t *testing.T) {
	cfg := &model.RemoteConfig{
		User:    "ubuntu",
		KeyFile: writeTestKey(t, ""),
		SSHPort: 22,
		LogPath: "/opt/minecraft/logs/latest.log",
	}

	e, err := NewExecutor("203.0.113.7", cfg)
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}
	if e.addr != "203.0.113.7:22" {
		t.Errorf("unexpected addr '%s'", e.addr)
	}
}

func TestTailLog_RequiresLogPath(t *testing.T) {
	cfg := &model.RemoteConfig{User: "ubuntu", KeyFile: writeTestKey(t, ""), SSHPort: 22}

	e, err := NewExecutor("203.0.113.7", cfg)
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}

	if _, err := e.TailLog(context.Background(), 50); err == nil {
		t.Fatal("expected error without log_path")
	}
}

func TestFetchBackup_RequiresBackupPath(t *testing.T) {
	cfg := &model.RemoteConfig{User: "ubuntu", KeyFile: writeTestKey(t, ""), SSHPort: 22}

	e, err := NewExecutor("203.0.113.7", cfg)
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}

	if err := e.FetchBackup(context.Background(), filepath.Join(t.TempDir(), "backup.tgz")); err == nil {
		t.Fatal("expected error without backup_path")
	}
}
