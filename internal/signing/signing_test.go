package signing

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eugenenazirov/keyprops/internal/properties"
)

const releaseProperties = "keyAlias=upload\nkeyPassword=kp\nstoreFile=upload.jks\nstorePassword=sp\n"

func parse(t *testing.T, content string) *properties.Properties {
	t.Helper()

	props, err := properties.Parse("key.properties", strings.NewReader(content))
	if err != nil {
		t.Fatalf("parse properties: %v", err)
	}
	return props
}

func TestFromPropertiesResolvesRelativeStoreFile(t *testing.T) {
	t.Parallel()

	base := filepath.Join("android", "app")
	cfg, err := FromProperties(ReleaseName, parse(t, releaseProperties), base)
	if err != nil {
		t.Fatalf("FromProperties returned error: %v", err)
	}

	if cfg.Name != ReleaseName || cfg.KeyAlias != "upload" || cfg.KeyPassword != "kp" || cfg.StorePassword != "sp" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if want := filepath.Join(base, "upload.jks"); cfg.StoreFile != want {
		t.Fatalf("expected store file %s, got %s", want, cfg.StoreFile)
	}
	if cfg.IsDebug() {
		t.Fatalf("release config reported as debug")
	}
}

func TestFromPropertiesKeepsAbsoluteStoreFile(t *testing.T) {
	t.Parallel()

	abs := filepath.Join(t.TempDir(), "app.jks")
	props := parse(t, "keyAlias=a\nkeyPassword=b\nstoreFile="+abs+"\nstorePassword=c\n")

	cfg, err := FromProperties(ReleaseName, props, "/elsewhere")
	if err != nil {
		t.Fatalf("FromProperties returned error: %v", err)
	}
	if cfg.StoreFile != abs {
		t.Fatalf("expected absolute path to be kept, got %s", cfg.StoreFile)
	}
}

func TestFromPropertiesReportsFirstMissingKey(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		content string
		missing string
	}{
		{content: "", missing: KeyAlias},
		{content: "keyAlias=a\n", missing: KeyPassword},
		{content: "keyAlias=a\nkeyPassword=b\nstorePassword=c\n", missing: StoreFile},
		{content: "keyAlias=a\nkeyPassword=b\nstoreFile=c\n", missing: StorePassword},
	}

	for _, tc := range testCases {
		t.Run(tc.missing, func(t *testing.T) {
			_, err := FromProperties(ReleaseName, parse(t, tc.content), "")

			var missing *properties.MissingKeyError
			if !errors.As(err, &missing) {
				t.Fatalf("expected *MissingKeyError, got %v", err)
			}
			if missing.Key != tc.missing {
				t.Fatalf("expected missing key %s, got %s", tc.missing, missing.Key)
			}
		})
	}
}

func TestDebugUsesAndroidDefaults(t *testing.T) {
	t.Parallel()

	cfg := Debug("/tmp/debug.keystore")
	if !cfg.IsDebug() || cfg.KeyAlias != "androiddebugkey" || cfg.KeyPassword != "android" || cfg.StorePassword != "android" {
		t.Fatalf("unexpected debug identity: %+v", cfg)
	}
	if cfg.StoreFile != "/tmp/debug.keystore" {
		t.Fatalf("unexpected store file %s", cfg.StoreFile)
	}
}

func TestDebugDefaultsToHomeKeystore(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Debug("")
	if want := filepath.Join(home, ".android", "debug.keystore"); cfg.StoreFile != want {
		t.Fatalf("expected %s, got %s", want, cfg.StoreFile)
	}
}

func TestDebugWithoutHomeDefersLookup(t *testing.T) {
	t.Setenv("HOME", "")

	cfg := Debug("")
	if !cfg.IsDebug() || cfg.StoreFile != "" {
		t.Fatalf("expected debug identity without a store file, got %+v", cfg)
	}
	if err := cfg.CheckStoreFile(); !errors.Is(err, ErrNoHomeDir) {
		t.Fatalf("expected ErrNoHomeDir from CheckStoreFile, got %v", err)
	}
	if err := (Config{Name: ReleaseName}).CheckStoreFile(); !errors.Is(err, ErrStoreFileMissing) {
		t.Fatalf("expected ErrStoreFileMissing for release without path, got %v", err)
	}
}

func TestCheckStoreFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	present := filepath.Join(dir, "app.jks")
	if err := os.WriteFile(present, []byte("keystore"), 0o600); err != nil {
		t.Fatalf("write keystore: %v", err)
	}

	if err := (Config{StoreFile: present}).CheckStoreFile(); err != nil {
		t.Fatalf("expected existing keystore to pass, got %v", err)
	}

	err := (Config{StoreFile: filepath.Join(dir, "absent.jks")}).CheckStoreFile()
	if !errors.Is(err, ErrStoreFileMissing) {
		t.Fatalf("expected ErrStoreFileMissing, got %v", err)
	}

	if err := (Config{StoreFile: dir}).CheckStoreFile(); err == nil {
		t.Fatalf("expected error for directory keystore")
	}
}

func TestPasswordsAreRedacted(t *testing.T) {
	t.Parallel()

	cfg := Config{Name: ReleaseName, KeyAlias: "upload", KeyPassword: "kp-secret", StoreFile: "a.jks", StorePassword: "sp-secret"}

	if s := cfg.String(); strings.Contains(s, "secret") {
		t.Fatalf("String leaked a password: %s", s)
	}

	core, logs := observer.New(zapcore.InfoLevel)
	zap.New(core).Info("signing", zap.Object("signing", cfg))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	fields, ok := entries[0].ContextMap()["signing"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected signing object in log context, got %#v", entries[0].ContextMap())
	}
	if fields["key_password"] != redacted || fields["store_password"] != redacted {
		t.Fatalf("expected redacted passwords, got %v", fields)
	}
	if fields["key_alias"] != "upload" {
		t.Fatalf("expected key alias in log, got %v", fields["key_alias"])
	}
}
