package signing

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"

	"github.com/eugenenazirov/keyprops/internal/properties"
)

// Property keys consumed from key.properties, in the order they are checked.
const (
	KeyAlias      = "keyAlias"
	KeyPassword   = "keyPassword"
	StoreFile     = "storeFile"
	StorePassword = "storePassword"
)

// Names of the two signing identities a build type can reference.
const (
	DebugName   = "debug"
	ReleaseName = "release"
)

const (
	debugKeyAlias = "androiddebugkey"
	debugPassword = "android"
	redacted      = "******"
)

// Config holds the credentials needed to sign an application package.
type Config struct {
	Name          string `yaml:"name"`
	KeyAlias      string `yaml:"key_alias"`
	KeyPassword   string `yaml:"-"`
	StoreFile     string `yaml:"store_file"`
	StorePassword string `yaml:"-"`
}

// FromProperties builds a signing config from the four required keys.
// A relative storeFile is resolved against baseDir.
func FromProperties(name string, props *properties.Properties, baseDir string) (Config, error) {
	values := make(map[string]string, 4)
	for _, key := range []string{KeyAlias, KeyPassword, StoreFile, StorePassword} {
		value, err := props.Require(key)
		if err != nil {
			return Config{}, err
		}
		values[key] = value
	}

	return Config{
		Name:          name,
		KeyAlias:      values[KeyAlias],
		KeyPassword:   values[KeyPassword],
		StoreFile:     resolvePath(baseDir, values[StoreFile]),
		StorePassword: values[StorePassword],
	}, nil
}

// Debug returns the standard Android debug identity backed by storeFile.
// An empty storeFile selects ~/.android/debug.keystore; when no home directory
// is available StoreFile stays empty and CheckStoreFile reports ErrNoHomeDir.
func Debug(storeFile string) Config {
	if storeFile == "" {
		if path, err := DefaultDebugKeystore(); err == nil {
			storeFile = path
		}
	}

	return Config{
		Name:          DebugName,
		KeyAlias:      debugKeyAlias,
		KeyPassword:   debugPassword,
		StoreFile:     storeFile,
		StorePassword: debugPassword,
	}
}

// DefaultDebugKeystore returns the location the Android tooling uses for the debug keystore.
func DefaultDebugKeystore() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", ErrNoHomeDir
	}
	return filepath.Join(home, ".android", "debug.keystore"), nil
}

// CheckStoreFile verifies that the keystore exists and is a regular file.
func (c Config) CheckStoreFile() error {
	path := c.StoreFile
	if path == "" {
		if !c.IsDebug() {
			return fmt.Errorf("%w: no path configured", ErrStoreFileMissing)
		}
		resolved, err := DefaultDebugKeystore()
		if err != nil {
			return err
		}
		path = resolved
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrStoreFileMissing, path)
		}
		return fmt.Errorf("stat keystore: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("keystore %s is a directory", path)
	}
	return nil
}

// IsDebug reports whether the config is the debug identity.
func (c Config) IsDebug() bool {
	return c.Name == DebugName
}

// String renders the config without passwords.
func (c Config) String() string {
	return fmt.Sprintf("signing{name=%s alias=%s storeFile=%s keyPassword=%s storePassword=%s}",
		c.Name, c.KeyAlias, c.StoreFile, mask(c.KeyPassword), mask(c.StorePassword))
}

// MarshalLogObject implements zapcore.ObjectMarshaler with passwords redacted.
func (c Config) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("name", c.Name)
	enc.AddString("key_alias", c.KeyAlias)
	enc.AddString("store_file", c.StoreFile)
	enc.AddString("key_password", mask(c.KeyPassword))
	enc.AddString("store_password", mask(c.StorePassword))
	return nil
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return redacted
}

func resolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
