package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/keyprops/internal/signing"
)

const (
	defaultPropertiesFile = "key.properties"
	defaultAppDir         = "app"
	defaultFlutterSource  = "../.."
	defaultLogLevel       = "info"
	defaultNamespace      = "com.citadel.fraudshield"
)

// Android mirrors the settings of the android {} block of the app module.
type Android struct {
	Namespace     string `yaml:"namespace"`
	ApplicationID string `yaml:"application_id"`
	CompileSDK    int    `yaml:"compile_sdk"`
	MinSDK        int    `yaml:"min_sdk"`
	TargetSDK     int    `yaml:"target_sdk"`
	NDKVersion    string `yaml:"ndk_version"`
	VersionCode   int    `yaml:"version_code"`
	VersionName   string `yaml:"version_name"`
	JavaVersion   int    `yaml:"java_version"`
}

// BuildType describes one Android build type and the signing identity it uses.
type BuildType struct {
	MinifyEnabled   bool   `yaml:"minify_enabled"`
	ShrinkResources bool   `yaml:"shrink_resources"`
	SigningConfig   string `yaml:"signing_config"`
}

// Config aggregates the build descriptor resolved from multiple sources.
// Precedence: CLI flags > Environment variables > YAML config > Defaults
type Config struct {
	ProjectDir      string               `yaml:"project_dir"`
	AppDir          string               `yaml:"app_dir"`
	PropertiesFile  string               `yaml:"properties_file"`
	DebugKeystore   string               `yaml:"debug_keystore"`
	FallbackToDebug bool                 `yaml:"fallback_to_debug"`
	FlutterSource   string               `yaml:"flutter_source"`
	LogLevel        string               `yaml:"log_level"`
	Android         Android              `yaml:"android"`
	BuildTypes      map[string]BuildType `yaml:"build_types"`
}

// yamlConfig represents the YAML configuration file structure. Pointers
// distinguish an omitted field from an explicit zero value.
type yamlConfig struct {
	ProjectDir      string                   `yaml:"project_dir"`
	AppDir          string                   `yaml:"app_dir"`
	PropertiesFile  string                   `yaml:"properties_file"`
	DebugKeystore   string                   `yaml:"debug_keystore"`
	FallbackToDebug *bool                    `yaml:"fallback_to_debug"`
	FlutterSource   string                   `yaml:"flutter_source"`
	LogLevel        string                   `yaml:"log_level"`
	Android         yamlAndroid              `yaml:"android"`
	BuildTypes      map[string]yamlBuildType `yaml:"build_types"`
}

type yamlAndroid struct {
	Namespace     string `yaml:"namespace"`
	ApplicationID string `yaml:"application_id"`
	CompileSDK    int    `yaml:"compile_sdk"`
	MinSDK        int    `yaml:"min_sdk"`
	TargetSDK     int    `yaml:"target_sdk"`
	NDKVersion    string `yaml:"ndk_version"`
	VersionCode   int    `yaml:"version_code"`
	VersionName   string `yaml:"version_name"`
	JavaVersion   int    `yaml:"java_version"`
}

type yamlBuildType struct {
	MinifyEnabled   *bool  `yaml:"minify_enabled"`
	ShrinkResources *bool  `yaml:"shrink_resources"`
	SigningConfig   string `yaml:"signing_config"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile      string
	ProjectDir      *string
	PropertiesFile  *string
	FallbackToDebug *bool
	LogLevel        *string
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > Environment variables > YAML config > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		applyYAMLConfig(&cfg, yamlCfg)
	}

	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Default returns the built-in descriptor for the Flutter app module.
func Default() Config {
	return defaultConfig()
}

// PropertiesPath returns the location of key.properties in the root project.
func (c Config) PropertiesPath() string {
	return joinUnlessAbs(c.ProjectDir, c.PropertiesFile)
}

// AppPath returns the app module directory; relative storeFile values resolve against it.
func (c Config) AppPath() string {
	return joinUnlessAbs(c.ProjectDir, c.AppDir)
}

func defaultConfig() Config {
	return Config{
		ProjectDir:      ".",
		AppDir:          defaultAppDir,
		PropertiesFile:  defaultPropertiesFile,
		FallbackToDebug: true,
		FlutterSource:   defaultFlutterSource,
		LogLevel:        defaultLogLevel,
		Android: Android{
			Namespace:     defaultNamespace,
			ApplicationID: defaultNamespace,
			CompileSDK:    36,
			MinSDK:        23,
			TargetSDK:     34,
			NDKVersion:    "27.0.12077973",
			VersionCode:   1,
			VersionName:   "1.0.0",
			JavaVersion:   11,
		},
		BuildTypes: map[string]BuildType{
			signing.DebugName: {
				SigningConfig: signing.DebugName,
			},
			signing.ReleaseName: {
				SigningConfig: signing.ReleaseName,
			},
		},
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) {
	setString(&cfg.ProjectDir, yamlCfg.ProjectDir)
	setString(&cfg.AppDir, yamlCfg.AppDir)
	setString(&cfg.PropertiesFile, yamlCfg.PropertiesFile)
	setString(&cfg.DebugKeystore, yamlCfg.DebugKeystore)
	setString(&cfg.FlutterSource, yamlCfg.FlutterSource)
	setString(&cfg.LogLevel, yamlCfg.LogLevel)
	if yamlCfg.FallbackToDebug != nil {
		cfg.FallbackToDebug = *yamlCfg.FallbackToDebug
	}

	a := yamlCfg.Android
	setString(&cfg.Android.Namespace, a.Namespace)
	setString(&cfg.Android.ApplicationID, a.ApplicationID)
	setString(&cfg.Android.NDKVersion, a.NDKVersion)
	setString(&cfg.Android.VersionName, a.VersionName)
	setInt(&cfg.Android.CompileSDK, a.CompileSDK)
	setInt(&cfg.Android.MinSDK, a.MinSDK)
	setInt(&cfg.Android.TargetSDK, a.TargetSDK)
	setInt(&cfg.Android.VersionCode, a.VersionCode)
	setInt(&cfg.Android.JavaVersion, a.JavaVersion)

	for name, bt := range yamlCfg.BuildTypes {
		merged := cfg.BuildTypes[name]
		if bt.MinifyEnabled != nil {
			merged.MinifyEnabled = *bt.MinifyEnabled
		}
		if bt.ShrinkResources != nil {
			merged.ShrinkResources = *bt.ShrinkResources
		}
		setString(&merged.SigningConfig, bt.SigningConfig)
		cfg.BuildTypes[name] = merged
	}
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) error {
	if dir := strings.TrimSpace(os.Getenv("KEYPROPS_PROJECT_DIR")); dir != "" {
		cfg.ProjectDir = dir
	}

	if file := strings.TrimSpace(os.Getenv("KEYPROPS_PROPERTIES_FILE")); file != "" {
		cfg.PropertiesFile = file
	}

	if raw := strings.TrimSpace(os.Getenv("KEYPROPS_FALLBACK_TO_DEBUG")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("KEYPROPS_FALLBACK_TO_DEBUG: invalid boolean %q", raw)
		}
		cfg.FallbackToDebug = value
	}

	if level := strings.TrimSpace(os.Getenv("KEYPROPS_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.ProjectDir != nil && *overrides.ProjectDir != "" {
		cfg.ProjectDir = *overrides.ProjectDir
	}

	if overrides.PropertiesFile != nil && *overrides.PropertiesFile != "" {
		cfg.PropertiesFile = *overrides.PropertiesFile
	}

	if overrides.FallbackToDebug != nil {
		cfg.FallbackToDebug = *overrides.FallbackToDebug
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	a := cfg.Android
	if strings.TrimSpace(a.Namespace) == "" {
		return fmt.Errorf("android namespace cannot be empty")
	}
	if strings.TrimSpace(a.ApplicationID) == "" {
		return fmt.Errorf("android application_id cannot be empty")
	}
	if a.MinSDK <= 0 {
		return fmt.Errorf("min_sdk must be > 0, got %d", a.MinSDK)
	}
	if a.MinSDK > a.TargetSDK {
		return fmt.Errorf("min_sdk (%d) must not exceed target_sdk (%d)", a.MinSDK, a.TargetSDK)
	}
	if a.TargetSDK > a.CompileSDK {
		return fmt.Errorf("target_sdk (%d) must not exceed compile_sdk (%d)", a.TargetSDK, a.CompileSDK)
	}
	if a.VersionCode <= 0 {
		return fmt.Errorf("version_code must be > 0, got %d", a.VersionCode)
	}
	if strings.TrimSpace(a.VersionName) == "" {
		return fmt.Errorf("version_name cannot be empty")
	}
	if strings.TrimSpace(cfg.PropertiesFile) == "" {
		return fmt.Errorf("properties file cannot be empty")
	}
	if len(cfg.BuildTypes) == 0 {
		return fmt.Errorf("at least one build type is required")
	}

	for name, bt := range cfg.BuildTypes {
		switch bt.SigningConfig {
		case signing.DebugName, signing.ReleaseName:
		default:
			return fmt.Errorf("build type %q: unknown signing config %q", name, bt.SigningConfig)
		}
		if bt.ShrinkResources && !bt.MinifyEnabled {
			return fmt.Errorf("build type %q: shrink_resources requires minify_enabled", name)
		}
	}

	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}

	return nil
}

func setString(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

func setInt(dst *int, value int) {
	if value != 0 {
		*dst = value
	}
}

func joinUnlessAbs(base, path string) string {
	if filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}
