package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/keyprops/internal/build"
	"github.com/eugenenazirov/keyprops/internal/config"
	"github.com/eugenenazirov/keyprops/internal/logging"
)

var newLogger = logging.New

var errKeyNotFound = errors.New("key not found")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type showOutput struct {
	Android       config.Android `yaml:"android"`
	FlutterSource string         `yaml:"flutter_source"`
	PropertyKeys  []string       `yaml:"property_keys"`
	Plans         []build.Plan   `yaml:"plans"`
}

func run(args []string, stdout, stderr io.Writer) int {
	app := kingpin.New("keyprops", "Validates and inspects Android release signing configuration")
	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)

	configFile := app.Flag("config", "Path to YAML build descriptor").String()
	projectDir := app.Flag("project-dir", "Root project directory containing key.properties").String()
	propertiesFile := app.Flag("properties", "Properties file, relative to the project directory").String()
	logLevel := app.Flag("log-level", "Log level (debug, info, warn, error)").String()
	var fallbackSet bool
	fallback := app.Flag("fallback-debug", "Fall back to debug signing when key.properties is absent").IsSetByUser(&fallbackSet).Bool()

	checkCmd := app.Command("check", "Resolve a build type and fail on any signing configuration error")
	checkBuildType := checkCmd.Flag("build-type", "Build type to resolve").Default("release").String()
	requireStore := checkCmd.Flag("require-store-file", "Fail when the keystore file does not exist").Bool()

	showCmd := app.Command("show", "Print resolved signing plans as YAML with passwords redacted")
	showBuildTypes := showCmd.Flag("build-type", "Build type to show (repeatable, default all)").Strings()

	getCmd := app.Command("get", "Print a single value from the properties file")
	getKey := getCmd.Arg("key", "Property key").Required().String()

	command, err := app.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "keyprops: %v\n", err)
		return 2
	}

	overrides := &config.CLIOverrides{
		ConfigFile:     *configFile,
		ProjectDir:     projectDir,
		PropertiesFile: propertiesFile,
		LogLevel:       logLevel,
	}
	if fallbackSet {
		overrides.FallbackToDebug = fallback
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		fmt.Fprintf(stderr, "keyprops: failed to load configuration: %v\n", err)
		return 1
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "keyprops: failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	resolver := build.NewResolver(cfg, logger)

	switch command {
	case checkCmd.FullCommand():
		err = runCheck(resolver, *checkBuildType, *requireStore, stdout)
	case showCmd.FullCommand():
		err = runShow(resolver, cfg, *showBuildTypes, stdout)
	case getCmd.FullCommand():
		err = runGet(resolver, *getKey, stdout)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		return 1
	}
	return 0
}

func runCheck(resolver *build.Resolver, buildType string, requireStore bool, stdout io.Writer) error {
	plan, err := resolver.Resolve(buildType)
	if err != nil {
		return err
	}
	if requireStore {
		if err := plan.Signing.CheckStoreFile(); err != nil {
			return err
		}
	}

	note := ""
	if plan.FellBack {
		note = " (fallback)"
	}
	fmt.Fprintf(stdout, "ok: %s signed with %s%s\n", plan.BuildType, plan.Signing.Name, note)
	return nil
}

func runShow(resolver *build.Resolver, cfg config.Config, buildTypes []string, stdout io.Writer) error {
	if len(buildTypes) == 0 {
		buildTypes = resolver.BuildTypes()
	}

	props, _, err := resolver.Properties()
	if err != nil {
		return err
	}

	out := showOutput{
		Android:       cfg.Android,
		FlutterSource: cfg.FlutterSource,
		PropertyKeys:  props.Keys(),
	}
	for _, name := range buildTypes {
		plan, err := resolver.Resolve(name)
		if err != nil {
			return err
		}
		out.Plans = append(out.Plans, plan)
	}

	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode plans: %w", err)
	}
	return enc.Close()
}

func runGet(resolver *build.Resolver, key string, stdout io.Writer) error {
	props, found, err := resolver.Properties()
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s (properties file absent)", errKeyNotFound, key)
	}

	value, ok := props.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %s", errKeyNotFound, key)
	}
	fmt.Fprintln(stdout, value)
	return nil
}
