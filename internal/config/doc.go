// Package config loads the Android build descriptor from multiple sources
// (YAML files, environment variables, CLI flags) with precedence: CLI flags >
// Environment variables > YAML config > Defaults. It replaces the Gradle
// android {} block with strongly typed settings.
package config
