// Package build resolves a build type from the descriptor into a signing plan.
// It wires the config, properties and signing packages together so the CLI
// stays focused on flag parsing and output.
package build
