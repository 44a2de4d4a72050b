// Package config loads and validates flowstate configuration from YAML
// files. Configuration drives the collaborator layers (store, CLI,
// telemetry, result handler selection); the serialization core itself is
// configuration-free.
package config
