// Package version holds the engine version string.
package version

// Version is the engine version. It is stamped into every serialized state
// as "__version__" and reported by the CLI. Release builds override it via
// -ldflags "-X github.com/flowstate/flowstate/pkg/version.Version=...".
var Version = "0.6.0"
