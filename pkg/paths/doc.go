// Package paths provides centralized path handling for dupes.
//
// It resolves the scan root, the XDG configuration and state locations used
// for the config file and the log file, and the running executable, which
// must never take part in deduplication.
package paths
