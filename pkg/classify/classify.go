// Package classify decides whether a filesystem entry takes part in
// deduplication.
//
// Decisions are never cached: the filesystem is mutable external state and
// the same path is re-checked when remediation is about to touch it.
package classify

import (
	"path/filepath"

	"github.com/arthur-debert/dupes/pkg/filesystem"
	"github.com/arthur-debert/dupes/pkg/logging"
	"github.com/arthur-debert/dupes/pkg/paths"
	"github.com/rs/zerolog"
)

// Reason names why a path was excluded
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonMissing     Reason = "missing"
	ReasonNotRegular  Reason = "not-regular"
	ReasonSelf        Reason = "self-executable"
	ReasonIgnoredName Reason = "ignored-name"
	ReasonSamePath    Reason = "same-path"
)

// DefaultIgnoreNames are OS metadata markers, version-control admin entries
// and IDE project markers that never take part in deduplication. Patterns
// match base names only; files inside a directory such as .svn are not pruned.
var DefaultIgnoreNames = []string{
	".DS_Store",
	".localized",
	"Thumbs.db",
	".gitignore",
	".svn",
	".idea",
}

// Classifier is the path participation policy
type Classifier struct {
	fs     filesystem.FS
	self   string
	ignore []string
	logger zerolog.Logger
}

// Option configures a Classifier
type Option func(*Classifier)

// WithIgnoreNames adds base-name patterns (filepath.Match syntax) to the ignore set
func WithIgnoreNames(patterns ...string) Option {
	return func(c *Classifier) {
		c.ignore = append(c.ignore, patterns...)
	}
}

// WithExecutable overrides the path treated as the running program
func WithExecutable(path string) Option {
	return func(c *Classifier) {
		c.self = filepath.Clean(path)
	}
}

// New creates a classifier over fsys. The running executable is resolved
// once here; if it cannot be resolved no path is excluded as self.
func New(fsys filesystem.FS, opts ...Option) *Classifier {
	c := &Classifier{
		fs:     fsys,
		ignore: append([]string(nil), DefaultIgnoreNames...),
		logger: logging.GetLogger("classify"),
	}
	if exe, err := paths.Executable(); err == nil {
		c.self = exe
	} else {
		c.logger.Warn().Err(err).Msg("Cannot resolve own executable")
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Excluded reports whether path must be left out, and why
func (c *Classifier) Excluded(path string) (bool, Reason) {
	info, err := c.fs.Lstat(path)
	if err != nil {
		return true, ReasonMissing
	}
	if !info.Mode().IsRegular() {
		return true, ReasonNotRegular
	}
	if c.isSelf(path) {
		return true, ReasonSelf
	}
	if c.isIgnoredName(filepath.Base(path)) {
		return true, ReasonIgnoredName
	}
	return false, ReasonNone
}

// Accept is the negation of Excluded, for call sites that only need the verdict
func (c *Classifier) Accept(path string) bool {
	excluded, _ := c.Excluded(path)
	return !excluded
}

// PairExcluded reports whether the (canonical, member) pair must be skipped:
// either side is excluded on its own, or both name the same path.
func (c *Classifier) PairExcluded(canonical, member string) (bool, Reason) {
	if excluded, reason := c.Excluded(canonical); excluded {
		return true, reason
	}
	if excluded, reason := c.Excluded(member); excluded {
		return true, reason
	}
	if filepath.Clean(canonical) == filepath.Clean(member) {
		return true, ReasonSamePath
	}
	return false, ReasonNone
}

func (c *Classifier) isSelf(path string) bool {
	if c.self == "" {
		return false
	}
	clean := filepath.Clean(path)
	if clean == c.self {
		return true
	}
	// Parent directories may be reached through links; only pay for
	// resolution when the base name could match.
	if filepath.Base(clean) != filepath.Base(c.self) {
		return false
	}
	resolved, err := filepath.EvalSymlinks(clean)
	return err == nil && resolved == c.self
}

func (c *Classifier) isIgnoredName(name string) bool {
	for _, pattern := range c.ignore {
		if pattern == name {
			return true
		}
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
