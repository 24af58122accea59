// Package fingerprint computes content digests used as an equality proxy
// between files.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/arthur-debert/dupes/pkg/errors"
	"github.com/arthur-debert/dupes/pkg/filesystem"
)

// Size is the digest length in bytes
const Size = sha256.Size

// Fingerprint is a fixed-size digest of a file's full byte content.
// It is comparable and used directly as a map key.
type Fingerprint [Size]byte

// String returns the lowercase hex encoding
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Short returns the first 12 hex characters, for display
func (f Fingerprint) Short() string {
	return f.String()[:12]
}

// IsZero reports whether f is the zero value
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// Of streams the file at path through the digest. Failures are IO_READ
// errors carrying the path; callers skip the file and continue.
func Of(fsys filesystem.FS, path string) (Fingerprint, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return Fingerprint{}, errors.Wrapf(err, errors.ErrIORead, "cannot open %s", path).WithPath(path)
	}
	defer func() {
		_ = file.Close()
	}()

	return FromReader(file, path)
}

// FromReader digests everything r yields. name is only used in errors.
func FromReader(r io.Reader, name string) (Fingerprint, error) {
	hash := sha256.New()
	if _, err := io.Copy(hash, r); err != nil {
		return Fingerprint{}, errors.Wrapf(err, errors.ErrIORead, "cannot read %s", name).WithPath(name)
	}

	var fp Fingerprint
	copy(fp[:], hash.Sum(nil))
	return fp, nil
}
