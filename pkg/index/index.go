package index

import (
	"github.com/arthur-debert/dupes/pkg/fingerprint"
	"github.com/arthur-debert/dupes/pkg/groups"
)

type bucket struct {
	fp         fingerprint.Fingerprint
	canonical  string
	duplicates []string
}

// Index groups paths by fingerprint. It is not safe for concurrent use;
// Build gives it a single owner that inserts in discovery order.
type Index struct {
	buckets map[fingerprint.Fingerprint]*bucket
	order   []*bucket
	seen    map[string]struct{}
}

// New creates an empty index
func New() *Index {
	return &Index{
		buckets: make(map[fingerprint.Fingerprint]*bucket),
		seen:    make(map[string]struct{}),
	}
}

// Insert records path under fp. The first path for a fingerprint becomes
// its canonical; later ones are appended as duplicates. Inserting a path
// twice is a no-op that reports its existing role.
func (x *Index) Insert(path string, fp fingerprint.Fingerprint) groups.Status {
	b, ok := x.buckets[fp]
	if _, dup := x.seen[path]; dup {
		if ok && b.canonical == path {
			return groups.StatusCanonical
		}
		return groups.StatusDuplicate
	}
	x.seen[path] = struct{}{}

	if !ok {
		b = &bucket{fp: fp, canonical: path}
		x.buckets[fp] = b
		x.order = append(x.order, b)
		return groups.StatusCanonical
	}
	b.duplicates = append(b.duplicates, path)
	return groups.StatusDuplicate
}

// Len returns the number of distinct fingerprints seen
func (x *Index) Len() int {
	return len(x.order)
}

// Groups returns every fingerprint with at least two paths, ordered by
// when its canonical path was discovered. Singletons are dropped.
func (x *Index) Groups() []groups.Group {
	var out []groups.Group
	for _, b := range x.order {
		if len(b.duplicates) == 0 {
			continue
		}
		out = append(out, groups.Group{
			Fingerprint: b.fp,
			Canonical:   b.canonical,
			Duplicates:  append([]string(nil), b.duplicates...),
		})
	}
	return out
}
