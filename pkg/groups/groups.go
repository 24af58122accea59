// Package groups is the read-only view over a completed duplicate index.
//
// Consumers (selection UI, reports, remediation) address members through
// MemberRef handles rather than display strings.
package groups

import (
	"github.com/arthur-debert/dupes/pkg/errors"
	"github.com/arthur-debert/dupes/pkg/filesystem"
	"github.com/arthur-debert/dupes/pkg/fingerprint"
)

// FileEntry is one accepted file. Its fingerprint is computed once during
// the scan; its size is resolved only when asked for.
type FileEntry struct {
	Path        string
	Fingerprint fingerprint.Fingerprint
}

// Size stats the file now. It fails if the file vanished since the scan.
func (e FileEntry) Size(fsys filesystem.FS) (int64, error) {
	info, err := fsys.Stat(e.Path)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrIORead, "cannot stat %s", e.Path).WithPath(e.Path)
	}
	return info.Size(), nil
}

// Group is a set of at least two paths sharing a fingerprint
type Group struct {
	Fingerprint fingerprint.Fingerprint
	// Canonical is the earliest-discovered path; it survives remediation.
	Canonical string
	// Duplicates are the remaining paths in discovery order.
	Duplicates []string
}

// Members returns the canonical path followed by the duplicates
func (g Group) Members() []string {
	out := make([]string, 0, len(g.Duplicates)+1)
	out = append(out, g.Canonical)
	return append(out, g.Duplicates...)
}

func (g Group) clone() Group {
	g.Duplicates = append([]string(nil), g.Duplicates...)
	return g
}

// MemberRef addresses one duplicate: Group indexes the model, Member
// indexes that group's Duplicates.
type MemberRef struct {
	Group  int `json:"group" yaml:"group"`
	Member int `json:"member" yaml:"member"`
}

// Model is an immutable list of groups
type Model struct {
	fs     filesystem.FS
	groups []Group
}

// New builds a model. The input is copied; later changes to it are not seen.
func New(fsys filesystem.FS, gs []Group) *Model {
	m := &Model{fs: fsys, groups: make([]Group, len(gs))}
	for i, g := range gs {
		m.groups[i] = g.clone()
	}
	return m
}

// Len returns the number of groups
func (m *Model) Len() int {
	return len(m.groups)
}

// DuplicateCount returns the number of non-canonical members across all groups
func (m *Model) DuplicateCount() int {
	n := 0
	for _, g := range m.groups {
		n += len(g.Duplicates)
	}
	return n
}

// Group returns a copy of group i
func (m *Model) Group(i int) (Group, bool) {
	if i < 0 || i >= len(m.groups) {
		return Group{}, false
	}
	return m.groups[i].clone(), true
}

// All returns copies of every group in order
func (m *Model) All() []Group {
	out := make([]Group, len(m.groups))
	for i, g := range m.groups {
		out[i] = g.clone()
	}
	return out
}

// Refs returns a handle for every duplicate member, group by group
func (m *Model) Refs() []MemberRef {
	refs := make([]MemberRef, 0, m.DuplicateCount())
	for gi, g := range m.groups {
		for mi := range g.Duplicates {
			refs = append(refs, MemberRef{Group: gi, Member: mi})
		}
	}
	return refs
}

// Resolve maps a handle to its (canonical, member) pair
func (m *Model) Resolve(ref MemberRef) (canonical, member string, err error) {
	if ref.Group < 0 || ref.Group >= len(m.groups) {
		return "", "", errors.Newf(errors.ErrInvalidSelection, "group %d out of range", ref.Group).
			WithDetail("group", ref.Group)
	}
	g := m.groups[ref.Group]
	if ref.Member < 0 || ref.Member >= len(g.Duplicates) {
		return "", "", errors.Newf(errors.ErrInvalidSelection, "member %d out of range in group %d", ref.Member, ref.Group).
			WithDetail("group", ref.Group).
			WithDetail("member", ref.Member)
	}
	return g.Canonical, g.Duplicates[ref.Member], nil
}

// Size resolves a path's byte size on demand
func (m *Model) Size(path string) (int64, error) {
	return FileEntry{Path: path}.Size(m.fs)
}

// Reclaimable sums the current size of every duplicate member. Members that
// no longer exist are counted in missing and otherwise ignored.
func (m *Model) Reclaimable() (bytes int64, missing int) {
	for _, g := range m.groups {
		for _, d := range g.Duplicates {
			size, err := m.Size(d)
			if err != nil {
				missing++
				continue
			}
			bytes += size
		}
	}
	return bytes, missing
}
