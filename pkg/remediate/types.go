package remediate

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/dupes/pkg/groups"
)

// Transform is what happens to each selected duplicate
type Transform int

const (
	// Delete unlinks the duplicate
	Delete Transform = iota
	// DeleteAndLink unlinks the duplicate, then puts a symbolic link to the
	// canonical path in its place
	DeleteAndLink
)

func (t Transform) String() string {
	switch t {
	case Delete:
		return "delete"
	case DeleteAndLink:
		return "link"
	default:
		return "unknown"
	}
}

// MarshalText renders the transform name in reports
func (t Transform) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseTransform parses "delete" or "link"
func ParseTransform(s string) (Transform, error) {
	switch strings.ToLower(s) {
	case "delete", "remove":
		return Delete, nil
	case "link", "symlink", "delete-and-link":
		return DeleteAndLink, nil
	default:
		return Delete, fmt.Errorf("unknown transform: %s", s)
	}
}

// Outcome classifies a per-member result
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
	OutcomePlanned Outcome = "planned"
)

// Result records what happened to one selected member
type Result struct {
	Ref       groups.MemberRef `json:"ref"`
	Path      string           `json:"path"`
	Canonical string           `json:"canonical"`
	Status    groups.Status    `json:"status"`
	Outcome   Outcome          `json:"outcome"`
	Err       error            `json:"-"`
}

// Reason is the error text, or empty on success
func (r Result) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Selection names which members to act on
type Selection struct {
	all  bool
	refs []groups.MemberRef
}

// All selects every duplicate of every group
func All() Selection {
	return Selection{all: true}
}

// Members selects an explicit set of duplicates
func Members(refs ...groups.MemberRef) Selection {
	return Selection{refs: append([]groups.MemberRef(nil), refs...)}
}

// IsEmpty reports whether nothing was chosen
func (s Selection) IsEmpty() bool {
	return !s.all && len(s.refs) == 0
}

// Report is the outcome of one remediation batch
type Report struct {
	BatchID   string    `json:"batch_id"`
	Transform Transform `json:"transform"`
	DryRun    bool      `json:"dry_run"`
	Results   []Result  `json:"results"`

	Removed int `json:"removed"`
	Linked  int `json:"linked"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	Planned int `json:"planned"`
}

func (r *Report) tally(res Result) {
	switch res.Outcome {
	case OutcomeSkipped:
		r.Skipped++
	case OutcomePlanned:
		r.Planned++
	case OutcomeFailed:
		r.Failed++
	}
	// A failed link still removed the member.
	if res.Status == groups.StatusRemoved || res.Status == groups.StatusLinked {
		r.Removed++
	}
	if res.Status == groups.StatusLinked {
		r.Linked++
	}
}

// Failures returns the results that did not succeed
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			out = append(out, res)
		}
	}
	return out
}
