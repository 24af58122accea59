// Package report turns scan and remediation results into documents for
// people (text, terminal, markdown) and for tools (json, yaml, xml).
package report

import (
	"github.com/arthur-debert/dupes/pkg/errors"
	"github.com/arthur-debert/dupes/pkg/groups"
	"github.com/arthur-debert/dupes/pkg/index"
	"github.com/arthur-debert/dupes/pkg/remediate"
)

// Member is one path with its size resolved at report time
type Member struct {
	Path string `json:"path" yaml:"path"`
	// Size is -1 when the file could not be stat'ed.
	Size int64 `json:"size" yaml:"size"`
}

// Group is the serialized form of a duplicate group
type Group struct {
	Index       int      `json:"index" yaml:"index"`
	Fingerprint string   `json:"fingerprint" yaml:"fingerprint"`
	Canonical   Member   `json:"canonical" yaml:"canonical"`
	Duplicates  []Member `json:"duplicates" yaml:"duplicates"`
}

// Problem is a recovered failure with its taxonomy code
type Problem struct {
	Path   string `json:"path" yaml:"path"`
	Code   string `json:"code" yaml:"code"`
	Reason string `json:"reason" yaml:"reason"`
}

// Action is the serialized form of one remediation result
type Action struct {
	Path      string `json:"path" yaml:"path"`
	Canonical string `json:"canonical" yaml:"canonical"`
	Status    string `json:"status" yaml:"status"`
	Outcome   string `json:"outcome" yaml:"outcome"`
	Reason    string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Remediation summarizes a batch
type Remediation struct {
	BatchID   string   `json:"batch_id" yaml:"batch_id"`
	Transform string   `json:"transform" yaml:"transform"`
	DryRun    bool     `json:"dry_run" yaml:"dry_run"`
	Removed   int      `json:"removed" yaml:"removed"`
	Linked    int      `json:"linked" yaml:"linked"`
	Skipped   int      `json:"skipped" yaml:"skipped"`
	Failed    int      `json:"failed" yaml:"failed"`
	Actions   []Action `json:"actions" yaml:"actions"`
}

// Document is everything a report can show
type Document struct {
	Root             string       `json:"root" yaml:"root"`
	Stats            index.Stats  `json:"stats" yaml:"stats"`
	GroupCount       int          `json:"group_count" yaml:"group_count"`
	DuplicateCount   int          `json:"duplicate_count" yaml:"duplicate_count"`
	ReclaimableBytes int64        `json:"reclaimable_bytes" yaml:"reclaimable_bytes"`
	Groups           []Group      `json:"groups" yaml:"groups"`
	Problems         []Problem    `json:"problems" yaml:"problems"`
	Remediation      *Remediation `json:"remediation,omitempty" yaml:"remediation,omitempty"`
}

// Build assembles a document. Sizes are resolved now, per entry; a vanished
// file gets size -1 and does not stop the report.
func Build(res *index.Result, model *groups.Model, rem *remediate.Report) *Document {
	doc := &Document{
		Root:           res.Root,
		Stats:          res.Stats,
		GroupCount:     model.Len(),
		DuplicateCount: model.DuplicateCount(),
		Groups:         []Group{},
		Problems:       []Problem{},
	}
	doc.ReclaimableBytes, _ = model.Reclaimable()

	size := func(path string) int64 {
		n, err := model.Size(path)
		if err != nil {
			return -1
		}
		return n
	}

	for i, g := range model.All() {
		out := Group{
			Index:       i,
			Fingerprint: g.Fingerprint.String(),
			Canonical:   Member{Path: g.Canonical, Size: size(g.Canonical)},
		}
		for _, d := range g.Duplicates {
			out.Duplicates = append(out.Duplicates, Member{Path: d, Size: size(d)})
		}
		doc.Groups = append(doc.Groups, out)
	}

	for _, p := range res.Problems {
		doc.Problems = append(doc.Problems, Problem{
			Path:   p.Path,
			Code:   string(errors.GetErrorCode(p.Err)),
			Reason: p.Err.Error(),
		})
	}

	if rem != nil {
		doc.Remediation = summarize(rem)
	}
	return doc
}

func summarize(rem *remediate.Report) *Remediation {
	out := &Remediation{
		BatchID:   rem.BatchID,
		Transform: rem.Transform.String(),
		DryRun:    rem.DryRun,
		Removed:   rem.Removed,
		Linked:    rem.Linked,
		Skipped:   rem.Skipped,
		Failed:    rem.Failed,
		Actions:   []Action{},
	}
	for _, r := range rem.Results {
		out.Actions = append(out.Actions, Action{
			Path:      r.Path,
			Canonical: r.Canonical,
			Status:    r.Status.String(),
			Outcome:   string(r.Outcome),
			Reason:    r.Reason(),
		})
	}
	return out
}
