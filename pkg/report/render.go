package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/dupes/pkg/ui/styles"
	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
)

// Renderer prints documents for people
type Renderer struct {
	out   io.Writer
	style styles.Styler
}

// NewRenderer creates a renderer; plain disables colors
func NewRenderer(out io.Writer, plain bool) *Renderer {
	return &Renderer{out: out, style: styles.Styler{Plain: plain}}
}

// Groups lists each group with its canonical first
func (r *Renderer) Groups(doc *Document) error {
	var b strings.Builder
	if len(doc.Groups) == 0 {
		b.WriteString(r.style.Render("Success", "No duplicates found") + "\n")
		_, err := io.WriteString(r.out, b.String())
		return err
	}

	for _, g := range doc.Groups {
		header := fmt.Sprintf("Group %d (%s, %d copies)", g.Index+1, shortFingerprint(g.Fingerprint), len(g.Duplicates)+1)
		b.WriteString(r.style.Render("Header", header) + "\n")
		fmt.Fprintf(&b, "  %s %s\n", r.style.Render("Canonical", g.Canonical.Path), r.style.Render("Muted", "("+sizeLabel(g.Canonical.Size)+")"))
		for _, d := range g.Duplicates {
			fmt.Fprintf(&b, "  %s %s\n", r.style.Render("Duplicate", d.Path), r.style.Render("Muted", "("+sizeLabel(d.Size)+")"))
		}
	}
	fmt.Fprintf(&b, "\n%d duplicate files in %d groups, %s reclaimable\n",
		doc.DuplicateCount, doc.GroupCount, humanize.Bytes(uint64(doc.ReclaimableBytes)))

	_, err := io.WriteString(r.out, b.String())
	return err
}

// Problems lists recovered failures, if any
func (r *Renderer) Problems(doc *Document) error {
	if len(doc.Problems) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(r.style.Render("Warning", fmt.Sprintf("%d paths could not be read", len(doc.Problems))) + "\n")
	for _, p := range doc.Problems {
		fmt.Fprintf(&b, "  %s %s\n", p.Path, r.style.Render("Muted", "["+p.Code+"]"))
	}
	_, err := io.WriteString(r.out, b.String())
	return err
}

// Remediation prints the per-member outcomes and the batch totals
func (r *Renderer) Remediation(doc *Document) error {
	rem := doc.Remediation
	if rem == nil {
		return nil
	}

	var b strings.Builder
	for _, a := range rem.Actions {
		switch a.Outcome {
		case "failed":
			fmt.Fprintf(&b, "%s %s: %s\n", r.style.Render("Error", "failed"), a.Path, a.Reason)
		case "skipped":
			fmt.Fprintf(&b, "%s %s: %s\n", r.style.Render("Warning", "skipped"), a.Path, a.Reason)
		case "planned":
			fmt.Fprintf(&b, "%s %s\n", r.style.Render("Muted", "would "+rem.Transform), a.Path)
		}
	}

	summary := fmt.Sprintf("Removed %d, linked %d, skipped %d, failed %d", rem.Removed, rem.Linked, rem.Skipped, rem.Failed)
	name := "Success"
	switch {
	case rem.DryRun:
		summary = fmt.Sprintf("Dry run: %d files would be changed", len(rem.Actions)-rem.Skipped-rem.Failed)
		name = "Muted"
	case rem.Failed > 0:
		name = "Warning"
	}
	b.WriteString(r.style.Render(name, summary) + "\n")

	_, err := io.WriteString(r.out, b.String())
	return err
}

// Markdown renders doc as markdown through glamour. When glamour cannot
// render, the raw markdown is printed instead.
func (r *Renderer) Markdown(doc *Document, width int) error {
	var b strings.Builder
	if err := WriteMarkdown(&b, doc); err != nil {
		return err
	}
	content := b.String()

	if !r.style.Plain {
		options := []glamour.TermRendererOption{glamour.WithAutoStyle()}
		if width > 0 {
			options = append(options, glamour.WithWordWrap(width))
		}
		if renderer, err := glamour.NewTermRenderer(options...); err == nil {
			if rendered, err := renderer.Render(content); err == nil {
				content = rendered
			}
		}
	}

	_, err := io.WriteString(r.out, content)
	return err
}
