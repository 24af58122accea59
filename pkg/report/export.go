package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arthur-debert/dupes/pkg/errors"
	"github.com/beevik/etree"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// ExportFormat is a machine- or document-oriented output format
type ExportFormat string

const (
	ExportJSON     ExportFormat = "json"
	ExportYAML     ExportFormat = "yaml"
	ExportXML      ExportFormat = "xml"
	ExportMarkdown ExportFormat = "markdown"
)

// ParseExportFormat accepts the format names and their common aliases
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(s) {
	case "json":
		return ExportJSON, nil
	case "yaml", "yml":
		return ExportYAML, nil
	case "xml":
		return ExportXML, nil
	case "markdown", "md":
		return ExportMarkdown, nil
	default:
		return "", errors.Newf(errors.ErrInvalidInput, "unknown report format: %s", s).
			WithDetail("valid", "json, yaml, xml, markdown")
	}
}

// Write encodes doc to w in the given format
func Write(w io.Writer, doc *Document, format ExportFormat) error {
	switch format {
	case ExportJSON:
		return WriteJSON(w, doc)
	case ExportYAML:
		return WriteYAML(w, doc)
	case ExportXML:
		return WriteXML(w, doc)
	case ExportMarkdown:
		return WriteMarkdown(w, doc)
	default:
		return errors.Newf(errors.ErrInvalidInput, "unknown report format: %s", format)
	}
}

// Export writes doc to the file at dest. The destination must be a file
// path inside an existing directory; anything else is a configuration
// error and nothing is written.
func Export(dest string, doc *Document, format ExportFormat) error {
	if err := ValidateDestination(dest); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Write(&buf, doc, format); err != nil {
		return err
	}
	if err := os.WriteFile(dest, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrConfigValid, "cannot write report to %s", dest).WithPath(dest)
	}
	return nil
}

// ValidateDestination checks that dest can receive a report file
func ValidateDestination(dest string) error {
	if strings.TrimSpace(dest) == "" {
		return errors.New(errors.ErrConfigValid, "report destination is empty")
	}
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		return errors.Newf(errors.ErrConfigValid, "report destination %s is a directory", dest).WithPath(dest)
	}
	parent := filepath.Dir(dest)
	info, err := os.Stat(parent)
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigValid, "report directory %s does not exist", parent).WithPath(dest)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrConfigValid, "report directory %s is not a directory", parent).WithPath(dest)
	}
	return nil
}

// WriteJSON writes doc as indented JSON
func WriteJSON(w io.Writer, doc *Document) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode JSON report")
	}
	return nil
}

// WriteYAML writes doc as YAML
func WriteYAML(w io.Writer, doc *Document) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode YAML report")
	}
	return encoder.Close()
}

// WriteXML writes doc as an XML document
func WriteXML(w io.Writer, doc *Document) error {
	x := etree.NewDocument()
	x.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := x.CreateElement("dupes")
	root.CreateAttr("root", doc.Root)

	stats := root.CreateElement("stats")
	stats.CreateAttr("directories", strconv.Itoa(doc.Stats.Directories))
	stats.CreateAttr("files", strconv.Itoa(doc.Stats.Files))
	stats.CreateAttr("hashed", strconv.Itoa(doc.Stats.Hashed))
	stats.CreateAttr("skipped", strconv.Itoa(doc.Stats.Skipped))
	stats.CreateAttr("unreadable", strconv.Itoa(doc.Stats.Unreadable))
	stats.CreateAttr("groups", strconv.Itoa(doc.GroupCount))
	stats.CreateAttr("duplicates", strconv.Itoa(doc.DuplicateCount))
	stats.CreateAttr("reclaimable", strconv.FormatInt(doc.ReclaimableBytes, 10))

	groupsEl := root.CreateElement("groups")
	for _, g := range doc.Groups {
		el := groupsEl.CreateElement("group")
		el.CreateAttr("index", strconv.Itoa(g.Index))
		el.CreateAttr("fingerprint", g.Fingerprint)
		addMember(el, "canonical", g.Canonical)
		for _, d := range g.Duplicates {
			addMember(el, "duplicate", d)
		}
	}

	problems := root.CreateElement("problems")
	for _, p := range doc.Problems {
		el := problems.CreateElement("problem")
		el.CreateAttr("path", p.Path)
		el.CreateAttr("code", p.Code)
		el.SetText(p.Reason)
	}

	if rem := doc.Remediation; rem != nil {
		el := root.CreateElement("remediation")
		el.CreateAttr("batch", rem.BatchID)
		el.CreateAttr("transform", rem.Transform)
		el.CreateAttr("dry-run", strconv.FormatBool(rem.DryRun))
		el.CreateAttr("removed", strconv.Itoa(rem.Removed))
		el.CreateAttr("linked", strconv.Itoa(rem.Linked))
		el.CreateAttr("skipped", strconv.Itoa(rem.Skipped))
		el.CreateAttr("failed", strconv.Itoa(rem.Failed))
		for _, a := range rem.Actions {
			ae := el.CreateElement("action")
			ae.CreateAttr("path", a.Path)
			ae.CreateAttr("canonical", a.Canonical)
			ae.CreateAttr("status", a.Status)
			ae.CreateAttr("outcome", a.Outcome)
			if a.Reason != "" {
				ae.SetText(a.Reason)
			}
		}
	}

	x.Indent(2)
	if _, err := x.WriteTo(w); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to write XML report")
	}
	return nil
}

func addMember(parent *etree.Element, tag string, m Member) {
	el := parent.CreateElement(tag)
	el.CreateAttr("size", strconv.FormatInt(m.Size, 10))
	el.SetText(m.Path)
}

// WriteMarkdown writes doc as a markdown document
func WriteMarkdown(w io.Writer, doc *Document) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Duplicates in `%s`\n\n", doc.Root)
	fmt.Fprintf(&b, "- Files hashed: %d\n", doc.Stats.Hashed)
	fmt.Fprintf(&b, "- Duplicate groups: %d\n", doc.GroupCount)
	fmt.Fprintf(&b, "- Duplicate files: %d\n", doc.DuplicateCount)
	fmt.Fprintf(&b, "- Reclaimable: %s\n", humanize.Bytes(uint64(doc.ReclaimableBytes)))

	if len(doc.Groups) == 0 {
		b.WriteString("\nNo duplicates found.\n")
	}
	for _, g := range doc.Groups {
		fmt.Fprintf(&b, "\n## Group %d `%s`\n\n", g.Index+1, shortFingerprint(g.Fingerprint))
		fmt.Fprintf(&b, "- **%s** (%s, kept)\n", g.Canonical.Path, sizeLabel(g.Canonical.Size))
		for _, d := range g.Duplicates {
			fmt.Fprintf(&b, "- %s (%s)\n", d.Path, sizeLabel(d.Size))
		}
	}

	if len(doc.Problems) > 0 {
		b.WriteString("\n## Problems\n\n| Path | Code | Reason |\n| --- | --- | --- |\n")
		for _, p := range doc.Problems {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(p.Path), p.Code, cell(p.Reason))
		}
	}

	if rem := doc.Remediation; rem != nil {
		title := "Remediation"
		if rem.DryRun {
			title = "Remediation (dry run)"
		}
		fmt.Fprintf(&b, "\n## %s\n\n", title)
		fmt.Fprintf(&b, "Removed %d, linked %d, skipped %d, failed %d.\n", rem.Removed, rem.Linked, rem.Skipped, rem.Failed)
		if len(rem.Actions) > 0 {
			b.WriteString("\n| Path | Outcome | Status | Reason |\n| --- | --- | --- | --- |\n")
			for _, a := range rem.Actions {
				fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", cell(a.Path), a.Outcome, a.Status, cell(a.Reason))
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

func sizeLabel(size int64) string {
	if size < 0 {
		return "missing"
	}
	return humanize.Bytes(uint64(size))
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
