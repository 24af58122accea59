// Package selection asks the operator what to do with the duplicates found.
//
// Options shown to the user are looked up in a table built alongside them;
// a label is never parsed back into a path.
package selection

import (
	"fmt"

	"github.com/arthur-debert/dupes/pkg/groups"
	"github.com/pterm/pterm"
)

// Prompter is the interactive input surface
type Prompter interface {
	Select(prompt string, options []string, defaultOption string) (string, error)
	MultiSelect(prompt string, options []string) ([]string, error)
}

// Action is the operator's top-level choice
type Action int

const (
	ActionRemove Action = iota
	ActionRemoveAndLink
	ActionSelectRemove
	ActionSelectRemoveAndLink
	ActionAbort
)

var menu = []struct {
	label  string
	action Action
}{
	{"Remove duplicates", ActionRemove},
	{"Remove duplicates and create symbolic links", ActionRemoveAndLink},
	{"Select duplicates to remove", ActionSelectRemove},
	{"Select duplicates to remove and create symbolic links", ActionSelectRemoveAndLink},
	{"Abort", ActionAbort},
}

// Links reports whether the action replaces duplicates with links
func (a Action) Links() bool {
	return a == ActionRemoveAndLink || a == ActionSelectRemoveAndLink
}

// Selective reports whether the action needs a per-member choice
func (a Action) Selective() bool {
	return a == ActionSelectRemove || a == ActionSelectRemoveAndLink
}

func (a Action) String() string {
	for _, item := range menu {
		if item.action == a {
			return item.label
		}
	}
	return "unknown"
}

// ChooseAction shows the main menu. The default is remove-and-link.
func ChooseAction(p Prompter) (Action, error) {
	labels := make([]string, len(menu))
	for i, item := range menu {
		labels[i] = item.label
	}

	chosen, err := p.Select("What do you want to do?", labels, menu[ActionRemoveAndLink].label)
	if err != nil {
		return ActionAbort, fmt.Errorf("failed to read selection: %w", err)
	}
	for _, item := range menu {
		if item.label == chosen {
			return item.action, nil
		}
	}
	return ActionAbort, fmt.Errorf("unexpected menu choice %q", chosen)
}

// ChooseMembers offers up to limit (canonical, duplicate) pairs and returns
// handles for the ones picked. limit <= 0 offers every pair.
func ChooseMembers(p Prompter, model *groups.Model, limit int, link bool) ([]groups.MemberRef, error) {
	refs := model.Refs()
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	if len(refs) == 0 {
		return nil, nil
	}

	labels := make([]string, 0, len(refs))
	byLabel := make(map[string]groups.MemberRef, len(refs))
	for i, ref := range refs {
		canonical, member, err := model.Resolve(ref)
		if err != nil {
			return nil, err
		}
		label := fmt.Sprintf("%d. %s (same as %s)", i+1, member, canonical)
		labels = append(labels, label)
		byLabel[label] = ref
	}

	prompt := "Which files do you want to delete?"
	if link {
		prompt = "Which files do you want to delete and create symbolic links?"
	}
	if total := model.DuplicateCount(); total > len(refs) {
		prompt = fmt.Sprintf("%s (only the first %d of %d are shown)", prompt, len(refs), total)
	}

	chosen, err := p.MultiSelect(prompt, labels)
	if err != nil {
		return nil, fmt.Errorf("failed to read selection: %w", err)
	}

	out := make([]groups.MemberRef, 0, len(chosen))
	for _, label := range chosen {
		ref, ok := byLabel[label]
		if !ok {
			return nil, fmt.Errorf("unexpected selection %q", label)
		}
		out = append(out, ref)
	}
	return out, nil
}

// Terminal is the pterm-backed Prompter
type Terminal struct{}

// NewTerminal creates the interactive prompter
func NewTerminal() *Terminal {
	return &Terminal{}
}

// Select shows a single-choice list
func (t *Terminal) Select(prompt string, options []string, defaultOption string) (string, error) {
	return pterm.DefaultInteractiveSelect.
		WithOptions(options).
		WithDefaultText(prompt).
		WithDefaultOption(defaultOption).
		Show()
}

// MultiSelect shows a checklist
func (t *Terminal) MultiSelect(prompt string, options []string) ([]string, error) {
	return pterm.DefaultInteractiveMultiselect.
		WithOptions(options).
		WithDefaultText(prompt).
		WithMaxHeight(len(options)).
		Show()
}

// Confirm asks a yes/no question
func (t *Terminal) Confirm(prompt string) (bool, error) {
	return pterm.DefaultInteractiveConfirm.
		WithDefaultText(prompt).
		WithDefaultValue(false).
		Show()
}
