package rules

import (
	"github.com/smack-team/smack-go/internal/label"
)

// Accesses is a handle owning a label interner and the access rules
// defined between the interned labels. Rules are append-only for the
// lifetime of the handle; there is no removal.
//
// The handle is not safe for concurrent mutation. Callers that share
// one across goroutines must serialize access themselves.
type Accesses struct {
	interner *label.Interner

	// ruleLists is indexed by subject identity and grows with the
	// interner so every identity has a (possibly empty) list.
	ruleLists [][]Rule

	ruleCount int

	// hasLong records whether any interned label exceeds the short
	// format field width. Checked before short-format encoding.
	hasLong bool
}

// New creates an empty Accesses handle.
func New() *Accesses {
	return &Accesses{
		interner: label.NewInterner(),
	}
}

// Add appends a rule granting subject the given access types to object.
// The deny set defaults to the complement of the allow set, making the
// rule a complete one. Both labels are interned.
func (a *Accesses) Add(subject, object, allow string) error {
	subj, obj, err := a.internPair(subject, object)
	if err != nil {
		return err
	}
	allowMode, err := ParseMode(allow)
	if err != nil {
		return err
	}
	a.append(subj, Rule{
		Object: obj.ID(),
		Allow:  allowMode,
		Deny:   All &^ allowMode,
	})
	return nil
}

// AddModify appends a rule with explicit allow and deny sets. When the
// two sets do not cover every access type the rule is partial: applying
// it changes only the mentioned access types and needs modify-rule
// support on the control surface.
func (a *Accesses) AddModify(subject, object, allow, deny string) error {
	subj, obj, err := a.internPair(subject, object)
	if err != nil {
		return err
	}
	allowMode, err := ParseMode(allow)
	if err != nil {
		return err
	}
	denyMode, err := ParseMode(deny)
	if err != nil {
		return err
	}
	a.append(subj, Rule{
		Object: obj.ID(),
		Allow:  allowMode,
		Deny:   denyMode,
	})
	return nil
}

// internPair interns the subject and object labels, keeping the rule
// list array and the long-label flag in step with the interner. Labels
// interned before a later failure stay in the handle, matching the
// append-only model.
func (a *Accesses) internPair(subject, object string) (subj, obj *label.Label, err error) {
	subj, err = a.intern(subject)
	if err != nil {
		return nil, nil, err
	}
	obj, err = a.intern(object)
	if err != nil {
		return nil, nil, err
	}
	return subj, obj, nil
}

func (a *Accesses) intern(s string) (*label.Label, error) {
	l, err := a.interner.Intern(s)
	if err != nil {
		return nil, err
	}
	for len(a.ruleLists) < a.interner.Len() {
		a.ruleLists = append(a.ruleLists, nil)
	}
	if l.IsLong() {
		a.hasLong = true
	}
	return l, nil
}

func (a *Accesses) append(subj *label.Label, r Rule) {
	a.ruleLists[subj.ID()] = append(a.ruleLists[subj.ID()], r)
	a.ruleCount++
}

// LabelCount returns the number of interned labels.
func (a *Accesses) LabelCount() int { return a.interner.Len() }

// RuleCount returns the number of rules across all subjects.
func (a *Accesses) RuleCount() int { return a.ruleCount }

// Labels returns the interned labels in identity order. The slice is
// shared with the handle and must not be modified.
func (a *Accesses) Labels() []*label.Label { return a.interner.All() }

// Rules returns the rule list of the given subject label, or nil if the
// label is unknown or has no rules. The slice is shared with the handle
// and must not be modified.
func (a *Accesses) Rules(subject string) []Rule {
	l, ok := a.interner.Lookup(subject)
	if !ok {
		return nil
	}
	return a.ruleLists[l.ID()]
}
