package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/smack-team/smack-go/internal/label"
)

func TestAddDefaultsDeny(t *testing.T) {
	a := New()
	if err := a.Add("alice", "bob", "rx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rs := a.Rules("alice")
	if len(rs) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rs))
	}
	if rs[0].Allow != Read|Execute {
		t.Errorf("expected allow rx, got %s", rs[0].Allow)
	}
	if rs[0].Deny != Write|Append|Transmute|Lock {
		t.Errorf("expected deny watl, got %s", rs[0].Deny)
	}
	if rs[0].partial() {
		t.Error("defaulted rule must not be partial")
	}
}

func TestAddModifyExplicitDeny(t *testing.T) {
	a := New()
	if err := a.AddModify("alice", "bob", "r", "w"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rs := a.Rules("alice")
	if rs[0].Allow != Read {
		t.Errorf("expected allow r, got %s", rs[0].Allow)
	}
	if rs[0].Deny != Write {
		t.Errorf("expected deny w, got %s", rs[0].Deny)
	}
	if !rs[0].partial() {
		t.Error("expected a partial rule")
	}
}

func TestAddCounts(t *testing.T) {
	a := New()
	if a.LabelCount() != 0 || a.RuleCount() != 0 {
		t.Fatal("expected empty handle")
	}

	mustAdd := func(s, o, acc string) {
		t.Helper()
		if err := a.Add(s, o, acc); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	mustAdd("alice", "bob", "r")
	mustAdd("alice", "carol", "rw")
	mustAdd("bob", "alice", "x")

	if a.LabelCount() != 3 {
		t.Errorf("expected 3 labels, got %d", a.LabelCount())
	}
	if a.RuleCount() != 3 {
		t.Errorf("expected 3 rules, got %d", a.RuleCount())
	}
	if len(a.Rules("alice")) != 2 {
		t.Errorf("expected 2 rules for alice, got %d", len(a.Rules("alice")))
	}
	if a.Rules("missing") != nil {
		t.Error("expected nil rules for unknown label")
	}
}

func TestAddSelfRule(t *testing.T) {
	// Subject and object may be the same label; it is interned once.
	a := New()
	if err := a.Add("alice", "alice", "rwx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.LabelCount() != 1 {
		t.Errorf("expected 1 label, got %d", a.LabelCount())
	}
	if rs := a.Rules("alice"); rs[0].Object != 0 {
		t.Errorf("expected object id 0, got %d", rs[0].Object)
	}
}

func TestAddInvalidLabel(t *testing.T) {
	a := New()
	if err := a.Add("-bad", "bob", "r"); !errors.Is(err, label.ErrInvalidLabel) {
		t.Errorf("expected ErrInvalidLabel, got %v", err)
	}
	if err := a.Add("alice", "b/ad", "r"); !errors.Is(err, label.ErrInvalidLabel) {
		t.Errorf("expected ErrInvalidLabel, got %v", err)
	}

	// The subject interned before the object failed stays interned.
	if a.LabelCount() != 1 {
		t.Errorf("expected 1 label, got %d", a.LabelCount())
	}
	if a.RuleCount() != 0 {
		t.Errorf("expected no rules, got %d", a.RuleCount())
	}
}

func TestAddInvalidMode(t *testing.T) {
	a := New()
	if err := a.Add("alice", "bob", "rq"); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
	if err := a.AddModify("alice", "bob", "r", "zz"); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
	if a.RuleCount() != 0 {
		t.Errorf("expected no rules, got %d", a.RuleCount())
	}
}

func TestLongLabelTracking(t *testing.T) {
	a := New()
	if err := a.Add("alice", "bob", "r"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.hasLong {
		t.Error("expected no long labels yet")
	}

	if err := a.Add(strings.Repeat("a", 24), "bob", "r"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.hasLong {
		t.Error("expected long label flag after 24-byte label")
	}
}
