// Package rules models SMACK access rules and maps them onto the
// kernel's control-file wire formats.
//
// An Accesses handle owns a label interner and one ordered rule list per
// subject label. Rules reference their object label by interner identity
// rather than by pointer, which keeps the graph compact and makes the
// serialization order stable: encoding walks labels in insertion order
// and, within a label, rules in the order they were added.
//
// The handle is built by Add/AddModify calls or by parsing a rule file,
// then either saved to a caller-supplied writer or applied to the live
// control surface. The surface speaks one of two formats, selected by
// probing which control file exists; see Apply for the fallback rules.
package rules
