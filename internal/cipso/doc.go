// Package cipso models the SMACK security-level and category mapping
// table and its control-file encoding.
//
// The table is structurally independent of the rule engine: entries
// keep their own label copies instead of interner identities, and the
// table is applied through its own pair of control files. Entries are
// append-only and keep input order.
package cipso
