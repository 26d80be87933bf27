// Package label validates SMACK label strings and interns them into
// stable, densely numbered identities.
//
// A label is an opaque MAC identity of 1-255 printable ASCII bytes.
// Every other component references labels through the small integer
// identities handed out by an Interner, so rule graphs and wire encoders
// never carry a second pointer graph.
package label
