// Package harness runs declarative storage scenarios against the
// pluggable backends and compares their transcripts.
//
// A scenario is a YAML file naming a sequence of storage operations
// (save, get, all, find, done-by-id, done-by-name), the backends to run
// them on, and assertions over the outcome. The harness normalizes each
// run into a transcript: backend-native identities become save-order
// placeholders ("id#0", "id#1"), and result lists whose order the
// contract leaves unspecified are sorted. One golden file per scenario
// therefore covers every backend it lists.
//
// Backend-native identities are still observable through the raw_ids and
// distinct_ids assertions, which see the identities as issued rather
// than the normalized placeholders.
package harness
