// Package store provides SQLite-backed storage for classification runs.
//
// Each run records the item of interest, the interest measure, the
// parameters and the rendered groups:
//   - runs: one row per classification pass
//   - run_groups: the groups of a run, in presentation order
//   - run_group_rules: the member rules of each group
//
// Runs are ordered by a logical seq assigned at write time, never by wall
// clock. Listing queries use ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Connections run in WAL mode with synchronous=NORMAL, a 5s busy timeout
// and foreign keys enforced. Schema changes are applied as user_version
// migrations when the database is opened.
package store
