// Package harness runs classification scenarios described in YAML and
// compares the outcome with expected groups and golden snapshots.
//
// # Scenario Format
//
//	name: added_item
//	description: "Adding the item to a general rule raises lift enough"
//	item: x=1
//	measure: lift
//	minimal_improvement: 0.001  # optional
//	relevance_range: 0          # optional
//	allow_empty_items: false    # optional
//	rules:
//	  - antecedent: [a=1]
//	    consequent: y=1
//	    measures: { lift: 1.5 }
//	  - antecedent: [x=1, a=1]
//	    consequent: y=1
//	    measures: { lift: 1.6 }
//	expect:
//	  groups:
//	    - class: 3
//	      rules: ["a=1 => y=1", "x=1,a=1 => y=1"]
//	      gain: 0.0667            # optional, checked to 1e-4
//
// A scenario expecting a classification error sets expect.error to the
// error code (NO_RULES, NO_RELEVANT_RULES, INVALID_CONFIG,
// INVALID_COMPARISON) instead of listing groups. An expect block with
// neither expects no groups.
//
// # Golden Files
//
// RunWithGolden compares Snapshot output with
// testdata/golden/{scenario.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
