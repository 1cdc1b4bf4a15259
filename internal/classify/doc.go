// Package classify reduces a set of mined association rules to the groups
// that carry new information about a single item of interest.
//
// PIPELINE:
//
//  1. Empty-value filter: rules with an "attribute=" item are dropped unless
//     Config.AllowEmptyItems is set.
//  2. Relevance filter: rules whose interest measure is missing or does not
//     clear Config.RelevanceRange are dropped.
//  3. Indexing: length-2 rules are indexed by Key(0); length-3 rules that
//     contain the item of interest become candidates.
//  4. Gain gate: a candidate with one or two indexed generalizations is kept
//     only if its smallest gain over them reaches Config.MinimalImprovement.
//  5. Assignment: kept candidates are classified into groups 2..8, and
//     mutual length-2 pairs around the item form group 1.
//
// Classification is pure: the input rules are never modified and no state
// survives a call. ClassifyEach fans one call out per item of interest.
//
// ORDERING:
//
// Groups 2..8 appear in candidate input order, followed by group 1 pairs in
// index order. The index is insertion ordered: the first occurrence of a key
// fixes its position, the last occurrence wins its value.
package classify
