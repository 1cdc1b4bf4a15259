// Package measure models the interestingness measures attached to mined
// association rules (support, confidence, lift, ...).
//
// A measure has a kind that fixes its neutral point:
//
//   - ZeroCentered (support, confidence): relevant above 0 + range.
//   - OneCentered (lift, conviction, odds ratio): relevant above 1 + range.
//     Values below 1 describe a negative dependency, so two values can only
//     be compared when they lie on the same side of 1.
//   - HalfCentered (cosine): relevant above 0.5 + range.
//
// The set of kinds is closed. Relevance and gain are dispatched through
// per-kind tables rather than through an interface hierarchy.
package measure
