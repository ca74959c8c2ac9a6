// Package mindegree orders small graphs by minimum degree, the default
// [nd.LeafOrderer].
//
// The orderer simulates symmetric elimination: it repeatedly eliminates a
// vertex of minimum degree in the current elimination graph and turns that
// vertex's remaining neighbors into a clique. Ties go to the lowest vertex
// index, which makes the result deterministic.
//
// Two families are supported:
//
//   - [nd.FamilyMinDegree] selects by exact degree
//   - [nd.FamilyColumnMinDegree] selects by an approximate degree, an upper
//     bound updated incrementally after each elimination in the manner of
//     approximate minimum degree codes
//
// The approximate family is the default for graphs derived from A*A' or
// A'*A, where exact degrees overstate the cost of dense rows.
package mindegree
