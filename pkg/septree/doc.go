// Package septree records the separator tree built by nested dissection and
// the component each vertex belongs to.
//
// # Overview
//
// Nested dissection splits a graph with a vertex separator and recurses on
// the two sides. Every separator and every leaf subgraph becomes a
// component. A [Tracker] hands out component ids in registration order,
// remembers each component's parent separator, and maps every vertex to the
// single component that owns it.
//
// # Invariants
//
// The tracker enforces the structure at registration time:
//
//   - a parent id is either [NoParent] or an earlier separator component
//   - a vertex is assigned to at most one component
//   - components are never empty
//
// Together these make the parent array a forest in which every parent id is
// strictly smaller than its children, so ids in increasing order are a
// topological order from roots down. [Tracker.Validate] additionally checks
// that every vertex has been assigned.
//
// # Visualization
//
// [Tracker.ToDOT] writes the tree as a Graphviz digraph; [Tracker.RenderSVG]
// renders it in-process with go-graphviz.
package septree
