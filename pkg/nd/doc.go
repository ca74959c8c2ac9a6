// Package nd computes nested dissection fill-reducing orderings.
//
// # Overview
//
// Eliminating the rows and columns of a sparse symmetric matrix in a good
// order keeps its Cholesky factor sparse. Nested dissection finds such an
// order by cutting the adjacency graph with a small vertex separator,
// ordering both halves recursively, and eliminating the separator last.
//
// An [Engine] drives that recursion. It relies on two collaborators:
//
//   - a [SeparatorOracle] that splits a graph into A, B and a separator
//   - a [LeafOrderer] that orders subgraphs too small to be worth splitting
//
// Packages separator and mindegree provide default implementations; any
// other implementation can be injected.
//
// # Basic Usage
//
//	g, err := graph.Build(pattern, graph.Symmetric)
//	if err != nil {
//	    return err
//	}
//	engine := nd.NewEngine(separator.LevelSet{}, mindegree.Orderer{})
//	res, err := engine.Order(ctx, g, nd.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Perm, res.Parent, res.Membership)
//
// # Components
//
// Every separator and every leaf is a component. Ids are handed out in the
// depth-first discovery order of the recursion: a separator before its A
// side, the A side before the B side. [Result.Parent] is the separator tree
// and [Result.Membership] maps vertices to components. [Compose] turns the
// tree into the permutation by emitting every subtree in postorder.
//
// # Control Parameters
//
// [Options] carries the threshold below which subgraphs become leaves, the
// separator acceptance ratio, component splitting, the leaf ordering
// strategy and the number of workers. [OptionsFromVector] reads the same
// parameters from a positional vector.
//
// # Concurrency
//
// With Options.Workers above one, independent subgraphs are processed by
// several goroutines. Components are numbered after all work has finished,
// so the result is identical to a sequential run.
package nd
