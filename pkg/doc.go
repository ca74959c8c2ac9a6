// Package pkg provides the libraries behind ndorder, a nested dissection
// ordering engine for sparse matrices.
//
// # Overview
//
// Nested dissection reduces the fill of a sparse Cholesky or QR
// factorization by recursively removing small vertex separators from the
// adjacency graph of the matrix and numbering every separator after the
// two halves it splits. The pkg directory is organized into four areas:
//
//  1. Model: [sparse] patterns and the [graph] derived from them
//  2. Engine: [nd] (scheduler and permutation composer), [septree]
//     (separator tree), and the default collaborators [separator] and
//     [mindegree]
//  3. Analysis and I/O: [symbolic] fill statistics and [io] file formats
//  4. Infrastructure: [pipeline], [cache], [config], [api], [httputil] and
//     [observability]
//
// # Architecture
//
// The typical data flow through ndorder:
//
//	Matrix Market / JSON pattern
//	         ↓
//	    [io] package (read the pattern)
//	         ↓
//	    [graph] package (tril(A), A*A' or A'*A adjacency)
//	         ↓
//	    [nd] package (dissect, order leaves, compose the permutation)
//	         ↓
//	    [symbolic] package (fill of the result)
//	         ↓
//	    JSON ordering, DOT/SVG separator tree
//
// # Quick Start
//
// Order a pattern with the default separator oracle and leaf orderer:
//
//	import (
//	    "context"
//	    "fmt"
//
//	    "github.com/matzehuels/ndorder/pkg/graph"
//	    "github.com/matzehuels/ndorder/pkg/io"
//	    "github.com/matzehuels/ndorder/pkg/mindegree"
//	    "github.com/matzehuels/ndorder/pkg/nd"
//	    "github.com/matzehuels/ndorder/pkg/separator"
//	)
//
//	p, _ := io.ImportMatrix("bcsstk01.mtx")
//	g, _ := graph.Build(p, graph.Symmetric)
//	engine := nd.NewEngine(separator.LevelSet{}, mindegree.Orderer{})
//	res, _ := engine.Order(context.Background(), g, nd.DefaultOptions())
//	fmt.Println(res.Perm, res.Parent)
//
// Or run the cached pipeline used by the CLI and the HTTP service:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, _ := runner.Execute(ctx, pipeline.Options{Input: "bcsstk01.mtx", Analyze: true})
//
// # Custom Separators
//
// The engine never computes separators itself. Any [nd.SeparatorOracle]
// can be plugged in, including a plain function through [nd.OracleFunc];
// the same holds for leaf orderings and [nd.LeafOrderer].
//
// [sparse]: https://pkg.go.dev/github.com/matzehuels/ndorder/pkg/sparse
// [graph]: https://pkg.go.dev/github.com/matzehuels/ndorder/pkg/graph
// [nd]: https://pkg.go.dev/github.com/matzehuels/ndorder/pkg/nd
// [nd.SeparatorOracle]: https://pkg.go.dev/github.com/matzehuels/ndorder/pkg/nd#SeparatorOracle
// [nd.OracleFunc]: https://pkg.go.dev/github.com/matzehuels/ndorder/pkg/nd#OracleFunc
// [nd.LeafOrderer]: https://pkg.go.dev/github.com/matzehuels/ndorder/pkg/nd#LeafOrderer
// [septree]: https://pkg.go.dev/github.com/matzehuels/ndorder/pkg/septree
// [separator]: https://pkg.go.dev/github.com/matzehuels/ndorder/pkg/separator
// [mindegree]: https://pkg.go.dev/github.com/matzehuels/ndorder/pkg/mindegree
// [symbolic]: https://pkg.go.dev/github.com/matzehuels/ndorder/pkg/symbolic
// [io]: https://pkg.go.dev/github.com/matzehuels/ndorder/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/ndorder/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/ndorder/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/ndorder/pkg/config
// [api]: https://pkg.go.dev/github.com/matzehuels/ndorder/pkg/api
// [httputil]: https://pkg.go.dev/github.com/matzehuels/ndorder/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/ndorder/pkg/observability
package pkg
