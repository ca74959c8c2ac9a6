package nd_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/ndorder/pkg/graph"
	"github.com/matzehuels/ndorder/pkg/mindegree"
	"github.com/matzehuels/ndorder/pkg/nd"
	"github.com/matzehuels/ndorder/pkg/separator"
	"github.com/matzehuels/ndorder/pkg/sparse"
)

func ExampleEngine_Order() {
	// A 7-vertex path: 0-1-2-3-4-5-6
	var edges [][2]int
	for i := 0; i < 6; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	g, _ := graph.New(7, edges)

	opts := nd.DefaultOptions()
	opts.SmallThreshold = 2
	engine := nd.NewEngine(separator.LevelSet{}, mindegree.Orderer{})
	res, _ := engine.Order(context.Background(), g, opts)

	fmt.Println("perm:", res.Perm)
	fmt.Println("parent:", res.Parent)
	fmt.Println("components:", res.NComp())
	// Output:
	// perm: [6 4 5 2 0 1 3]
	// parent: [-1 0 1 1 0 4 4]
	// components: 7
}

func ExampleResult_OneBased() {
	// Lower triangle of an arrow matrix: row 3 couples to everything.
	p, _ := sparse.FromEntries(4, 4, []sparse.Entry{
		{Row: 3, Col: 0}, {Row: 3, Col: 1}, {Row: 3, Col: 2},
	})
	g, _ := graph.Build(p, graph.Symmetric)
	res, _ := nd.NewEngine(separator.LevelSet{}, mindegree.Orderer{}).
		Order(context.Background(), g, nd.DefaultOptions())

	perm, parent, membership := res.OneBased()
	fmt.Println(perm, parent, membership)
	// Output: [1 2 3 4] [0] [1 1 1 1]
}
