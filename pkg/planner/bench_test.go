package planner

import (
	"math/rand"
	"testing"

	"github.com/ja7ad/audiograph/pkg/taskgraph"
)

// randomGraph builds a layered DAG of roughly n nodes, useful as a
// stand-in for the parsed graphs the planner sees in production: each
// layer's nodes connect to a handful of nodes in the next layer.
func randomGraph(n int, seed int64) *taskgraph.TaskGraph {
	r := rand.New(rand.NewSource(seed))
	g := taskgraph.New(n, n*2)
	for i := 0; i < n; i++ {
		g.AddTask(taskgraph.NewRandom(0.5, 1.5))
	}
	g.Rand = r

	layers := 6
	perLayer := n / layers
	if perLayer < 1 {
		perLayer = 1
	}
	for l := 0; l < layers-1; l++ {
		lo, hi := l*perLayer, (l+1)*perLayer
		nextLo, nextHi := hi, hi+perLayer
		if nextHi > n {
			nextHi = n
		}
		for i := lo; i < hi && i < n; i++ {
			for k := 0; k < 2 && nextLo+k < nextHi; k++ {
				g.AddEdge(i, nextLo+r.Intn(nextHi-nextLo))
			}
		}
	}
	return g
}

func BenchmarkHLFET(b *testing.B) {
	for i := 0; i < b.N; i++ {
		g := randomGraph(200, int64(i))
		if _, err := HLFET(g, 4); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkETF(b *testing.B) {
	for i := 0; i < b.N; i++ {
		g := randomGraph(200, int64(i))
		if _, err := ETF(g, 4); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCPFD(b *testing.B) {
	for i := 0; i < b.N; i++ {
		g := randomGraph(200, int64(i))
		if _, err := CPFD(g, 1); err != nil {
			b.Fatal(err)
		}
	}
}
