package gbr

import "sort"

const leaf = -1

// Node is one node of a regression tree. Leaves have Left == Right == -1.
type Node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	Value     float64 `json:"v"`
}

// Tree is a binary regression tree stored as a flat node slice rooted at 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Predict walks the tree for one row.
func (t *Tree) Predict(row []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Left == leaf {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// treeBuilder grows one squared-error tree on fixed rows and mutable targets.
type treeBuilder struct {
	x        [][]float64
	target   []float64
	maxDepth int
	minLeaf  int

	// gain accumulates the squared-error reduction per feature.
	gain   []float64
	nodes  []Node
	goLeft []bool
}

func newTreeBuilder(x [][]float64, target []float64, maxDepth, minLeaf int) *treeBuilder {
	return &treeBuilder{
		x:        x,
		target:   target,
		maxDepth: maxDepth,
		minLeaf:  minLeaf,
		gain:     make([]float64, len(x[0])),
		goLeft:   make([]bool, len(x)),
	}
}

// presort returns, per feature, the row indices in ascending feature order.
func presort(x [][]float64, rows []int) [][]int {
	nf := len(x[0])
	sorted := make([][]int, nf)
	for f := 0; f < nf; f++ {
		idx := append([]int(nil), rows...)
		sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]][f] < x[idx[b]][f] })
		sorted[f] = idx
	}
	return sorted
}

func (b *treeBuilder) grow(sorted [][]int) Tree {
	b.nodes = b.nodes[:0]
	b.split(sorted, 0)
	return Tree{Nodes: append([]Node(nil), b.nodes...)}
}

type splitChoice struct {
	feature   int
	threshold float64
	gain      float64
}

// split adds the node for the given rows and returns its index.
func (b *treeBuilder) split(sorted [][]int, depth int) int {
	rows := sorted[0]
	n := len(rows)
	sum := 0.0
	for _, i := range rows {
		sum += b.target[i]
	}

	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: leaf, Left: leaf, Right: leaf, Value: sum / float64(n)})

	if depth >= b.maxDepth || n < 2*b.minLeaf {
		return id
	}

	best, ok := b.bestSplit(sorted, sum)
	if !ok {
		return id
	}
	b.gain[best.feature] += best.gain

	for _, i := range rows {
		b.goLeft[i] = b.x[i][best.feature] <= best.threshold
	}
	left := make([][]int, len(sorted))
	right := make([][]int, len(sorted))
	for f, idx := range sorted {
		l := make([]int, 0, n)
		r := make([]int, 0, n)
		for _, i := range idx {
			if b.goLeft[i] {
				l = append(l, i)
			} else {
				r = append(r, i)
			}
		}
		left[f], right[f] = l, r
	}

	li := b.split(left, depth+1)
	ri := b.split(right, depth+1)
	b.nodes[id].Feature = best.feature
	b.nodes[id].Threshold = best.threshold
	b.nodes[id].Left = li
	b.nodes[id].Right = ri
	return id
}

// bestSplit scans every feature for the threshold with the largest
// squared-error reduction. Thresholds fall midway between distinct values.
func (b *treeBuilder) bestSplit(sorted [][]int, sum float64) (splitChoice, bool) {
	n := len(sorted[0])
	parent := sum * sum / float64(n)
	best := splitChoice{gain: 1e-12}
	found := false

	for f, idx := range sorted {
		leftSum := 0.0
		for k := 0; k < n-1; k++ {
			i := idx[k]
			leftSum += b.target[i]
			nl := k + 1
			nr := n - nl
			if nl < b.minLeaf {
				continue
			}
			if nr < b.minLeaf {
				break
			}
			cur, next := b.x[i][f], b.x[idx[k+1]][f]
			if cur == next {
				continue
			}
			rightSum := sum - leftSum
			g := leftSum*leftSum/float64(nl) + rightSum*rightSum/float64(nr) - parent
			if g > best.gain {
				best = splitChoice{feature: f, threshold: (cur + next) / 2, gain: g}
				found = true
			}
		}
	}
	return best, found
}
