package bvh

import (
	"math"
	"time"

	"github.com/heliotrace/heliotrace/geom"
	"github.com/heliotrace/heliotrace/log"
	"github.com/heliotrace/heliotrace/types"
)

const (
	// The number of split candidates evaluated per axis. Candidates are
	// scored concurrently so a denser sweep mostly costs goroutines.
	splitCandidatesPerAxis = 16

	// Axes with a bbox side below this threshold are not considered for
	// splitting.
	minSideLength float32 = 1e-4
)

// A callback invoked whenever the builder creates a new leaf. The callback
// receives the primitives assigned to the leaf and must record the range it
// stores them at via SetPrimitives.
type LeafCallback func(leaf *Node, items []geom.Triangle)

type splitScore struct {
	axis       int
	splitPoint float32

	leftCount, rightCount int
	score                 float32
}

type builder struct {
	logger log.Logger

	// Bvh nodes stored as a contiguous list.
	nodes []Node

	// Invoked to set up leaf primitive ranges.
	leafCb LeafCallback

	// The minimum number of primitives that are required for a leaf.
	minLeafItems int

	// A channel for receiving candidate scores.
	scoreChan chan splitScore

	nodeCount int
	leafCount int
	maxDepth  int
}

// Build a BVH over the given triangles using the surface area heuristic to
// score split candidates: score = count * partition bbox surface area, lower
// is better. The builder favors trace speed over build speed; the tree is
// built once per analysis and then queried face_count x sun_count times.
func Build(items []geom.Triangle, minLeafItems int, leafCb LeafCallback) []Node {
	b := &builder{
		logger:       log.New("bvh builder"),
		nodes:        make([]Node, 0, 2*len(items)),
		leafCb:       leafCb,
		minLeafItems: minLeafItems,
		scoreChan:    make(chan splitScore),
	}

	start := time.Now()
	b.partition(items, 0)
	b.logger.Debugf(
		"tree build time: %d ms, max depth: %d, nodes: %d, leafs: %d",
		time.Since(start).Nanoseconds()/1e6, b.maxDepth, b.nodeCount, b.leafCount,
	)
	return b.nodes
}

// Partition the work list into a subtree and return its root node index.
func (b *builder) partition(workList []geom.Triangle, depth int) uint32 {
	if depth > b.maxDepth {
		b.maxDepth = depth
	}

	bounds := geom.NewAABB()
	for _, item := range workList {
		itemBBox := item.BBox()
		bounds = bounds.Union(geom.AABB{Min: itemBBox[0], Max: itemBBox[1]})
	}

	var node Node
	node.SetBBox([2]types.Vec3{bounds.Min, bounds.Max})

	if len(workList) <= b.minLeafItems {
		return b.createLeaf(&node, workList)
	}

	// Score split candidates on all viable axes concurrently and keep the
	// best one that improves on the unsplit node score.
	bestScore := scorePartition(workList)
	var bestSplit *splitScore

	pendingScores := 0
	side := bounds.Max.Sub(bounds.Min)
	for axis := 0; axis < 3; axis++ {
		if side[axis] < minSideLength {
			continue
		}

		splitStep := side[axis] / float32(splitCandidatesPerAxis+1)
		for i := 1; i <= splitCandidatesPerAxis; i++ {
			splitPoint := bounds.Min[axis] + float32(i)*splitStep
			pendingScores++
			go func(axis int, splitPoint float32) {
				b.scoreChan <- scoreSplit(workList, axis, splitPoint)
			}(axis, splitPoint)
		}
	}

	for ; pendingScores > 0; pendingScores-- {
		candidate := <-b.scoreChan
		if candidate.score < bestScore {
			bestScore = candidate.score
			c := candidate
			bestSplit = &c
		}
	}

	// No split improves on the current node; emit a leaf.
	if bestSplit == nil {
		return b.createLeaf(&node, workList)
	}

	leftWorkList := make([]geom.Triangle, 0, bestSplit.leftCount)
	rightWorkList := make([]geom.Triangle, 0, bestSplit.rightCount)
	for _, item := range workList {
		if item.Center()[bestSplit.axis] < bestSplit.splitPoint {
			leftWorkList = append(leftWorkList, item)
		} else {
			rightWorkList = append(rightWorkList, item)
		}
	}

	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, node)
	b.nodeCount++

	leftNodeIndex := b.partition(leftWorkList, depth+1)
	rightNodeIndex := b.partition(rightWorkList, depth+1)
	b.nodes[nodeIndex].SetChildNodes(leftNodeIndex, rightNodeIndex)

	return uint32(nodeIndex)
}

// Set up the given node as a leaf containing all items in the work list and
// return its index in the node array.
func (b *builder) createLeaf(node *Node, workList []geom.Triangle) uint32 {
	b.leafCb(node, workList)

	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, *node)

	b.nodeCount++
	b.leafCount++

	return uint32(nodeIndex)
}

// Score a split candidate: left count * left bbox area + right count * right
// bbox area. Splits that produce an empty partition receive the worst
// possible score.
func scoreSplit(workList []geom.Triangle, axis int, splitPoint float32) splitScore {
	left := geom.NewAABB()
	right := geom.NewAABB()

	leftCount, rightCount := 0, 0
	for _, item := range workList {
		itemBBox := item.BBox()
		itemBounds := geom.AABB{Min: itemBBox[0], Max: itemBBox[1]}
		if item.Center()[axis] < splitPoint {
			left = left.Union(itemBounds)
			leftCount++
		} else {
			right = right.Union(itemBounds)
			rightCount++
		}
	}

	score := float32(math.MaxFloat32)
	if leftCount > 0 && rightCount > 0 {
		score = float32(leftCount)*surfaceArea(left) + float32(rightCount)*surfaceArea(right)
	}

	return splitScore{
		axis:       axis,
		splitPoint: splitPoint,
		leftCount:  leftCount,
		rightCount: rightCount,
		score:      score,
	}
}

// Score an unsplit work list.
func scorePartition(workList []geom.Triangle) float32 {
	bounds := geom.NewAABB()
	for _, item := range workList {
		itemBBox := item.BBox()
		bounds = bounds.Union(geom.AABB{Min: itemBBox[0], Max: itemBBox[1]})
	}
	return float32(len(workList)) * surfaceArea(bounds)
}

func surfaceArea(b geom.AABB) float32 {
	side := b.Max.Sub(b.Min)
	return 2 * (side[0]*side[1] + side[1]*side[2] + side[0]*side[2])
}
