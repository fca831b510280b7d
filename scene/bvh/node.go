package bvh

import (
	"github.com/heliotrace/heliotrace/types"
)

// Node is a BVH node packed for device upload (two float4-aligned halves).
// Interior nodes store the left/right child indices in LData/RData. Leaf
// nodes store the negated index of their first primitive in LData and the
// primitive count in RData. Since node 0 is always the root and can never be
// a child, LData > 0 identifies interior nodes.
type Node struct {
	Min   types.Vec3
	LData int32

	Max   types.Vec3
	RData int32
}

// Set node bounding box.
func (n *Node) SetBBox(bbox [2]types.Vec3) {
	n.Min = bbox[0]
	n.Max = bbox[1]
}

// Set left and right child node indices.
func (n *Node) SetChildNodes(left, right uint32) {
	n.LData = int32(left)
	n.RData = int32(right)
}

// Get left and right child node indices.
func (n *Node) ChildNodes() (left, right uint32) {
	return uint32(n.LData), uint32(n.RData)
}

// Set first primitive index and primitive count, marking the node as a leaf.
func (n *Node) SetPrimitives(first, count uint32) {
	n.LData = -int32(first)
	n.RData = int32(count)
}

// Report whether the node is a leaf.
func (n *Node) Leaf() bool {
	return n.LData <= 0
}

// Get first primitive index and primitive count for a leaf node.
func (n *Node) Primitives() (first, count uint32) {
	return uint32(-n.LData), uint32(n.RData)
}
