package bvh

import (
	"testing"

	"github.com/heliotrace/heliotrace/geom"
	"github.com/heliotrace/heliotrace/types"
)

// Four well-separated quads (two triangles each) in the corners of the xz
// plane.
func cornerTriangles() []geom.Triangle {
	var items []geom.Triangle
	for _, c := range []types.Vec3{
		{-10, 0, -10},
		{10, 0, -10},
		{-10, 0, 10},
		{10, 0, 10},
	} {
		items = append(items,
			geom.NewTriangle(
				c.Add(types.XYZ(-1, 0, -1)),
				c.Add(types.XYZ(1, 0, -1)),
				c.Add(types.XYZ(1, 0, 1)),
			),
			geom.NewTriangle(
				c.Add(types.XYZ(-1, 0, -1)),
				c.Add(types.XYZ(1, 0, 1)),
				c.Add(types.XYZ(-1, 0, 1)),
			),
		)
	}
	return items
}

func TestLeafCallback(t *testing.T) {
	items := cornerTriangles()

	var cbCount, itemTotal int
	nodes := Build(items, 2, func(leaf *Node, leafItems []geom.Triangle) {
		leaf.SetPrimitives(uint32(itemTotal), uint32(len(leafItems)))
		cbCount++
		itemTotal += len(leafItems)
	})

	if expCount := 4; cbCount != expCount {
		t.Fatalf("expected leaf callback to be called %d times; called %d", expCount, cbCount)
	}
	if itemTotal != len(items) {
		t.Fatalf("expected callbacks to cover all %d items; covered %d", len(items), itemTotal)
	}
	if expNodes := 7; len(nodes) != expNodes {
		t.Fatalf("expected bvh tree to have %d nodes; got %d", expNodes, len(nodes))
	}
}

func TestNodeEncoding(t *testing.T) {
	var n Node

	n.SetChildNodes(3, 4)
	if n.Leaf() {
		t.Fatal("expected node with child indices to not be a leaf")
	}
	if l, r := n.ChildNodes(); l != 3 || r != 4 {
		t.Fatalf("expected child nodes (3, 4); got (%d, %d)", l, r)
	}

	n.SetPrimitives(0, 5)
	if !n.Leaf() {
		t.Fatal("expected node with primitive range to be a leaf")
	}
	if first, count := n.Primitives(); first != 0 || count != 5 {
		t.Fatalf("expected primitive range (0, 5); got (%d, %d)", first, count)
	}

	n.SetPrimitives(7, 2)
	if !n.Leaf() {
		t.Fatal("expected node with non-zero first primitive to be a leaf")
	}
	if first, count := n.Primitives(); first != 7 || count != 2 {
		t.Fatalf("expected primitive range (7, 2); got (%d, %d)", first, count)
	}
}

func TestSingleItemTree(t *testing.T) {
	items := cornerTriangles()[:1]

	nodes := Build(items, 4, func(leaf *Node, leafItems []geom.Triangle) {
		leaf.SetPrimitives(0, uint32(len(leafItems)))
	})

	if len(nodes) != 1 {
		t.Fatalf("expected a single-leaf tree; got %d nodes", len(nodes))
	}
	if !nodes[0].Leaf() {
		t.Fatal("expected root of single-item tree to be a leaf")
	}
}

func TestNodeBounds(t *testing.T) {
	items := cornerTriangles()

	nodes := Build(items, 2, func(leaf *Node, leafItems []geom.Triangle) {
		leaf.SetPrimitives(0, uint32(len(leafItems)))
	})

	root := nodes[0]
	if root.Min != (types.Vec3{-11, 0, -11}) || root.Max != (types.Vec3{11, 0, 11}) {
		t.Fatalf("expected root bounds [-11 0 -11]..[11 0 11]; got %v..%v", root.Min, root.Max)
	}
}
