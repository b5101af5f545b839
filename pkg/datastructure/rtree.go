package datastructure

import (
	"container/heap"
	"math"
	"sort"
)

// R*-tree over city points, rewritten from the c++ implementation https://github.com/virtuald/r-star-tree/
// + delete (Guttman FindLeaf/CondenseTree) & best-first k nearest neighbours.
// https://infolab.usc.edu/csci599/Fall2001/paper/rstar-tree.pdf
// http://www-db.deis.unibo.it/courses/SI-LS/papers/Gut84.pdf
//
// distances inside the tree are planar: squared euclidean distance in (lat, lon) degree space.

func assertt(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}

const (
	REINSERT_P = 0.3
)

type RtreeBoundingBox struct {
	// number of dimensions
	Dim int
	// Edges[i][0] = low value, Edges[i][1] = high value
	// i = 0,...,Dim
	Edges [][2]float64
}

func NewRtreeBoundingBox(dim int, minVal []float64, maxVal []float64) RtreeBoundingBox {
	b := RtreeBoundingBox{Dim: dim, Edges: make([][2]float64, dim)}
	for axis := 0; axis < dim; axis++ {
		b.Edges[axis] = [2]float64{minVal[axis], maxVal[axis]}
	}

	return b
}

// NewPointBound returns the degenerate box of a single point. Edges[0] = lat, Edges[1] = lon.
func NewPointBound(lat, lon float64) RtreeBoundingBox {
	return NewRtreeBoundingBox(2, []float64{lat, lon}, []float64{lat, lon})
}

// reset forces all edges to extremes so we can stretch them later.
func reset(b RtreeBoundingBox) RtreeBoundingBox {
	newBB := RtreeBoundingBox{Dim: b.Dim, Edges: make([][2]float64, b.Dim)}
	for axis := 0; axis < b.Dim; axis++ {
		newBB.Edges[axis][0] = math.Inf(1)
		newBB.Edges[axis][1] = math.Inf(-1)
	}
	return newBB
}

// stretch returns the smallest box containing both b and bb.
func stretch(b RtreeBoundingBox, bb RtreeBoundingBox) RtreeBoundingBox {
	newBB := RtreeBoundingBox{Dim: b.Dim, Edges: make([][2]float64, b.Dim)}
	for axis := 0; axis < b.Dim; axis++ {
		newBB.Edges[axis][0] = math.Min(b.Edges[axis][0], bb.Edges[axis][0])
		newBB.Edges[axis][1] = math.Max(b.Edges[axis][1], bb.Edges[axis][1])
	}
	return newBB
}

// edgeDeltas returns the sum of all (high - low) for each dimension. (margin)
func edgeDeltas(b RtreeBoundingBox) float64 {
	distance := 0.0
	for axis := 0; axis < b.Dim; axis++ {
		distance += b.Edges[axis][1] - b.Edges[axis][0]
	}
	return distance
}

// area calculates the area (in N dimensions) of a bounding box.
func area(b RtreeBoundingBox) float64 {
	area := 1.0
	for axis := 0; axis < b.Dim; axis++ {
		area *= b.Edges[axis][1] - b.Edges[axis][0]
	}
	return area
}

// encloses determines if b fully contains bb.
func encloses(b RtreeBoundingBox, bb RtreeBoundingBox) bool {
	for axis := 0; axis < b.Dim; axis++ {
		if bb.Edges[axis][0] < b.Edges[axis][0] || b.Edges[axis][1] < bb.Edges[axis][1] {
			return false
		}
	}

	return true
}

// containsPoint. edges are inclusive.
func containsPoint(b RtreeBoundingBox, lat, lon float64) bool {
	return b.Edges[0][0] <= lat && lat <= b.Edges[0][1] &&
		b.Edges[1][0] <= lon && lon <= b.Edges[1][1]
}

// overlap calculates total overlapping region area (0 if no overlap).
func overlap(b RtreeBoundingBox, bb RtreeBoundingBox) float64 {
	area := 1.0
	for axis := 0; axis < b.Dim; axis++ {
		low := math.Max(b.Edges[axis][0], bb.Edges[axis][0])
		high := math.Min(b.Edges[axis][1], bb.Edges[axis][1])
		if high <= low {
			return 0.0
		}
		area *= high - low
	}

	return area
}

// distanceFromCenter  distances between the center of the bounding box and the center of the entry bb.
func (b *RtreeBoundingBox) distanceFromCenter(bb RtreeBoundingBox) float64 {
	distance := 0.0
	for axis := 0; axis < b.Dim; axis++ {
		centerB := (b.Edges[axis][0] + b.Edges[axis][1]) / 2.0
		centerBB := (bb.Edges[axis][0] + bb.Edges[axis][1]) / 2.0
		distance += (centerB - centerBB) * (centerB - centerBB)
	}

	return distance
}

// isBBSame determines if two bounding boxes are identical
func (b *RtreeBoundingBox) isBBSame(bb RtreeBoundingBox) bool {
	for axis := 0; axis < b.Dim; axis++ {
		if b.Edges[axis][0] != bb.Edges[axis][0] || b.Edges[axis][1] != bb.Edges[axis][1] {
			return false
		}
	}

	return true
}

func sortBoundedItemsByEdge(mAxis, edge int, items []*RtreeNode) {
	other := 1 - edge
	sort.SliceStable(items, func(i, j int) bool {
		bi, bj := items[i].getBound(), items[j].getBound()
		if bi.Edges[mAxis][edge] != bj.Edges[mAxis][edge] {
			return bi.Edges[mAxis][edge] < bj.Edges[mAxis][edge]
		}
		return bi.Edges[mAxis][other] < bj.Edges[mAxis][other]
	})
}

func sortDecreasingBoundedItemsByDistanceFromCenter(mCenter RtreeBoundingBox, items []*RtreeNode) {
	sort.SliceStable(items, func(i, j int) bool {
		return mCenter.distanceFromCenter(items[i].getBound()) > mCenter.distanceFromCenter(items[j].getBound())
	})
}

type BoundedItem interface {
	getBound() RtreeBoundingBox
	isLeafNode() bool
}

// rtree node. can be either a leaf node, an internal node or a leaf data entry.
type RtreeNode struct {
	// entries. leaf nodes hold leaf data entries, internal nodes hold child nodes.
	Items  []*RtreeNode
	Parent *RtreeNode

	Bound RtreeBoundingBox
	// IsLeaf. true if this node is a leafNode (its items are data entries).
	IsLeaf bool

	Leaf CityPoint // if this node is a leaf data entry
}

func (node *RtreeNode) isLeafNode() bool {
	return node.IsLeaf
}

func (node *RtreeNode) getBound() RtreeBoundingBox {
	return node.Bound
}

// boundOfItems recomputes the minimum bounding box of node's items.
func (node *RtreeNode) boundOfItems() RtreeBoundingBox {
	if len(node.Items) == 0 {
		return reset(node.Bound)
	}
	return groupBound(node.Items)
}

type Rtree struct {
	Root          *RtreeNode
	Size          int
	MinChildItems int
	MaxChildItems int
	Dimensions    int
	Height        int
}

func NewRtree(minChildItems, maxChildItems, dimensions int) *Rtree {
	assertt(minChildItems >= 1, "minChildItems must be at least 1")
	assertt(maxChildItems >= 2*minChildItems-1, "maxChildItems must be at least 2*minChildItems-1")
	return &Rtree{
		Root:          nil,
		Size:          0,
		Height:        0,
		MinChildItems: minChildItems,
		MaxChildItems: maxChildItems,
		Dimensions:    dimensions,
	}
}

func (rt *Rtree) InsertLeaf(bound RtreeBoundingBox, leaf CityPoint) {
	newLeaf := &RtreeNode{}
	newLeaf.Bound = bound
	newLeaf.Leaf = leaf

	rt.insertInternal(newLeaf, true)
	rt.Size++
}

func (rt *Rtree) insertInternal(leaf *RtreeNode, firstInsert bool) {
	if rt.Root == nil {
		rt.Root = &RtreeNode{}
		rt.Root.IsLeaf = true // set root as leaf node
		rt.Root.Items = make([]*RtreeNode, 0, rt.MaxChildItems+1)
		rt.Root.Items = append(rt.Root.Items, leaf)
		rt.Root.Bound = leaf.Bound
		leaf.Parent = rt.Root
		rt.Height = 1
		return
	}

	// I1: Invoke ChooseSubtree to find an appropriate leaf node N, in which to place the new entry E
	leafNode := rt.chooseSubtree(rt.Root, leaf.Bound)

	// I2: accommodate E in N.
	leafNode.Items = append(leafNode.Items, leaf)
	leaf.Parent = leafNode

	// I2: if node N has M+1 entries. invoke OverflowTreatment
	if len(leafNode.Items) > rt.MaxChildItems {
		rt.overflowTreatment(leafNode, firstInsert)
	}
}

func (rt *Rtree) overflowTreatment(level *RtreeNode, firstInsert bool) {
	// OT1: If the level is not the root level and this is the first
	// call of OverflowTreatment during the insertion of one data rectangle, then
	// invoke Reinsert. reinsertion is only done at the leaf level.
	if level != rt.Root && level.IsLeaf && firstInsert {
		rt.reinsert(level)
		return
	}

	// else invoke Split
	newNode := rt.split(level)

	// I3: If OverflowTreatment caused a split of the root, create a
	// new root whose children are the two resulting nodes (old root & newNode).
	if level == rt.Root {
		newRoot := &RtreeNode{}
		newRoot.IsLeaf = false

		newRoot.Items = make([]*RtreeNode, 0, rt.MaxChildItems+1)
		newRoot.Items = append(newRoot.Items, rt.Root, newNode)
		rt.Root.Parent = newRoot
		newNode.Parent = newRoot

		newRoot.Bound = stretch(rt.Root.Bound, newNode.Bound)

		rt.Root = newRoot
		rt.Height++
		return
	}

	parent := level.Parent
	newNode.Parent = parent
	parent.Items = append(parent.Items, newNode)
	parent.Bound = parent.boundOfItems()

	// I3: If OverflowTreatment was called and a split was
	// performed, propagate OverflowTreatment upwards if necessary
	if len(parent.Items) > rt.MaxChildItems {
		rt.overflowTreatment(parent, firstInsert)
	}
}

func (rt *Rtree) reinsert(node *RtreeNode) {
	nItems := len(node.Items)
	assertt(nItems == rt.MaxChildItems+1, "nItems must be equal to maxChildItems + 1")

	// The experiments have shown that p = 30% of M yields the best performance
	p := int(float64(nItems) * REINSERT_P)
	if p < 1 {
		p = 1
	}

	// RI1-RI2: sort the entries in decreasing order of the distance between the centers of
	// their rectangles and the center of the bounding rectangle of N
	sortDecreasingBoundedItemsByDistanceFromCenter(node.Bound, node.Items)

	// RI3: Remove the first p entries from N and adjust the bounding rectangle of N
	removedItems := make([]*RtreeNode, p)
	copy(removedItems, node.Items[:p])

	kept := make([]*RtreeNode, 0, rt.MaxChildItems+1)
	kept = append(kept, node.Items[p:]...)
	node.Items = kept

	rt.adjustTree(node)

	// RI4: starting with the maximum distance (far reinsert), invoke Insert to reinsert the entries
	for _, removedItem := range removedItems {
		rt.insertInternal(removedItem, false)
	}
}

// adjustTree recomputes the bounding boxes from node up to the root.
func (rt *Rtree) adjustTree(node *RtreeNode) {
	for n := node; n != nil; n = n.Parent {
		n.Bound = n.boundOfItems()
	}
}

func (rt *Rtree) chooseSubtree(node *RtreeNode, bound RtreeBoundingBox) *RtreeNode {
	// Insert I4: Adjust all covering rectangles in the insertion path
	// such that they are minimum bounding boxes enclosing their children rectangles
	node.Bound = stretch(node.Bound, bound)

	// CS2: If N is a leaf, return N
	if node.isLeafNode() {
		return node
	}

	chosen := 0

	if node.Items[0].isLeafNode() {
		// If the child pointers in N point to leaves, choose the entry in N whose rectangle needs least
		// overlap enlargement to include the new data rectangle. Resolve ties by least area enlargement,
		// then least margin enlargement, then smallest area.
		minOverlapEnlargement, minAreaEnlargement, minMarginEnlargement := math.Inf(1), math.Inf(1), math.Inf(1)
		for i, item := range node.Items {
			itemBB := item.getBound()
			enlarged := stretch(itemBB, bound)

			overlapBefore, overlapAfter := 0.0, 0.0
			for j, other := range node.Items {
				if i == j {
					continue
				}
				overlapBefore += overlap(itemBB, other.getBound())
				overlapAfter += overlap(enlarged, other.getBound())
			}
			overlapEnlargement := overlapAfter - overlapBefore
			areaEnlargement := area(enlarged) - area(itemBB)
			marginEnlargement := edgeDeltas(enlarged) - edgeDeltas(itemBB)

			if overlapEnlargement < minOverlapEnlargement ||
				(overlapEnlargement == minOverlapEnlargement && areaEnlargement < minAreaEnlargement) ||
				(overlapEnlargement == minOverlapEnlargement && areaEnlargement == minAreaEnlargement &&
					marginEnlargement < minMarginEnlargement) {
				minOverlapEnlargement = overlapEnlargement
				minAreaEnlargement = areaEnlargement
				minMarginEnlargement = marginEnlargement
				chosen = i
			}
		}

		return rt.chooseSubtree(node.Items[chosen], bound)
	}

	// CS2: if the childpointers in N do not point to leaves, choose the entry in N whose rectangle
	// needs least area enlargement to include the new data rectangle. Resolve ties by least margin
	// enlargement, then by the rectangle of smallest area.
	minAreaEnlargement, minMarginEnlargement := math.Inf(1), math.Inf(1)
	for i, item := range node.Items {
		itemBB := item.getBound()
		enlarged := stretch(itemBB, bound)

		areaEnlargement := area(enlarged) - area(itemBB)
		marginEnlargement := edgeDeltas(enlarged) - edgeDeltas(itemBB)
		if areaEnlargement < minAreaEnlargement ||
			(areaEnlargement == minAreaEnlargement && marginEnlargement < minMarginEnlargement) ||
			(areaEnlargement == minAreaEnlargement && marginEnlargement == minMarginEnlargement &&
				area(itemBB) < area(node.Items[chosen].getBound())) {
			minAreaEnlargement = areaEnlargement
			minMarginEnlargement = marginEnlargement
			chosen = i
		}
	}

	return rt.chooseSubtree(node.Items[chosen], bound)
}

func groupBound(items []*RtreeNode) RtreeBoundingBox {
	bound := reset(items[0].getBound())
	for _, item := range items {
		bound = stretch(bound, item.getBound())
	}
	return bound
}

func (rt *Rtree) split(node *RtreeNode) *RtreeNode {
	nItems := len(node.Items)
	// the k-th distribution (k = 1,....,(M-2m+2)) puts (m-1)+k entries in the first group
	distributionCount := nItems - 2*rt.MinChildItems + 1
	assertt(nItems == rt.MaxChildItems+1, "nItems must be equal to maxChildItems + 1")
	assertt(distributionCount > 0, "distributionCount must be greater than 0")

	// CSA1: For each axis sort the entries by the lower then by the upper value of their rectangles
	// and determine all distributions. Compute S, the sum of all margin-values of the different distributions.
	// CSA2: Choose the axis with the minimum S as split axis.
	splitAxis := 0
	minSplitMargin := math.Inf(1)
	for axis := 0; axis < rt.Dimensions; axis++ {
		margin := 0.0
		for edge := 0; edge < 2; edge++ {
			sortBoundedItemsByEdge(axis, edge, node.Items)
			for k := 0; k < distributionCount; k++ {
				splitAt := rt.MinChildItems + k
				margin += edgeDeltas(groupBound(node.Items[:splitAt])) + edgeDeltas(groupBound(node.Items[splitAt:]))
			}
		}

		if margin < minSplitMargin {
			minSplitMargin = margin
			splitAxis = axis
		}
	}

	// CSI1: Along the chosen split axis, choose the distribution with the minimum overlap-value.
	// Resolve ties by choosing the distribution with minimum area-value
	splitEdge, splitIndex := 0, rt.MinChildItems
	minOverlap, minArea := math.Inf(1), math.Inf(1)
	for edge := 0; edge < 2; edge++ {
		sortBoundedItemsByEdge(splitAxis, edge, node.Items)
		for k := 0; k < distributionCount; k++ {
			splitAt := rt.MinChildItems + k
			firstGroup := groupBound(node.Items[:splitAt])
			secondGroup := groupBound(node.Items[splitAt:])

			overlapVal := overlap(firstGroup, secondGroup)
			bbArea := area(firstGroup) + area(secondGroup)
			if overlapVal < minOverlap || (overlapVal == minOverlap && bbArea < minArea) {
				minOverlap = overlapVal
				minArea = bbArea
				splitEdge = edge
				splitIndex = splitAt
			}
		}
	}

	// S3: Distribute the items into two groups
	sortBoundedItemsByEdge(splitAxis, splitEdge, node.Items)

	newNode := &RtreeNode{}
	newNode.IsLeaf = node.IsLeaf
	newNode.Items = make([]*RtreeNode, 0, rt.MaxChildItems+1)
	newNode.Items = append(newNode.Items, node.Items[splitIndex:]...)
	for _, item := range newNode.Items {
		item.Parent = newNode
	}

	kept := make([]*RtreeNode, 0, rt.MaxChildItems+1)
	kept = append(kept, node.Items[:splitIndex]...)
	node.Items = kept

	node.Bound = node.boundOfItems()
	newNode.Bound = groupBound(newNode.Items)

	return newNode
}

// Delete removes the entry with the given id at exactly (lat, lon). returns false if no such entry exists.
func (rt *Rtree) Delete(id int, lat, lon float64) bool {
	if rt.Root == nil {
		return false
	}

	// D1: find the leaf node containing the record
	leafNode, idx := rt.findLeaf(rt.Root, id, lat, lon)
	if leafNode == nil {
		return false
	}

	// D2: remove the entry from the leaf node
	leafNode.Items = append(leafNode.Items[:idx], leafNode.Items[idx+1:]...)
	rt.Size--

	// D3: propagate changes upward, collecting entries of eliminated nodes
	orphans := rt.condenseTree(leafNode)

	// D4: shorten the tree. if the root has only one child after the tree has been adjusted,
	// make the child the new root
	for !rt.Root.IsLeaf && len(rt.Root.Items) == 1 {
		rt.Root = rt.Root.Items[0]
		rt.Root.Parent = nil
		rt.Height--
	}

	if rt.Root.IsLeaf && len(rt.Root.Items) == 0 {
		rt.Root = nil
		rt.Height = 0
	}

	// D3 (cont): reinsert all entries of nodes eliminated in condenseTree
	for _, orphan := range orphans {
		rt.insertInternal(orphan, false)
	}

	return true
}

func (rt *Rtree) findLeaf(node *RtreeNode, id int, lat, lon float64) (*RtreeNode, int) {
	if node.IsLeaf {
		for i, item := range node.Items {
			if item.Leaf.ID == id && item.Leaf.Lat == lat && item.Leaf.Lon == lon {
				return node, i
			}
		}
		return nil, -1
	}

	for _, child := range node.Items {
		if !containsPoint(child.getBound(), lat, lon) {
			continue
		}
		if leafNode, idx := rt.findLeaf(child, id, lat, lon); leafNode != nil {
			return leafNode, idx
		}
	}
	return nil, -1
}

func (rt *Rtree) condenseTree(node *RtreeNode) []*RtreeNode {
	orphans := []*RtreeNode{}

	n := node
	for n != rt.Root {
		parent := n.Parent
		if len(n.Items) < rt.MinChildItems {
			// CT3: eliminate under-full node
			for i, item := range parent.Items {
				if item == n {
					parent.Items = append(parent.Items[:i], parent.Items[i+1:]...)
					break
				}
			}
			orphans = collectLeafEntries(n, orphans)
		} else {
			// CT4: adjust covering rectangle
			n.Bound = n.boundOfItems()
		}
		n = parent
	}

	rt.Root.Bound = rt.Root.boundOfItems()
	return orphans
}

func collectLeafEntries(node *RtreeNode, entries []*RtreeNode) []*RtreeNode {
	if node.IsLeaf {
		return append(entries, node.Items...)
	}
	for _, child := range node.Items {
		entries = collectLeafEntries(child, entries)
	}
	return entries
}

type Point struct {
	Lat float64
	Lon float64
}

func NewPoint(lat, lon float64) Point {
	return Point{
		Lat: lat,
		Lon: lon,
	}
}

// minDist computes the square of the planar distance from a point to a rectangle.
// If the point is contained in the rectangle then the distance is zero.
func (p Point) minDist(r RtreeBoundingBox) float64 {
	// Edges[0] = {minLat, maxLat}
	// Edges[1] = {minLon, maxLon}
	rLat := math.Max(r.Edges[0][0], math.Min(p.Lat, r.Edges[0][1]))
	rLon := math.Max(r.Edges[1][0], math.Min(p.Lon, r.Edges[1][1]))

	return (p.Lat-rLat)*(p.Lat-rLat) + (p.Lon-rLon)*(p.Lon-rLon)
}

func (p Point) dist(o CityPoint) float64 {
	return (p.Lat-o.Lat)*(p.Lat-o.Lat) + (p.Lon-o.Lon)*(p.Lon-o.Lon)
}

// activeBranch is either a tree node still to be expanded or a leaf data entry ready to be reported.
type activeBranch struct {
	node    *RtreeNode
	isEntry bool
}

// nodes are expanded before entries at the same distance, so equal-distance entries all reach the
// queue and come out by ascending id.
func activeBranchLess(a, b activeBranch) bool {
	if a.isEntry != b.isEntry {
		return !a.isEntry
	}
	if a.isEntry {
		return a.node.Leaf.ID < b.node.Leaf.ID
	}
	return false
}

// NearestNeighboursPQ returns up to k entries ordered by increasing planar distance to p.
// best-first search: https://dl.acm.org/doi/10.1145/320248.320255
func (rt *Rtree) NearestNeighboursPQ(k int, p Point) []CityPoint {
	results := make([]CityPoint, 0, max(k, 0))
	if rt.Root == nil || k <= 0 {
		return results
	}

	pq := newPriorityQueue(activeBranchLess)
	heap.Push(pq, newPriorityQueueNode(p.minDist(rt.Root.Bound), activeBranch{node: rt.Root}))

	for pq.Len() > 0 && len(results) < k {
		branch := heap.Pop(pq).(*priorityQueueNode[activeBranch]).item
		if branch.isEntry {
			results = append(results, branch.node.Leaf)
			continue
		}

		for _, e := range branch.node.Items {
			if branch.node.IsLeaf {
				heap.Push(pq, newPriorityQueueNode(p.dist(e.Leaf), activeBranch{node: e, isEntry: true}))
			} else {
				heap.Push(pq, newPriorityQueueNode(p.minDist(e.getBound()), activeBranch{node: e}))
			}
		}
	}

	return results
}
