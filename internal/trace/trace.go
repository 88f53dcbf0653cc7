package trace

import (
	"beantrace/internal/domain"
	"beantrace/internal/normalize"
)

// traceState is the mutable state of one traversal: lots already expanded
// and production orders whose relations have been claimed by a node.
// Both belong to the single call; nothing here outlives the trace.
type traceState struct {
	visited map[string]bool
	claimed map[string]bool
}

// frame is one pending expansion on the worklist: the lot to expand, the
// depth it was reached at, and the parent slot its node attaches to.
type frame struct {
	lot      string
	depth    int
	relation domain.Relation
	parent   *domain.LineageNode
}

func isDestination(rel domain.Relation) bool {
	return rel == domain.RelationProducedByConsuming || rel == domain.RelationTransferredTo
}

// Trace builds the lineage tree rooted at lotNo, following production
// relations both ways and transfers both ways, down to maxDepth levels.
// A maxDepth of zero or less selects DefaultMaxDepth.
//
// The traversal is a depth-first worklist: children are pushed in reverse
// so expansion order matches the recursive reading of the rules. For a
// fixed snapshot the resulting tree is identical across calls.
func (s *Session) Trace(lotNo string, maxDepth int) *domain.TraceResult {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	st := &traceState{
		visited: make(map[string]bool),
		claimed: make(map[string]bool),
	}

	var root *domain.LineageNode
	stack := []frame{{lot: normalize.Display(lotNo)}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, children := s.expand(st, f, maxDepth)
		switch {
		case f.parent == nil:
			root = node
		case isDestination(f.relation):
			f.parent.Destinations = append(f.parent.Destinations, node)
		default:
			f.parent.Sources = append(f.parent.Sources, node)
		}

		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return &domain.TraceResult{
		QueriedLot:       normalize.Display(lotNo),
		MaxDepth:         maxDepth,
		TotalNodesTraced: len(st.visited),
		Tree:             root,
	}
}

// expand resolves one frame into a node and the child frames it spawns.
//
// Termination checks come first: a lot seen before or reached at the depth
// bound stays a leaf, with the depth warning taking precedence at the
// bound. Past those, the lot is marked visited and an unknown lot becomes
// a NotFound leaf. Only then do the process-type rules produce children.
func (s *Session) expand(st *traceState, f frame, maxDepth int) (*domain.LineageNode, []frame) {
	key := normalize.Key(f.lot)
	node := &domain.LineageNode{LotNo: f.lot, Relation: f.relation, Depth: f.depth}

	if st.visited[key] || f.depth >= maxDepth {
		if f.depth >= maxDepth {
			node.Warning = domain.WarnMaxDepth
		} else {
			node.Warning = domain.WarnAlreadyVisited
		}
		node.ProcessTypes = s.profile(key).types
		return node, nil
	}

	st.visited[key] = true
	p := s.profile(key)
	if len(p.records) == 0 {
		node.ProcessTypes = []domain.ProcessType{domain.ProcessNotFound}
		return node, nil
	}

	node.ProcessTypes = p.types
	first := p.records[0]
	node.ItemNo = first.ItemNo
	node.Description = first.Description
	node.Unit = first.Unit
	node.LocationCode = first.LocationCode
	node.Counterparty = first.Counterparty
	node.Certification = first.Certification

	var children []frame
	seen := make(map[domain.Relation]map[string]bool)
	addChild := func(lot string, rel domain.Relation) {
		childKey := normalize.Key(lot)
		if childKey == "" {
			return
		}
		if seen[rel] == nil {
			seen[rel] = make(map[string]bool)
		}
		if seen[rel][childKey] {
			return
		}
		seen[rel][childKey] = true
		children = append(children, frame{
			lot:      normalize.Display(lot),
			depth:    f.depth + 1,
			relation: rel,
			parent:   node,
		})
	}

	// Output: the lot came out of a production order; the order's other
	// consumption lots are what it was made from.
	for _, order := range distinctOrders(p.byType[domain.ProcessOutput]) {
		if st.claimed[order] {
			continue
		}
		st.claimed[order] = true
		for _, rec := range s.snap.ProductionOrder(order) {
			if rec.ProcessType == domain.ProcessConsumption && rec.LotKey != key {
				addChild(rec.LotNo, domain.RelationConsumedToProduce)
			}
		}
	}

	// Consumption: the lot fed a production order; the order's other
	// output lots are what it became.
	for _, order := range distinctOrders(p.byType[domain.ProcessConsumption]) {
		if st.claimed[order] {
			continue
		}
		st.claimed[order] = true
		for _, rec := range s.snap.ProductionOrder(order) {
			if rec.ProcessType == domain.ProcessOutput && rec.LotKey != key {
				addChild(rec.LotNo, domain.RelationProducedByConsuming)
			}
		}
	}

	// Transfer: forward to each recorded destination, and back from every
	// other lot whose transfer landed in this one. A self-transfer shows
	// up as a destination and terminates as already-visited one level
	// down.
	transfers := p.byType[domain.ProcessTransfer]
	for _, rec := range transfers {
		if rec.LotDestKey != "" {
			addChild(rec.LotDest, domain.RelationTransferredTo)
		}
	}
	if len(transfers) > 0 {
		for _, rec := range s.snap.TransfersInto(key) {
			if rec.LotKey != key {
				addChild(rec.LotNo, domain.RelationTransferredFrom)
			}
		}
	}

	if p.isOrigin {
		node.IsOrigin = true
	}

	return node, children
}

// distinctOrders returns the folded production orders referenced by recs,
// first appearance first, empty keys skipped.
func distinctOrders(recs []domain.LotRecord) []string {
	var orders []string
	seen := make(map[string]bool)
	for _, rec := range recs {
		if rec.ProdOrderKey == "" || seen[rec.ProdOrderKey] {
			continue
		}
		seen[rec.ProdOrderKey] = true
		orders = append(orders, rec.ProdOrderKey)
	}
	return orders
}
