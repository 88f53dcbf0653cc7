package domain

// Relation labels the edge between a lineage node and one of its children.
type Relation string

const (
	// RelationConsumedToProduce tags a source lot whose material fed the
	// production order that produced the parent lot.
	RelationConsumedToProduce Relation = "consumed-to-produce"
	// RelationProducedByConsuming tags a destination lot produced by the
	// production order that consumed the parent lot.
	RelationProducedByConsuming Relation = "produced-by-consuming"
	// RelationTransferredTo tags a destination lot the parent was moved into.
	RelationTransferredTo Relation = "transferred-to"
	// RelationTransferredFrom tags a source lot that was moved into the parent.
	RelationTransferredFrom Relation = "transferred-from"
)

// TraceWarning marks a lineage node whose expansion stopped early.
type TraceWarning string

const (
	// WarnAlreadyVisited marks a lot encountered a second time in one
	// traversal. It stays a leaf; the first encounter carries the children.
	WarnAlreadyVisited TraceWarning = "already-visited"
	// WarnMaxDepth marks a lot reached at the depth bound.
	WarnMaxDepth TraceWarning = "max-depth"
)

// LineageNode is one lot visited during a trace. Children in Sources and
// Destinations carry the Relation that linked them to this node.
type LineageNode struct {
	LotNo         string         `json:"lot_no"`
	Relation      Relation       `json:"relation,omitempty"`
	ProcessTypes  []ProcessType  `json:"process_types"`
	ItemNo        string         `json:"item_no,omitempty"`
	Description   string         `json:"description,omitempty"`
	Unit          string         `json:"unit,omitempty"`
	LocationCode  string         `json:"location_code,omitempty"`
	Counterparty  string         `json:"counterparty,omitempty"`
	Certification string         `json:"certification,omitempty"`
	IsOrigin      bool           `json:"is_origin,omitempty"`
	Depth         int            `json:"depth"`
	Warning       TraceWarning   `json:"warning,omitempty"`
	Sources       []*LineageNode `json:"sources,omitempty"`
	Destinations  []*LineageNode `json:"destinations,omitempty"`
}

// HasProcessType reports whether pt is among the node's process types.
func (n *LineageNode) HasProcessType(pt ProcessType) bool {
	for _, t := range n.ProcessTypes {
		if t == pt {
			return true
		}
	}
	return false
}

// Walk visits the node and every descendant depth-first, sources before
// destinations, in child order.
func (n *LineageNode) Walk(fn func(*LineageNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, s := range n.Sources {
		s.Walk(fn)
	}
	for _, d := range n.Destinations {
		d.Walk(fn)
	}
}

// TraceResult is the outcome of a single lineage trace.
type TraceResult struct {
	QueriedLot       string       `json:"queried_lot"`
	MaxDepth         int          `json:"max_depth"`
	TotalNodesTraced int          `json:"total_nodes_traced"`
	Tree             *LineageNode `json:"lineage_tree"`
}

// BatchTraceResult is the outcome of tracing several lots against one
// index snapshot. Results keep the order of the requested lots.
type BatchTraceResult struct {
	Requested int           `json:"requested"`
	Results   []TraceResult `json:"results"`
}

// RelatedLot is one row of the flat lineage closure produced by the
// query-engine execution strategy: a lot reachable from the queried lot,
// with the depth and relation of the step that reached it.
type RelatedLot struct {
	LotNo     string   `json:"lot_no"`
	Depth     int      `json:"depth"`
	Relation  Relation `json:"relation"`
	Direction string   `json:"direction"` // "source" or "destination"
	Path      string   `json:"path"`
}

// ClosureSummary summarizes a flat lineage closure.
type ClosureSummary struct {
	QueriedLot       string `json:"queried_lot"`
	TotalRelated     int    `json:"total_related"`
	MaxDepthReached  int    `json:"max_depth_reached"`
	SourceCount      int    `json:"source_count"`
	DestinationCount int    `json:"destination_count"`
}
