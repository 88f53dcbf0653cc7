package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineageNode_Walk(t *testing.T) {
	tree := &LineageNode{
		LotNo: "L1",
		Sources: []*LineageNode{
			{
				LotNo:   "L2",
				Sources: []*LineageNode{{LotNo: "L4"}},
			},
			{LotNo: "L3"},
		},
		Destinations: []*LineageNode{{LotNo: "L5"}},
	}

	var visited []string
	tree.Walk(func(n *LineageNode) {
		visited = append(visited, n.LotNo)
	})

	assert.Equal(t, []string{"L1", "L2", "L4", "L3", "L5"}, visited)
}

func TestLineageNode_Walk_Nil(t *testing.T) {
	var n *LineageNode
	called := false
	n.Walk(func(*LineageNode) { called = true })
	assert.False(t, called)
}

func TestLineageNode_HasProcessType(t *testing.T) {
	n := &LineageNode{ProcessTypes: []ProcessType{ProcessOutput, ProcessTransfer}}

	assert.True(t, n.HasProcessType(ProcessOutput))
	assert.True(t, n.HasProcessType(ProcessTransfer))
	assert.False(t, n.HasProcessType(ProcessPurchase))
}
