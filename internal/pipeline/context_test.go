package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodmap/assist/pkg/product"
)

func makeItems(n int, status string) []product.Item {
	items := make([]product.Item, n)
	for i := range items {
		items[i] = product.Item{
			ID:     fmt.Sprintf("id-%d", i),
			Name:   fmt.Sprintf("item %d", i),
			Status: status,
		}
	}
	return items
}

func TestSelectContext_NilSnapshot(t *testing.T) {
	bundle := SelectContext(nil, "", "", 60)
	assert.Equal(t, 0, bundle.Total())
}

func TestSelectContext_CategoryCaps(t *testing.T) {
	snap := &product.ContextResponse{
		Features: makeItems(50, "planned"),
		Problems: makeItems(40, "open"),
	}

	bundle := SelectContext(snap, "", "prioritization", 60)

	assert.Len(t, bundle["features"], 20)
	assert.Len(t, bundle["problems"], 15)
}

func TestSelectContext_CeilingBoundsTotal(t *testing.T) {
	snap := &product.ContextResponse{
		Strategies: makeItems(100, "active"),
		Problems:   makeItems(100, "open"),
		Features:   makeItems(100, "planned"),
		Tasks:      makeItems(100, "todo"),
	}

	bundle := SelectContext(snap, "", "", 25)
	assert.LessOrEqual(t, bundle.Total(), 25)

	// Default ceiling applies when the caller passes a nonsense value.
	bundle = SelectContext(snap, "", "", 0)
	assert.LessOrEqual(t, bundle.Total(), 60)
}

func TestSelectContext_ActiveFirst(t *testing.T) {
	snap := &product.ContextResponse{
		Tasks: []product.Item{
			{ID: "1", Name: "shipped", Status: "done"},
			{ID: "2", Name: "in flight", Status: "in_progress"},
			{ID: "3", Name: "finished", Status: "completed"},
			{ID: "4", Name: "queued", Status: "todo"},
		},
	}

	bundle := SelectContext(snap, "task", "", 60)
	tasks := bundle["tasks"]
	require.Len(t, tasks, 4)

	assert.Equal(t, "in flight", tasks[0].Title)
	assert.Equal(t, "queued", tasks[1].Title)
	assert.Equal(t, "shipped", tasks[2].Title)
	assert.Equal(t, "finished", tasks[3].Title)
}

func TestSelectContext_SectionSelectsCategories(t *testing.T) {
	snap := &product.ContextResponse{
		Strategies:   makeItems(3, "active"),
		Metrics:      makeItems(3, ""),
		Tasks:        makeItems(3, "todo"),
		Stakeholders: makeItems(3, ""),
	}

	bundle := SelectContext(snap, "", "metrics", 60)

	assert.Contains(t, bundle, "metrics")
	assert.Contains(t, bundle, "strategies")
	assert.NotContains(t, bundle, "tasks")
	assert.NotContains(t, bundle, "stakeholders")
}

func TestSelectContext_FormTypeFallsBackToSection(t *testing.T) {
	snap := &product.ContextResponse{
		Tasks:       makeItems(2, "todo"),
		Features:    makeItems(2, "planned"),
		Workstreams: makeItems(2, "active"),
		Metrics:     makeItems(2, ""),
	}

	// "task" maps to the execution section: tasks, features, workstreams.
	bundle := SelectContext(snap, "task", "", 60)

	assert.Contains(t, bundle, "tasks")
	assert.Contains(t, bundle, "features")
	assert.Contains(t, bundle, "workstreams")
	assert.NotContains(t, bundle, "metrics")
}

func TestSelectContext_ItemProjection(t *testing.T) {
	snap := &product.ContextResponse{
		Features: []product.Item{
			{ID: "f1", Name: "Checkout revamp", Description: "One-page checkout", Status: "planned"},
		},
	}

	bundle := SelectContext(snap, "", "prioritization", 60)
	require.Len(t, bundle["features"], 1)

	it := bundle["features"][0]
	assert.Equal(t, "f1", it.ID)
	assert.Equal(t, "Checkout revamp", it.Title)
	assert.Equal(t, "One-page checkout", it.Detail)
	assert.Equal(t, "planned", it.Status)
}
