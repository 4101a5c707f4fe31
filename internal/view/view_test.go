package view

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lian/codecopy/internal/models"
)

func TestProjectOrdersByUpdatedAtDesc(t *testing.T) {
	lists := []models.List{
		{ID: "1", Name: "old", UpdatedAt: 100},
		{ID: "2", Name: "new", UpdatedAt: 300},
		{ID: "3", Name: "mid", UpdatedAt: 200},
		{ID: "4", Name: "mid-too", UpdatedAt: 200},
	}

	nodes := Project(lists)
	require.Len(t, nodes, 4)
	var names []string
	for _, n := range nodes {
		names = append(names, n.Label)
	}
	assert.Equal(t, []string{"new", "mid", "mid-too", "old"}, names)
	assert.Equal(t, "old", lists[0].Name, "input is not reordered")
}

func TestProjectDescriptions(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	Now = func() time.Time { return now }
	t.Cleanup(func() { Now = time.Now })

	lists := []models.List{{
		ID:   "a",
		Name: "Auth",
		Entries: []models.Entry{
			{RelativePath: "src/a.ts", Content: strings.Repeat("x", 2000), Timestamp: now.Add(-3 * time.Minute).UnixMilli()},
			{RelativePath: "src/b.ts", Content: "b", Timestamp: now.UnixMilli()},
		},
	}}

	nodes := Project(lists)
	require.Len(t, nodes, 1)
	list := nodes[0]
	assert.True(t, list.IsList())
	assert.Equal(t, "2 entries", list.Description)
	require.Len(t, list.Children, 2)

	first := list.Children[0]
	assert.False(t, first.IsList())
	assert.Equal(t, "src/a.ts", first.Label)
	assert.Equal(t, "a", first.ListID)
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "2.0 kB, 3 minutes ago", first.Description)
	assert.Equal(t, 1, list.Children[1].Index)
}

func TestEntryCount(t *testing.T) {
	assert.Equal(t, "0 entries", EntryCount(0))
	assert.Equal(t, "1 entry", EntryCount(1))
	assert.Equal(t, "7 entries", EntryCount(7))
}

func TestRender(t *testing.T) {
	nodes := Project([]models.List{{
		ID:      "id-1",
		Name:    "Auth",
		Entries: []models.Entry{{RelativePath: "src/a.ts", Content: "a"}},
	}})

	out := Render("Lists", nodes)
	assert.True(t, strings.HasPrefix(out, "Lists\n"))
	assert.Contains(t, out, "Auth (1 entry) [id-1]")
	assert.Contains(t, out, "0: src/a.ts")
}

func TestRenderEmpty(t *testing.T) {
	assert.Equal(t, "Lists\n", Render("Lists", nil))
}
