// Package view turns the list store contents into display nodes and renders
// them as a text tree.
package view

import (
	"fmt"
	"sort"
	"time"

	"github.com/disiqueira/gotree/v3"
	"github.com/dustin/go-humanize"

	"github.com/lian/codecopy/internal/models"
)

// Now is the reference time for relative capture times.
var Now = time.Now

// Node is one row of the list display. List nodes carry their entries as
// children; entry nodes have none.
type Node struct {
	Label       string
	Description string
	ListID      string
	Index       int // entry index within its list, -1 for list nodes
	Children    []Node
}

// IsList reports whether n represents a whole list.
func (n Node) IsList() bool { return n.Index < 0 }

// Project maps lists to display nodes, most recently updated first. Ties keep
// the input order.
func Project(lists []models.List) []Node {
	sorted := make([]models.List, len(lists))
	copy(sorted, lists)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt > sorted[j].UpdatedAt
	})

	nodes := make([]Node, 0, len(sorted))
	for _, l := range sorted {
		n := Node{
			Label:       l.Name,
			Description: EntryCount(len(l.Entries)),
			ListID:      l.ID,
			Index:       -1,
		}
		for i, e := range l.Entries {
			n.Children = append(n.Children, Node{
				Label:       e.RelativePath,
				Description: Captured(e),
				ListID:      l.ID,
				Index:       i,
			})
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// EntryCount is the list description: "1 entry", "3 entries".
func EntryCount(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", n)
}

// Captured describes an entry by size and capture time, e.g.
// "1.2 kB, 3 minutes ago".
func Captured(e models.Entry) string {
	return fmt.Sprintf("%s, %s",
		humanize.Bytes(uint64(len(e.Content))),
		humanize.RelTime(e.CapturedAt(), Now(), "ago", "from now"))
}

// Render draws nodes under rootLabel. Entry rows are prefixed with their
// index so they can be passed to `list remove`.
func Render(rootLabel string, nodes []Node) string {
	root := gotree.New(rootLabel)
	for _, n := range nodes {
		branch := root.Add(fmt.Sprintf("%s (%s) [%s]", n.Label, n.Description, n.ListID))
		for _, c := range n.Children {
			branch.Add(fmt.Sprintf("%d: %s  %s", c.Index, c.Label, c.Description))
		}
	}
	return root.Print()
}
