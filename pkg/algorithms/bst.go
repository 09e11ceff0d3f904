package algorithms

import (
	"fmt"
	"strings"

	"github.com/picogrid/algorithm-simulations/pkg/simulation"
)

const BSTInsertName = "bst-insert"

var bstDefault = []int{50, 30, 70, 20, 40, 60, 80}

func bstInsertContent() *simulation.Content {
	return &simulation.Content{
		Name:        BSTInsertName,
		Title:       "Binary Search Tree Insertion",
		Description: "Inserts values one by one, walking left or right from the root",
		Version:     "1.0.0",
		Category:    "trees",
		Algorithm:   simulation.ByName(BSTInsertName),
		Controls: []simulation.Control{
			{ID: "values", Label: "Values to insert", Type: simulation.ControlText, Value: joinInts(bstDefault)},
		},
		Stats: []simulation.Stat{
			{ID: "nodes", Label: "Nodes"},
			{ID: "height", Label: "Height"},
		},
		Visualizations: []simulation.Visualization{
			{ID: "tree", Label: "Tree"},
		},
	}
}

type treeNode struct {
	value       int
	left, right *treeNode
}

func (n *treeNode) height() int {
	if n == nil {
		return 0
	}
	return 1 + max(n.left.height(), n.right.height())
}

// renderTree draws the tree sideways, right subtree on top, marking focus
func renderTree(root *treeNode, focus int, hasFocus bool) string {
	if root == nil {
		return "(empty)"
	}
	var b strings.Builder
	var walk func(n *treeNode, depth int)
	walk = func(n *treeNode, depth int) {
		if n == nil {
			return
		}
		walk(n.right, depth+1)
		label := itoa(n.value)
		if hasFocus && n.value == focus {
			label = "[" + label + "]"
		}
		b.WriteString(strings.Repeat("    ", depth))
		b.WriteString(label)
		b.WriteByte('\n')
		walk(n.left, depth+1)
	}
	walk(root, 0)
	return strings.TrimRight(b.String(), "\n")
}

// BSTInsert emits a step for every comparison on the way down and one per
// insertion. Duplicates are reported and skipped.
func BSTInsert(rc *simulation.RunContext) (*simulation.StepBatch, error) {
	values, err := readValues(rc, "values", bstDefault)
	if err != nil {
		return nil, err
	}

	var root *treeNode
	nodes := 0

	stats := func() map[string]string {
		return map[string]string{"nodes": itoa(nodes), "height": itoa(root.height())}
	}

	for _, v := range values {
		if root == nil {
			root = &treeNode{value: v}
			nodes++
			rc.AddStep(simulation.Step{
				Message: fmt.Sprintf("Insert %d as root", v),
				Type:    simulation.LogSuccess,
				Stats:   stats(),
				Payload: simulation.Panels{"tree": renderTree(root, v, true)},
			})
			continue
		}

		cur := root
		for {
			if v == cur.value {
				rc.AddStep(simulation.Step{
					Message: fmt.Sprintf("%d is already in the tree, skipping", v),
					Type:    simulation.LogWarning,
					Payload: simulation.Panels{"tree": renderTree(root, cur.value, true)},
				})
				break
			}

			dir, next := "left", &cur.left
			if v > cur.value {
				dir, next = "right", &cur.right
			}

			if *next == nil {
				*next = &treeNode{value: v}
				nodes++
				rc.AddStep(simulation.Step{
					Message: fmt.Sprintf("Insert %d as %s child of %d", v, dir, cur.value),
					Type:    simulation.LogSuccess,
					Stats:   stats(),
					Payload: simulation.Panels{"tree": renderTree(root, v, true)},
				})
				break
			}

			rc.AddStep(simulation.Step{
				Message: fmt.Sprintf("%d vs %d: go %s", v, cur.value, dir),
				Payload: simulation.Panels{"tree": renderTree(root, cur.value, true)},
			})
			cur = *next
		}
	}

	rc.State.Data["nodes"] = nodes
	rc.State.Data["height"] = root.height()
	return nil, nil
}
