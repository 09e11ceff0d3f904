package algorithms

import (
	"fmt"
	"strings"

	"github.com/picogrid/algorithm-simulations/pkg/simulation"
)

const LinkedListName = "linked-list"

const (
	opTraverse = "traverse"
	opReverse  = "reverse"
)

var linkedListDefault = []int{1, 2, 3, 4, 5}

func linkedListContent() *simulation.Content {
	return &simulation.Content{
		Name:        LinkedListName,
		Title:       "Singly Linked List",
		Description: "Walks or reverses a singly linked list pointer by pointer",
		Version:     "1.0.0",
		Category:    "lists",
		Algorithm:   simulation.ByName(LinkedListName),
		Controls: []simulation.Control{
			{ID: "values", Label: "Node values", Type: simulation.ControlText, Value: joinInts(linkedListDefault)},
			{ID: "operation", Label: "Operation", Type: simulation.ControlSelect, Options: []string{opTraverse, opReverse}, Value: opTraverse},
		},
		Stats: []simulation.Stat{
			{ID: "visited", Label: "Visited"},
			{ID: "length", Label: "Length"},
		},
		Visualizations: []simulation.Visualization{
			{ID: "list", Label: "List"},
			{ID: "pointers", Label: "Pointers"},
		},
	}
}

type listNode struct {
	value int
	next  *listNode
}

func buildList(values []int) *listNode {
	var head *listNode
	for i := len(values) - 1; i >= 0; i-- {
		head = &listNode{value: values[i], next: head}
	}
	return head
}

// renderList prints "1 -> [2] -> 3 -> nil", bracketing focus
func renderList(head, focus *listNode) string {
	var parts []string
	for n := head; n != nil; n = n.next {
		label := itoa(n.value)
		if n == focus {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	parts = append(parts, "nil")
	return strings.Join(parts, " -> ")
}

func describe(n *listNode) string {
	if n == nil {
		return "nil"
	}
	return itoa(n.value)
}

// LinkedList traverses or reverses the list, one pointer move per step
func LinkedList(rc *simulation.RunContext) (*simulation.StepBatch, error) {
	values, err := readValues(rc, "values", linkedListDefault)
	if err != nil {
		return nil, err
	}
	op := rc.String("operation", opTraverse)
	length := itoa(len(values))

	switch op {
	case opTraverse:
		head := buildList(values)
		visited := 0
		for cur := head; cur != nil; cur = cur.next {
			visited++
			rc.AddStep(simulation.Step{
				Message: fmt.Sprintf("Visit node %d (next: %s)", cur.value, describe(cur.next)),
				Stats:   map[string]string{"visited": itoa(visited), "length": length},
				Payload: simulation.Panels{
					"list":     renderList(head, cur),
					"pointers": "cur = " + describe(cur),
				},
			})
		}
		rc.AddStep(simulation.Step{
			Message: "Reached nil, traversal finished",
			Type:    simulation.LogSuccess,
			Payload: simulation.Panels{"list": renderList(head, nil), "pointers": "cur = nil"},
		})

	case opReverse:
		var prev *listNode
		cur := buildList(values)
		visited := 0
		for cur != nil {
			next := cur.next
			cur.next = prev
			visited++
			// prev heads the already-reversed prefix, next the remainder
			rc.AddStep(simulation.Step{
				Message: fmt.Sprintf("Point %d back at %s", cur.value, describe(prev)),
				Stats:   map[string]string{"visited": itoa(visited), "length": length},
				Payload: simulation.Panels{
					"list":     renderList(cur, cur) + "  |  " + renderList(next, nil),
					"pointers": fmt.Sprintf("prev = %s, cur = %s, next = %s", describe(prev), describe(cur), describe(next)),
				},
			})
			prev, cur = cur, next
		}
		rc.AddStep(simulation.Step{
			Message: "Reversed: head is now " + describe(prev),
			Type:    simulation.LogSuccess,
			Payload: simulation.Panels{"list": renderList(prev, prev), "pointers": "head = " + describe(prev)},
		})

	default:
		return nil, fmt.Errorf("operation must be one of %s, %s; got %q", opTraverse, opReverse, op)
	}

	rc.State.Data["operation"] = op
	return nil, nil
}
