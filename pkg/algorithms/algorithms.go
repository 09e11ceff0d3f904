// Package algorithms holds the built-in step generators and the simulator
// descriptors that present them.
package algorithms

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/picogrid/algorithm-simulations/pkg/simulation"
)

// MaxValues bounds the size of any input list
const MaxValues = 32

// Register adds every built-in algorithm to reg
func Register(reg *simulation.Registry) {
	reg.Register(BubbleSortName, BubbleSort)
	reg.Register(BinarySearchName, BinarySearch)
	reg.Register(BSTInsertName, BSTInsert)
	reg.Register(LinkedListName, LinkedList)
}

// Catalog returns the descriptors of the built-in simulators
func Catalog() []*simulation.Content {
	return []*simulation.Content{
		bubbleSortContent(),
		binarySearchContent(),
		bstInsertContent(),
		linkedListContent(),
	}
}

func readValues(rc *simulation.RunContext, id string, def []int) ([]int, error) {
	values, err := rc.Ints(id, def)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s: at least one value is required", id)
	}
	if len(values) > MaxValues {
		return nil, fmt.Errorf("%s: at most %d values are supported, got %d", id, MaxValues, len(values))
	}
	return values, nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// renderArray prints values with bracketed highlights, e.g. "5 [3] [8] 1"
func renderArray(values []int, marked ...int) string {
	marks := make(map[int]bool, len(marked))
	for _, m := range marked {
		marks[m] = true
	}
	parts := make([]string, len(values))
	for i, v := range values {
		if marks[i] {
			parts[i] = "[" + strconv.Itoa(v) + "]"
		} else {
			parts[i] = strconv.Itoa(v)
		}
	}
	return strings.Join(parts, " ")
}

func itoa(n int) string { return strconv.Itoa(n) }
