package algorithms

import (
	"fmt"
	"sort"

	"github.com/picogrid/algorithm-simulations/pkg/simulation"
)

const BinarySearchName = "binary-search"

var binarySearchDefault = []int{2, 5, 8, 12, 16, 23, 38, 56, 72, 91}

func binarySearchContent() *simulation.Content {
	return &simulation.Content{
		Name:        BinarySearchName,
		Title:       "Binary Search",
		Description: "Halves a sorted range until the target is found",
		Version:     "1.0.0",
		Category:    "searching",
		Algorithm:   simulation.ByName(BinarySearchName),
		Controls: []simulation.Control{
			{ID: "values", Label: "Sorted values", Type: simulation.ControlText, Value: joinInts(binarySearchDefault)},
			{ID: "target", Label: "Target", Type: simulation.ControlNumber, Value: "23"},
		},
		Stats: []simulation.Stat{
			{ID: "comparisons", Label: "Comparisons"},
			{ID: "low", Label: "Low"},
			{ID: "high", Label: "High", Initial: "-"},
		},
		Visualizations: []simulation.Visualization{
			{ID: "array", Label: "Array"},
		},
	}
}

// BinarySearch returns its steps in bulk. Unsorted input is sorted first.
func BinarySearch(rc *simulation.RunContext) (*simulation.StepBatch, error) {
	values, err := readValues(rc, "values", binarySearchDefault)
	if err != nil {
		return nil, err
	}
	target, err := rc.Int("target", 23)
	if err != nil {
		return nil, err
	}

	if !sort.IntsAreSorted(values) {
		sort.Ints(values)
		rc.Log(simulation.LogWarning, "Input was not sorted; searching "+renderArray(values))
	}

	var steps []simulation.Step
	low, high, comparisons := 0, len(values)-1, 0

	for low <= high {
		mid := low + (high-low)/2
		comparisons++
		stats := map[string]string{
			"comparisons": itoa(comparisons),
			"low":         itoa(low),
			"high":        itoa(high),
		}
		panels := simulation.Panels{"array": renderArray(values, mid)}

		switch {
		case values[mid] == target:
			rc.State.Data["index"] = mid
			steps = append(steps, simulation.Step{
				Message: fmt.Sprintf("Found %d at index %d", target, mid),
				Type:    simulation.LogSuccess,
				Stats:   stats,
				Payload: panels,
			})
			return &simulation.StepBatch{Steps: steps}, nil
		case values[mid] < target:
			steps = append(steps, simulation.Step{
				Message: fmt.Sprintf("%d < %d, search right half", values[mid], target),
				Stats:   stats,
				Payload: panels,
			})
			low = mid + 1
		default:
			steps = append(steps, simulation.Step{
				Message: fmt.Sprintf("%d > %d, search left half", values[mid], target),
				Stats:   stats,
				Payload: panels,
			})
			high = mid - 1
		}
	}

	rc.State.Data["index"] = -1
	steps = append(steps, simulation.Step{
		Message: fmt.Sprintf("%d is not in the array", target),
		Type:    simulation.LogError,
		Stats:   map[string]string{"comparisons": itoa(comparisons)},
		Payload: simulation.Panels{"array": renderArray(values)},
	})
	return &simulation.StepBatch{Steps: steps}, nil
}
