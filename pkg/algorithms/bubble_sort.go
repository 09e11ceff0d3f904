package algorithms

import (
	"fmt"

	"github.com/picogrid/algorithm-simulations/pkg/simulation"
)

const BubbleSortName = "bubble-sort"

var bubbleSortDefault = []int{5, 3, 8, 1, 9, 2}

func bubbleSortContent() *simulation.Content {
	return &simulation.Content{
		Name:        BubbleSortName,
		Title:       "Bubble Sort",
		Description: "Repeatedly swaps adjacent out-of-order values",
		Version:     "1.0.0",
		Category:    "sorting",
		Algorithm:   simulation.ByName(BubbleSortName),
		Controls: []simulation.Control{
			{ID: "values", Label: "Values", Type: simulation.ControlText, Value: joinInts(bubbleSortDefault)},
		},
		Stats: []simulation.Stat{
			{ID: "comparisons", Label: "Comparisons"},
			{ID: "swaps", Label: "Swaps"},
			{ID: "pass", Label: "Pass"},
		},
		Visualizations: []simulation.Visualization{
			{ID: "array", Label: "Array"},
		},
	}
}

// BubbleSort emits one step per comparison and one per swap
func BubbleSort(rc *simulation.RunContext) (*simulation.StepBatch, error) {
	values, err := readValues(rc, "values", bubbleSortDefault)
	if err != nil {
		return nil, err
	}
	rc.State.Data["input"] = joinInts(values)

	arr := append([]int(nil), values...)
	comparisons, swaps := 0, 0

	for pass := 0; pass < len(arr)-1; pass++ {
		swapped := false
		for j := 0; j < len(arr)-1-pass; j++ {
			comparisons++
			rc.AddStep(simulation.Step{
				Message: fmt.Sprintf("Compare %d and %d", arr[j], arr[j+1]),
				Stats:   map[string]string{"comparisons": itoa(comparisons), "pass": itoa(pass + 1)},
				Payload: simulation.Panels{"array": renderArray(arr, j, j+1)},
			})
			if arr[j] > arr[j+1] {
				arr[j], arr[j+1] = arr[j+1], arr[j]
				swaps++
				swapped = true
				rc.AddStep(simulation.Step{
					Message: fmt.Sprintf("Swap %d and %d", arr[j+1], arr[j]),
					Type:    simulation.LogWarning,
					Stats:   map[string]string{"swaps": itoa(swaps)},
					Payload: simulation.Panels{"array": renderArray(arr, j, j+1)},
				})
			}
		}
		if !swapped {
			break
		}
	}

	rc.State.Data["comparisons"] = comparisons
	rc.State.Data["swaps"] = swaps
	rc.AddStep(simulation.Step{
		Message: "Sorted: " + renderArray(arr),
		Type:    simulation.LogSuccess,
		Payload: simulation.Panels{"array": renderArray(arr)},
	})
	return nil, nil
}
