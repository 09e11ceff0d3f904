package simulation

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const sampleDescriptor = `
name: bubble-sort
title: Bubble Sort
algorithm: bubble-sort
controls:
  - id: values
    label: Values
    type: text
    value: "5,3,8"
  - id: order
    label: Order
    type: select
    options: [asc, desc]
stats:
  - id: comparisons
    label: Comparisons
  - id: swaps
    label: Swaps
    initial: "-"
visualizations:
  - id: array
    label: Array
    className: bars
`

func TestContentFromYAML(t *testing.T) {
	var c Content
	if err := yaml.Unmarshal([]byte(sampleDescriptor), &c); err != nil {
		t.Fatalf("Failed to parse descriptor: %v", err)
	}

	if c.Algorithm.Name != "bubble-sort" || c.Algorithm.Fn != nil {
		t.Errorf("Expected named algorithm reference, got %+v", c.Algorithm)
	}
	if len(c.Controls) != 2 || c.Controls[0].Value != "5,3,8" {
		t.Errorf("Unexpected controls: %+v", c.Controls)
	}
	if c.Stats[0].InitialValue() != "0" || c.Stats[1].InitialValue() != "-" {
		t.Errorf("Unexpected initial values: %+v", c.Stats)
	}
	if c.Visualizations[0].ClassName != "bars" {
		t.Errorf("Unexpected visualization: %+v", c.Visualizations[0])
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Expected valid descriptor, got %v", err)
	}
}

func TestAlgorithmMustBeScalar(t *testing.T) {
	var c Content
	err := yaml.Unmarshal([]byte("name: x\nalgorithm: [a, b]\n"), &c)
	if err == nil || !strings.Contains(err.Error(), "algorithm must be a name") {
		t.Errorf("Expected scalar error, got %v", err)
	}
}

func TestContentValidate(t *testing.T) {
	tests := []struct {
		name    string
		content Content
		wantErr string
	}{
		{"missing name", Content{Algorithm: ByName("a")}, "name is required"},
		{"missing algorithm", Content{Name: "a"}, "algorithm is required"},
		{
			"duplicate id",
			Content{Name: "a", Algorithm: ByName("a"),
				Controls: []Control{{ID: "x"}},
				Stats:    []Stat{{ID: "x"}}},
			`duplicate id "x"`,
		},
		{
			"select without options",
			Content{Name: "a", Algorithm: ByName("a"),
				Controls: []Control{{ID: "op", Type: ControlSelect}}},
			"has no options",
		},
		{
			"unknown control type",
			Content{Name: "a", Algorithm: ByName("a"),
				Controls: []Control{{ID: "op", Type: "slider"}}},
			"unsupported type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.content.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseInts(t *testing.T) {
	got, err := ParseInts(" 5, 3 8;1 ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got) != 4 || got[0] != 5 || got[3] != 1 {
		t.Errorf("Unexpected values %v", got)
	}
	if _, err := ParseInts("1,two"); err == nil {
		t.Error("Expected error for non-integer")
	}
}
