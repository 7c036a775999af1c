package model

import (
	"fmt"
	"strings"
)

// CustomAllocationSummary is shown instead of percentages when no preset
// allocation exists for a persona and risk profile.
const CustomAllocationSummary = "Custom allocation based on your unique profile"

// Allocation is a portfolio split across asset buckets, in whole percent.
// Custom marks the sentinel "no preset, advisor builds one" allocation and
// carries no buckets.
type Allocation struct {
	Cash         int  `json:"cash,omitempty" yaml:"cash,omitempty"`
	Income       int  `json:"income,omitempty" yaml:"income,omitempty"`
	Growth       int  `json:"growth,omitempty" yaml:"growth,omitempty"`
	FX           int  `json:"fx,omitempty" yaml:"fx,omitempty"`
	Alternatives int  `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
	Custom       bool `json:"custom,omitempty" yaml:"custom,omitempty"`
}

// Bucket is one named slice of an allocation.
type Bucket struct {
	Name    string `json:"name"`
	Percent int    `json:"percent"`
}

// CustomAllocation returns the custom sentinel.
func CustomAllocation() Allocation {
	return Allocation{Custom: true}
}

// Buckets lists the non-zero buckets in display order.
func (a Allocation) Buckets() []Bucket {
	if a.Custom {
		return nil
	}
	all := []Bucket{
		{Name: "Cash", Percent: a.Cash},
		{Name: "Income", Percent: a.Income},
		{Name: "Growth", Percent: a.Growth},
		{Name: "FX", Percent: a.FX},
		{Name: "Alternatives", Percent: a.Alternatives},
	}
	out := all[:0]
	for _, b := range all {
		if b.Percent > 0 {
			out = append(out, b)
		}
	}
	return out
}

// Total sums all buckets.
func (a Allocation) Total() int {
	return a.Cash + a.Income + a.Growth + a.FX + a.Alternatives
}

// Summary renders the allocation as "60% Cash, 30% Income, 10% Growth".
func (a Allocation) Summary() string {
	if a.Custom {
		return CustomAllocationSummary
	}
	parts := make([]string, 0, 5)
	for _, b := range a.Buckets() {
		parts = append(parts, fmt.Sprintf("%d%% %s", b.Percent, b.Name))
	}
	return strings.Join(parts, ", ")
}
