package rules

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCombine(t *testing.T) {
	tests := []struct {
		name string
		and  []bool
		or   []bool
		want bool
	}{
		{name: "both empty", want: false},
		{name: "all false", and: []bool{false, false}, or: []bool{false}, want: false},
		{name: "and only, all true", and: []bool{true, true}, want: true},
		{name: "and only, one false", and: []bool{true, false}, want: false},
		{name: "or only, one true", or: []bool{false, true}, want: true},
		{name: "or only, all false", or: []bool{false, false}, want: false},
		{name: "and all true, or all false", and: []bool{true}, or: []bool{false}, want: true},
		// Step 4: AND present but failing, an OR entry rescues the result.
		{name: "and failing, or true", and: []bool{true, false}, or: []bool{true}, want: true},
		{name: "and all false, or true", and: []bool{false}, or: []bool{false, true}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Combine(tt.and, tt.or); got != tt.want {
				t.Errorf("Combine(%v, %v) = %v, want %v", tt.and, tt.or, got, tt.want)
			}
		})
	}
}

func TestCombine_PropertyEquivalentToAndOrAny(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("combine = (AND non-empty and all true) or any OR true", prop.ForAll(
		func(and, or []bool) bool {
			want := (len(and) > 0 && allTrue(and)) || anyTrue(or)
			return Combine(and, or) == want
		},
		gen.SliceOf(gen.Bool()),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("combine is order independent", prop.ForAll(
		func(and, or []bool) bool {
			return Combine(and, or) == Combine(reversed(and), reversed(or))
		},
		gen.SliceOf(gen.Bool()),
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}

func reversed(in []bool) []bool {
	out := make([]bool, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
