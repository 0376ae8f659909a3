package visibility

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/philipparndt/gobcf/pkg/bcf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comps(guids ...string) []bcf.Component {
	out := make([]bcf.Component, 0, len(guids))
	for _, g := range guids {
		out = append(out, bcf.Component{IfcGUID: g})
	}
	return out
}

func indexOf(pairs map[string]int, order ...string) *Index[int] {
	ix := NewIndex[int]()
	for _, guid := range order {
		ix.Add(guid, pairs[guid])
	}
	return ix
}

func TestDecodeDefaultVisibleHidesExceptions(t *testing.T) {
	ix := indexOf(map[string]int{"G1": 1, "G2": 2}, "G1", "G2")

	res := Decode(bcf.Visibility{DefaultVisibility: true, Exceptions: comps("G1")}, nil, ix)

	assert.Equal(t, []int{1}, res.Hide)
	assert.Empty(t, res.Isolate)
	assert.Empty(t, res.Select)
}

func TestDecodeDefaultHiddenIsolatesExceptions(t *testing.T) {
	ix := indexOf(map[string]int{"A": 10, "B": 20, "C": 30}, "A", "B", "C")

	res := Decode(bcf.Visibility{Exceptions: comps("C", "A", "missing")}, comps("A", "B"), ix)

	assert.Equal(t, []int{30, 10}, res.Isolate)
	assert.Empty(t, res.Hide)
	assert.Equal(t, []int{10}, res.Select, "B is not isolated and so cannot stay selected")
	assert.Equal(t, 1, res.Unresolved)
}

func TestDecodeSelectionDropsHidden(t *testing.T) {
	ix := indexOf(map[string]int{"A": 1, "B": 2}, "A", "B")

	res := Decode(bcf.Visibility{DefaultVisibility: true, Exceptions: comps("A")}, comps("A", "B", "gone"), ix)

	assert.Equal(t, []int{1}, res.Hide)
	assert.Equal(t, []int{2}, res.Select)
	assert.Equal(t, 1, res.Unresolved)
}

func TestDecodeNothingVisibleHidesAll(t *testing.T) {
	ix := indexOf(map[string]int{"A": 1, "B": 2}, "A", "B")

	res := Decode(bcf.Visibility{DefaultVisibility: false, Exceptions: comps("unknown")}, nil, ix)

	assert.True(t, res.HideAll)
	assert.Empty(t, res.Hide)
	assert.Empty(t, res.Isolate)
}

func TestDecodeComponentsWithoutVisibility(t *testing.T) {
	ix := indexOf(map[string]int{"A": 1}, "A")

	res := DecodeComponents(&bcf.Components{Selection: comps("A")}, ix)
	assert.Empty(t, res.Hide)
	assert.Empty(t, res.Isolate)
	assert.Equal(t, []int{1}, res.Select)

	assert.Equal(t, Result[int]{}, DecodeComponents[int](nil, ix))
}

func TestIndexFirstMatchWins(t *testing.T) {
	ix := NewIndex[int]()
	assert.True(t, ix.Add("G", 1))
	assert.False(t, ix.Add("G", 2))

	ref, ok := ix.Lookup("G")
	require.True(t, ok)
	assert.Equal(t, 1, ref)
	assert.Equal(t, 1, ix.Len())
}

func TestEncodeMajority(t *testing.T) {
	states := []ElementState{
		{Component: bcf.Component{IfcGUID: "A"}, Visible: true},
		{Component: bcf.Component{IfcGUID: "B"}, Visible: false},
		{Component: bcf.Component{IfcGUID: "C"}, Visible: false},
	}

	out := Encode(states)
	require.NotNil(t, out.Visibility)
	assert.False(t, out.Visibility.DefaultVisibility)
	assert.Equal(t, []string{"A"}, bcf.GUIDs(out.Visibility.Exceptions))
}

func TestEncodeTieFavoursVisible(t *testing.T) {
	states := []ElementState{
		{Component: bcf.Component{IfcGUID: "A"}, Visible: true},
		{Component: bcf.Component{IfcGUID: "B"}, Visible: false},
	}

	out := Encode(states)
	assert.True(t, out.Visibility.DefaultVisibility)
	assert.Equal(t, []string{"B"}, bcf.GUIDs(out.Visibility.Exceptions))

	empty := Encode(nil)
	assert.True(t, empty.Visibility.DefaultVisibility)
	assert.Empty(t, empty.Visibility.Exceptions)
}

func TestEncodeColoringTakesPrecedence(t *testing.T) {
	states := []ElementState{
		{Component: bcf.Component{IfcGUID: "A"}, Visible: true, Selected: true, Color: "FF0000"},
		{Component: bcf.Component{IfcGUID: "B"}, Visible: true, Color: "00FF00"},
		{Component: bcf.Component{IfcGUID: "C"}, Visible: true, Selected: true},
		{Component: bcf.Component{IfcGUID: "D"}, Visible: true, Color: "FF0000"},
	}

	out := Encode(states)

	assert.Equal(t, []string{"C"}, bcf.GUIDs(out.Selection))
	require.Len(t, out.Coloring, 2)
	assert.Equal(t, "FF0000", out.Coloring[0].Color)
	assert.Equal(t, []string{"A", "D"}, bcf.GUIDs(out.Coloring[0].Components))
	assert.Equal(t, "00FF00", out.Coloring[1].Color)
	assert.Equal(t, []string{"B"}, bcf.GUIDs(out.Coloring[1].Components))
}

// visibleAfter applies a decode result to the universe and returns which refs stay visible
func visibleAfter(res Result[int], universe []int) map[int]bool {
	visible := make(map[int]bool, len(universe))
	for _, ref := range universe {
		visible[ref] = true
	}
	if len(res.Isolate) > 0 {
		for ref := range visible {
			visible[ref] = false
		}
		for _, ref := range res.Isolate {
			visible[ref] = true
		}
	}
	for _, ref := range res.Hide {
		visible[ref] = false
	}
	if res.HideAll {
		for ref := range visible {
			visible[ref] = false
		}
	}
	return visible
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 99))

	for round := 0; round < 200; round++ {
		n := r.IntN(12)
		states := make([]ElementState, n)
		ix := NewIndex[int]()
		universe := make([]int, n)
		want := make(map[int]bool, n)

		for i := range states {
			guid := fmt.Sprintf("G%02d", i)
			states[i] = ElementState{
				Component: bcf.Component{IfcGUID: guid},
				Visible:   r.IntN(2) == 0,
				Selected:  r.IntN(3) == 0,
			}
			ix.Add(guid, i)
			universe[i] = i
			want[i] = states[i].Visible
		}

		out := Encode(states)
		require.LessOrEqual(t, 2*len(out.Visibility.Exceptions), n, "exceptions must be the minority")

		res := Decode(*out.Visibility, out.Selection, ix)
		assert.False(t, len(res.Hide) > 0 && len(res.Isolate) > 0, "hide and isolate are exclusive")
		assert.False(t, res.HideAll && (len(res.Hide) > 0 || len(res.Isolate) > 0), "hide all excludes the others")
		assert.Equal(t, want, visibleAfter(res, universe), "round %d", round)

		for _, ref := range res.Select {
			assert.True(t, want[ref], "selected element %d must be visible", ref)
		}
	}
}
