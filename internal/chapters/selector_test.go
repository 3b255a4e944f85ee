package chapters

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/brogergvhs/noveld/internal/providers"
)

func index(n int) []providers.Chapter {
	out := make([]providers.Chapter, n)
	for i := range out {
		out[i] = providers.Chapter{
			ID:      strconv.Itoa(1000 + i + 1),
			Title:   "Chapter " + strconv.Itoa(i+1),
			Ordinal: i + 1,
		}
	}
	return out
}

func ordinals(chs []providers.Chapter) []int {
	out := []int{}
	for _, ch := range chs {
		out = append(out, ch.Ordinal)
	}
	return out
}

func TestFilter(t *testing.T) {
	all := index(10)

	tests := []struct {
		name string
		sel  Selection
		want []int
	}{
		{"zero", Selection{}, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"start", Selection{Start: 8}, []int{8, 9, 10}},
		{"start one", Selection{Start: 1}, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"start past end", Selection{Start: 11}, []int{}},
		{"max", Selection{Max: 3}, []int{1, 2, 3}},
		{"start and max", Selection{Start: 4, Max: 2}, []int{4, 5}},
		{"range", Selection{Range: "3-5"}, []int{3, 4, 5}},
		{"range clipped", Selection{Range: "9-20"}, []int{9, 10}},
		{"range invalid", Selection{Range: "5-3"}, []int{}},
		{"range garbage", Selection{Range: "a-b"}, []int{}},
		{"list", Selection{List: "2, 7,7,99,x,1"}, []int{2, 7, 1}},
		{"range wins over list", Selection{Range: "1-2", List: "5"}, []int{1, 2}},
		{"range and max", Selection{Range: "2-9", Max: 2}, []int{2, 3}},
		{"chapter by ordinal", Selection{Chapter: "4"}, []int{4}},
		{"chapter by id", Selection{Chapter: "1006"}, []int{6}},
		{"chapter missing", Selection{Chapter: "42"}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ordinals(Filter(all, tt.sel))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Filter(%+v) = %v, want %v", tt.sel, got, tt.want)
			}
		})
	}
}

func TestFilterKeepsIndexOrdinals(t *testing.T) {
	got := Filter(index(5), Selection{Start: 3})
	if got[0].Ordinal != 3 || got[0].ID != "1003" {
		t.Fatalf("first = %+v", got[0])
	}
}

func TestSelectionIsZero(t *testing.T) {
	if !(Selection{}).IsZero() {
		t.Fatal("empty selection should be zero")
	}
	if (Selection{Max: 1}).IsZero() {
		t.Fatal("max selection should not be zero")
	}
}
