package assets

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"testing"
)

func TestTimingProductionScenario(t *testing.T) {
	tm := Timing{FPS: 40, DurationSec: 40, MaxLengthSec: 20, TransitionSec: 2}
	if got := tm.TotalFrames(); got != 800 {
		t.Fatalf("TotalFrames: expected 800, got %d", got)
	}
	if got := tm.TransitionFrames(); got != 80 {
		t.Fatalf("TransitionFrames: expected 80, got %d", got)
	}
	if got := tm.NeededTiles(); got != 11 {
		t.Fatalf("NeededTiles: expected 11, got %d", got)
	}
}

func TestTimingFallsBackToDuration(t *testing.T) {
	tm := Timing{FPS: 10, DurationSec: 4, TransitionSec: 1}
	if got := tm.TotalFrames(); got != 40 {
		t.Fatalf("expected 40 frames from duration, got %d", got)
	}
	// 39 div 10 = 3 full, remainder 9 → 3 + 1 + 1
	if got := tm.NeededTiles(); got != 5 {
		t.Fatalf("expected 5 tiles, got %d", got)
	}
}

func TestTimingExactMultiple(t *testing.T) {
	tm := Timing{FPS: 10, MaxLengthSec: 2.1, TransitionSec: 1}
	// 21 frames: 20 div 10 = 2 full, remainder 0 → 2 + 0 + 1
	if got := tm.NeededTiles(); got != 3 {
		t.Fatalf("expected 3 tiles, got %d", got)
	}
}

func TestNaturalSort(t *testing.T) {
	keys := []string{"p/img_10.jpg", "p/img_2.jpg", "p/IMG_1.png", "p/img_02b.jpg", "q/a.jpg"}
	SortNatural(keys)
	want := []string{"q/a.jpg", "p/IMG_1.png", "p/img_2.jpg", "p/img_02b.jpg", "p/img_10.jpg"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("unexpected order:\n got %v\nwant %v", keys, want)
	}
}

func TestKeying(t *testing.T) {
	tests := []struct {
		keying Keying
		in     string
		want   string
	}{
		{ByNumber, "pages/img_007.jpg", "7"},
		{ByNumber, "pages/12-cat.png", "12"},
		{ByNumber, "pages/cover.png", ""},
		{ByBasename, "reels/outline/cat.png", "cat"},
		{ByBasename, "reels/cartoon/cat.jpg", "cat"},
	}
	for _, tt := range tests {
		if got := tt.keying.Key(tt.in); got != tt.want {
			t.Errorf("%v.Key(%q) = %q, want %q", tt.keying, tt.in, got, tt.want)
		}
	}
}

func TestPairUpNumericKeys(t *testing.T) {
	var first, second []string
	for i := 5; i >= 1; i-- {
		first = append(first, fmt.Sprintf("cartoon/img_%d.jpg", i))
		second = append(second, fmt.Sprintf("outline/img_%d.png", i))
	}

	pairs, unmatched := PairUp(first, second, ByNumber)
	if len(pairs) != 5 {
		t.Fatalf("expected 5 pairs, got %d", len(pairs))
	}
	if len(unmatched) != 0 {
		t.Fatalf("expected no unmatched, got %v", unmatched)
	}
	for i, p := range pairs {
		key := fmt.Sprint(i + 1)
		if p.Key != key || p.First != "cartoon/img_"+key+".jpg" || p.Second != "outline/img_"+key+".png" {
			t.Errorf("pair %d: unexpected %+v", i, p)
		}
	}
}

func TestPairUpDropsUnmatched(t *testing.T) {
	first := []string{"a/dog.jpg", "a/cat.jpg", "a/owl.jpg"}
	second := []string{"b/cat.png", "b/owl.png", "b/fox.png"}

	pairs, unmatched := PairUp(first, second, ByBasename)
	if len(pairs) != 2 || pairs[0].Key != "cat" || pairs[1].Key != "owl" {
		t.Fatalf("unexpected pairs %+v", pairs)
	}
	want := []string{"a/dog.jpg", "b/fox.png"}
	if !reflect.DeepEqual(unmatched, want) {
		t.Fatalf("unexpected unmatched %v", unmatched)
	}
}

func TestCycleRepeatsPool(t *testing.T) {
	pool := []string{"a", "b", "c"}
	got, err := Cycle(pool, 8)
	if err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if len(got) != 8 {
		t.Fatalf("expected 8 items, got %d", len(got))
	}
	for i, item := range got {
		if item != pool[i%len(pool)] {
			t.Fatalf("item %d = %q, want %q", i, item, pool[i%len(pool)])
		}
	}
}

func TestCycleEmptyPool(t *testing.T) {
	if _, err := Cycle([]int(nil), 3); !errors.Is(err, ErrInsufficientAssets) {
		t.Fatalf("expected ErrInsufficientAssets, got %v", err)
	}
}

func TestSampleDistinct(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	pool := make([]int, 20)
	for i := range pool {
		pool[i] = i
	}
	got, err := Sample(rng, pool, 11)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	seen := map[int]bool{}
	for _, v := range got {
		if seen[v] {
			t.Fatalf("duplicate item %d in %v", v, got)
		}
		seen[v] = true
	}
	for i, v := range pool {
		if v != i {
			t.Fatal("Sample must not reorder the caller's pool")
		}
	}
}

func TestSampleDeterministicWithSeed(t *testing.T) {
	pool := []string{"a", "b", "c", "d", "e", "f"}
	a, _ := Sample(rand.New(rand.NewPCG(7, 7)), pool, 4)
	b, _ := Sample(rand.New(rand.NewPCG(7, 7)), pool, 4)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed should give same sample: %v vs %v", a, b)
	}
}

func TestSampleInsufficient(t *testing.T) {
	_, err := Sample(rand.New(rand.NewPCG(1, 1)), []int{1, 2}, 3)
	if !errors.Is(err, ErrInsufficientAssets) {
		t.Fatalf("expected ErrInsufficientAssets, got %v", err)
	}
}

func TestSelectDispatch(t *testing.T) {
	pool := []int{1, 2}
	got, err := Select(Policy{Sample: false}, nil, pool, 5)
	if err != nil || !reflect.DeepEqual(got, []int{1, 2, 1, 2, 1}) {
		t.Fatalf("cyclic select: %v %v", got, err)
	}
	if _, err := Select(Policy{Sample: true}, rand.New(rand.NewPCG(1, 1)), pool, 5); !errors.Is(err, ErrInsufficientAssets) {
		t.Fatalf("sampling select should fail, got %v", err)
	}
}

func TestSampleWithoutRand(t *testing.T) {
	if _, err := Sample[int](nil, []int{1, 2, 3}, 2); !errors.Is(err, ErrNoRand) {
		t.Fatalf("expected ErrNoRand, got %v", err)
	}
	if _, err := Sample[int](nil, []int{1}, 2); !errors.Is(err, ErrInsufficientAssets) {
		t.Fatalf("the count check comes first, got %v", err)
	}
}
