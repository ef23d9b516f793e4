package threshold

import (
	"testing"

	"github.com/agusespa/gcommit/internal/diffmodel"
)

func mergesFixture() []diffmodel.MergeEvent {
	return []diffmodel.MergeEvent{
		{Left: 0, Right: 1, Distance: 0.1},
		{Left: 2, Right: 3, Distance: 0.2},
		{Left: 0, Right: 2, Distance: 0.4},
	}
}

// TestCutScenarioS3 mirrors scenario S3: cutting at t=0.3 against the
// {0.1, 0.2, 0.4} merge sequence yields {{0,1},{2,3}}.
func TestCutScenarioS3(t *testing.T) {
	groups := Cut(4, mergesFixture(), 0.3)
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if !equalSets(groups[0], []int{0, 1}) {
		t.Errorf("groups[0] = %v, want [0 1]", groups[0])
	}
	if !equalSets(groups[1], []int{2, 3}) {
		t.Errorf("groups[1] = %v, want [2 3]", groups[1])
	}
}

func TestCutAtMaxDistanceYieldsSingleCluster(t *testing.T) {
	groups := Cut(4, mergesFixture(), 0.4)
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1", len(groups))
	}
}

func TestCutAtZeroYieldsAllSingletons(t *testing.T) {
	groups := Cut(4, mergesFixture(), 0.0)
	if len(groups) != 4 {
		t.Fatalf("len(groups) = %d, want 4", len(groups))
	}
}

// TestCutMonotonicity covers invariant 5: raising the threshold never
// splits a group that was already formed at a lower threshold.
func TestCutMonotonicity(t *testing.T) {
	merges := mergesFixture()
	low := Cut(4, merges, 0.15)
	high := Cut(4, merges, 0.45)

	memberOf := func(groups [][]int, x int) []int {
		for _, g := range groups {
			for _, m := range g {
				if m == x {
					return g
				}
			}
		}
		return nil
	}

	for x := 0; x < 4; x++ {
		lowGroup := memberOf(low, x)
		highGroup := memberOf(high, x)
		for _, y := range lowGroup {
			if !contains(highGroup, y) {
				t.Errorf("refinement violated: %d and %d grouped at t=0.15 but not at t=0.45", x, y)
			}
		}
	}
}

func equalSets(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		if !contains(b, x) {
			return false
		}
	}
	return true
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
