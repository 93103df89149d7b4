package indexer

import (
	"testing"
)

func TestComputeTokenStats(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   ChunkTokenStats
	}{
		{
			name:   "empty",
			counts: nil,
			want:   ChunkTokenStats{},
		},
		{
			name:   "single value",
			counts: []int{42},
			want:   ChunkTokenStats{Min: 42, Max: 42, Mean: 42, P95: 42},
		},
		{
			name:   "unsorted input",
			counts: []int{30, 10, 20},
			want:   ChunkTokenStats{Min: 10, Max: 30, Mean: 20, P95: 30},
		},
		{
			name:   "p95 of twenty",
			counts: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 100},
			want:   ChunkTokenStats{Min: 1, Max: 100, Mean: 14.5, P95: 19},
		},
		{
			name:   "mean rounded to two places",
			counts: []int{1, 1, 2},
			want:   ChunkTokenStats{Min: 1, Max: 2, Mean: 1.33, P95: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeTokenStats(tt.counts)
			if got != tt.want {
				t.Errorf("computeTokenStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeTokenStats_DoesNotMutateInput(t *testing.T) {
	counts := []int{3, 1, 2}
	computeTokenStats(counts)
	if counts[0] != 3 || counts[1] != 1 || counts[2] != 2 {
		t.Errorf("input was reordered: %v", counts)
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 1},
		{"ab", 1},
		{"abcdefgh", 2},
		{"ñañañaña", 2},
	}
	for _, tt := range tests {
		if got := estimateTokens(tt.input); got != tt.want {
			t.Errorf("estimateTokens(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
