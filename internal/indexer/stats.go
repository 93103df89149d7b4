package indexer

import (
	"math"
	"slices"
	"time"
	"unicode/utf8"
)

// TokensPerRune approximates tokens as four characters each.
const TokensPerRune = 4.0

// IndexStats summarises an IndexAll run.
type IndexStats struct {
	Total       int             `json:"total"`
	Indexed     int             `json:"indexed"`
	Skipped     int             `json:"skipped"`
	Failed      int             `json:"failed"`
	Chunks      int             `json:"chunks"`
	ChunkTokens ChunkTokenStats `json:"chunk_tokens"`
	Failures    []Failure       `json:"failures"`
	Duration    time.Duration   `json:"duration_ns"`
}

// Failure records why one report could not be indexed.
type Failure struct {
	ReportID string `json:"report_id"`
	Error    string `json:"error"`
}

// ChunkTokenStats describes estimated token counts of the chunks written in a run.
type ChunkTokenStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

func estimateTokens(s string) int {
	n := int(math.Round(float64(utf8.RuneCountInString(s)) / TokensPerRune))
	return max(n, 1)
}

// computeTokenStats computes min, max, mean and p95 of counts.
func computeTokenStats(counts []int) ChunkTokenStats {
	if len(counts) == 0 {
		return ChunkTokenStats{}
	}

	sorted := slices.Clone(counts)
	slices.Sort(sorted)

	sum := 0
	for _, c := range sorted {
		sum += c
	}
	mean := float64(sum) / float64(len(sorted))

	p95Index := int(math.Ceil(float64(len(sorted))*0.95)) - 1
	p95Index = min(max(p95Index, 0), len(sorted)-1)

	return ChunkTokenStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100,
		P95:  sorted[p95Index],
	}
}
