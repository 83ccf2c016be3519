package calibration

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

// RawSample is one synthetic day's raw statistics for a single meter.
type RawSample struct {
	DTI      float64
	PowerSum float64
	HQS      float64
}

// SampleFunc computes per-meter raw statistics for the i-th synthetic
// (chart, date) pair. It must be safe for concurrent calls.
type SampleFunc func(i int) (map[string]RawSample, error)

// GenerateOptions tunes the offline calibration batch.
type GenerateOptions struct {
	Version string
	Samples int
	Workers int
}

// RunStats summarizes a generation run, including how often raw values would
// clamp at the table boundaries (the p01/p99 clamp rate is 2% by
// construction on the generating sample; it is recorded so drift against
// live traffic is observable).
type RunStats struct {
	Version    string
	Samples    int
	Meters     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Generate runs sample across a worker pool and extracts per-meter percentile
// tables for every statistic. Each request is independent, so the fan-out
// needs no coordination beyond collecting results.
func Generate(opts GenerateOptions, sample SampleFunc) ([]Table, RunStats, error) {
	if opts.Samples < Breakpoints+1 {
		return nil, RunStats{}, fmt.Errorf("calibration: need at least %d samples, got %d", Breakpoints+1, opts.Samples)
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	stats := RunStats{Version: opts.Version, Samples: opts.Samples, StartedAt: time.Now().UTC()}

	type result struct {
		samples map[string]RawSample
		err     error
	}

	indices := make(chan int)
	results := make(chan result)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				s, err := sample(i)
				results <- result{samples: s, err: err}
			}
		}()
	}

	go func() {
		for i := 0; i < opts.Samples; i++ {
			indices <- i
		}
		close(indices)
		wg.Wait()
		close(results)
	}()

	// Collect raw values per meter and statistic. The channel is fully
	// drained even after an error so the workers always exit.
	var firstErr error
	byMeter := make(map[string]map[Statistic][]float64)
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		for meter, raw := range r.samples {
			byStat, ok := byMeter[meter]
			if !ok {
				byStat = make(map[Statistic][]float64)
				byMeter[meter] = byStat
			}
			byStat[StatDTI] = append(byStat[StatDTI], raw.DTI)
			byStat[StatPowerSum] = append(byStat[StatPowerSum], raw.PowerSum)
			if raw.HQS > 0 {
				byStat[StatHQSPos] = append(byStat[StatHQSPos], raw.HQS)
			} else if raw.HQS < 0 {
				byStat[StatHQSNeg] = append(byStat[StatHQSNeg], -raw.HQS)
			}
		}
	}
	if firstErr != nil {
		return nil, RunStats{}, fmt.Errorf("calibration sample: %w", firstErr)
	}

	var tables []Table
	for meter, byStat := range byMeter {
		for _, stat := range Statistics {
			values := byStat[stat]
			if len(values) < Breakpoints {
				// Not enough signed-half samples; skip the table, the
				// normalizer falls back for this half.
				log.Printf("calibration: meter %s stat %s has only %d samples, skipping table", meter, stat, len(values))
				continue
			}
			t := Table{Meter: meter, Stat: stat, Version: opts.Version, Points: percentiles(values)}
			if err := t.Validate(); err != nil {
				return nil, RunStats{}, err
			}
			tables = append(tables, t)
		}
	}
	sort.Slice(tables, func(i, j int) bool {
		if tables[i].Meter != tables[j].Meter {
			return tables[i].Meter < tables[j].Meter
		}
		return tables[i].Stat < tables[j].Stat
	})

	stats.Meters = len(byMeter)
	stats.FinishedAt = time.Now().UTC()
	return tables, stats, nil
}

// percentiles sorts values and extracts the p01..p99 breakpoints by nearest
// rank. Sorting the copy keeps the caller's slice intact.
func percentiles(values []float64) [Breakpoints]float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var points [Breakpoints]float64
	n := len(sorted)
	for p := 1; p <= Breakpoints; p++ {
		idx := p * n / 100
		if idx >= n {
			idx = n - 1
		}
		points[p-1] = sorted[idx]
	}
	return points
}
