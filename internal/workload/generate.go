package workload

import (
	"math/rand"
	"sort"

	"github.com/me/schedsim/pkg/model"
)

// GenerateOptions shapes a random workload.
type GenerateOptions struct {
	Count       int
	Seed        int64
	MaxArrival  int
	MaxBurst    int
	MaxPriority int
}

// DefaultGenerateOptions returns a small mixed workload.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Count:       10,
		Seed:        1,
		MaxArrival:  20,
		MaxBurst:    10,
		MaxPriority: 5,
	}
}

// Generate returns Count processes with PIDs from 1, sorted by arrival. The same
// options always produce the same workload.
func Generate(opts GenerateOptions) []model.ProcessSpec {
	d := DefaultGenerateOptions()
	if opts.Count <= 0 {
		opts.Count = d.Count
	}
	if opts.MaxArrival < 0 {
		opts.MaxArrival = 0
	}
	if opts.MaxBurst <= 0 {
		opts.MaxBurst = d.MaxBurst
	}
	if opts.MaxPriority < 0 {
		opts.MaxPriority = 0
	}

	r := rand.New(rand.NewSource(opts.Seed))
	out := make([]model.ProcessSpec, opts.Count)
	for i := range out {
		out[i] = model.ProcessSpec{
			Arrival:  r.Intn(opts.MaxArrival + 1),
			Burst:    1 + r.Intn(opts.MaxBurst),
			Priority: r.Intn(opts.MaxPriority + 1),
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Arrival < out[j].Arrival })
	for i := range out {
		out[i].PID = i + 1
	}
	return out
}
