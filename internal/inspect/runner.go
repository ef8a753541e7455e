package inspect

import (
	"github.com/remeh/sizedwaitgroup"

	"bchwatch/internal/config"
)

// Outcome pairs a pool with whatever its inspection produced.
type Outcome struct {
	Pool   config.Pool
	Result *Result
	Err    error
}

// InspectAll runs inspections for every pool with at most concurrency in
// flight at once. Outcomes come back in registry order.
func (ins *Inspector) InspectAll(pools []config.Pool, concurrency int) []Outcome {
	if concurrency <= 0 {
		concurrency = 1
	}
	outcomes := make([]Outcome, len(pools))
	swg := sizedwaitgroup.New(concurrency)
	for i, pool := range pools {
		swg.Add()
		go func(i int, pool config.Pool) {
			defer swg.Done()
			res, err := ins.Inspect(pool)
			outcomes[i] = Outcome{Pool: pool, Result: res, Err: err}
		}(i, pool)
	}
	swg.Wait()
	return outcomes
}
