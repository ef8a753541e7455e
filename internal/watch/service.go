// Package watch reruns inspections on a cron schedule and feeds the results
// to the HTTP API and metrics.
package watch

import (
	"errors"
	"log"

	"github.com/robfig/cron/v3"

	"bchwatch/internal/api"
	"bchwatch/internal/config"
	"bchwatch/internal/inspect"
)

// Service schedules recurring inspections of every configured pool.
type Service struct {
	cfg      config.Config
	ins      *inspect.Inspector
	sink     *api.Server
	cronSpec string
	stopCh   chan struct{}
}

func New(cfg config.Config, ins *inspect.Inspector, sink *api.Server) *Service {
	return &Service{
		cfg:      cfg,
		ins:      ins,
		sink:     sink,
		cronSpec: cfg.WatchCron,
		stopCh:   make(chan struct{}),
	}
}

// Start registers the cron job and runs a first sweep right away. It returns
// a function to stop the scheduler.
func (s *Service) Start() (func(), error) {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	_, err := c.AddFunc(s.cronSpec, s.run)
	if err != nil {
		return nil, err
	}
	c.Start()
	go s.run()
	return func() {
		close(s.stopCh)
		c.Stop()
	}, nil
}

func (s *Service) run() {
	_ = s.RunNow()
}

// RunNow sweeps every pool immediately (for the initial run or testing).
func (s *Service) RunNow() error {
	select {
	case <-s.stopCh:
		return nil
	default:
	}

	log.Printf("watch: sweeping %d pools", len(s.cfg.Pools))
	outcomes := s.ins.InspectAll(s.cfg.Pools, s.cfg.Concurrency)
	var failed int
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			kind := "internal"
			var ie *inspect.Error
			if errors.As(o.Err, &ie) {
				kind = ie.Kind
			}
			log.Printf("watch: %s failed: %v", o.Pool.Name, o.Err)
			if s.sink != nil {
				s.sink.RecordFailure(o.Pool.Name, kind, o.Err)
			}
			continue
		}
		if o.Result.HeightKnown {
			log.Printf("watch: %s job %s height %d tag %q", o.Pool.Name, o.Result.JobID, o.Result.Height, o.Result.Tag)
		} else {
			log.Printf("watch: %s job %s tag %q", o.Pool.Name, o.Result.JobID, o.Result.Tag)
		}
		if s.sink != nil {
			s.sink.RecordResult(o.Result)
		}
	}
	log.Printf("watch: sweep done, %d/%d ok", len(outcomes)-failed, len(outcomes))
	if failed == len(outcomes) && failed > 0 {
		return errors.New("every pool failed")
	}
	return nil
}
