// Package scheduler runs the engine's periodic maintenance.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type Task func(ctx context.Context) error

// Every runs task immediately and then on each tick until ctx is done.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	t := time.NewTicker(interval)
	defer t.Stop()

	// run immediately
	go func() {
		if err := task(ctx); err != nil {
			log.Printf("[%s] error: %v", name, err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := task(ctx); err != nil {
				log.Printf("[%s] error: %v", name, err)
			}
		}
	}
}

// Cron wraps robfig/cron with named tasks that share one context.
type Cron struct {
	cron   *cron.Cron
	parser cron.Parser
	jobs   []job
}

type job struct {
	name string
	spec string
	task Task
}

func NewCron(parser cron.Parser) *Cron {
	return &Cron{
		cron:   cron.New(cron.WithParser(parser), cron.WithLocation(time.UTC)),
		parser: parser,
	}
}

// Add registers task under spec. An empty spec disables the job.
func (c *Cron) Add(name, spec string, task Task) error {
	if spec == "" {
		log.Printf("[scheduler] job=%s disabled (empty spec)", name)
		return nil
	}
	if _, err := c.parser.Parse(spec); err != nil {
		return fmt.Errorf("job %s: %w", name, err)
	}
	c.jobs = append(c.jobs, job{name: name, spec: spec, task: task})
	return nil
}

// Run starts every job and blocks until ctx is done, then waits for running
// jobs to finish.
func (c *Cron) Run(ctx context.Context) error {
	for _, j := range c.jobs {
		if _, err := c.cron.AddFunc(j.spec, func() { runJob(ctx, j) }); err != nil {
			return fmt.Errorf("cron.AddFunc %s: %w", j.name, err)
		}
		log.Printf("[scheduler] job=%s spec=%q", j.name, j.spec)
	}

	c.cron.Start()
	log.Printf("[scheduler] cron started jobs=%d", len(c.jobs))

	<-ctx.Done()
	stopped := c.cron.Stop()
	<-stopped.Done()
	log.Println("[scheduler] cron stopped")
	return nil
}

// RunNow executes the named job once, outside its schedule.
func (c *Cron) RunNow(ctx context.Context, name string) error {
	for _, j := range c.jobs {
		if j.name == name {
			return j.task(ctx)
		}
	}
	return fmt.Errorf("unknown job %q", name)
}

func runJob(ctx context.Context, j job) {
	start := time.Now()
	if err := j.task(ctx); err != nil {
		log.Printf("[scheduler] level=error job=%s err=%v", j.name, err)
		return
	}
	log.Printf("[scheduler] level=info job=%s dur_ms=%d", j.name, time.Since(start).Milliseconds())
}
