// Package notifier runs the periodic expiry job: sweep stale items to expired,
// send today's alerts for every owner, and prune old notifications.
package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	applog "freshtrack/internal/log"
	"freshtrack/internal/services"
)

type Notifier struct {
	Inventory     *services.InventoryService
	Notifications *services.NotificationService

	mu sync.Mutex // one run at a time
}

func New(inv *services.InventoryService, notifs *services.NotificationService) *Notifier {
	return &Notifier{Inventory: inv, Notifications: notifs}
}

// Result reports what one run did.
type Result struct {
	Swept   int
	Created int
	Skipped int
	Pruned  int64
}

// Run executes one pass. A failing step is logged and the remaining steps still run;
// the first error is returned.
func (n *Notifier) Run(ctx context.Context) (Result, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	var res Result
	var first error
	keep := func(step string, err error) {
		if err == nil {
			return
		}
		applog.Job("notifier."+step+".fail", err, nil)
		if first == nil {
			first = fmt.Errorf("%s: %w", step, err)
		}
	}

	swept, err := n.Inventory.SweepExpired()
	res.Swept = swept
	keep("sweep", err)

	sent, err := n.Notifications.NotifyAll(ctx)
	res.Created, res.Skipped = sent.Created, sent.Skipped
	keep("notify", err)

	pruned, err := n.Notifications.Prune()
	res.Pruned = pruned
	keep("prune", err)

	applog.Job("notifier.run", nil, map[string]any{
		"swept": res.Swept, "created": res.Created, "skipped": res.Skipped, "pruned": res.Pruned,
	})
	return res, first
}

// Scheduler wraps a cron with a single notifier job.
type Scheduler struct {
	cron *cron.Cron
}

// Schedule registers Run under a standard five-field cron spec evaluated in loc.
func Schedule(n *Notifier, spec string, loc *time.Location) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		_, _ = n.Run(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("notify schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop prevents new runs and waits for a running one, up to ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
