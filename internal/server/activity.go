package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/rickgao/fndash/internal/catalog"
)

// Activity announces trigger setup and simulated activations on the feed.
type Activity struct {
	feed   Broadcaster
	logger *slog.Logger

	mu      sync.Mutex
	setup   []string
	cron    *cron.Cron
	entries map[string]cron.EntryID
}

// NewActivity creates an Activity publishing to feed.
func NewActivity(feed Broadcaster, logger *slog.Logger) *Activity {
	if logger == nil {
		logger = slog.Default()
	}
	return &Activity{
		feed:    feed,
		logger:  logger,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger), cron.Recover(cron.DefaultLogger))),
		entries: make(map[string]cron.EntryID),
	}
}

// Setup registers the loaded functions' schedules and records the setup log.
// Skipped definitions are reported the way the backend reports them.
func (a *Activity) Setup(defs *catalog.Definitions) {
	a.log("Starting trigger setup...")

	for _, s := range defs.Skipped {
		if errors.Is(s.Err, catalog.ErrFunctionNotFound) {
			a.log(fmt.Sprintf("Function %s does not exist", s.Name))
			continue
		}
		a.log(fmt.Sprintf("Error setting up trigger for %s: %v", s.Name, s.Err))
	}

	for _, fn := range defs.Functions {
		if err := a.setupFunction(fn); err != nil {
			a.log(fmt.Sprintf("Error setting up trigger for %s: %v", fn.Name, err))
		}
	}
}

func (a *Activity) setupFunction(fn catalog.Function) error {
	t := fn.Trigger
	switch t.Type {
	case catalog.TriggerHTTP:
		a.log("Setting up HTTP trigger for function: " + fn.Name)

	case catalog.TriggerTimer:
		a.log("Setting up timer trigger for function: " + fn.Name)
		if err := a.schedule(fn.Name, t.Schedule, func() { a.runScheduled(fn.Name) }); err != nil {
			return err
		}
		a.log(fmt.Sprintf("Scheduled function %s with cron: %s", fn.Name, t.Schedule))

	case catalog.TriggerUnityTable:
		interval := t.CheckInterval
		if interval <= 0 {
			interval = catalog.DefaultCheckInterval
		}
		a.log("Setting up Unity table trigger for function: " + fn.Name)
		table := catalog.QuotedTableName(t)
		spec := fmt.Sprintf("@every %ds", interval)
		if err := a.schedule(fn.Name, spec, func() { a.runMonitor(fn.Name, table) }); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: %q", catalog.ErrUnknownTrigger, t.Type)
	}
	return nil
}

func (a *Activity) schedule(name, spec string, job func()) error {
	id, err := a.cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	a.mu.Lock()
	a.entries[name] = id
	a.mu.Unlock()
	return nil
}

// SetupLog returns the setup messages, in order. New feed clients are greeted with it.
func (a *Activity) SetupLog() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.setup))
	copy(out, a.setup)
	return out
}

// Scheduled returns the names of functions with a cron entry.
func (a *Activity) Scheduled() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	names := make([]string, 0, len(a.entries))
	for name := range a.entries {
		names = append(names, name)
	}
	return names
}

// Start runs the scheduler in the background.
func (a *Activity) Start() {
	a.cron.Start()
}

// Stop halts the scheduler and waits for running jobs.
func (a *Activity) Stop() {
	<-a.cron.Stop().Done()
}

// HTTPHandler announces an http-triggered activation of name.
func (a *Activity) HTTPHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.announce("Executing HTTP-triggered function: " + name)
		a.announce("Successfully completed function: " + name)
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func (a *Activity) runScheduled(name string) {
	a.announce("Executing scheduled function: " + name)
	a.announce("Successfully completed scheduled function: " + name)
}

func (a *Activity) runMonitor(name, table string) {
	a.announce(fmt.Sprintf("Monitoring Unity table %s for function: %s", table, name))
}

// log records a setup line and broadcasts it.
func (a *Activity) log(msg string) {
	a.mu.Lock()
	a.setup = append(a.setup, msg)
	a.mu.Unlock()
	a.announce(msg)
}

func (a *Activity) announce(msg string) {
	a.logger.Info(msg)
	a.feed.Broadcast(msg)
}
