// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ticketlist drives a dashboard's ticket list: the initial
// load of tickets and counters, debounced refiltering as the user
// edits the status, priority, and search filters, and ticket creation
// for the customer dashboard.
//
// Every list request carries a sequence number. A response older than
// the newest one already applied is discarded, so the list always
// reflects the most recently issued filter regardless of the order in
// which responses arrive.
package ticketlist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/smartsupport/smartsupport/lib/clock"
	"github.com/smartsupport/smartsupport/lib/schema"
)

// DefaultSearchDelay is how long search edits are debounced.
const DefaultSearchDelay = 500 * time.Millisecond

// LoadFailedMessage is recorded when the list cannot be fetched.
const LoadFailedMessage = "Failed to load tickets"

// ErrClosed is returned by operations on a closed controller.
var ErrClosed = errors.New("ticket list controller is closed")

// Source is the backend surface the controller needs.
// *apiclient.Client implements it.
type Source interface {
	ListTickets(ctx context.Context, filter schema.Filter) ([]schema.Ticket, error)
	TicketStats(ctx context.Context) (schema.Stats, error)
	CreateTicket(ctx context.Context, ticket schema.NewTicket) (schema.Ticket, error)
}

// StatsMode selects where dashboard counters come from.
type StatsMode int

const (
	// StatsRemote fetches counters from the stats endpoint (agent and
	// admin dashboards).
	StatsRemote StatsMode = iota

	// StatsLocal counts the fetched list (customer dashboard, which has
	// no stats endpoint).
	StatsLocal
)

// StatsModeFor returns the counter source for a dashboard role.
func StatsModeFor(role schema.Role) StatsMode {
	if role.Staff() {
		return StatsRemote
	}
	return StatsLocal
}

// EmptyState describes why the list is empty.
type EmptyState int

const (
	// EmptyNone means the list has tickets or is still loading.
	EmptyNone EmptyState = iota

	// EmptyNoTickets means no filter is active and there are no
	// tickets at all.
	EmptyNoTickets

	// EmptyNoMatches means a filter is active and nothing matched.
	EmptyNoMatches
)

// Snapshot is a copy of the controller's view state.
type Snapshot struct {
	Tickets []schema.Ticket
	Stats   schema.Stats
	Filter  schema.Filter

	// Loading is true during the initial load.
	Loading bool

	// FilterLoading is true while a refilter request is outstanding.
	FilterLoading bool

	// Err is the user-facing message of the last failure, empty after a
	// successful fetch.
	Err string

	Empty EmptyState
}

// Config configures a Controller.
type Config struct {
	Source Source

	// Clock schedules debounced refilters. Nil selects clock.Real().
	Clock clock.Clock

	// Logger receives failure traces. Nil discards.
	Logger *slog.Logger

	// SearchDelay debounces search edits. Zero selects
	// DefaultSearchDelay.
	SearchDelay time.Duration

	StatsMode StatsMode

	// OnChange, when set, is called with a fresh snapshot after every
	// state transition. It runs on whichever goroutine made the change
	// and must not call back into the controller synchronously.
	OnChange func(Snapshot)
}

// Controller holds one dashboard's list state. Safe for concurrent
// use; debounced refilters run on timer goroutines.
type Controller struct {
	source      Source
	clock       clock.Clock
	logger      *slog.Logger
	searchDelay time.Duration
	statsMode   StatsMode
	onChange    func(Snapshot)

	// ctx bounds requests issued from timer callbacks. Cancelled by
	// Close.
	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	tickets       []schema.Ticket
	stats         schema.Stats
	filter        schema.Filter
	loading       bool
	filterLoading bool
	err           string
	closed        bool

	// generation identifies the currently scheduled refilter. A timer
	// callback whose generation no longer matches was superseded.
	generation uint64
	timer      *clock.Timer

	// issued is the sequence number of the newest list request;
	// applied is the sequence number of the newest response applied.
	issued  uint64
	applied uint64
}

// New creates a Controller. Call Load to populate it.
func New(config Config) *Controller {
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	delay := config.SearchDelay
	if delay == 0 {
		delay = DefaultSearchDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		source:      config.Source,
		clock:       clk,
		logger:      logger,
		searchDelay: delay,
		statsMode:   config.StatsMode,
		onChange:    config.OnChange,
		ctx:         ctx,
		cancel:      cancel,
		tickets:     []schema.Ticket{},
	}
}

// Snapshot returns a copy of the current state.
func (controller *Controller) Snapshot() Snapshot {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.snapshotLocked()
}

func (controller *Controller) snapshotLocked() Snapshot {
	tickets := make([]schema.Ticket, len(controller.tickets))
	copy(tickets, controller.tickets)

	empty := EmptyNone
	if len(tickets) == 0 && !controller.loading && !controller.filterLoading {
		if controller.filter.IsEmpty() {
			empty = EmptyNoTickets
		} else {
			empty = EmptyNoMatches
		}
	}
	return Snapshot{
		Tickets:       tickets,
		Stats:         controller.stats,
		Filter:        controller.filter,
		Loading:       controller.loading,
		FilterLoading: controller.filterLoading,
		Err:           controller.err,
		Empty:         empty,
	}
}

// notify delivers snapshot to OnChange. Must be called without the
// lock held.
func (controller *Controller) notify(snapshot Snapshot) {
	if controller.onChange != nil {
		controller.onChange(snapshot)
	}
}

// Load performs the initial load: tickets and counters are fetched
// concurrently, and if either fails both reset to empty.
func (controller *Controller) Load(ctx context.Context) error {
	controller.mu.Lock()
	if controller.closed {
		controller.mu.Unlock()
		return ErrClosed
	}
	controller.loading = true
	controller.issued++
	sequence := controller.issued
	filter := controller.filter
	loadingSnapshot := controller.snapshotLocked()
	controller.mu.Unlock()
	controller.notify(loadingSnapshot)

	var (
		waitGroup sync.WaitGroup
		tickets   []schema.Ticket
		stats     schema.Stats
		listErr   error
		statsErr  error
	)
	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		tickets, listErr = controller.source.ListTickets(ctx, filter)
	}()
	if controller.statsMode == StatsRemote {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			stats, statsErr = controller.source.TicketStats(ctx)
		}()
	}
	waitGroup.Wait()

	err := errors.Join(listErr, statsErr)
	if err != nil {
		controller.logger.Warn("loading dashboard failed", "error", err)
		tickets, stats = []schema.Ticket{}, schema.Stats{}
	}
	if tickets == nil {
		tickets = []schema.Ticket{}
	}
	if controller.statsMode == StatsLocal && err == nil {
		stats = schema.Summarize(tickets)
	}

	controller.mu.Lock()
	controller.loading = false
	if sequence == controller.issued {
		controller.filterLoading = false
	}
	switch {
	case err != nil:
		// A failed initial load resets both collections even when a
		// newer refilter has already been applied.
		controller.applied = max(controller.applied, sequence)
		controller.tickets = tickets
		controller.stats = stats
		controller.err = LoadFailedMessage
	case sequence > controller.applied:
		controller.applied = sequence
		controller.tickets = tickets
		controller.stats = stats
		controller.err = ""
	case controller.statsMode == StatsRemote:
		// Remote counters cover every ticket, not the filtered list, so
		// they stay valid after a newer refilter.
		controller.stats = stats
	}
	snapshot := controller.snapshotLocked()
	controller.mu.Unlock()
	controller.notify(snapshot)
	return err
}

// SetStatus changes the status filter and refilters immediately.
func (controller *Controller) SetStatus(status schema.Status) {
	controller.update(func(filter *schema.Filter) { filter.Status = status }, 0)
}

// SetPriority changes the priority filter and refilters immediately.
func (controller *Controller) SetPriority(priority schema.Priority) {
	controller.update(func(filter *schema.Filter) { filter.Priority = priority }, 0)
}

// SetSearch changes the search text and refilters after the search
// delay. Each call restarts the delay, so a burst of keystrokes issues
// one request for the final text.
func (controller *Controller) SetSearch(search string) {
	controller.update(func(filter *schema.Filter) { filter.Search = search }, controller.searchDelay)
}

// SetFilter replaces the whole filter and refilters immediately.
func (controller *Controller) SetFilter(filter schema.Filter) {
	controller.update(func(current *schema.Filter) { *current = filter }, 0)
}

func (controller *Controller) update(apply func(*schema.Filter), delay time.Duration) {
	controller.mu.Lock()
	if controller.closed {
		controller.mu.Unlock()
		return
	}
	apply(&controller.filter)
	controller.generation++
	generation := controller.generation
	previous := controller.timer
	controller.timer = nil
	controller.mu.Unlock()

	previous.Stop()

	// A zero-delay fake timer fires inside AfterFunc, so the lock must
	// not be held here.
	timer := controller.clock.AfterFunc(delay, func() { controller.fire(generation) })

	controller.mu.Lock()
	if controller.generation == generation && !controller.closed {
		controller.timer = timer
	}
	controller.mu.Unlock()
}

// fire runs a scheduled refilter unless it was superseded.
func (controller *Controller) fire(generation uint64) {
	controller.mu.Lock()
	if controller.closed || controller.generation != generation {
		controller.mu.Unlock()
		return
	}
	controller.timer = nil
	controller.mu.Unlock()

	controller.refetch(controller.ctx)
}

// Refresh refetches the list with the current filter.
func (controller *Controller) Refresh(ctx context.Context) error {
	return controller.refetch(ctx)
}

func (controller *Controller) refetch(ctx context.Context) error {
	controller.mu.Lock()
	if controller.closed {
		controller.mu.Unlock()
		return ErrClosed
	}
	controller.issued++
	sequence := controller.issued
	filter := controller.filter
	controller.filterLoading = true
	loadingSnapshot := controller.snapshotLocked()
	controller.mu.Unlock()
	controller.notify(loadingSnapshot)

	tickets, err := controller.source.ListTickets(ctx, filter)
	if err != nil {
		controller.logger.Warn("refiltering tickets failed", "error", err, "sequence", sequence)
		tickets = []schema.Ticket{}
	}
	if tickets == nil {
		tickets = []schema.Ticket{}
	}

	controller.mu.Lock()
	if sequence == controller.issued {
		controller.filterLoading = false
	}
	if sequence <= controller.applied {
		controller.logger.Debug("discarding stale ticket list",
			"sequence", sequence,
			"applied", controller.applied,
		)
		snapshot := controller.snapshotLocked()
		controller.mu.Unlock()
		controller.notify(snapshot)
		return err
	}
	controller.applied = sequence
	controller.tickets = tickets
	controller.err = ""
	if err != nil {
		controller.err = LoadFailedMessage
	}
	if controller.statsMode == StatsLocal {
		controller.stats = schema.Summarize(tickets)
	}
	snapshot := controller.snapshotLocked()
	controller.mu.Unlock()
	controller.notify(snapshot)
	return err
}

// Create files a new ticket and refreshes the list. The ticket is
// validated before anything is sent.
func (controller *Controller) Create(ctx context.Context, ticket schema.NewTicket) (schema.Ticket, error) {
	if err := ticket.Validate(); err != nil {
		return schema.Ticket{}, err
	}
	created, err := controller.source.CreateTicket(ctx, ticket)
	if err != nil {
		controller.logger.Warn("creating ticket failed", "error", err)
		return schema.Ticket{}, err
	}
	if err := controller.Refresh(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// Close cancels any pending refilter and in-flight timer-issued
// request. Subsequent filter changes are ignored.
func (controller *Controller) Close() {
	controller.mu.Lock()
	controller.closed = true
	controller.generation++
	timer := controller.timer
	controller.timer = nil
	controller.mu.Unlock()

	timer.Stop()
	controller.cancel()
}
