package project

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/rpggio/flowboard/internal/clock"
	"github.com/rpggio/flowboard/internal/domain/activity"
	"github.com/rpggio/flowboard/internal/repository"
)

// Store owns the in-memory project list and writes it through to the
// "projects" slot after every mutation.
//
// Operations are serialized; Snapshot may be called at any time, including
// from a Listener. Listeners must not call mutating operations.
type Store struct {
	slots    SlotStorage
	clock    clock.Clock
	ids      *clock.Sequence
	activity ActivityLogger
	logger   *slog.Logger

	opMu sync.Mutex

	mu       sync.RWMutex
	projects []Project
	loading  bool
	errMsg   string
	outcome  repository.Outcome

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

// NewStore creates an empty project store. activityLog and logger may be nil.
func NewStore(slots SlotStorage, clk clock.Clock, activityLog ActivityLogger, logger *slog.Logger) *Store {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		slots:     slots,
		clock:     clk,
		ids:       clock.NewSequence(clk),
		activity:  activityLog,
		logger:    logger,
		projects:  []Project{},
		listeners: map[int]Listener{},
	}
}

// Fetch replaces the in-memory list with the persisted one. On failure the
// list is left as it was and State.Error is set.
func (s *Store) Fetch(ctx context.Context) (err error) {
	s.begin(true)
	defer func() { s.finish(err, MsgLoadFailed) }()

	if err := s.load(ctx); err != nil {
		return err
	}
	s.record(ctx, activity.TypeProjectsLoaded, nil, fmt.Sprintf("loaded %d projects", len(s.Projects())))
	return nil
}

// Create appends a new project and persists the list.
func (s *Store) Create(ctx context.Context, req CreateRequest) (_ *Project, err error) {
	s.begin(false)
	defer func() { s.finish(err, MsgCreateFailed) }()

	if err := req.validate(); err != nil {
		return nil, err
	}

	proj := Project{
		ID:          s.ids.Next(),
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		CreatedAt:   clock.Timestamp(s.clock.Now()),
	}

	s.mu.Lock()
	s.projects = append(s.projects, proj)
	s.mu.Unlock()

	if err := s.save(ctx); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.record(ctx, activity.TypeProjectCreated, &proj.ID, fmt.Sprintf("created project %d", proj.ID))
	return &proj, nil
}

// Update merges req into the project with the given ID, keeping its position.
func (s *Store) Update(ctx context.Context, id int64, req UpdateRequest) (_ *Project, err error) {
	s.begin(false)
	defer func() { s.finish(err, MsgUpdateFailed) }()

	if err := req.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, ErrProjectNotFound
	}
	updated := s.projects[idx]
	req.apply(&updated)
	s.projects[idx] = updated
	s.mu.Unlock()

	if err := s.save(ctx); err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}

	s.record(ctx, activity.TypeProjectUpdated, &updated.ID, fmt.Sprintf("updated project %d", updated.ID))
	return &updated, nil
}

// Delete removes every project with the given ID and persists the list.
// Deleting an unknown ID is not an error.
func (s *Store) Delete(ctx context.Context, id int64) (err error) {
	s.begin(false)
	defer func() { s.finish(err, MsgDeleteFailed) }()

	s.mu.Lock()
	kept := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	removed := len(s.projects) - len(kept)
	s.projects = kept
	s.mu.Unlock()

	if err := s.save(ctx); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	if removed > 0 {
		s.record(ctx, activity.TypeProjectDeleted, &id, fmt.Sprintf("deleted project %d", id))
	}
	return nil
}

// Save writes the whole list to the "projects" slot.
func (s *Store) Save(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.save(ctx)
}

// Load replaces the list from the "projects" slot. An empty slot leaves the
// list untouched.
func (s *Store) Load(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if err := s.load(ctx); err != nil {
		return err
	}
	s.notify()
	return nil
}

// Get returns a copy of the project with the given ID.
func (s *Store) Get(id int64) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrProjectNotFound
	}
	proj := s.projects[idx]
	return &proj, nil
}

// Projects returns a copy of the project list in order.
func (s *Store) Projects() []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Project{}, s.projects...)
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Projects: append([]Project{}, s.projects...),
		Loading:  s.loading,
		Error:    s.errMsg,
		Outcome:  s.outcome,
	}
}

// Subscribe registers fn to receive the state after every change. The
// returned function removes the registration.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	key := s.nextListener
	s.nextListener++
	s.listeners[key] = fn

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, key)
	}
}

func (s *Store) begin(clearError bool) {
	s.opMu.Lock()

	s.mu.Lock()
	s.loading = true
	if clearError {
		s.errMsg = ""
	}
	s.mu.Unlock()

	s.notify()
}

func (s *Store) finish(err error, failMsg string) {
	defer s.opMu.Unlock()

	s.mu.Lock()
	s.loading = false
	s.outcome = repository.OutcomeOf(err)
	if err != nil {
		s.errMsg = failMsg
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error(failMsg, "error", err, "outcome", string(repository.OutcomeOf(err)))
	}
	s.notify()
}

func (s *Store) notify() {
	state := s.Snapshot()

	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

func (s *Store) save(ctx context.Context) error {
	s.mu.RLock()
	data, err := json.Marshal(s.projects)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("%w: encode projects: %w", repository.ErrPersistFailed, err)
	}

	if err := s.slots.Set(ctx, repository.ProjectsSlot, string(data)); err != nil {
		return fmt.Errorf("%w: write %s slot: %w", repository.ErrPersistFailed, repository.ProjectsSlot, err)
	}
	return nil
}

func (s *Store) load(ctx context.Context) error {
	value, found, err := s.slots.Get(ctx, repository.ProjectsSlot)
	if err != nil {
		return fmt.Errorf("%w: read %s slot: %w", repository.ErrLoadFailed, repository.ProjectsSlot, err)
	}
	if !found || value == "" {
		return nil
	}

	var loaded []Project
	if err := json.Unmarshal([]byte(value), &loaded); err != nil {
		return fmt.Errorf("%w: decode projects: %w", repository.ErrLoadFailed, err)
	}
	seen := make(map[int64]bool, len(loaded))
	for _, p := range loaded {
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate project id %d", repository.ErrLoadFailed, p.ID)
		}
		seen[p.ID] = true
		s.ids.Observe(p.ID)
	}
	if loaded == nil {
		loaded = []Project{}
	}

	s.mu.Lock()
	s.projects = loaded
	s.mu.Unlock()
	return nil
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id int64) int {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) record(ctx context.Context, typ activity.ActivityType, id *int64, summary string) {
	if s.activity == nil {
		return
	}
	err := s.activity.LogActivity(ctx, &activity.ActivityEntry{
		Collection:   activity.CollectionProjects,
		EntityID:     id,
		ActivityType: typ,
		Summary:      summary,
	})
	if err != nil {
		s.logger.Warn("failed to record project activity", "type", string(typ), "error", err)
	}
}
