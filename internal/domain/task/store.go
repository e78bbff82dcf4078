package task

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

// Store owns the in-memory task list and writes it through to the "tasks"
// slot after every mutation.
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

	mu      sync.RWMutex
	tasks   []Task
	loading bool
	errMsg  string
	outcome repository.Outcome

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

// NewStore creates an empty task store. activityLog and logger may be nil.
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
		tasks:     []Task{},
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
	s.record(ctx, activity.TypeTasksLoaded, nil, fmt.Sprintf("loaded %d tasks", len(s.Tasks())))
	return nil
}

// Create appends a new task and persists the list.
func (s *Store) Create(ctx context.Context, req CreateRequest) (_ *Task, err error) {
	s.begin(false)
	defer func() { s.finish(err, MsgCreateFailed) }()

	if err := ValidateCreateInput(req); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = StatusTodo
	}
	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	t := Task{
		ID:          s.ids.Next(),
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		CreatedAt:   clock.Timestamp(s.clock.Now()),
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()

	if err := s.save(ctx); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	s.record(ctx, activity.TypeTaskCreated, &t.ID, fmt.Sprintf("created task %d in project %d", t.ID, t.ProjectID))
	return &t, nil
}

// Update merges req into the task with the given ID, keeping its position,
// and stamps UpdatedAt.
func (s *Store) Update(ctx context.Context, id int64, req UpdateRequest) (_ *Task, err error) {
	s.begin(false)
	defer func() { s.finish(err, MsgUpdateFailed) }()

	if err := ValidateUpdateInput(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, ErrTaskNotFound
	}
	updated := s.tasks[idx]
	req.apply(&updated)
	now := clock.Timestamp(s.clock.Now())
	updated.UpdatedAt = &now
	s.tasks[idx] = updated
	s.mu.Unlock()

	if err := s.save(ctx); err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}

	s.record(ctx, activity.TypeTaskUpdated, &updated.ID, fmt.Sprintf("updated task %d", updated.ID))
	return &updated, nil
}

// Delete removes every task with the given ID and persists the list.
// Deleting an unknown ID is not an error.
func (s *Store) Delete(ctx context.Context, id int64) (err error) {
	s.begin(false)
	defer func() { s.finish(err, MsgDeleteFailed) }()

	s.mu.Lock()
	kept := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	removed := len(s.tasks) - len(kept)
	s.tasks = kept
	s.mu.Unlock()

	if err := s.save(ctx); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	if removed > 0 {
		s.record(ctx, activity.TypeTaskDeleted, &id, fmt.Sprintf("deleted task %d", id))
	}
	return nil
}

// UpdateOrder replaces the tasks of projectID with reordered, in the given
// order, and persists the list. See Reorder for placement.
func (s *Store) UpdateOrder(ctx context.Context, projectID int64, reordered []Task) (err error) {
	s.begin(false)
	defer func() { s.finish(err, MsgReorderFailed) }()

	return s.reorder(ctx, projectID, func() ([]Task, error) { return reordered, nil })
}

// UpdateOrderIDs is UpdateOrder for tasks already in the store, named by ID.
// IDs are resolved within the operation, so a task deleted concurrently is
// reported as not found rather than restored.
func (s *Store) UpdateOrderIDs(ctx context.Context, projectID int64, ids []int64) (err error) {
	s.begin(false)
	defer func() { s.finish(err, MsgReorderFailed) }()

	return s.reorder(ctx, projectID, func() ([]Task, error) {
		block := make([]Task, 0, len(ids))
		for _, id := range ids {
			idx := s.indexOf(id)
			if idx < 0 {
				return nil, fmt.Errorf("%w: %d", ErrTaskNotFound, id)
			}
			block = append(block, s.tasks[idx])
		}
		return block, nil
	})
}

// reorder must be called between begin and finish. block is called with mu
// held.
func (s *Store) reorder(ctx context.Context, projectID int64, block func() ([]Task, error)) error {
	s.mu.Lock()
	reordered, err := block()
	if err == nil {
		err = ValidateOrder(s.tasks, projectID, reordered)
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.tasks = Reorder(s.tasks, projectID, reordered)
	s.mu.Unlock()

	for _, t := range reordered {
		s.ids.Observe(t.ID)
	}

	if err := s.save(ctx); err != nil {
		return fmt.Errorf("reordering tasks: %w", err)
	}

	s.recordEntry(ctx, &activity.ActivityEntry{
		ActivityType: activity.TypeTasksReordered,
		Summary:      fmt.Sprintf("reordered %d tasks in project %d", len(reordered), projectID),
		Details:      fmt.Sprintf(`{"projectId":%d}`, projectID),
	})
	return nil
}

// Save writes the whole list to the "tasks" slot.
func (s *Store) Save(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.save(ctx)
}

// Load replaces the list from the "tasks" slot. An empty slot leaves the
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

// Get returns a copy of the task with the given ID.
func (s *Store) Get(id int64) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrTaskNotFound
	}
	t := s.tasks[idx]
	return &t, nil
}

// Tasks returns a copy of the task list in order.
func (s *Store) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Task{}, s.tasks...)
}

// ByProject returns the tasks of projectID in list order.
func (s *Store) ByProject(projectID int64) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []Task{}
	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			result = append(result, t)
		}
	}
	return result
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Tasks:   append([]Task{}, s.tasks...),
		Loading: s.loading,
		Error:   s.errMsg,
		Outcome: s.outcome,
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

	outcome := repository.OutcomeOf(err)
	s.mu.Lock()
	s.loading = false
	s.outcome = outcome
	if err != nil {
		s.errMsg = failMsg
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error(failMsg, "error", err, "outcome", string(outcome))
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
	data, err := json.Marshal(s.tasks)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("%w: encode tasks: %w", repository.ErrPersistFailed, err)
	}

	if err := s.slots.Set(ctx, repository.TasksSlot, string(data)); err != nil {
		return fmt.Errorf("%w: write %s slot: %w", repository.ErrPersistFailed, repository.TasksSlot, err)
	}
	return nil
}

func (s *Store) load(ctx context.Context) error {
	value, found, err := s.slots.Get(ctx, repository.TasksSlot)
	if err != nil {
		return fmt.Errorf("%w: read %s slot: %w", repository.ErrLoadFailed, repository.TasksSlot, err)
	}
	if !found || value == "" {
		return nil
	}

	var loaded []Task
	if err := json.Unmarshal([]byte(value), &loaded); err != nil {
		return fmt.Errorf("%w: decode tasks: %w", repository.ErrLoadFailed, err)
	}
	seen := make(map[int64]bool, len(loaded))
	for _, t := range loaded {
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate task id %d", repository.ErrLoadFailed, t.ID)
		}
		seen[t.ID] = true
	}
	for id := range seen {
		s.ids.Observe(id)
	}
	if loaded == nil {
		loaded = []Task{}
	}

	s.mu.Lock()
	s.tasks = loaded
	s.mu.Unlock()
	return nil
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id int64) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) record(ctx context.Context, typ activity.ActivityType, id *int64, summary string) {
	s.recordEntry(ctx, &activity.ActivityEntry{
		EntityID:     id,
		ActivityType: typ,
		Summary:      summary,
	})
}

func (s *Store) recordEntry(ctx context.Context, entry *activity.ActivityEntry) {
	if s.activity == nil {
		return
	}
	entry.Collection = activity.CollectionTasks
	if err := s.activity.LogActivity(ctx, entry); err != nil {
		s.logger.Warn("failed to record task activity", "type", string(entry.ActivityType), "error", err)
	}
}
