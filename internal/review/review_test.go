package review

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wmsforge/stockroom/internal/requests"
	"github.com/wmsforge/stockroom/pkg/pagination"
)

// memItems mirrors the guarded-update claim semantics of the relational
// store: under the lock the claim succeeds only while the item is unclaimed,
// so exactly one caller wins.
type memItems struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*Item
	byRequest map[uuid.UUID]uuid.UUID
}

func newMemItems() *memItems {
	return &memItems{
		byID:      make(map[uuid.UUID]*Item),
		byRequest: make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *memItems) Upsert(_ context.Context, id, requestID uuid.UUID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.byRequest[requestID]; ok {
		item := m.byID[existing]
		item.Reason = reason
		item.ClaimedBy = nil
		item.ClaimedAt = nil
		return nil
	}

	m.byID[id] = &Item{
		ID:        id,
		RequestID: requestID,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
	m.byRequest[requestID] = id
	return nil
}

func (m *memItems) CountPending(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int
	for _, item := range m.byID {
		if item.ClaimedBy == nil {
			n++
		}
	}
	return n, nil
}

func (m *memItems) ListPending(_ context.Context, offset, limit int) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Item, 0, len(m.byID))
	for _, item := range m.byID {
		if item.ClaimedBy == nil {
			out = append(out, *item)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memItems) ClaimPending(_ context.Context, id uuid.UUID, reviewer string) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.byID[id]
	if !ok || item.ClaimedBy != nil {
		return nil, sql.ErrNoRows
	}

	now := time.Now()
	item.ClaimedBy = &reviewer
	item.ClaimedAt = &now
	cp := *item
	return &cp, nil
}

func (m *memItems) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byID[id]
	return ok, nil
}

func (m *memItems) ReleaseBefore(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int
	for _, item := range m.byID {
		if item.ClaimedAt != nil && item.ClaimedAt.Before(cutoff) {
			item.ClaimedBy = nil
			item.ClaimedAt = nil
			n++
		}
	}
	return n, nil
}

func (m *memItems) Find(_ context.Context, id uuid.UUID) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *item
	return &cp, nil
}

func (m *memItems) Remove(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item, ok := m.byID[id]; ok {
		delete(m.byRequest, item.RequestID)
		delete(m.byID, id)
	}
	return nil
}

type memTransitioner struct {
	requestID uuid.UUID
	status    requests.Status
	reason    string
	calls     int
}

func (m *memTransitioner) Transition(
	_ context.Context,
	id uuid.UUID,
	to requests.Status,
	reason string,
) (*requests.Request, error) {
	m.requestID = id
	m.status = to
	m.reason = reason
	m.calls++
	return &requests.Request{ID: id, Status: to}, nil
}

type memProcessor struct {
	requestID uuid.UUID
	category  string
	calls     int
	err       error
}

func (m *memProcessor) Resume(_ context.Context, requestID uuid.UUID, category string) error {
	if m.err != nil {
		return m.err
	}
	m.requestID = requestID
	m.category = category
	m.calls++
	return nil
}

type reviewFixture struct {
	system     System
	items      *memItems
	transition *memTransitioner
	processor  *memProcessor
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()

	items := newMemItems()
	transition := &memTransitioner{}
	processor := &memProcessor{}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	system := New(items, transition, logger, pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
	system.SetProcessor(processor)

	return &reviewFixture{
		system:     system,
		items:      items,
		transition: transition,
		processor:  processor,
	}
}

func (f *reviewFixture) enqueue(t *testing.T) uuid.UUID {
	t.Helper()

	requestID := uuid.New()
	if err := f.system.Enqueue(context.Background(), requestID, "primary confidence below threshold"); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	id, ok := f.items.byRequest[requestID]
	if !ok {
		t.Fatal("enqueued item missing from store")
	}
	return id
}

func TestClaimSecondReviewerConflicts(t *testing.T) {
	f := newReviewFixture(t)
	id := f.enqueue(t)

	item, err := f.system.Claim(context.Background(), id, "alice")
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if item.ClaimedBy == nil || *item.ClaimedBy != "alice" {
		t.Fatalf("ClaimedBy = %v, want alice", item.ClaimedBy)
	}

	if _, err := f.system.Claim(context.Background(), id, "bob"); !errors.Is(err, ErrAlreadyClaimed) {
		t.Errorf("second Claim() error = %v, want ErrAlreadyClaimed", err)
	}
}

func TestClaimConcurrentSingleWinner(t *testing.T) {
	f := newReviewFixture(t)
	id := f.enqueue(t)

	const reviewers = 8
	errs := make(chan error, reviewers)

	var wg sync.WaitGroup
	for i := range reviewers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.system.Claim(context.Background(), id, string(rune('a'+i)))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var wins, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyClaimed):
			conflicts++
		default:
			t.Errorf("Claim() error = %v", err)
		}
	}

	if wins != 1 || conflicts != reviewers-1 {
		t.Errorf("claims = %d wins, %d conflicts, want 1 and %d", wins, conflicts, reviewers-1)
	}
}

func TestClaimUnknownItem(t *testing.T) {
	f := newReviewFixture(t)

	if _, err := f.system.Claim(context.Background(), uuid.New(), "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Claim() error = %v, want ErrNotFound", err)
	}
}

func TestReleaseReturnsStaleClaimsToPool(t *testing.T) {
	f := newReviewFixture(t)
	stale := f.enqueue(t)
	fresh := f.enqueue(t)

	for _, id := range []uuid.UUID{stale, fresh} {
		if _, err := f.system.Claim(context.Background(), id, "alice"); err != nil {
			t.Fatalf("Claim() error = %v", err)
		}
	}

	old := time.Now().Add(-time.Hour)
	f.items.byID[stale].ClaimedAt = &old

	n, err := f.system.Release(context.Background(), 30*time.Minute)
	if err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("Release() = %d, want 1", n)
	}

	page, err := f.system.ListPending(context.Background(), pagination.PageRequest{})
	if err != nil {
		t.Fatalf("ListPending() error = %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].ID != stale {
		t.Errorf("pending after release = %v, want the released item only", page.Data)
	}

	// The released item is claimable again.
	if _, err := f.system.Claim(context.Background(), stale, "bob"); err != nil {
		t.Errorf("reclaim after release error = %v", err)
	}
}

func TestResolveRequiresClaimByResolver(t *testing.T) {
	f := newReviewFixture(t)
	id := f.enqueue(t)

	d := Decision{Action: ActionAccept}
	if err := f.system.Resolve(context.Background(), id, "alice", d); !errors.Is(err, ErrNotClaimed) {
		t.Errorf("Resolve() on unclaimed item error = %v, want ErrNotClaimed", err)
	}

	if _, err := f.system.Claim(context.Background(), id, "alice"); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if err := f.system.Resolve(context.Background(), id, "bob", d); !errors.Is(err, ErrNotClaimed) {
		t.Errorf("Resolve() by non-claimant error = %v, want ErrNotClaimed", err)
	}
	if f.processor.calls != 0 {
		t.Errorf("processor calls = %d, want 0", f.processor.calls)
	}
}

func TestResolveAcceptResumesProcessing(t *testing.T) {
	f := newReviewFixture(t)
	id := f.enqueue(t)
	requestID := f.items.byID[id].RequestID

	if _, err := f.system.Claim(context.Background(), id, "alice"); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if err := f.system.Resolve(context.Background(), id, "alice", Decision{Action: ActionAccept}); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if f.processor.calls != 1 || f.processor.requestID != requestID || f.processor.category != "" {
		t.Errorf("Resume(%s, %q) x%d, want (%s, \"\") x1",
			f.processor.requestID, f.processor.category, f.processor.calls, requestID)
	}
	if _, ok := f.items.byID[id]; ok {
		t.Error("item remains in queue after resolution")
	}
}

func TestResolveReassignPinsCategory(t *testing.T) {
	f := newReviewFixture(t)
	id := f.enqueue(t)

	if _, err := f.system.Claim(context.Background(), id, "alice"); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}

	d := Decision{Action: ActionReassign, Category: "receiving"}
	if err := f.system.Resolve(context.Background(), id, "alice", d); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if f.processor.category != "receiving" {
		t.Errorf("pinned category = %q, want receiving", f.processor.category)
	}
	if f.transition.calls != 0 {
		t.Errorf("transitions = %d, want 0", f.transition.calls)
	}
}

func TestResolveRejectFailsRequest(t *testing.T) {
	f := newReviewFixture(t)
	id := f.enqueue(t)
	requestID := f.items.byID[id].RequestID

	if _, err := f.system.Claim(context.Background(), id, "alice"); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}

	d := Decision{Action: ActionReject, Note: "not a warehouse segment"}
	if err := f.system.Resolve(context.Background(), id, "alice", d); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if f.transition.requestID != requestID || f.transition.status != requests.StatusFailed {
		t.Errorf("transition = (%s, %s), want (%s, %s)",
			f.transition.requestID, f.transition.status, requestID, requests.StatusFailed)
	}
	if f.transition.reason != "not a warehouse segment" {
		t.Errorf("reason = %q, want the reviewer note", f.transition.reason)
	}
	if f.processor.calls != 0 {
		t.Errorf("processor calls = %d, want 0", f.processor.calls)
	}
	if _, ok := f.items.byID[id]; ok {
		t.Error("item remains in queue after rejection")
	}
}

func TestResolveInvalidDecision(t *testing.T) {
	f := newReviewFixture(t)
	id := f.enqueue(t)

	err := f.system.Resolve(context.Background(), id, "alice", Decision{Action: "escalate"})
	if !errors.Is(err, ErrInvalidDecision) {
		t.Errorf("Resolve() error = %v, want ErrInvalidDecision", err)
	}
}

func TestResolveKeepsItemOnProcessorFailure(t *testing.T) {
	f := newReviewFixture(t)
	id := f.enqueue(t)
	f.processor.err = errors.New("pipeline unavailable")

	if _, err := f.system.Claim(context.Background(), id, "alice"); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if err := f.system.Resolve(context.Background(), id, "alice", Decision{Action: ActionAccept}); err == nil {
		t.Fatal("Resolve() error = nil, want processor failure")
	}

	if _, ok := f.items.byID[id]; !ok {
		t.Error("item removed although resolution failed")
	}
}

func TestEnqueueAgainClearsClaim(t *testing.T) {
	f := newReviewFixture(t)
	id := f.enqueue(t)
	requestID := f.items.byID[id].RequestID

	if _, err := f.system.Claim(context.Background(), id, "alice"); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if err := f.system.Enqueue(context.Background(), requestID, "failed again on resubmission"); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	item := f.items.byID[id]
	if item.ClaimedBy != nil || item.ClaimedAt != nil {
		t.Error("claim survives re-enqueue")
	}
	if item.Reason != "failed again on resubmission" {
		t.Errorf("reason = %q, want the refreshed reason", item.Reason)
	}
}

func TestDecisionValid(t *testing.T) {
	tests := []struct {
		name     string
		decision Decision
		want     bool
	}{
		{"accept", Decision{Action: ActionAccept}, true},
		{"reject", Decision{Action: ActionReject}, true},
		{"reject with note", Decision{Action: ActionReject, Note: "duplicate content"}, true},
		{"reassign with category", Decision{Action: ActionReassign, Category: "inventory"}, true},
		{"reassign without category", Decision{Action: ActionReassign}, false},
		{"unknown action", Decision{Action: "escalate"}, false},
		{"empty", Decision{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.decision.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
