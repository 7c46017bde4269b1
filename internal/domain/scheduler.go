package domain

import (
	"container/heap"
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/bankcore/internal/metrics"
)

// PriorityScore computes the loan admission priority from an account
// snapshot:
//
//	floor(balance/1000) + floor(daysActive/30) + min(txCount, 50) + max(0, 100 - floor(amount/1000))
//
// daysActive is the whole-day difference between now and the account's
// creation time. A zero or future creation time is treated as "just created"
// rather than failing: scoring must always produce a score.
func PriorityScore(balance decimal.Decimal, createdAt time.Time, txCount int64, amount decimal.Decimal, now time.Time) int64 {
	var daysActive int64
	if !createdAt.IsZero() && now.After(createdAt) {
		daysActive = int64(now.Sub(createdAt).Hours() / 24)
	}

	if txCount > 50 {
		txCount = 50
	}

	sizeBonus := 100 - amount.IntPart()/1000
	if sizeBonus < 0 {
		sizeBonus = 0
	}

	return balance.IntPart()/1000 + daysActive/30 + txCount + sizeBonus
}

// loanLess reports whether a should be admitted before b. The key is
// (-priorityScore, userID, amount) ascending: higher score first, equal
// scores break toward the smaller user id, then the smaller amount.
func loanLess(a, b *LoanRequest) bool {
	if a.PriorityScore != b.PriorityScore {
		return a.PriorityScore > b.PriorityScore
	}
	if a.UserID != b.UserID {
		return a.UserID < b.UserID
	}
	return a.Amount.LessThan(b.Amount)
}

// loanHeap is a max-priority heap of pending requests ordered by loanLess.
// Not safe for concurrent use on its own; the Scheduler guards it.
type loanHeap []*LoanRequest

func (h loanHeap) Len() int           { return len(h) }
func (h loanHeap) Less(i, j int) bool { return loanLess(h[i], h[j]) }
func (h loanHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *loanHeap) Push(x any)        { *h = append(*h, x.(*LoanRequest)) }

func (h *loanHeap) Pop() any {
	old := *h
	n := len(old)
	top := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return top
}

// Scheduler admits loan requests in priority order. Pending requests live in
// a mutex-guarded heap and are mirrored in the durable loan store, which is
// the source of truth across restarts (Hydrate rebuilds the heap from it).
type Scheduler struct {
	mu      sync.Mutex
	pending loanHeap

	accounts  AccountStore
	loans     LoanStore
	txManager TransactionManager
	ledger    *Ledger
	directory *Directory
	events    EventPublisher

	now func() time.Time // injectable clock for testing
}

// NewScheduler creates a Scheduler. Pass nil for events to disable publishing.
func NewScheduler(
	accounts AccountStore,
	loans LoanStore,
	txManager TransactionManager,
	ledger *Ledger,
	directory *Directory,
	events EventPublisher,
) *Scheduler {
	return &Scheduler{
		accounts:  accounts,
		loans:     loans,
		txManager: txManager,
		ledger:    ledger,
		directory: directory,
		events:    events,
		now:       time.Now,
	}
}

// Submit scores a loan request against the user's current account snapshot
// (balance, age, transfer count), persists it, and enqueues it. Returns the
// computed priority score.
func (s *Scheduler) Submit(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, ErrInvalidAmount
	}

	account, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	txCount, err := s.accounts.CountTransfersFor(ctx, userID)
	if err != nil {
		return 0, err
	}

	now := s.now()
	request := &LoanRequest{
		ID:            uuid.New(),
		UserID:        userID,
		Amount:        amount,
		PriorityScore: PriorityScore(account.Balance, account.CreatedAt, txCount, amount, now),
		SubmittedAt:   now,
	}

	if err := s.loans.Create(ctx, request); err != nil {
		return 0, err
	}

	s.mu.Lock()
	heap.Push(&s.pending, request)
	depth := len(s.pending)
	s.mu.Unlock()

	metrics.LoanSubmissionsTotal.Inc()
	metrics.LoanQueueDepth.Set(float64(depth))
	return request.PriorityScore, nil
}

// ApproveTop removes the single highest-priority pending request and credits
// its amount to the user's account. The credit and the removal of the durable
// request row commit in one transaction; if that transaction fails the
// request is requeued, so a request is neither lost nor admitted twice.
func (s *Scheduler) ApproveTop(ctx context.Context) (*LoanRequest, error) {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return nil, ErrQueueEmpty
	}
	request := heap.Pop(&s.pending).(*LoanRequest)
	s.mu.Unlock()

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ledger.credit(txCtx, request.UserID, request.Amount); err != nil {
			return err
		}
		return s.loans.Delete(txCtx, request.ID)
	})
	if err != nil {
		s.mu.Lock()
		heap.Push(&s.pending, request)
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	depth := len(s.pending)
	s.mu.Unlock()

	metrics.LoansApprovedTotal.Inc()
	metrics.LoanQueueDepth.Set(float64(depth))
	s.publishLoanApproved(request)
	return request, nil
}

// ListPending returns all pending requests in highest-priority-first order,
// rendered with directory labels. The snapshot is recomputed per call and
// does not disturb the heap.
func (s *Scheduler) ListPending() []LoanView {
	s.mu.Lock()
	snapshot := make([]*LoanRequest, len(s.pending))
	copy(snapshot, s.pending)
	s.mu.Unlock()

	sort.Slice(snapshot, func(i, j int) bool { return loanLess(snapshot[i], snapshot[j]) })

	views := make([]LoanView, 0, len(snapshot))
	for _, r := range snapshot {
		views = append(views, LoanView{
			User:          s.directory.LabelFor(r.UserID),
			Amount:        r.Amount,
			PriorityScore: r.PriorityScore,
		})
	}
	return views
}

// Len returns the number of pending requests.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Hydrate rebuilds the heap from the durable loan store. Called once at
// startup before the scheduler receives traffic.
func (s *Scheduler) Hydrate(requests []LoanRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = make(loanHeap, 0, len(requests))
	for i := range requests {
		r := requests[i]
		s.pending = append(s.pending, &r)
	}
	heap.Init(&s.pending)
	metrics.LoanQueueDepth.Set(float64(len(s.pending)))
}

func (s *Scheduler) publishLoanApproved(request *LoanRequest) {
	if s.events == nil {
		return
	}
	go func(r *LoanRequest) {
		if err := s.events.PublishLoanApproved(context.Background(), r); err != nil {
			log.Printf("warning: failed to publish loan approved event: %v", err)
		}
	}(request)
}
