package domain

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// edge is a directed transfer record: the owning sender sent Amount to
// ReceiverID at At.
type edge struct {
	ReceiverID int64
	Amount     decimal.Decimal
	At         time.Time
}

// TransactionIndex is an in-memory adjacency structure over committed
// transfers, used to answer "transactions involving account X" queries.
// Its edge set is exactly the set of committed transfer records: Record is
// called once per successful transfer, synchronously with the commit, and
// never for a transfer that failed.
type TransactionIndex struct {
	mu      sync.RWMutex
	edges   map[int64][]edge // senderID -> insertion-ordered edges
	senders []int64          // senders in first-seen order, for stable scans
}

// NewTransactionIndex creates an empty index.
func NewTransactionIndex() *TransactionIndex {
	return &TransactionIndex{
		edges: make(map[int64][]edge),
	}
}

// Record appends an edge to the sender's sequence.
func (idx *TransactionIndex) Record(senderID, receiverID int64, amount decimal.Decimal, at time.Time) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, seen := idx.edges[senderID]; !seen {
		idx.senders = append(idx.senders, senderID)
	}
	idx.edges[senderID] = append(idx.edges[senderID], edge{
		ReceiverID: receiverID,
		Amount:     amount,
		At:         at,
	})
}

// Hydrate rebuilds the index from the durable transfer log. Called once at
// startup before the index receives traffic.
func (idx *TransactionIndex) Hydrate(transfers []Transfer) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.edges = make(map[int64][]edge)
	idx.senders = nil
	for _, t := range transfers {
		if _, seen := idx.edges[t.SenderID]; !seen {
			idx.senders = append(idx.senders, t.SenderID)
		}
		idx.edges[t.SenderID] = append(idx.edges[t.SenderID], edge{
			ReceiverID: t.ReceiverID,
			Amount:     t.Amount,
			At:         t.CreatedAt,
		})
	}
}

// Len returns the total number of recorded edges.
func (idx *TransactionIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := 0
	for _, es := range idx.edges {
		n += len(es)
	}
	return n
}

// Involving returns every edge where the account is sender or receiver,
// tagged with its direction and rendered with directory labels. The result
// is recomputed per call by scanning all stored edges; O(total edges) is
// acceptable at this scale.
func (idx *TransactionIndex) Involving(accountID int64, directory *Directory) []TransactionView {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var views []TransactionView
	for _, senderID := range idx.senders {
		for _, e := range idx.edges[senderID] {
			if senderID != accountID && e.ReceiverID != accountID {
				continue
			}
			direction := DirectionReceived
			if senderID == accountID {
				direction = DirectionSend
			}
			views = append(views, TransactionView{
				Date:      e.At.Format("02-01-2006 15:04:05"),
				Direction: direction,
				Amount:    e.Amount,
				From:      directory.LabelFor(senderID),
				To:        directory.LabelFor(e.ReceiverID),
			})
		}
	}
	return views
}
