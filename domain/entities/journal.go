package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalKind names the operation a local journal entry replays.
type JournalKind string

const (
	JournalKindBet        JournalKind = "bet"
	JournalKindTransfer   JournalKind = "transfer"
	JournalKindWithdrawal JournalKind = "withdrawal"
)

// JournalStatus tracks a local entry through synchronization.
type JournalStatus string

const (
	JournalStatusPending   JournalStatus = "pending"
	JournalStatusSynced    JournalStatus = "synced"
	JournalStatusConflict  JournalStatus = "conflict"
	JournalStatusDiscarded JournalStatus = "discarded"
)

// JournalEntry is an operation applied against the local store that still has
// to reach the authoritative store.
type JournalEntry struct {
	Seq       int64         `json:"seq"`
	Kind      JournalKind   `json:"kind"`
	RefID     string        `json:"refId"`
	Payload   []byte        `json:"payload"`
	Status    JournalStatus `json:"status"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	SyncedAt  *time.Time    `json:"syncedAt,omitempty"`
}

// JournalStats summarizes the local journal for reconciliation.
type JournalStats struct {
	Pending   int
	Conflicts int
	// Unsynced is the local balance delta per pot relative to the last snapshot.
	Unsynced map[string]decimal.Decimal
}

// SyncReport is the outcome of one synchronization pass.
type SyncReport struct {
	Synced            int  `json:"synced"`
	Conflicts         int  `json:"conflicts"`
	Remaining         int  `json:"remaining"`
	SnapshotRefreshed bool `json:"snapshotRefreshed"`
}
