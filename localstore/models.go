package localstore

import (
	"time"

	"animalitos/domain/entities"

	"github.com/shopspring/decimal"
)

// Amounts are stored as text so SQLite never coerces them to floating point.

type potRow struct {
	ID              string          `gorm:"primaryKey"`
	Name            string          `gorm:"uniqueIndex;not null"`
	Percentage      decimal.Decimal `gorm:"type:text;not null"`
	Balance         decimal.Decimal `gorm:"type:text;not null"`
	SnapshotBalance decimal.Decimal `gorm:"type:text;not null"`
	Color           string
	Description     string
	Active          bool
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (potRow) TableName() string { return "pots" }

func (r *potRow) toEntity() *entities.Pot {
	return &entities.Pot{
		ID:          r.ID,
		Name:        r.Name,
		Percentage:  r.Percentage,
		Balance:     r.Balance,
		Color:       r.Color,
		Description: r.Description,
		Active:      r.Active,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type betRow struct {
	ID           string          `gorm:"primaryKey"`
	LotteryID    string          `gorm:"index;not null"`
	AnimalNumber string          `gorm:"not null"`
	Amount       decimal.Decimal `gorm:"type:text;not null"`
	PotentialWin decimal.Decimal `gorm:"type:text;not null"`
	Outcome      string          `gorm:"index;not null"`
	DrawID       *string
	CreatedAt    time.Time
	SettledAt    *time.Time
}

func (betRow) TableName() string { return "bets" }

func (r *betRow) toEntity() *entities.Bet {
	return &entities.Bet{
		ID:           r.ID,
		LotteryID:    r.LotteryID,
		AnimalNumber: r.AnimalNumber,
		Amount:       r.Amount,
		PotentialWin: r.PotentialWin,
		Outcome:      entities.BetOutcome(r.Outcome),
		DrawID:       r.DrawID,
		CreatedAt:    r.CreatedAt,
		SettledAt:    r.SettledAt,
	}
}

type distributionLineRow struct {
	BetID     string          `gorm:"primaryKey"`
	PotName   string          `gorm:"primaryKey"`
	Amount    decimal.Decimal `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (distributionLineRow) TableName() string { return "distribution_lines" }

type transferRow struct {
	ID        string          `gorm:"primaryKey"`
	FromPot   string          `gorm:"index;not null"`
	ToPot     string          `gorm:"index;not null"`
	Amount    decimal.Decimal `gorm:"type:text;not null"`
	CreatedBy string          `gorm:"not null"`
	CreatedAt time.Time       `gorm:"index"`
}

func (transferRow) TableName() string { return "transfers" }

func (r *transferRow) toEntity() *entities.Transfer {
	return &entities.Transfer{
		ID:        r.ID,
		FromPot:   r.FromPot,
		ToPot:     r.ToPot,
		Amount:    r.Amount,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
	}
}

type withdrawalRow struct {
	ID        string          `gorm:"primaryKey"`
	FromPot   string          `gorm:"index;not null"`
	Amount    decimal.Decimal `gorm:"type:text;not null"`
	CreatedBy string          `gorm:"not null"`
	CreatedAt time.Time       `gorm:"index"`
}

func (withdrawalRow) TableName() string { return "withdrawals" }

func (r *withdrawalRow) toEntity() *entities.Withdrawal {
	return &entities.Withdrawal{
		ID:        r.ID,
		FromPot:   r.FromPot,
		Amount:    r.Amount,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
	}
}

type drawRow struct {
	ID                  string `gorm:"primaryKey"`
	LotteryID           string `gorm:"uniqueIndex;not null"`
	WinningAnimalNumber string `gorm:"not null"`
	DrawTime            time.Time
	Status              string          `gorm:"index;not null"`
	PayoutPot           string          `gorm:"not null"`
	TotalPayout         decimal.Decimal `gorm:"type:text;not null"`
	WinnersCount        int
	FailureReason       *string
	CreatedAt           time.Time
	SettledAt           *time.Time
}

func (drawRow) TableName() string { return "draws" }

func (r *drawRow) toEntity() *entities.Draw {
	return &entities.Draw{
		ID:                  r.ID,
		LotteryID:           r.LotteryID,
		WinningAnimalNumber: r.WinningAnimalNumber,
		DrawTime:            r.DrawTime,
		Status:              entities.DrawStatus(r.Status),
		PayoutPot:           r.PayoutPot,
		TotalPayout:         r.TotalPayout,
		WinnersCount:        r.WinnersCount,
		FailureReason:       r.FailureReason,
		CreatedAt:           r.CreatedAt,
		SettledAt:           r.SettledAt,
	}
}

type journalRow struct {
	Seq       int64  `gorm:"primaryKey;autoIncrement"`
	Kind      string `gorm:"not null"`
	RefID     string `gorm:"index;not null"`
	Payload   []byte
	Status    string `gorm:"index;not null"`
	Error     string
	CreatedAt time.Time
	SyncedAt  *time.Time
}

func (journalRow) TableName() string { return "journal_entries" }

func (r *journalRow) toEntity() *entities.JournalEntry {
	return &entities.JournalEntry{
		Seq:       r.Seq,
		Kind:      entities.JournalKind(r.Kind),
		RefID:     r.RefID,
		Payload:   r.Payload,
		Status:    entities.JournalStatus(r.Status),
		Error:     r.Error,
		CreatedAt: r.CreatedAt,
		SyncedAt:  r.SyncedAt,
	}
}

var allModels = []any{
	&potRow{},
	&betRow{},
	&distributionLineRow{},
	&transferRow{},
	&withdrawalRow{},
	&drawRow{},
	&journalRow{},
}
