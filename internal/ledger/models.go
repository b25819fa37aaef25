package ledger

// Order kinds.
const (
	KindLimitBuy = "LIMIT_BUY"
	KindStopLoss = "STOP_LOSS"
)

// Order statuses.
const (
	StatusOpen      = "OPEN"
	StatusFilled    = "FILLED"
	StatusTriggered = "TRIGGERED"
)

// Wallet is the singleton cash record. Exactly one row exists after Init.
type Wallet struct {
	ID      uint    `gorm:"primarykey" json:"-"`
	Balance float64 `gorm:"not null" json:"balance"`
}

// Position is an aggregated holding. Rows only exist while quantity > 0;
// liquidation deletes the row rather than zeroing it.
type Position struct {
	Ticker   string  `gorm:"primarykey" json:"ticker"`
	Quantity float64 `gorm:"not null" json:"quantity"`
	AvgCost  float64 `gorm:"not null" json:"avg_cost"`
}

// Order is a queued conditional intent. Immutable once created except for
// the status transition OPEN -> FILLED/TRIGGERED.
type Order struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	Ticker      string  `gorm:"index;not null" json:"ticker"`
	Kind        string  `gorm:"not null" json:"kind"`
	TargetPrice float64 `gorm:"not null" json:"target_price"`
	Quantity    float64 `gorm:"not null" json:"quantity"`
	Status      string  `gorm:"not null;default:'OPEN'" json:"status"`
}
