// Package ledger is the paper-trading store: one cash wallet, aggregated
// positions at weighted-average cost, and queued conditional orders.
// All mutation goes through Store; nothing else touches the tables.
package ledger

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownAction     = errors.New("unknown action")
	ErrInvalidPrice      = errors.New("invalid price")
)

type Store struct {
	db *gorm.DB
}

// NewStore wraps the database and seeds the wallet if the table is empty.
func NewStore(db *gorm.DB, initialCash float64) (*Store, error) {
	var count int64
	if err := db.Model(&Wallet{}).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("count wallet rows: %w", err)
	}
	if count == 0 {
		if err := db.Create(&Wallet{Balance: initialCash}).Error; err != nil {
			return nil, fmt.Errorf("seed wallet: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Balance() (float64, error) {
	var w Wallet
	if err := s.db.First(&w).Error; err != nil {
		return 0, fmt.Errorf("load wallet: %w", err)
	}
	return w.Balance, nil
}

func (s *Store) Holdings() ([]Position, error) {
	var positions []Position
	err := s.db.Where("quantity > 0").Find(&positions).Error
	return positions, err
}

// PositionExposure returns quantity*avg_cost for the ticker, 0 if absent.
func (s *Store) PositionExposure(ticker string) (float64, error) {
	var p Position
	err := s.db.Where("ticker = ?", ticker).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load position %s: %w", ticker, err)
	}
	return p.Quantity * p.AvgCost, nil
}

func (s *Store) OpenOrders() ([]Order, error) {
	var orders []Order
	err := s.db.Where("status = ?", StatusOpen).Find(&orders).Error
	return orders, err
}

// ExecuteTrade performs an immediate paper buy: wallet decrement and
// weighted-average position upsert commit together or not at all.
func (s *Store) ExecuteTrade(ticker, action string, price, amountUSD float64) (string, error) {
	if action != "BUY" {
		return "", fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	if price <= 0 {
		return "", fmt.Errorf("%w: %.4f", ErrInvalidPrice, price)
	}

	quantity := amountUSD / price

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var w Wallet
		if err := tx.First(&w).Error; err != nil {
			return fmt.Errorf("load wallet: %w", err)
		}
		if w.Balance < amountUSD {
			return ErrInsufficientFunds
		}

		w.Balance -= amountUSD
		if err := tx.Save(&w).Error; err != nil {
			return fmt.Errorf("update wallet: %w", err)
		}

		var p Position
		err := tx.Where("ticker = ?", ticker).First(&p).Error
		switch {
		case err == nil:
			totalCost := p.Quantity*p.AvgCost + amountUSD
			p.Quantity += quantity
			p.AvgCost = totalCost / p.Quantity
			if err := tx.Save(&p).Error; err != nil {
				return fmt.Errorf("update position: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			p = Position{Ticker: ticker, Quantity: quantity, AvgCost: price}
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("create position: %w", err)
			}
		default:
			return fmt.Errorf("load position: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("✅ BOUGHT %.4f %s @ $%.2f", quantity, ticker, price), nil
}

// LogPendingOrder queues a conditional order. There is no funds check at
// queue time; funds are checked only when a limit order fills.
func (s *Store) LogPendingOrder(ticker, kind string, targetPrice, amountUSD float64) (string, error) {
	var quantity float64
	if targetPrice > 0 {
		quantity = amountUSD / targetPrice
	}

	order := Order{
		Ticker:      ticker,
		Kind:        kind,
		TargetPrice: targetPrice,
		Quantity:    quantity,
		Status:      StatusOpen,
	}
	if err := s.db.Create(&order).Error; err != nil {
		return "", fmt.Errorf("queue order: %w", err)
	}

	return fmt.Sprintf("⏳ QUEUED: %s @ $%.2f", kind, targetPrice), nil
}

// CheckPendingOrders evaluates every OPEN order on the ticker against a
// fresh price and returns a message per triggered order.
//
// A triggered STOP_LOSS only flips to TRIGGERED; no position is sold. That
// matches the system this replaces and is deliberate: do not add a sale
// here without a product decision.
func (s *Store) CheckPendingOrders(ticker string, currentPrice float64) ([]string, error) {
	var orders []Order
	if err := s.db.Where("ticker = ? AND status = ?", ticker, StatusOpen).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("load open orders: %w", err)
	}

	var msgs []string
	for _, o := range orders {
		switch {
		case o.Kind == KindLimitBuy && currentPrice <= o.TargetPrice:
			cost := o.Quantity * o.TargetPrice
			_, buyErr := s.ExecuteTrade(ticker, "BUY", o.TargetPrice, cost)

			// The order is consumed even when the buy fails; it never
			// re-arms against a balance that may appear later.
			if err := s.db.Model(&Order{}).Where("id = ?", o.ID).
				Update("status", StatusFilled).Error; err != nil {
				return msgs, fmt.Errorf("mark order filled: %w", err)
			}

			if buyErr != nil {
				msgs = append(msgs, fmt.Sprintf("🔔 LIMIT HIT: %s @ $%.2f (buy failed: %v)", ticker, o.TargetPrice, buyErr))
			} else {
				msgs = append(msgs, fmt.Sprintf("🔔 LIMIT FILLED: %s @ $%.2f", ticker, o.TargetPrice))
			}

		case o.Kind == KindStopLoss && currentPrice <= o.TargetPrice:
			if err := s.db.Model(&Order{}).Where("id = ?", o.ID).
				Update("status", StatusTriggered).Error; err != nil {
				return msgs, fmt.Errorf("mark order triggered: %w", err)
			}
			msgs = append(msgs, fmt.Sprintf("🛑 STOP LOSS HIT: %s @ $%.2f — check positions!", ticker, o.TargetPrice))
		}
	}

	return msgs, nil
}

// ResetPortfolio wipes positions, orders and the wallet and re-seeds the
// wallet with initialCash. Idempotent.
func (s *Store) ResetPortfolio(initialCash float64) (string, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&Position{}).Error; err != nil {
			return fmt.Errorf("delete positions: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&Order{}).Error; err != nil {
			return fmt.Errorf("delete orders: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&Wallet{}).Error; err != nil {
			return fmt.Errorf("delete wallet: %w", err)
		}
		if err := tx.Create(&Wallet{Balance: initialCash}).Error; err != nil {
			return fmt.Errorf("seed wallet: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ RESET COMPLETE\nAccount reset to $%.2f", initialCash), nil
}

// ClearPositions removes all positions and orders without touching the
// wallet. Used after a full liquidation sweep that credits cash separately
// via DepositCash.
func (s *Store) ClearPositions() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&Position{}).Error; err != nil {
			return fmt.Errorf("delete positions: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&Order{}).Error; err != nil {
			return fmt.Errorf("delete orders: %w", err)
		}
		return nil
	})
}

// DepositCash credits the wallet, e.g. with liquidation proceeds.
func (s *Store) DepositCash(amount float64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var w Wallet
		if err := tx.First(&w).Error; err != nil {
			return fmt.Errorf("load wallet: %w", err)
		}
		w.Balance += amount
		if err := tx.Save(&w).Error; err != nil {
			return fmt.Errorf("update wallet: %w", err)
		}
		return nil
	})
}
