// Package economy holds the guild's books: an append-only ledger, loans,
// the patron council and facility upkeep.
package economy

import (
	"encoding/json"
	"fmt"

	"guildsim.dev/internal/sim/model"
)

// Link points a transaction at the entity that caused it.
type Link struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// Transaction is immutable once recorded. Positive amounts are income.
type Transaction struct {
	Seq      uint64           `json:"seq"`
	Week     uint64           `json:"week"`
	Amount   int              `json:"amount"`
	Category model.TxCategory `json:"category"`
	Memo     string           `json:"memo,omitempty"`
	Link     *Link            `json:"link,omitempty"`
}

// Ledger is append-only. Every aggregate is recomputed from the list on
// demand and never stored.
type Ledger struct {
	txs []Transaction
}

func NewLedger() *Ledger { return &Ledger{} }

func (l *Ledger) Record(week uint64, amount int, cat model.TxCategory, memo string, link *Link) Transaction {
	tx := Transaction{
		Seq:      uint64(len(l.txs)) + 1,
		Week:     week,
		Amount:   amount,
		Category: cat,
		Memo:     memo,
	}
	if link != nil {
		cp := *link
		tx.Link = &cp
	}
	l.txs = append(l.txs, tx)
	return tx
}

func (l *Ledger) Len() int { return len(l.txs) }

// Transactions returns a copy of the log.
func (l *Ledger) Transactions() []Transaction {
	out := make([]Transaction, len(l.txs))
	copy(out, l.txs)
	return out
}

// Since returns a copy of every transaction with Seq > seq.
func (l *Ledger) Since(seq uint64) []Transaction {
	if seq >= uint64(len(l.txs)) {
		return nil
	}
	out := make([]Transaction, len(l.txs)-int(seq))
	copy(out, l.txs[seq:])
	return out
}

func (l *Ledger) TotalIncome() int {
	sum := 0
	for _, tx := range l.txs {
		if tx.Amount > 0 {
			sum += tx.Amount
		}
	}
	return sum
}

// TotalExpenses is the magnitude of all outflows.
func (l *Ledger) TotalExpenses() int {
	sum := 0
	for _, tx := range l.txs {
		if tx.Amount < 0 {
			sum -= tx.Amount
		}
	}
	return sum
}

func (l *Ledger) NetBalance() int { return l.TotalIncome() - l.TotalExpenses() }

func (l *Ledger) ByCategory() map[model.TxCategory]int {
	out := map[model.TxCategory]int{}
	for _, tx := range l.txs {
		out[tx.Category] += tx.Amount
	}
	return out
}

func (l *Ledger) ForWeek(week uint64) []Transaction {
	var out []Transaction
	for _, tx := range l.txs {
		if tx.Week == week {
			out = append(out, tx)
		}
	}
	return out
}

// WeekNet is the signed sum of one week's transactions.
func (l *Ledger) WeekNet(week uint64) int {
	sum := 0
	for _, tx := range l.txs {
		if tx.Week == week {
			sum += tx.Amount
		}
	}
	return sum
}

func (l *Ledger) MarshalJSON() ([]byte, error) {
	if l.txs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.txs)
}

func (l *Ledger) UnmarshalJSON(b []byte) error {
	var txs []Transaction
	if err := json.Unmarshal(b, &txs); err != nil {
		return err
	}
	for i, tx := range txs {
		if tx.Seq != uint64(i)+1 {
			return fmt.Errorf("ledger: transaction %d has seq %d", i+1, tx.Seq)
		}
		if i > 0 && tx.Week < txs[i-1].Week {
			return fmt.Errorf("ledger: transaction %d goes back in time", tx.Seq)
		}
	}
	l.txs = txs
	return nil
}
