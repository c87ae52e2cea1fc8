package economy

import (
	"errors"
	"math"
)

var (
	ErrBadPrincipal = errors.New("principal must be positive")
	ErrBadDuration  = errors.New("duration must be positive")
	ErrBadRate      = errors.New("interest rate must not be negative")
)

type Loan struct {
	ID               string  `json:"id"`
	Principal        int     `json:"principal"`
	InterestRate     float64 `json:"interest_rate"`
	RemainingBalance int     `json:"remaining_balance"`
	WeeklyPayment    int     `json:"weekly_payment"`
	StartWeek        uint64  `json:"start_week"`
	DurationWeeks    int     `json:"duration_weeks"`
}

// TotalOwed is ceil(principal x (1 + rate)).
func TotalOwed(principal int, rate float64) int {
	// Round away float noise (1000 * 1.1 = 1100.0000000000002) before the ceiling.
	v := math.Round(float64(principal)*(1+rate)*1e6) / 1e6
	return int(math.Ceil(v))
}

func NewLoan(id string, principal int, rate float64, startWeek uint64, durationWeeks int) (Loan, error) {
	if principal <= 0 {
		return Loan{}, ErrBadPrincipal
	}
	if durationWeeks <= 0 {
		return Loan{}, ErrBadDuration
	}
	if rate < 0 || math.IsNaN(rate) {
		return Loan{}, ErrBadRate
	}
	owed := TotalOwed(principal, rate)
	return Loan{
		ID:               id,
		Principal:        principal,
		InterestRate:     rate,
		RemainingBalance: owed,
		WeeklyPayment:    ceilDiv(owed, durationWeeks),
		StartWeek:        startWeek,
		DurationWeeks:    durationWeeks,
	}, nil
}

func (l Loan) TotalOwed() int { return TotalOwed(l.Principal, l.InterestRate) }

// Amortize applies one weekly payment, never more than the balance.
func (l *Loan) Amortize() (paid int, repaid bool) {
	if l.RemainingBalance <= 0 {
		return 0, true
	}
	paid = l.WeeklyPayment
	if paid > l.RemainingBalance {
		paid = l.RemainingBalance
	}
	if paid <= 0 {
		return 0, false
	}
	l.RemainingBalance -= paid
	return paid, l.RemainingBalance <= 0
}

func (l Loan) PaymentsRemaining() int {
	if l.RemainingBalance <= 0 {
		return 0
	}
	if l.WeeklyPayment <= 0 {
		return math.MaxInt32
	}
	return ceilDiv(l.RemainingBalance, l.WeeklyPayment)
}

func (l Loan) Repaid() bool { return l.RemainingBalance <= 0 }

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
