package domain

import "fmt"

// TicketSequence is the single per-year counter backing ticket numbers.
// It is read-modify-written under an exclusive lock; see repository.SequenceAllocator.
type TicketSequence struct {
	ID              string
	CurrentYear     int
	CurrentSequence int64
}

// FormatTicketNumber renders the observable TKT-YYYY##### contract.
func FormatTicketNumber(year int, sequence int64) string {
	return fmt.Sprintf("TKT-%04d%05d", year, sequence)
}
