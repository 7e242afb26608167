package store

import (
	"fmt"
	"time"
)

// ReceiptLine is one purchased book. Amount excludes tax.
type ReceiptLine struct {
	BookID   int
	Title    string
	Quantity int
	Amount   float64
}

// Label is the line's description, e.g. "Dune X 2".
func (l ReceiptLine) Label() string {
	if l.Quantity > 1 {
		return fmt.Sprintf("%s X %d", l.Title, l.Quantity)
	}
	return l.Title
}

// Receipt describes a completed checkout. It is not persisted.
type Receipt struct {
	ID       string
	Customer string
	Date     time.Time
	Lines    []ReceiptLine
	Subtotal float64
	Tax      float64
	Total    float64
}

// Items is the number of books bought.
func (r *Receipt) Items() int {
	n := 0
	for _, l := range r.Lines {
		n += l.Quantity
	}
	return n
}
