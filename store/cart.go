package store

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxCartItems caps the total quantity across one cart.
	MaxCartItems = 10
	// TaxRate is applied to every purchase.
	TaxRate = 0.13

	taxMultiplier = 1 + TaxRate
)

// CartEntry is one line of a cart.
type CartEntry struct {
	Book     *Book
	Quantity int
}

// Cart maps books to requested quantities, keeping insertion order.
type Cart struct {
	entries []CartEntry
}

// Entries returns a copy of the cart lines in insertion order.
func (c *Cart) Entries() []CartEntry {
	return slices.Clone(c.entries)
}

// Len is the number of distinct books in the cart.
func (c *Cart) Len() int { return len(c.entries) }

// Quantity is how many copies of book are in the cart.
func (c *Cart) Quantity(book *Book) int {
	if i := c.index(book.ID); i >= 0 {
		return c.entries[i].Quantity
	}
	return 0
}

// Total is the sum of quantities across all lines.
func (c *Cart) Total() int {
	n := 0
	for _, e := range c.entries {
		n += e.Quantity
	}
	return n
}

func (c *Cart) index(bookID int) int {
	return slices.IndexFunc(c.entries, func(e CartEntry) bool { return e.Book.ID == bookID })
}

// set stores qty for book, keeping the line's position when it already exists.
func (c *Cart) set(book *Book, qty int) {
	if i := c.index(book.ID); i >= 0 {
		c.entries[i].Quantity = qty
		return
	}
	c.entries = append(c.entries, CartEntry{Book: book, Quantity: qty})
}

func (c *Cart) remove(bookID int) bool {
	i := c.index(bookID)
	if i < 0 {
		return false
	}
	c.entries = slices.Delete(c.entries, i, i+1)
	return true
}

func (c *Cart) clear() { c.entries = nil }

// AddChoices is the largest quantity of book that can still be added to the cart.
func (a *Account) AddChoices(book *Book) int {
	return max(0, min(book.Quantity-a.cart.Quantity(book), MaxCartItems-a.cart.Total()))
}

// EditChoices is the largest quantity book's cart line may be set to.
func (a *Account) EditChoices(book *Book) int {
	others := a.cart.Total() - a.cart.Quantity(book)
	return max(0, min(book.Quantity, MaxCartItems-others))
}

// AddToCart merges qty copies of book into the cart.
func (a *Account) AddToCart(book *Book, qty int) error {
	if a.Admin {
		return ErrNotPermitted
	}
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	inCart := a.cart.Quantity(book)
	switch {
	case book.Quantity == 0:
		return ErrOutOfStock
	case inCart+qty > book.Quantity:
		return ErrStockLimit
	case a.cart.Total()+qty > MaxCartItems:
		return ErrCartFull
	}
	a.cart.set(book, inCart+qty)
	return nil
}

// EditCartItemQuantity sets the cart line for book to qty. Zero removes the line.
// Callers are expected to offer only 0..EditChoices(book).
func (a *Account) EditCartItemQuantity(book *Book, qty int) error {
	if a.Admin {
		return ErrNotPermitted
	}
	if qty < 0 {
		return ErrInvalidQuantity
	}
	if qty == 0 {
		a.cart.remove(book.ID)
		return nil
	}
	a.cart.set(book, qty)
	return nil
}

// RemoveFromCart drops the line for book. It reports whether a line was removed.
func (a *Account) RemoveFromCart(book *Book) bool {
	return a.cart.remove(book.ID)
}

// AdjustCartQuantities clamps every cart line to the book's current stock and reports
// whether anything changed. A line clamped to zero is removed.
func (a *Account) AdjustCartQuantities() bool {
	adjusted := false
	for _, e := range a.cart.Entries() {
		if e.Book.Quantity >= e.Quantity {
			continue
		}
		adjusted = true
		if e.Book.Quantity <= 0 {
			a.cart.remove(e.Book.ID)
		} else {
			a.cart.set(e.Book, e.Book.Quantity)
		}
	}
	return adjusted
}

// Checkout buys everything in the cart. Every line is checked against stock first, so
// on error neither the account nor the books have changed.
func (a *Account) Checkout(now time.Time) (*Receipt, error) {
	if a.Admin {
		return nil, ErrNotPermitted
	}
	if a.cart.Len() == 0 {
		return nil, ErrEmptyCart
	}
	for _, e := range a.cart.entries {
		if e.Quantity <= 0 {
			return nil, fmt.Errorf("%q: %w", e.Book.Title, ErrInvalidQuantity)
		}
		if e.Quantity > e.Book.Quantity {
			return nil, fmt.Errorf("%q: %w", e.Book.Title, ErrStockLimit)
		}
	}

	receipt := &Receipt{
		ID:       uuid.NewString(),
		Customer: a.FullName(),
		Date:     now,
	}
	for _, e := range a.cart.entries {
		amount := e.Book.Price * float64(e.Quantity)
		receipt.Lines = append(receipt.Lines, ReceiptLine{
			BookID:   e.Book.ID,
			Title:    e.Book.Title,
			Quantity: e.Quantity,
			Amount:   amount,
		})
		receipt.Subtotal += amount

		line := e.Book.Price * float64(e.Quantity) * taxMultiplier
		a.SessionSales += line
		a.TotalSales += line
		a.SessionItems += e.Quantity
		a.TotalItems += e.Quantity

		e.Book.Quantity -= e.Quantity
	}
	receipt.Tax = receipt.Subtotal * TaxRate
	receipt.Total = receipt.Subtotal * taxMultiplier

	a.cart.clear()
	return receipt, nil
}

// StartNewSession zeroes the session counters. Lifetime counters are kept.
func (a *Account) StartNewSession() {
	a.SessionSales = 0
	a.SessionItems = 0
}
