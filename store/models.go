package store

import (
	"fmt"
	"strconv"
)

// Book is a catalog entry. Quantity is the stock on hand; JITTrigger is the threshold
// below which the book should be reordered.
type Book struct {
	ID              int
	Title           string
	Price           float64
	Quantity        int
	JITTrigger      int
	Genre           string
	Binding         string
	Author          string
	PublicationYear int
	ImageName       string
}

// BookFields holds the editable attributes of a book, in form order.
type BookFields struct {
	Title           string
	Price           float64
	Quantity        int
	JITTrigger      int
	Genre           string
	Binding         string
	Author          string
	PublicationYear int
	ImageName       string
}

// Stock flags shown to the admin.
const (
	StockOrderNow  = "ORDER NOW"
	StockOrderSoon = "ORDER SOON"
	StockInStock   = "IN STOCK"
)

// StockFlag reports whether the admin should reorder this book.
func (b *Book) StockFlag() string {
	switch {
	case b.Quantity < b.JITTrigger:
		return StockOrderNow
	case b.Quantity < b.JITTrigger*2:
		return StockOrderSoon
	default:
		return StockInStock
	}
}

// Availability is the customer-facing stock label.
func (b *Book) Availability() string {
	switch {
	case b.Quantity == 0:
		return "OUT OF STOCK"
	case b.Quantity < b.JITTrigger:
		return "LAST FEW"
	case b.Quantity < b.JITTrigger*2:
		return "Running Low"
	default:
		return "In Stock"
	}
}

// Fields returns the editable attributes of b.
func (b *Book) Fields() BookFields {
	return BookFields{
		Title:           b.Title,
		Price:           b.Price,
		Quantity:        b.Quantity,
		JITTrigger:      b.JITTrigger,
		Genre:           b.Genre,
		Binding:         b.Binding,
		Author:          b.Author,
		PublicationYear: b.PublicationYear,
		ImageName:       b.ImageName,
	}
}

// FormValues returns the editable attributes as strings, ready to pre-fill the book form.
func (b *Book) FormValues() []string {
	return []string{
		b.Title,
		formatFloat(b.Price),
		strconv.Itoa(b.Quantity),
		strconv.Itoa(b.JITTrigger),
		b.Genre,
		b.Binding,
		b.Author,
		strconv.Itoa(b.PublicationYear),
		b.ImageName,
	}
}

func (b *Book) apply(f BookFields) {
	b.Title = f.Title
	b.Price = f.Price
	b.Quantity = f.Quantity
	b.JITTrigger = f.JITTrigger
	b.Genre = f.Genre
	b.Binding = f.Binding
	b.Author = f.Author
	b.PublicationYear = f.PublicationYear
	b.ImageName = f.ImageName
}

func (b *Book) String() string {
	return fmt.Sprintf("Book [id=%d, name=%s, price=%.2f, quantity=%d, jitTrigger=%d, genre=%s, binding=%s, author=%s, publicationYear=%d, imageName=%s]",
		b.ID, b.Title, b.Price, b.Quantity, b.JITTrigger, b.Genre, b.Binding, b.Author, b.PublicationYear, b.ImageName)
}

// Account is a registered customer, or the admin when Admin is set. The admin only
// carries a password.
type Account struct {
	FirstName    string
	LastName     string
	UserName     string
	Password     string
	Email        string
	SessionSales float64
	TotalSales   float64
	SessionItems int
	TotalItems   int
	Admin        bool

	cart Cart
}

// FullName joins the first and last names.
func (a *Account) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Cart exposes the account's cart for reading.
func (a *Account) Cart() *Cart { return &a.cart }

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
