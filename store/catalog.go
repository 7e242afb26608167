package store

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"bookstore-management/logging"
)

const bookRowFields = 10

// Catalog holds the books in memory. Ids come from nextID, which only grows.
type Catalog struct {
	books  []*Book
	nextID int
	log    *zap.Logger
}

// NewCatalog returns an empty catalog whose first book gets id 0.
func NewCatalog(log *zap.Logger) *Catalog {
	return &Catalog{log: logging.OrNop(log)}
}

// Books returns the catalog in insertion order.
func (c *Catalog) Books() []*Book { return slices.Clone(c.books) }

// Len is the number of books.
func (c *Catalog) Len() int { return len(c.books) }

// NextID is the id the next added book will get.
func (c *Catalog) NextID() int { return c.nextID }

// Get finds a book by id.
func (c *Catalog) Get(id int) (*Book, error) {
	for _, b := range c.books {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, fmt.Errorf("book %d: %w", id, ErrBookNotFound)
}

// AddBook stores a new book under the next id.
func (c *Catalog) AddBook(f BookFields) *Book {
	b := &Book{ID: c.nextID}
	b.apply(f)
	c.nextID++
	c.books = append(c.books, b)
	return b
}

// RemoveBook deletes the book with id. The id is never handed out again.
func (c *Catalog) RemoveBook(id int) (*Book, error) {
	i := slices.IndexFunc(c.books, func(b *Book) bool { return b.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("book %d: %w", id, ErrBookNotFound)
	}
	b := c.books[i]
	c.books = slices.Delete(c.books, i, i+1)
	return b, nil
}

// Update overwrites the editable fields of the book with id in place.
func (c *Catalog) Update(id int, f BookFields) (*Book, error) {
	b, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	b.apply(f)
	return b, nil
}

// Search matches query against title, author and genre, ignoring case.
func (c *Catalog) Search(query string) []*Book {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []*Book
	for _, b := range c.books {
		if strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) ||
			strings.Contains(strings.ToLower(b.Genre), q) {
			out = append(out, b)
		}
	}
	return out
}

// LowStock lists the books that should be reordered now or soon.
func (c *Catalog) LowStock() []*Book {
	var out []*Book
	for _, b := range c.books {
		if b.StockFlag() != StockInStock {
			out = append(out, b)
		}
	}
	return out
}

// LoadFromRows replaces the catalog with the parsed rows. Rows that do not parse are
// skipped; the counter is moved past the largest id seen.
func (c *Catalog) LoadFromRows(rows [][]string) {
	c.books = c.books[:0]
	for i, row := range rows {
		b, err := parseBookRow(row)
		if err != nil {
			c.log.Debug("row_skipped", zap.String("table", TableBooks), zap.Int("row", i+1), zap.Error(err))
			continue
		}
		if _, err := c.Get(b.ID); err == nil {
			c.log.Debug("row_skipped", zap.String("table", TableBooks), zap.Int("row", i+1), zap.Int("duplicate_id", b.ID))
			continue
		}
		c.books = append(c.books, b)
		c.nextID = max(c.nextID, b.ID+1)
	}
}

// ToRows renders every book in insertion order.
func (c *Catalog) ToRows() [][]string {
	rows := make([][]string, 0, len(c.books))
	for _, b := range c.books {
		rows = append(rows, bookRow(b))
	}
	return rows
}

func bookRow(b *Book) []string {
	return append([]string{strconv.Itoa(b.ID)}, b.FormValues()...)
}

func parseBookRow(row []string) (*Book, error) {
	if len(row) != bookRowFields {
		return nil, fmt.Errorf("book row has %d fields, want %d", len(row), bookRowFields)
	}
	var (
		b   = &Book{Title: row[1], Genre: row[5], Binding: row[6], Author: row[7], ImageName: row[9]}
		err error
	)
	if b.ID, err = strconv.Atoi(row[0]); err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	if b.Price, err = strconv.ParseFloat(row[2], 64); err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}
	if b.Quantity, err = strconv.Atoi(row[3]); err != nil {
		return nil, fmt.Errorf("quantity: %w", err)
	}
	if b.JITTrigger, err = strconv.Atoi(row[4]); err != nil {
		return nil, fmt.Errorf("jit trigger: %w", err)
	}
	if b.PublicationYear, err = strconv.Atoi(row[8]); err != nil {
		return nil, fmt.Errorf("publication year: %w", err)
	}
	return b, nil
}
