package store

import (
	"go.uber.org/zap"
)

// Session is the signed-in account. All calls go through the Manager's lock.
type Session struct {
	m       *Manager
	account *Account
}

// Sales holds an account's purchase counters.
type Sales struct {
	SessionSales float64
	TotalSales   float64
	SessionItems int
	TotalItems   int
}

func (s *Session) IsAdmin() bool { return s.account.Admin }

func (s *Session) UserName() string { return s.account.UserName }

func (s *Session) FullName() string { return s.account.FullName() }

func (s *Session) Sales() Sales {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	a := s.account
	return Sales{
		SessionSales: a.SessionSales,
		TotalSales:   a.TotalSales,
		SessionItems: a.SessionItems,
		TotalItems:   a.TotalItems,
	}
}

// Cart returns the cart lines with copies of their books.
func (s *Session) Cart() []CartEntry {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	entries := s.account.cart.Entries()
	for i, e := range entries {
		b := *e.Book
		entries[i].Book = &b
	}
	return entries
}

// CartTotal is the number of books in the cart.
func (s *Session) CartTotal() int {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.account.cart.Total()
}

// AddChoices is the most copies of book id that may still be added.
func (s *Session) AddChoices(bookID int) (int, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	b, err := s.m.catalog.Get(bookID)
	if err != nil {
		return 0, err
	}
	return s.account.AddChoices(b), nil
}

// EditChoices is the largest quantity the cart line for book id may be set to.
func (s *Session) EditChoices(bookID int) (int, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	b, err := s.m.catalog.Get(bookID)
	if err != nil {
		return 0, err
	}
	return s.account.EditChoices(b), nil
}

func (s *Session) AddToCart(bookID, qty int) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	b, err := s.m.catalog.Get(bookID)
	if err != nil {
		return err
	}
	if err := s.account.AddToCart(b, qty); err != nil {
		return err
	}
	s.m.persist(TableUsers)
	s.m.log.Debug("cart_item_added", zap.String("user", s.account.UserName), zap.Int("book_id", bookID), zap.Int("quantity", qty))
	return nil
}

// EditCartItem sets the quantity of a line already in the cart. Zero removes it.
func (s *Session) EditCartItem(bookID, qty int) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	b, err := s.m.catalog.Get(bookID)
	if err != nil {
		return err
	}
	if s.account.cart.Quantity(b) == 0 {
		return ErrNotInCart
	}
	if err := s.account.EditCartItemQuantity(b, qty); err != nil {
		return err
	}
	s.m.persist(TableUsers)
	return nil
}

func (s *Session) RemoveFromCart(bookID int) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.account.Admin {
		return ErrNotPermitted
	}
	if !s.account.cart.remove(bookID) {
		return ErrNotInCart
	}
	s.m.persist(TableUsers)
	return nil
}

// Checkout buys the cart and writes the users and books tables.
func (s *Session) Checkout() (*Receipt, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, err := s.account.Checkout(s.m.now())
	if err != nil {
		return nil, err
	}
	s.m.persist(TableUsers, TableBooks)
	s.m.log.Info("checkout_completed",
		zap.String("receipt_id", r.ID),
		zap.String("user", s.account.UserName),
		zap.Int("items", r.Items()),
		zap.Float64("total", r.Total),
	)
	return r, nil
}

func (s *Session) StartNewSession() error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.account.Admin {
		return ErrNotPermitted
	}
	s.account.StartNewSession()
	s.m.persist(TableUsers)
	return nil
}

// ChangePassword replaces the signed-in account's password after checking the old one.
func (s *Session) ChangePassword(oldPassword, newPassword string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.accounts.ChangePassword(s.account, oldPassword, newPassword); err != nil {
		return err
	}
	if s.account.Admin {
		s.m.persist(TableAdmin)
	} else {
		s.m.persist(TableUsers)
	}
	s.m.log.Info("password_changed", zap.String("user", s.account.UserName), zap.Bool("admin", s.account.Admin))
	return nil
}
