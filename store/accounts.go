package store

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"bookstore-management/logging"
)

const (
	accountRowFields = 10
	cartSeparator    = "|"
)

// AccountStore holds the customer accounts and the admin account. The admin has no
// name or email; an empty admin password means none has been set.
type AccountStore struct {
	accounts []*Account
	admin    *Account
	log      *zap.Logger
}

// NewAccountStore returns a store with no customers and an admin without a password.
func NewAccountStore(log *zap.Logger) *AccountStore {
	return &AccountStore{
		admin: &Account{Admin: true},
		log:   logging.OrNop(log),
	}
}

// Accounts returns the customer accounts in registration order.
func (s *AccountStore) Accounts() []*Account { return slices.Clone(s.accounts) }

// Admin returns the admin account.
func (s *AccountStore) Admin() *Account { return s.admin }

// AdminPasswordSet reports whether an admin password has been stored.
func (s *AccountStore) AdminPasswordSet() bool { return s.admin.Password != "" }

// AddAccount registers a customer. The username must not be taken.
func (s *AccountStore) AddAccount(a *Account) error {
	if s.UserNameExists(a.UserName) {
		return fmt.Errorf("%q: %w", a.UserName, ErrUserNameTaken)
	}
	a.Admin = false
	s.accounts = append(s.accounts, a)
	return nil
}

// FindByUserName looks up a customer by exact username.
func (s *AccountStore) FindByUserName(userName string) (*Account, error) {
	for _, a := range s.accounts {
		if a.UserName == userName {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", userName, ErrAccountNotFound)
}

func (s *AccountStore) UserNameExists(userName string) bool {
	_, err := s.FindByUserName(userName)
	return err == nil
}

// CredentialsCorrect reports whether password belongs to userName.
func (s *AccountStore) CredentialsCorrect(userName, password string) bool {
	a, err := s.FindByUserName(userName)
	return err == nil && a.Password == password
}

// AdminPasswordCorrect never succeeds while no admin password is set.
func (s *AccountStore) AdminPasswordCorrect(password string) bool {
	return s.AdminPasswordSet() && s.admin.Password == password
}

// SetAdminPassword replaces the admin password without checking the old one.
func (s *AccountStore) SetAdminPassword(password string) error {
	if _, ok := ValidPassword(password); !ok {
		return &ValidationError{Field: "Password", Message: passwordMessage}
	}
	s.admin.Password = password
	return nil
}

// ChangePassword sets a new password on a after checking the old one.
func (s *AccountStore) ChangePassword(a *Account, oldPassword, newPassword string) error {
	if a.Admin && !s.AdminPasswordSet() {
		return ErrBadAdminPassword
	}
	if a.Password != oldPassword {
		return ErrWrongPassword
	}
	if _, ok := ValidPassword(newPassword); !ok {
		return &ValidationError{Field: "New password", Message: newPasswordMessage}
	}
	a.Password = newPassword
	return nil
}

// PurgeBook drops book id from every cart and reports whether any cart changed.
func (s *AccountStore) PurgeBook(id int) bool {
	changed := false
	for _, a := range s.accounts {
		if a.cart.remove(id) {
			changed = true
		}
	}
	return changed
}

// LoadFromRows replaces the customer accounts with the parsed rows. Cart lines are
// resolved against catalog; rows that do not parse are skipped.
func (s *AccountStore) LoadFromRows(rows [][]string, catalog *Catalog) {
	s.accounts = s.accounts[:0]
	for i, row := range rows {
		a, err := parseAccountRow(row, catalog)
		if err != nil {
			s.log.Debug("row_skipped", zap.String("table", TableUsers), zap.Int("row", i+1), zap.Error(err))
			continue
		}
		if s.UserNameExists(a.UserName) {
			s.log.Debug("row_skipped", zap.String("table", TableUsers), zap.Int("row", i+1), zap.String("duplicate_user", a.UserName))
			continue
		}
		s.accounts = append(s.accounts, a)
	}
}

// LoadAdminRows reads the admin password from the single-value table.
func (s *AccountStore) LoadAdminRows(rows [][]string) {
	s.admin.Password = ""
	if len(rows) > 0 && len(rows[0]) > 0 {
		s.admin.Password = strings.TrimSpace(rows[0][0])
	}
}

// ToRows renders the customer accounts.
func (s *AccountStore) ToRows() [][]string {
	rows := make([][]string, 0, len(s.accounts))
	for _, a := range s.accounts {
		rows = append(rows, accountRow(a))
	}
	return rows
}

// AdminRows renders the admin password table; it is empty while no password is set.
func (s *AccountStore) AdminRows() [][]string {
	if !s.AdminPasswordSet() {
		return nil
	}
	return [][]string{{s.admin.Password}}
}

func accountRow(a *Account) []string {
	return []string{
		a.FirstName,
		a.LastName,
		a.UserName,
		a.Password,
		a.Email,
		formatFloat(a.SessionSales),
		formatFloat(a.TotalSales),
		strconv.Itoa(a.SessionItems),
		strconv.Itoa(a.TotalItems),
		serializeCart(&a.cart),
	}
}

func parseAccountRow(row []string, catalog *Catalog) (*Account, error) {
	if len(row) != accountRowFields {
		return nil, fmt.Errorf("user row has %d fields, want %d", len(row), accountRowFields)
	}
	var (
		a = &Account{
			FirstName: row[0],
			LastName:  row[1],
			UserName:  row[2],
			Password:  row[3],
			Email:     row[4],
		}
		err error
	)
	if a.SessionSales, err = strconv.ParseFloat(row[5], 64); err != nil {
		return nil, fmt.Errorf("session sales: %w", err)
	}
	if a.TotalSales, err = strconv.ParseFloat(row[6], 64); err != nil {
		return nil, fmt.Errorf("total sales: %w", err)
	}
	if a.SessionItems, err = strconv.Atoi(row[7]); err != nil {
		return nil, fmt.Errorf("session items: %w", err)
	}
	if a.TotalItems, err = strconv.Atoi(row[8]); err != nil {
		return nil, fmt.Errorf("total items: %w", err)
	}
	if err := deserializeCart(&a.cart, row[9], catalog); err != nil {
		return nil, fmt.Errorf("cart: %w", err)
	}
	return a, nil
}

// serializeCart renders the cart as bookId|quantity pairs.
func serializeCart(c *Cart) string {
	parts := make([]string, 0, 2*len(c.entries))
	for _, e := range c.entries {
		parts = append(parts, strconv.Itoa(e.Book.ID), strconv.Itoa(e.Quantity))
	}
	return strings.Join(parts, cartSeparator)
}

// deserializeCart fills c from bookId|quantity pairs. Pairs naming a missing book or a
// non-positive quantity are dropped; a trailing unpaired token is ignored.
func deserializeCart(c *Cart, s string, catalog *Catalog) error {
	c.clear()
	if strings.TrimSpace(s) == "" {
		return nil
	}
	tokens := strings.Split(s, cartSeparator)
	for i := 0; i+1 < len(tokens); i += 2 {
		id, err := strconv.Atoi(strings.TrimSpace(tokens[i]))
		if err != nil {
			return fmt.Errorf("book id: %w", err)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(tokens[i+1]))
		if err != nil {
			return fmt.Errorf("quantity: %w", err)
		}
		book, err := catalog.Get(id)
		if err != nil || qty <= 0 {
			continue
		}
		c.set(book, qty)
	}
	return nil
}
