package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"bookstore-management/config"
	"bookstore-management/logging"
)

// Options configures a Manager. Backend is required; Clock defaults to time.Now.
type Options struct {
	Backend  Backend
	ImageDir string
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Manager is the store context: it owns the catalog, the accounts and the backend, and
// writes the affected tables after every change. Operations run one at a time.
type Manager struct {
	mu       sync.Mutex
	catalog  *Catalog
	accounts *AccountStore
	backend  Backend
	imageDir string
	now      func() time.Time
	log      *zap.Logger
}

// OpenBackend creates the backend selected by cfg.
func OpenBackend(cfg config.Config, log *zap.Logger) (Backend, error) {
	switch cfg.Backend {
	case config.BackendCSV:
		return NewFileBackend(cfg.DataDir, log)
	case config.BackendSQLite:
		return NewSQLiteBackend(cfg.SQLitePath, log)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// Open builds a Manager from cfg with the wall clock.
func Open(cfg config.Config, log *zap.Logger) (*Manager, error) {
	backend, err := OpenBackend(cfg, log)
	if err != nil {
		return nil, err
	}
	return NewManager(Options{Backend: backend, ImageDir: cfg.ImageDir, Logger: log})
}

// NewManager loads books, users and the admin password from the backend. A table that
// cannot be read is logged and left empty.
func NewManager(opts Options) (*Manager, error) {
	if opts.Backend == nil {
		return nil, errors.New("store: backend required")
	}
	m := &Manager{
		backend:  opts.Backend,
		imageDir: opts.ImageDir,
		now:      opts.Clock,
		log:      logging.OrNop(opts.Logger),
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.catalog = NewCatalog(m.log)
	m.accounts = NewAccountStore(m.log)

	m.catalog.LoadFromRows(m.load(TableBooks))
	m.accounts.LoadFromRows(m.load(TableUsers), m.catalog)
	m.accounts.LoadAdminRows(m.load(TableAdmin))

	m.log.Info("store_loaded",
		zap.Int("books", m.catalog.Len()),
		zap.Int("accounts", len(m.accounts.accounts)),
		zap.Bool("admin_password_set", m.accounts.AdminPasswordSet()),
	)
	return m, nil
}

// Close closes the backend.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.backend.Close()
}

func (m *Manager) load(table string) [][]string {
	rows, err := m.backend.Load(table)
	if err != nil {
		m.log.Warn("load_failed", zap.String("table", table), zap.Error(err))
		return nil
	}
	return rows
}

// persist rewrites tables. Failures are logged; memory stays authoritative.
func (m *Manager) persist(tables ...string) {
	for _, table := range tables {
		var rows [][]string
		switch table {
		case TableBooks:
			rows = m.catalog.ToRows()
		case TableUsers:
			rows = m.accounts.ToRows()
		case TableAdmin:
			rows = m.accounts.AdminRows()
		}
		if err := m.backend.Save(table, rows); err != nil {
			m.log.Warn("persist_failed", zap.String("table", table), zap.Error(err))
		}
	}
}

// ------------------ Catalog ------------------

// BookForm is the add/edit form, bound to the image directory and clock.
func (m *Manager) BookForm() Form { return BookForm(m.imageDir, m.now) }

// Books returns copies of every book in catalog order.
func (m *Manager) Books() []Book {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyBooks(m.catalog.books)
}

func (m *Manager) Book(id int) (Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.catalog.Get(id)
	if err != nil {
		return Book{}, err
	}
	return *b, nil
}

func (m *Manager) SearchBooks(query string) []Book {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyBooks(m.catalog.Search(query))
}

func (m *Manager) LowStock() []Book {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyBooks(m.catalog.LowStock())
}

// AddBook validates values through the book form and stores a new book.
func (m *Manager) AddBook(values []string) (Book, error) {
	fields, err := m.parseBookForm(values)
	if err != nil {
		return Book{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.catalog.AddBook(fields)
	m.persist(TableBooks)
	m.log.Info("book_added", zap.Int("book_id", b.ID), zap.String("title", b.Title))
	return *b, nil
}

// UpdateBook validates values through the book form and overwrites book id.
func (m *Manager) UpdateBook(id int, values []string) (Book, error) {
	fields, err := m.parseBookForm(values)
	if err != nil {
		return Book{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.catalog.Update(id, fields)
	if err != nil {
		return Book{}, err
	}
	m.persist(TableBooks)
	m.log.Info("book_updated", zap.Int("book_id", b.ID))
	return *b, nil
}

// RemoveBook deletes book id and drops it from every cart.
func (m *Manager) RemoveBook(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.catalog.RemoveBook(id)
	if err != nil {
		return err
	}
	tables := []string{TableBooks}
	if m.accounts.PurgeBook(id) {
		tables = append(tables, TableUsers)
	}
	m.persist(tables...)
	m.log.Info("book_removed", zap.Int("book_id", id), zap.String("title", b.Title))
	return nil
}

func (m *Manager) parseBookForm(values []string) (BookFields, error) {
	valid, err := m.BookForm().Validate(values)
	if err != nil {
		return BookFields{}, err
	}
	return ParseBookFields(valid)
}

func copyBooks(books []*Book) []Book {
	out := make([]Book, len(books))
	for i, b := range books {
		out[i] = *b
	}
	return out
}

// ------------------ Accounts ------------------

// Register validates values through the registration form and stores the account. It
// returns the stored username.
func (m *Manager) Register(values []string) (string, error) {
	valid, err := RegisterForm().Validate(values)
	if err != nil {
		return "", err
	}
	a := &Account{
		FirstName: valid[RegisterFirstName],
		LastName:  valid[RegisterLastName],
		UserName:  valid[RegisterUserName],
		Password:  valid[RegisterPassword],
		Email:     valid[RegisterEmail],
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.accounts.AddAccount(a); err != nil {
		return "", err
	}
	m.persist(TableUsers)
	m.log.Info("account_registered", zap.String("user", a.UserName))
	return a.UserName, nil
}

func (m *Manager) UserNameExists(userName string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts.UserNameExists(userName)
}

// SignIn opens a session for a customer. Cart lines are clamped to current stock first;
// adjusted reports whether any line changed.
func (m *Manager) SignIn(userName, password string) (s *Session, adjusted bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.accounts.CredentialsCorrect(userName, password) {
		return nil, false, ErrBadCredentials
	}
	a, err := m.accounts.FindByUserName(userName)
	if err != nil {
		return nil, false, err
	}
	if adjusted = a.AdjustCartQuantities(); adjusted {
		m.persist(TableUsers)
		m.log.Info("cart_adjusted", zap.String("user", userName))
	}
	m.log.Info("signed_in", zap.String("user", userName))
	return &Session{m: m, account: a}, adjusted, nil
}

// SignInAdmin opens an admin session. It always fails while no admin password is set.
func (m *Manager) SignInAdmin(password string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.accounts.AdminPasswordCorrect(password) {
		return nil, ErrBadAdminPassword
	}
	m.log.Info("signed_in", zap.Bool("admin", true))
	return &Session{m: m, account: m.accounts.Admin()}, nil
}

func (m *Manager) AdminPasswordSet() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts.AdminPasswordSet()
}

// SetAdminPassword stores a new admin password. It is operator tooling and does not ask
// for the old one.
func (m *Manager) SetAdminPassword(password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.accounts.SetAdminPassword(password); err != nil {
		return err
	}
	m.persist(TableAdmin)
	m.log.Info("admin_password_set")
	return nil
}
