package store

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

type testStore struct {
	*Manager
	dataDir  string
	imageDir string
}

func newManager(t *testing.T) *testStore {
	t.Helper()
	dataDir := filepath.Join(t.TempDir(), "dat")
	images := imageDir(t, "dune.png", "emma.png")
	return openManager(t, dataDir, images)
}

func openManager(t *testing.T, dataDir, images string) *testStore {
	t.Helper()
	backend, err := NewFileBackend(dataDir, nil)
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	mgr, err := NewManager(Options{Backend: backend, ImageDir: images, Clock: fixedClock})
	if err != nil {
		t.Fatalf("mgr: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return &testStore{Manager: mgr, dataDir: dataDir, imageDir: images}
}

// reopen loads a second manager from the same files.
func (s *testStore) reopen(t *testing.T) *testStore {
	t.Helper()
	return openManager(t, s.dataDir, s.imageDir)
}

func bookValues(title, price, qty string) []string {
	return []string{title, price, qty, "2", "Fiction", "paperback", "Frank Herbert", "1965", "dune.png"}
}

func (s *testStore) mustAddBook(t *testing.T, title, price, qty string) Book {
	t.Helper()
	b, err := s.AddBook(bookValues(title, price, qty))
	if err != nil {
		t.Fatalf("add book: %v", err)
	}
	return b
}

func (s *testStore) mustRegister(t *testing.T, userName string) *Session {
	t.Helper()
	if _, err := s.Register([]string{"ada", "lovelace", userName, "Abcdefg1", "ada@example.com"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	sess, _, err := s.SignIn(userName, "Abcdefg1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	return sess
}

func TestManagerEmptyStartCreatesFiles(t *testing.T) {
	s := newManager(t)
	if len(s.Books()) != 0 {
		t.Fatalf("expected empty catalog")
	}
	for _, name := range []string{BooksFile, UsersFile, AdminFile} {
		if _, err := os.Stat(filepath.Join(s.dataDir, name)); err != nil {
			t.Fatalf("%s not created: %v", name, err)
		}
	}
	if s.AdminPasswordSet() {
		t.Fatalf("admin password should be unset")
	}
	if _, err := s.SignInAdmin(""); !errors.Is(err, ErrBadAdminPassword) {
		t.Fatalf("admin sign in without password: %v", err)
	}
}

func TestManagerBookLifecycle(t *testing.T) {
	s := newManager(t)
	dune := s.mustAddBook(t, "Dune", "12.50", "7")
	if dune.ID != 0 || dune.Binding != "Paperback" {
		t.Fatalf("added: %+v", dune)
	}

	var verr *ValidationError
	if _, err := s.AddBook(bookValues("Dune", "0", "7")); !errors.As(err, &verr) || verr.Field != "Price" {
		t.Fatalf("invalid price: %v", err)
	}

	values := bookValues("Dune Messiah", "15", "3")
	values[8] = "emma.png"
	updated, err := s.UpdateBook(dune.ID, values)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Dune Messiah" || updated.ImageName != "emma.png" {
		t.Fatalf("update: %+v", updated)
	}
	if _, err := s.UpdateBook(9, values); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("update missing: %v", err)
	}

	other := s.reopen(t)
	got, err := other.Book(dune.ID)
	if err != nil || got.Title != "Dune Messiah" || got.Price != 15 {
		t.Fatalf("persisted book: %+v %v", got, err)
	}

	if err := s.RemoveBook(dune.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.RemoveBook(dune.ID); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("remove twice: %v", err)
	}
	if next := s.mustAddBook(t, "Emma", "8", "2"); next.ID != 1 {
		t.Fatalf("id reused: %d", next.ID)
	}
}

func TestManagerBooksSurviveReload(t *testing.T) {
	s := newManager(t)
	if _, err := s.AddBook(bookValues("Line one\nLine two", "10", "5")); err == nil {
		t.Fatalf("title with a line break accepted")
	}

	first := s.mustAddBook(t, "Dune", "10", "5")
	values := bookValues("Emma", "8", "4")
	values[4], values[6] = " Sci Fi ", " Jane Austen "
	second, err := s.AddBook(values)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if second.Genre != "Sci Fi" || second.Author != "Jane Austen" {
		t.Fatalf("fields not trimmed: %+v", second)
	}

	other := s.reopen(t)
	books := other.Books()
	if len(books) != 2 || books[0] != first || books[1] != second {
		t.Fatalf("books changed across reload:\n%+v\n%+v %+v", books, first, second)
	}
	if next := other.mustAddBook(t, "Persuasion", "9", "1"); next.ID != 2 {
		t.Fatalf("next id after reload: %d", next.ID)
	}
}

func TestManagerSearchAndLowStock(t *testing.T) {
	s := newManager(t)
	s.mustAddBook(t, "Dune", "12", "50")
	s.mustAddBook(t, "Emma", "8", "1")

	if got := s.SearchBooks("emm"); len(got) != 1 || got[0].Title != "Emma" {
		t.Fatalf("search: %+v", got)
	}
	if got := s.LowStock(); len(got) != 1 || got[0].Title != "Emma" {
		t.Fatalf("low stock: %+v", got)
	}
}

func TestManagerRegisterAndSignIn(t *testing.T) {
	s := newManager(t)
	userName, err := s.Register([]string{"ada", "lovelace", "ada1815", "Abcdefg1", "Ada@Example.com"})
	if err != nil || userName != "ada1815" {
		t.Fatalf("register: %q %v", userName, err)
	}
	if _, err := s.Register([]string{"Ada", "Byron", "ada1815", "Abcdefg1", "b@example.com"}); !errors.Is(err, ErrUserNameTaken) {
		t.Fatalf("duplicate: %v", err)
	}
	if _, _, err := s.SignIn("ada1815", "wrongPass1"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("bad password: %v", err)
	}

	other := s.reopen(t)
	sess, adjusted, err := other.SignIn("ada1815", "Abcdefg1")
	if err != nil || adjusted {
		t.Fatalf("sign in: %v adjusted=%v", err, adjusted)
	}
	if sess.IsAdmin() || sess.FullName() != "Ada Lovelace" {
		t.Fatalf("session: %s admin=%v", sess.FullName(), sess.IsAdmin())
	}
}

func TestManagerAdminPassword(t *testing.T) {
	s := newManager(t)
	if err := s.SetAdminPassword("Admin123"); err != nil {
		t.Fatalf("set: %v", err)
	}
	other := s.reopen(t)
	admin, err := other.SignInAdmin("Admin123")
	if err != nil || !admin.IsAdmin() {
		t.Fatalf("admin sign in: %v", err)
	}
	if err := admin.ChangePassword("Admin123", "Secret99"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if _, err := s.reopen(t).SignInAdmin("Secret99"); err != nil {
		t.Fatalf("changed admin password not persisted: %v", err)
	}
}

func TestSessionCheckoutPersists(t *testing.T) {
	s := newManager(t)
	a := s.mustAddBook(t, "Alpha", "10.00", "5")
	b := s.mustAddBook(t, "Beta", "5.00", "1")
	sess := s.mustRegister(t, "ada1815")

	if err := sess.AddToCart(a.ID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := sess.AddToCart(b.ID, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := sess.AddToCart(b.ID, 1); !errors.Is(err, ErrStockLimit) {
		t.Fatalf("over stock: %v", err)
	}
	if err := sess.AddToCart(99, 1); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("missing book: %v", err)
	}

	r, err := sess.Checkout()
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !r.Date.Equal(fixedClock()) || math.Abs(r.Total-28.25) > 1e-9 {
		t.Fatalf("receipt: %+v", r)
	}
	if len(sess.Cart()) != 0 {
		t.Fatalf("cart not cleared")
	}
	if _, err := sess.Checkout(); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("second checkout: %v", err)
	}

	other := s.reopen(t)
	if got, _ := other.Book(a.ID); got.Quantity != 3 {
		t.Fatalf("stock after reload: %d", got.Quantity)
	}
	reloaded, _, err := other.SignIn("ada1815", "Abcdefg1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	sales := reloaded.Sales()
	if math.Abs(sales.SessionSales-28.25) > 1e-9 || sales.TotalItems != 3 {
		t.Fatalf("sales after reload: %+v", sales)
	}

	if err := reloaded.StartNewSession(); err != nil {
		t.Fatalf("new session: %v", err)
	}
	if sales := reloaded.Sales(); sales.SessionSales != 0 || sales.SessionItems != 0 || sales.TotalItems != 3 {
		t.Fatalf("sales after reset: %+v", sales)
	}
}

func TestSessionCartEditing(t *testing.T) {
	s := newManager(t)
	a := s.mustAddBook(t, "Alpha", "10", "6")
	b := s.mustAddBook(t, "Beta", "5", "6")
	sess := s.mustRegister(t, "ada1815")

	_ = sess.AddToCart(a.ID, 2)
	if err := sess.EditCartItem(b.ID, 1); !errors.Is(err, ErrNotInCart) {
		t.Fatalf("edit missing line: %v", err)
	}
	if err := sess.EditCartItem(a.ID, 5); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if n, _ := sess.AddChoices(b.ID); n != 5 {
		t.Fatalf("add choices: %d", n)
	}
	if n, _ := sess.EditChoices(a.ID); n != 6 {
		t.Fatalf("edit choices: %d", n)
	}
	if err := sess.RemoveFromCart(b.ID); !errors.Is(err, ErrNotInCart) {
		t.Fatalf("remove missing line: %v", err)
	}
	if err := sess.RemoveFromCart(a.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if sess.CartTotal() != 0 {
		t.Fatalf("cart total: %d", sess.CartTotal())
	}
}

func TestSignInAdjustsCart(t *testing.T) {
	s := newManager(t)
	a := s.mustAddBook(t, "Alpha", "10", "5")
	sess := s.mustRegister(t, "ada1815")
	if err := sess.AddToCart(a.ID, 5); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := s.UpdateBook(a.ID, bookValues("Alpha", "10", "3")); err != nil {
		t.Fatalf("update: %v", err)
	}
	_, adjusted, err := s.SignIn("ada1815", "Abcdefg1")
	if err != nil || !adjusted {
		t.Fatalf("sign in: %v adjusted=%v", err, adjusted)
	}

	_, adjusted, err = s.reopen(t).SignIn("ada1815", "Abcdefg1")
	if err != nil || adjusted {
		t.Fatalf("clamped cart should have been persisted: %v adjusted=%v", err, adjusted)
	}
	if got := sess.Cart(); len(got) != 1 || got[0].Quantity != 3 {
		t.Fatalf("cart: %+v", got)
	}
}

func TestRemoveBookPurgesCarts(t *testing.T) {
	s := newManager(t)
	a := s.mustAddBook(t, "Alpha", "10", "5")
	b := s.mustAddBook(t, "Beta", "10", "5")
	sess := s.mustRegister(t, "ada1815")
	_ = sess.AddToCart(a.ID, 1)
	_ = sess.AddToCart(b.ID, 2)

	if err := s.RemoveBook(a.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := sess.Cart(); len(got) != 1 || got[0].Book.ID != b.ID {
		t.Fatalf("cart: %+v", got)
	}

	reloaded, _, err := s.reopen(t).SignIn("ada1815", "Abcdefg1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if reloaded.CartTotal() != 2 {
		t.Fatalf("persisted cart total: %d", reloaded.CartTotal())
	}
}

func TestAdminSessionCannotShop(t *testing.T) {
	s := newManager(t)
	a := s.mustAddBook(t, "Alpha", "10", "5")
	_ = s.SetAdminPassword("Admin123")
	admin, err := s.SignInAdmin("Admin123")
	if err != nil {
		t.Fatalf("admin: %v", err)
	}
	if err := admin.AddToCart(a.ID, 1); !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("admin add: %v", err)
	}
	if _, err := admin.Checkout(); !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("admin checkout: %v", err)
	}
}
