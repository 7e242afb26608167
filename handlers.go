package main

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"bookstore-management/store"
)

func (s *shell) handleHelp() {
	s.println("Available commands:")
	for act := actHelp; act <= actExit; act++ {
		cmd := commands[act]
		if s.denied(cmd.access) != "" {
			continue
		}
		s.printf("  %-18s %s\n", cmd.name, cmd.help)
	}
}

// ------------------ Accounts ------------------

func (s *shell) handleRegister() {
	values, ok := s.fillForm(store.RegisterForm(), nil, func(field int, value string) error {
		if field == store.RegisterUserName && s.mgr.UserNameExists(value) {
			return store.ErrUserNameTaken
		}
		return nil
	})
	if !ok {
		return
	}
	userName, err := s.mgr.Register(values)
	if err != nil {
		s.println(describe(err))
		return
	}
	s.printf("You have successfully registered the account %s.\n", userName)
}

func (s *shell) handleSignIn() {
	userName, ok := s.prompt("Username")
	if !ok {
		return
	}
	password, ok := s.promptSecret("Password")
	if !ok {
		return
	}
	sess, adjusted, err := s.mgr.SignIn(userName, password)
	if err != nil {
		s.println(describe(err))
		return
	}
	s.session = sess
	s.printf("You have successfully signed in as %s.\n", userName)
	if adjusted {
		s.println("The quantities in your cart have been updated to reflect the availability of items.")
	}
}

func (s *shell) handleAdminSignIn() {
	if !s.mgr.AdminPasswordSet() {
		s.println("No admin password has been set. Run 'bookstore admin-password' to set one.")
		return
	}
	password, ok := s.promptSecret("Password")
	if !ok {
		return
	}
	sess, err := s.mgr.SignInAdmin(password)
	if err != nil {
		s.println(describe(err))
		return
	}
	s.session = sess
	s.println("You have successfully entered administrator mode.")
}

func (s *shell) handleChangePassword() {
	old, ok := s.promptSecret("Old password")
	if !ok {
		return
	}
	values, ok := s.fillForm(store.ChangePasswordForm(), nil, nil)
	if !ok {
		return
	}
	if err := s.session.ChangePassword(old, values[0]); err != nil {
		s.println(describe(err))
		return
	}
	s.println("You have successfully changed your password.")
}

func (s *shell) handleSignOut() {
	if !s.confirm("Are you sure you want to sign out?") {
		return
	}
	s.session = nil
	s.println("You have been signed out.")
}

func (s *shell) handleExit() {
	if !s.confirm("Are you sure you want to exit?") {
		return
	}
	s.done = true
	s.println("Goodbye!")
}

// ------------------ Catalog ------------------

func (s *shell) handleListBooks() {
	s.printBooks(s.mgr.Books())
}

func (s *shell) handleSearchBooks() {
	q, ok := s.prompt("Search")
	if !ok {
		return
	}
	books := s.mgr.SearchBooks(q)
	if len(books) == 0 {
		s.println("No books matched your search.")
		return
	}
	s.printBooks(books)
}

func (s *shell) handleViewBook() {
	b, ok := s.promptBook()
	if !ok {
		return
	}
	s.printf("ID:       %d\n", b.ID)
	s.printf("Title:    %s\n", b.Title)
	s.printf("Author:   %s\n", b.Author)
	s.printf("Genre:    %s\n", b.Genre)
	s.printf("Binding:  %s\n", b.Binding)
	s.printf("Year:     %d\n", b.PublicationYear)
	s.printf("Price:    %s\n", money(b.Price))
	if s.isAdmin() {
		s.printf("Stock:    %d (JIT trigger %d) %s\n", b.Quantity, b.JITTrigger, b.StockFlag())
		s.printf("Image:    %s\n", b.ImageName)
	} else {
		s.printf("Status:   %s\n", b.Availability())
	}
}

func (s *shell) printBooks(books []store.Book) {
	if len(books) == 0 {
		s.println("The catalog is empty.")
		return
	}
	if s.isAdmin() {
		s.printf("%-4s %-40s %-24s %10s %5s %5s  %s\n", "ID", "Title", "Author", "Price", "Qty", "JIT", "Status")
		s.println(strings.Repeat("-", 105))
		for _, b := range books {
			s.printf("%-4d %-40s %-24s %10s %5d %5d  %s\n", b.ID, truncate(b.Title, 40), truncate(b.Author, 24),
				money(b.Price), b.Quantity, b.JITTrigger, b.StockFlag())
		}
		return
	}
	s.printf("%-4s %-40s %-24s %10s  %s\n", "ID", "Title", "Author", "Price", "Availability")
	s.println(strings.Repeat("-", 95))
	for _, b := range books {
		s.printf("%-4d %-40s %-24s %10s  %s\n", b.ID, truncate(b.Title, 40), truncate(b.Author, 24), money(b.Price), b.Availability())
	}
}

func (s *shell) promptBook() (store.Book, bool) {
	id, ok := s.promptInt("Book ID")
	if !ok {
		return store.Book{}, false
	}
	b, err := s.mgr.Book(id)
	if err != nil {
		s.println(describe(err))
		return store.Book{}, false
	}
	return b, true
}

// ------------------ Cart ------------------

func (s *shell) handleAddToCart() {
	b, ok := s.promptBook()
	if !ok {
		return
	}
	choices, err := s.session.AddChoices(b.ID)
	if err != nil {
		s.println(describe(err))
		return
	}
	if choices == 0 {
		switch {
		case b.Quantity == 0:
			s.println(describe(store.ErrOutOfStock))
		case s.session.CartTotal() >= store.MaxCartItems:
			s.println(describe(store.ErrCartFull))
		default:
			s.println(describe(store.ErrStockLimit))
		}
		return
	}
	qty, ok := s.promptInt(fmt.Sprintf("Quantity (1-%d)", choices))
	if !ok {
		return
	}
	if err := s.session.AddToCart(b.ID, qty); err != nil {
		s.println(describe(err))
		return
	}
	s.printf("Added %d x %s to your cart.\n", qty, b.Title)
}

func (s *shell) handleViewCart() {
	entries := s.session.Cart()
	if len(entries) == 0 {
		s.println("Your cart is empty.")
		return
	}
	var subtotal float64
	s.printf("%-4s %-40s %5s %10s\n", "ID", "Title", "Qty", "Amount")
	s.println(strings.Repeat("-", 62))
	for _, e := range entries {
		amount := e.Book.Price * float64(e.Quantity)
		subtotal += amount
		s.printf("%-4d %-40s %5d %10s\n", e.Book.ID, truncate(e.Book.Title, 40), e.Quantity, money(amount))
	}
	s.printf("%d of %d items. Subtotal %s, total with tax %s.\n",
		s.session.CartTotal(), store.MaxCartItems, money(subtotal), money(subtotal*(1+store.TaxRate)))
}

func (s *shell) handleEditCart() {
	b, ok := s.promptBook()
	if !ok {
		return
	}
	if !s.inCart(b.ID) {
		s.println(describe(store.ErrNotInCart))
		return
	}
	choices, err := s.session.EditChoices(b.ID)
	if err != nil {
		s.println(describe(err))
		return
	}
	qty, ok := s.promptInt(fmt.Sprintf("New quantity (0-%d)", choices))
	if !ok {
		return
	}
	if qty < 0 || qty > choices {
		s.printf("Please choose a quantity between 0 and %d.\n", choices)
		return
	}
	if qty == 0 && !s.confirm(fmt.Sprintf("Remove %s from your cart?", b.Title)) {
		return
	}
	if err := s.session.EditCartItem(b.ID, qty); err != nil {
		s.println(describe(err))
		return
	}
	s.println("Your cart has been updated.")
}

func (s *shell) inCart(bookID int) bool {
	for _, e := range s.session.Cart() {
		if e.Book.ID == bookID {
			return true
		}
	}
	return false
}

func (s *shell) handleRemoveFromCart() {
	b, ok := s.promptBook()
	if !ok {
		return
	}
	if !s.inCart(b.ID) {
		s.println(describe(store.ErrNotInCart))
		return
	}
	if !s.confirm(fmt.Sprintf("Remove %s from your cart?", b.Title)) {
		return
	}
	if err := s.session.RemoveFromCart(b.ID); err != nil {
		s.println(describe(err))
		return
	}
	s.printf("%s has been removed from your cart.\n", b.Title)
}

func (s *shell) handleCheckout() {
	if s.session.CartTotal() == 0 {
		s.println(describe(store.ErrEmptyCart))
		return
	}
	s.handleViewCart()
	if !s.confirm("Are you sure you want to check out?") {
		return
	}
	r, err := s.session.Checkout()
	if err != nil {
		s.println(describe(err))
		return
	}
	s.printReceipt(r)
}

func (s *shell) printReceipt(r *store.Receipt) {
	s.println("Thank you for your purchase!")
	s.printf("Receipt %s\n", r.ID)
	s.printf("Customer: %s\n", r.Customer)
	s.printf("Date:     %s\n", r.Date.Format("2006-01-02 15:04"))
	s.println(strings.Repeat("-", 56))
	for _, l := range r.Lines {
		s.printf("%-44s %11s\n", truncate(l.Label(), 44), money(l.Amount))
	}
	s.println(strings.Repeat("-", 56))
	s.printf("%-44s %11s\n", "Subtotal", money(r.Subtotal))
	s.printf("%-44s %11s\n", fmt.Sprintf("Tax (%d%%)", int(store.TaxRate*100)), money(r.Tax))
	s.printf("%-44s %11s\n", "Total", money(r.Total))
}

func (s *shell) handleSales() {
	sales := s.session.Sales()
	s.printf("Amount spent this session: %s\n", money(sales.SessionSales))
	s.printf("Books purchased this session: %d\n", sales.SessionItems)
	s.printf("Amount spent in all: %s\n", money(sales.TotalSales))
	s.printf("Books purchased in all: %d\n", sales.TotalItems)
}

func (s *shell) handleNewSession() {
	if !s.confirm("Are you sure you want to start a new session? This will result in your session amounts being reset to 0.") {
		return
	}
	if err := s.session.StartNewSession(); err != nil {
		s.println(describe(err))
		return
	}
	s.println("You have successfully began a new session.")
}

// ------------------ Admin ------------------

func (s *shell) handleAddBook() {
	values, ok := s.fillForm(s.mgr.BookForm(), nil, nil)
	if !ok {
		return
	}
	b, err := s.mgr.AddBook(values)
	if err != nil {
		s.println(describe(err))
		return
	}
	s.printf("You have successfully added the book (ID %d).\n", b.ID)
}

func (s *shell) handleEditBook() {
	b, ok := s.promptBook()
	if !ok {
		return
	}
	s.println("Press Enter to keep the current value.")
	values, ok := s.fillForm(s.mgr.BookForm(), b.FormValues(), nil)
	if !ok {
		return
	}
	if _, err := s.mgr.UpdateBook(b.ID, values); err != nil {
		s.println(describe(err))
		return
	}
	s.println("You have successfully edited this book.")
}

func (s *shell) handleDeleteBook() {
	b, ok := s.promptBook()
	if !ok {
		return
	}
	if !s.confirm(fmt.Sprintf("Are you sure you want to delete %s?", b.Title)) {
		return
	}
	if err := s.mgr.RemoveBook(b.ID); err != nil {
		if !errors.Is(err, store.ErrBookNotFound) {
			s.log.Error("remove_book_failed", zap.Int("book_id", b.ID), zap.Error(err))
		}
		s.println(describe(err))
		return
	}
	s.printf("%s has been deleted.\n", b.Title)
}

func (s *shell) handleLowStock() {
	books := s.mgr.LowStock()
	if len(books) == 0 {
		s.println("Every book is in stock.")
		return
	}
	s.printBooks(books)
}

func truncate(str string, n int) string {
	if len(str) <= n {
		return str
	}
	if n <= 3 {
		return str[:n]
	}
	return str[:n-3] + "..."
}
