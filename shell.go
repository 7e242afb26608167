package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/term"

	"bookstore-management/logging"
	"bookstore-management/store"
)

type action int

const (
	actHelp action = iota
	actRegister
	actSignIn
	actAdminSignIn
	actListBooks
	actViewBook
	actSearchBooks
	actAddToCart
	actViewCart
	actEditCart
	actRemoveFromCart
	actCheckout
	actSales
	actNewSession
	actChangePassword
	actAddBook
	actEditBook
	actDeleteBook
	actLowStock
	actSignOut
	actExit
)

// access says who may run a command.
type access int

const (
	anyone access = iota
	signedOut
	signedIn
	customer
	admin
)

type command struct {
	name   string
	help   string
	access access
	run    func(*shell)
}

// commands is the dispatch table. It is filled in init because help reads it.
var commands map[action]command

func init() {
	commands = map[action]command{
		actHelp:           {"help", "show the commands you can use now", anyone, (*shell).handleHelp},
		actRegister:       {"register", "create a customer account", signedOut, (*shell).handleRegister},
		actSignIn:         {"sign in", "sign in as a customer", signedOut, (*shell).handleSignIn},
		actAdminSignIn:    {"admin sign in", "enter administrator mode", signedOut, (*shell).handleAdminSignIn},
		actListBooks:      {"list books", "show the catalog", anyone, (*shell).handleListBooks},
		actViewBook:       {"view book", "show one book", anyone, (*shell).handleViewBook},
		actSearchBooks:    {"search books", "find books by title, author or genre", anyone, (*shell).handleSearchBooks},
		actAddToCart:      {"add to cart", "put copies of a book in your cart", customer, (*shell).handleAddToCart},
		actViewCart:       {"view cart", "show your cart", customer, (*shell).handleViewCart},
		actEditCart:       {"edit cart", "change how many copies of a book are in your cart", customer, (*shell).handleEditCart},
		actRemoveFromCart: {"remove from cart", "take a book out of your cart", customer, (*shell).handleRemoveFromCart},
		actCheckout:       {"checkout", "buy everything in your cart", customer, (*shell).handleCheckout},
		actSales:          {"sales", "show what you have spent", customer, (*shell).handleSales},
		actNewSession:     {"new session", "reset your session amounts", customer, (*shell).handleNewSession},
		actChangePassword: {"change password", "change your password", signedIn, (*shell).handleChangePassword},
		actAddBook:        {"add book", "add a book to the catalog", admin, (*shell).handleAddBook},
		actEditBook:       {"edit book", "edit a book in the catalog", admin, (*shell).handleEditBook},
		actDeleteBook:     {"delete book", "delete a book from the catalog", admin, (*shell).handleDeleteBook},
		actLowStock:       {"low stock", "list books that should be reordered", admin, (*shell).handleLowStock},
		actSignOut:        {"sign out", "end your session", signedIn, (*shell).handleSignOut},
		actExit:           {"exit", "quit the bookstore", anyone, (*shell).handleExit},
	}
}

func lookupAction(name string) (action, bool) {
	name = strings.Join(strings.Fields(strings.ToLower(name)), " ")
	for act := actHelp; act <= actExit; act++ {
		if commands[act].name == name {
			return act, true
		}
	}
	return 0, false
}

// shell is the interactive front end. It reads commands line by line and writes
// everything the user sees to out.
type shell struct {
	mgr     *store.Manager
	sc      *bufio.Scanner
	out     io.Writer
	log     *zap.Logger
	session *store.Session
	done    bool

	masked   bool
	secretFD int
}

func newShell(mgr *store.Manager, in io.Reader, out io.Writer, log *zap.Logger) *shell {
	s := &shell{mgr: mgr, sc: bufio.NewScanner(in), out: out, log: logging.OrNop(log)}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		s.masked = true
		s.secretFD = int(f.Fd())
	}
	return s
}

func (s *shell) run() {
	s.println("Welcome to the Bookstore!")
	s.println("Type 'help' to see what you can do.")

	for !s.done {
		s.printf("\n%s> ", s.promptName())
		if !s.sc.Scan() {
			break
		}
		line := strings.TrimSpace(s.sc.Text())
		if line == "" {
			continue
		}
		s.dispatch(line)
	}
}

func (s *shell) dispatch(line string) {
	act, ok := lookupAction(line)
	if !ok {
		s.println("Unknown command. Type 'help' to see the available commands.")
		return
	}
	cmd := commands[act]
	if msg := s.denied(cmd.access); msg != "" {
		s.println(msg)
		return
	}
	s.log.Debug("command", zap.String("name", cmd.name))
	cmd.run(s)
}

// denied returns why the current user may not run a command with the given access.
func (s *shell) denied(a access) string {
	switch a {
	case signedOut:
		if s.session != nil {
			return "Please sign out first."
		}
	case signedIn:
		if s.session == nil {
			return "Please sign in first."
		}
	case customer:
		if s.session == nil || s.session.IsAdmin() {
			return "Please sign in with a customer account first."
		}
	case admin:
		if s.session == nil || !s.session.IsAdmin() {
			return "This command is only available in administrator mode."
		}
	}
	return ""
}

func (s *shell) promptName() string {
	switch {
	case s.session == nil:
		return ""
	case s.session.IsAdmin():
		return "admin "
	default:
		return s.session.UserName() + " "
	}
}

func (s *shell) isAdmin() bool { return s.session != nil && s.session.IsAdmin() }

func (s *shell) printf(format string, args ...any) { fmt.Fprintf(s.out, format, args...) }
func (s *shell) println(args ...any)               { fmt.Fprintln(s.out, args...) }

// prompt reads one trimmed line. It returns false on end of input.
func (s *shell) prompt(label string) (string, bool) {
	s.printf("%s: ", label)
	if !s.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.sc.Text()), true
}

// promptSecret reads a password, masked when input is a terminal.
func (s *shell) promptSecret(label string) (string, bool) {
	if !s.masked {
		return s.prompt(label)
	}
	s.printf("%s: ", label)
	b, err := term.ReadPassword(s.secretFD)
	s.println()
	if err != nil {
		s.log.Warn("read_password_failed", zap.Error(err))
		return "", false
	}
	return strings.TrimSpace(string(b)), true
}

func (s *shell) promptInt(label string) (int, bool) {
	raw, ok := s.prompt(label)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		s.printf("Invalid number: %s\n", raw)
		return 0, false
	}
	return n, true
}

func (s *shell) confirm(question string) bool {
	answer, ok := s.prompt(question + " [y/N]")
	if !ok {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	default:
		s.println("Cancelled.")
		return false
	}
}

// fillForm asks for every field, repeating a field until its validators accept it and
// check, when given, returns nil. When defaults are given, an empty answer keeps the default.
func (s *shell) fillForm(form store.Form, defaults []string, check func(field int, value string) error) ([]string, bool) {
	values := make([]string, len(form.Fields))
	for i, field := range form.Fields {
		label := field.Label
		if defaults != nil && !field.Secret {
			label = fmt.Sprintf("%s [%s]", label, defaults[i])
		}
		for {
			var (
				raw string
				ok  bool
			)
			if field.Secret {
				raw, ok = s.promptSecret(label)
			} else {
				raw, ok = s.prompt(label)
			}
			if !ok {
				return nil, false
			}
			if raw == "" && defaults != nil {
				raw = defaults[i]
			}
			v, err := field.Validate(raw)
			if err == nil && check != nil {
				err = check(i, v)
			}
			if err != nil {
				s.println(describe(err))
				continue
			}
			values[i] = v
			break
		}
	}
	return values, true
}

// describe turns store errors into the messages shown to the user.
func describe(err error) string {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, store.ErrBookNotFound):
		return "There is no book with that ID."
	case errors.Is(err, store.ErrUserNameTaken):
		return "That username is already taken."
	case errors.Is(err, store.ErrBadCredentials):
		return "The username or password is incorrect."
	case errors.Is(err, store.ErrBadAdminPassword):
		return "The admin password entered is incorrect."
	case errors.Is(err, store.ErrWrongPassword):
		return "You have not correctly entered your old password."
	case errors.Is(err, store.ErrOutOfStock):
		return "This item is out of stock."
	case errors.Is(err, store.ErrStockLimit):
		return "You have already added as many of this item as there are in stock."
	case errors.Is(err, store.ErrCartFull):
		return fmt.Sprintf("You have already reached a max of %d items in your cart.", store.MaxCartItems)
	case errors.Is(err, store.ErrInvalidQuantity):
		return "Please enter a quantity greater than zero."
	case errors.Is(err, store.ErrNotInCart):
		return "That book is not in your cart."
	case errors.Is(err, store.ErrEmptyCart):
		return "Your cart is empty."
	case errors.Is(err, store.ErrNotPermitted):
		return "That is not available for this account."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

func money(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}
