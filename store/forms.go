package store

import (
	"fmt"
	"strconv"
	"time"
)

// Field is one prompt of a form. Validators run in order; the first rejection reports
// Error, whichever validator failed.
type Field struct {
	Label      string
	Error      string
	Secret     bool
	Validators []Validator
}

// Form is an ordered list of fields.
type Form struct {
	Title  string
	Fields []Field
}

// ValidationError reports the first field a form rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

const (
	passwordMessage    = "Your password must be at least 8 characters, and contain at least one uppercase and lowercase letter, and one digit."
	newPasswordMessage = "Your new password must be at least 8 characters, and contain at least one uppercase and lowercase letter, and one digit."
)

// Validate runs a single field's chain on input.
func (f Field) Validate(input string) (string, error) {
	value := input
	for _, v := range f.Validators {
		var ok bool
		if value, ok = v(value); !ok {
			return "", &ValidationError{Field: f.Label, Message: f.Error}
		}
	}
	return value, nil
}

// Validate checks values against the fields in order and returns the normalized values.
func (f Form) Validate(values []string) ([]string, error) {
	if len(values) != len(f.Fields) {
		return nil, fmt.Errorf("%s: got %d values for %d fields", f.Title, len(values), len(f.Fields))
	}
	out := make([]string, len(values))
	for i, field := range f.Fields {
		v, err := field.Validate(values[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Positions of the registration form fields.
const (
	RegisterFirstName = iota
	RegisterLastName
	RegisterUserName
	RegisterPassword
	RegisterEmail
)

// RegisterForm collects a new customer account.
func RegisterForm() Form {
	return Form{
		Title: "Register",
		Fields: []Field{
			{Label: "First name", Error: "Please enter a valid first name.", Validators: []Validator{ValidName}},
			{Label: "Last name", Error: "Please enter a valid last name.", Validators: []Validator{ValidName}},
			{Label: "Username", Error: "Your username must be at least 5 characters long, and must only be composed of letters and numbers.", Validators: []Validator{ValidUserName}},
			{Label: "Password", Error: passwordMessage, Secret: true, Validators: []Validator{ValidPassword}},
			{Label: "Email address", Error: "Please enter a valid email address.", Validators: []Validator{ValidEmail}},
		},
	}
}

// BookForm collects a book's editable fields. It is shared by add and edit.
func BookForm(imageDir string, now func() time.Time) Form {
	return Form{
		Title: "Book",
		Fields: []Field{
			{Label: "Title", Error: "Please enter a valid book title.", Validators: []Validator{ValidBookTitle}},
			{Label: "Price", Error: "Please enter a valid price below $200.", Validators: []Validator{ValidPrice}},
			{Label: "Quantity", Error: "Please enter a valid quantity that does not exceed 200.", Validators: []Validator{ValidQuantity}},
			{Label: "JIT trigger", Error: "Please enter a valid JIT trigger that does not exceed 100.", Validators: []Validator{ValidJITTrigger}},
			{Label: "Genre", Error: "Please enter a valid genre name.", Validators: []Validator{ValidGenre}},
			{Label: "Binding", Error: `The book binding must be either "Paperback" or "Hardcover".`, Validators: []Validator{ValidBinding}},
			{Label: "Author", Error: "Please enter a valid author's name.", Validators: []Validator{ValidAuthor}},
			{Label: "Year", Error: "Please enter a valid publication year.", Validators: []Validator{YearValidator(now)}},
			{Label: "Image name", Error: fmt.Sprintf("The image you entered does not exist. Please make sure the image is in the %q folder.", imageDir), Validators: []Validator{ImageValidator(imageDir)}},
		},
	}
}

// ChangePasswordForm collects the new password; the old one is checked by the store.
func ChangePasswordForm() Form {
	return Form{
		Title: "Change password",
		Fields: []Field{
			{Label: "New password", Error: newPasswordMessage, Secret: true, Validators: []Validator{ValidPassword}},
		},
	}
}

// ParseBookFields converts validated book form values into BookFields.
func ParseBookFields(values []string) (BookFields, error) {
	if len(values) != 9 {
		return BookFields{}, fmt.Errorf("book form: got %d values, want 9", len(values))
	}
	var (
		f = BookFields{
			Title:     values[0],
			Genre:     values[4],
			Binding:   values[5],
			Author:    values[6],
			ImageName: values[8],
		}
		err error
	)
	if f.Price, err = strconv.ParseFloat(values[1], 64); err != nil {
		return BookFields{}, fmt.Errorf("price: %w", err)
	}
	if f.Quantity, err = strconv.Atoi(values[2]); err != nil {
		return BookFields{}, fmt.Errorf("quantity: %w", err)
	}
	if f.JITTrigger, err = strconv.Atoi(values[3]); err != nil {
		return BookFields{}, fmt.Errorf("jit trigger: %w", err)
	}
	if f.PublicationYear, err = strconv.Atoi(values[7]); err != nil {
		return BookFields{}, fmt.Errorf("publication year: %w", err)
	}
	return f, nil
}
