package store

import (
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Validator checks one raw field value. It returns the normalized value and true, or
// false when the input is rejected.
type Validator func(string) (string, bool)

// Bounds for numeric book fields.
const (
	MaxPrice    = 200.0
	MaxQuantity = 200
	MaxTrigger  = 100
	MinYear     = 1700
)

var (
	nameRe   = regexp.MustCompile(`^[A-Za-z]+( [A-Za-z]+)*$`)
	userRe   = regexp.MustCompile(`^[0-9A-Za-z]+$`)
	emailRe  = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z]+\.[A-Za-z]+$`)
	titleRe  = regexp.MustCompile(`^[\w \t.\-()!?&]*$`)
	genreRe  = regexp.MustCompile(`^[A-Za-z ]+$`)
	authorRe = regexp.MustCompile(`^[A-Za-z .-]+$`)
)

// ValidName trims a person's name and capitalizes it.
func ValidName(input string) (string, bool) {
	name := strings.TrimSpace(input)
	if len(name) < 2 || !nameRe.MatchString(name) {
		return "", false
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:]), true
}

func ValidUserName(input string) (string, bool) {
	if len(input) < 5 || !userRe.MatchString(input) {
		return "", false
	}
	return input, true
}

// ValidPassword needs 8+ characters, no whitespace, and at least one lowercase letter,
// one uppercase letter and one digit.
func ValidPassword(input string) (string, bool) {
	if len(input) < 8 {
		return "", false
	}
	var lower, upper, digit bool
	for _, r := range input {
		switch {
		case unicode.IsSpace(r):
			return "", false
		case 'a' <= r && r <= 'z':
			lower = true
		case 'A' <= r && r <= 'Z':
			upper = true
		case '0' <= r && r <= '9':
			digit = true
		}
	}
	if !lower || !upper || !digit {
		return "", false
	}
	return input, true
}

// ValidEmail lowercases an address of the form local@domain.tld.
func ValidEmail(input string) (string, bool) {
	if !emailRe.MatchString(input) {
		return "", false
	}
	return strings.ToLower(input), true
}

// ValidBookTitle trims the title. An empty title is accepted; line breaks are not.
func ValidBookTitle(input string) (string, bool) {
	if !titleRe.MatchString(input) {
		return "", false
	}
	return strings.TrimSpace(input), true
}

// ValidPrice accepts 0 < price <= MaxPrice.
func ValidPrice(input string) (string, bool) {
	s := strings.TrimSpace(input)
	p, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 || p > MaxPrice {
		return "", false
	}
	return s, true
}

func ValidQuantity(input string) (string, bool) {
	return intInRange(input, 0, MaxQuantity)
}

func ValidJITTrigger(input string) (string, bool) {
	return intInRange(input, 0, MaxTrigger)
}

// ValidPublicationYear accepts MinYear through currentYear.
func ValidPublicationYear(input string, currentYear int) (string, bool) {
	return intInRange(input, MinYear, currentYear)
}

// YearValidator checks publication years against the year reported by now.
func YearValidator(now func() time.Time) Validator {
	return func(input string) (string, bool) {
		return ValidPublicationYear(input, now().Year())
	}
}

// ValidGenre trims the genre, which must be letters and spaces.
func ValidGenre(input string) (string, bool) {
	genre := strings.TrimSpace(input)
	if !genreRe.MatchString(genre) {
		return "", false
	}
	return genre, true
}

// ValidBinding normalizes "paperback" or "hardcover" in any case.
func ValidBinding(input string) (string, bool) {
	switch b := strings.TrimSpace(input); {
	case strings.EqualFold(b, "paperback"):
		return "Paperback", true
	case strings.EqualFold(b, "hardcover"):
		return "Hardcover", true
	default:
		return "", false
	}
}

func ValidAuthor(input string) (string, bool) {
	author := strings.TrimSpace(input)
	if !authorRe.MatchString(author) {
		return "", false
	}
	return author, true
}

// ImageValidator accepts names of regular files inside dir.
func ImageValidator(dir string) Validator {
	return func(input string) (string, bool) {
		if input == "" || strings.ContainsAny(input, `/\`) {
			return "", false
		}
		info, err := os.Stat(filepath.Join(dir, input))
		if err != nil || !info.Mode().IsRegular() {
			return "", false
		}
		return input, true
	}
}

func intInRange(input string, lo, hi int) (string, bool) {
	s := strings.TrimSpace(input)
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return "", false
	}
	return s, true
}
