package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidators(t *testing.T) {
	year := func(input string) (string, bool) { return ValidPublicationYear(input, 2024) }

	cases := []struct {
		name  string
		v     Validator
		input string
		want  string
		ok    bool
	}{
		{"name capitalized", ValidName, "  mARY ", "Mary", true},
		{"name with interior space", ValidName, "mary ann", "Mary ann", true},
		{"name too short", ValidName, "A", "", false},
		{"name with digit", ValidName, "Ann3", "", false},
		{"name with underscore", ValidName, "Ann_Marie", "", false},
		{"name with double space", ValidName, "Mary  Ann", "", false},

		{"username", ValidUserName, "BobSmith1", "BobSmith1", true},
		{"username punctuation", ValidUserName, "Bob!", "", false},
		{"username short", ValidUserName, "Bob", "", false},

		{"password", ValidPassword, "Abcdefg1", "Abcdefg1", true},
		{"password no upper", ValidPassword, "abcdefg1", "", false},
		{"password space", ValidPassword, "Abcdefg 1", "", false},
		{"password no digit", ValidPassword, "Abcdefgh", "", false},
		{"password short", ValidPassword, "Abcde1", "", false},

		{"email lowercased", ValidEmail, "Ada.L_1@Example.COM", "ada.l_1@example.com", true},
		{"email digit domain", ValidEmail, "ada@ex4mple.com", "", false},
		{"email no tld", ValidEmail, "ada@example", "", false},

		{"title trimmed", ValidBookTitle, " Who? Me! (Part 1) & more - vol. 2 ", "Who? Me! (Part 1) & more - vol. 2", true},
		{"title empty", ValidBookTitle, "", "", true},
		{"title comma", ValidBookTitle, "Eats, Shoots", "", false},
		{"title newline", ValidBookTitle, "Line one\nLine two", "", false},
		{"title carriage return", ValidBookTitle, "Line one\rLine two", "", false},
		{"title tab", ValidBookTitle, "Part\tOne", "Part\tOne", true},

		{"price", ValidPrice, "19.99", "19.99", true},
		{"price max", ValidPrice, "200", "200", true},
		{"price zero", ValidPrice, "0", "", false},
		{"price too high", ValidPrice, "200.01", "", false},
		{"price nan", ValidPrice, "NaN", "", false},
		{"price word", ValidPrice, "ten", "", false},

		{"quantity zero", ValidQuantity, "0", "0", true},
		{"quantity max", ValidQuantity, "200", "200", true},
		{"quantity negative", ValidQuantity, "-1", "", false},
		{"quantity fraction", ValidQuantity, "1.5", "", false},

		{"trigger", ValidJITTrigger, "100", "100", true},
		{"trigger too high", ValidJITTrigger, "101", "", false},

		{"year", year, "1700", "1700", true},
		{"year current", year, "2024", "2024", true},
		{"year future", year, "2025", "", false},
		{"year early", year, "1699", "", false},

		{"genre", ValidGenre, "Science Fiction", "Science Fiction", true},
		{"genre hyphen", ValidGenre, "Sci-Fi", "", false},
		{"genre empty", ValidGenre, "", "", false},
		{"genre trimmed", ValidGenre, " Sci Fi ", "Sci Fi", true},
		{"genre blank", ValidGenre, "   ", "", false},

		{"binding paperback", ValidBinding, " PAPERBACK ", "Paperback", true},
		{"binding hardcover", ValidBinding, "hardCover", "Hardcover", true},
		{"binding other", ValidBinding, "ebook", "", false},

		{"author", ValidAuthor, "J.R.R. Tolkien", "J.R.R. Tolkien", true},
		{"author hyphen", ValidAuthor, "Jean-Paul Sartre", "Jean-Paul Sartre", true},
		{"author apostrophe", ValidAuthor, "Flannery O'Connor", "", false},
		{"author trimmed", ValidAuthor, "  Jane Austen ", "Jane Austen", true},
	}
	for _, tc := range cases {
		got, ok := tc.v(tc.input)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("%s: got (%q, %v) want (%q, %v)", tc.name, got, ok, tc.want, tc.ok)
		}
		if !ok {
			continue
		}
		again, ok := tc.v(got)
		if !ok || again != got {
			t.Fatalf("%s: not idempotent: %q -> (%q, %v)", tc.name, got, again, ok)
		}
	}
}

func TestYearValidatorUsesClock(t *testing.T) {
	v := YearValidator(func() time.Time { return time.Date(1999, 6, 1, 0, 0, 0, 0, time.UTC) })
	if _, ok := v("1999"); !ok {
		t.Fatalf("current year rejected")
	}
	if _, ok := v("2000"); ok {
		t.Fatalf("future year accepted")
	}
}

func TestImageValidator(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "dune.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "covers"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	v := ImageValidator(dir)

	if got, ok := v("dune.png"); !ok || got != "dune.png" {
		t.Fatalf("existing image rejected")
	}
	for _, name := range []string{"missing.png", "covers", "", "../dune.png"} {
		if _, ok := v(name); ok {
			t.Fatalf("%q accepted", name)
		}
	}
}
