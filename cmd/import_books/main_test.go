package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bookstore-management/store"
)

func TestImportRows(t *testing.T) {
	dir := t.TempDir()
	images := filepath.Join(dir, "img")
	if err := os.MkdirAll(images, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(images, "dune.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	backend, err := store.NewFileBackend(filepath.Join(dir, "dat"), nil)
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	mgr, err := store.NewManager(store.Options{
		Backend:  backend,
		ImageDir: images,
		Clock:    func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("mgr: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	seed := strings.Join([]string{
		"title,price,quantity,trigger,genre,binding,author,year,image",
		"Dune, 12.50, 7, 2, Science Fiction, paperback, Frank Herbert, 1965, dune.png",
		"Bad Price,500,1,1,Fiction,Paperback,Anon,2000,dune.png",
		"\"Eats, Shoots\",9,1,1,Grammar,Hardcover,Lynne Truss,2003,dune.png",
		"Short,1",
	}, "\n")

	var out bytes.Buffer
	ok, failed := importRows(&out, mgr, strings.NewReader(seed), nil)
	if ok != 1 || failed != 3 {
		t.Fatalf("ok=%d failed=%d\n%s", ok, failed, out.String())
	}
	if !strings.Contains(out.String(), "Price: Please enter a valid price below $200.") {
		t.Fatalf("missing validation message:\n%s", out.String())
	}
	books := mgr.Books()
	if len(books) != 1 || books[0].Title != "Dune" || books[0].Binding != "Paperback" {
		t.Fatalf("books: %+v", books)
	}
}
