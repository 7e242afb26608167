package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bookstore-management/config"
	"bookstore-management/logging"
	"bookstore-management/store"
)

const defaultSeedFile = "resources/seed/books.csv"

func main() {
	var (
		envFile string
		replace bool
	)
	cmd := &cobra.Command{
		Use:          "import_books [seed.csv]",
		Short:        "Bulk-load books into the bookstore catalog",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed := defaultSeedFile
			if len(args) == 1 {
				seed = args[0]
			}
			return run(cmd.OutOrStdout(), envFile, seed, replace)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional .env file with BOOKSTORE_* settings")
	cmd.Flags().BoolVar(&replace, "replace", false, "delete every existing book before importing")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(out io.Writer, envFile, seed string, replace bool) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	log, err := logging.NewLogger("bookstore-import", cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := cfg.CheckResources(); err != nil {
		return err
	}
	mgr, err := store.Open(cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer mgr.Close()

	if replace {
		fmt.Fprintln(out, "Removing existing books...")
		for _, b := range mgr.Books() {
			if err := mgr.RemoveBook(b.ID); err != nil {
				return fmt.Errorf("remove book %d: %w", b.ID, err)
			}
		}
	}

	f, err := os.Open(seed)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(out, "Importing books from %s...\n", seed)
	ok, failed := importRows(out, mgr, f, log)

	fmt.Fprintf(out, "\nImport complete!\n")
	fmt.Fprintf(out, "Successfully imported: %d books\n", ok)
	fmt.Fprintf(out, "Errors: %d\n", failed)

	if ok > 0 {
		fmt.Fprintln(out, "\nCatalog:")
		fmt.Fprintf(out, "%-4s %-50s %-30s\n", "ID", "Title", "Author")
		fmt.Fprintln(out, strings.Repeat("-", 86))
		for _, b := range mgr.Books() {
			fmt.Fprintf(out, "%-4d %-50s %-30s\n", b.ID, truncateString(b.Title, 50), truncateString(b.Author, 30))
		}
	}
	return nil
}

// importRows adds one book per CSV record, in book form order. A header row whose first
// field is "title" is skipped.
func importRows(out io.Writer, mgr *store.Manager, r io.Reader, log *zap.Logger) (ok, failed int) {
	log = logging.OrNop(log)
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	for line := 1; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return ok, failed
		}
		if err != nil {
			fmt.Fprintf(out, "Line %d: ERROR - %v\n", line, err)
			failed++
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "title") {
			continue
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}

		fmt.Fprintf(out, "Importing: %s... ", record[0])
		b, err := mgr.AddBook(record)
		if err != nil {
			var verr *store.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintf(out, "ERROR - %s: %s\n", verr.Field, verr.Message)
			} else {
				fmt.Fprintf(out, "ERROR - %v\n", err)
			}
			log.Debug("import_row_failed", zap.Int("line", line), zap.Error(err))
			failed++
			continue
		}
		fmt.Fprintf(out, "SUCCESS (ID: %d)\n", b.ID)
		ok++
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
