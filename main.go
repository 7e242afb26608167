package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"bookstore-management/config"
	"bookstore-management/logging"
	"bookstore-management/store"
)

const serviceName = "bookstore"

type rootOptions struct {
	envFile     string
	resourceDir string
	backend     string
	logLevel    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "bookstore",
		Short:         "Bookstore inventory and cart manager",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, opts)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.envFile, "env-file", ".env", "optional .env file with BOOKSTORE_* settings")
	pf.StringVar(&opts.resourceDir, "resources", "", "resource directory (default ./resources)")
	pf.StringVar(&opts.backend, "backend", "", "storage backend: csv or sqlite")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		&cobra.Command{
			Use:   "shell",
			Short: "Start the interactive bookstore",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runShell(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "books",
			Short: "Print the catalog",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runBooks(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "admin-password",
			Short: "Set the administrator password",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runAdminPassword(cmd, opts)
			},
		},
	)
	return root
}

// loadConfig layers the flags over the .env file and environment.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("resources") {
		cfg.ResourceDir = opts.resourceDir
		cfg.DataDir = filepath.Join(opts.resourceDir, "dat")
		cfg.ImageDir = filepath.Join(opts.resourceDir, "img", "books")
		cfg.SQLitePath = filepath.Join(cfg.DataDir, "bookstore.db")
	}
	if flags.Changed("backend") {
		cfg.Backend = opts.backend
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, cfg.Validate()
}

// openStore checks the resource directory and opens the store. The caller closes both
// the manager and the logger.
func openStore(cmd *cobra.Command, opts *rootOptions) (*store.Manager, *zap.Logger, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.NewLogger(serviceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.CheckResources(); err != nil {
		log.Error("resources_missing", zap.String("dir", cfg.ResourceDir), zap.Error(err))
		_ = log.Sync()
		return nil, nil, err
	}
	mgr, err := store.Open(cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return mgr, log, nil
}

func runShell(cmd *cobra.Command, opts *rootOptions) error {
	mgr, log, err := openStore(cmd, opts)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer mgr.Close()

	newShell(mgr, cmd.InOrStdin(), cmd.OutOrStdout(), log).run()
	return nil
}

func runBooks(cmd *cobra.Command, opts *rootOptions) error {
	mgr, log, err := openStore(cmd, opts)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer mgr.Close()

	s := newShell(mgr, strings.NewReader(""), cmd.OutOrStdout(), log)
	s.handleListBooks()
	return nil
}

func runAdminPassword(cmd *cobra.Command, opts *rootOptions) error {
	mgr, log, err := openStore(cmd, opts)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer mgr.Close()

	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	password, err := readSecret(in, out, "New admin password: ")
	if err != nil {
		return err
	}
	if err := mgr.SetAdminPassword(password); err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			return errors.New(verr.Message)
		}
		return err
	}
	fmt.Fprintln(out, "Admin password updated.")
	return nil
}

// readSecret reads one line, masked when in is a terminal.
func readSecret(in io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", errors.New("no password given")
	}
	return strings.TrimSpace(sc.Text()), nil
}
