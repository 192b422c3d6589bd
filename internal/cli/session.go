package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/wtmobile/internal/app"
	"github.com/roach88/wtmobile/internal/gym"
	"github.com/roach88/wtmobile/internal/store"
)

// session is one opened database plus a controller loaded from it.
type session struct {
	store  *store.Store
	ctrl   *app.Controller
	logger *slog.Logger
	out    *OutputFormatter
}

// newLogger builds the stderr text logger. Verbose lowers the level to Debug.
func newLogger(w io.Writer, verbose bool, level slog.Level) *slog.Logger {
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openSession opens the configured database and loads the initial snapshot.
func openSession(ctx context.Context, opts *RootOptions, cmd *cobra.Command, level slog.Level) (*session, error) {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose, level)
	out := newFormatter(opts, cmd)

	logger.Debug("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		_ = out.Error(ErrCodeStorage, "failed to open database: "+err.Error(), nil)
		return nil, reportedExitError(ExitCommandError, "failed to open database", err)
	}

	ctrlOpts := []app.Option{app.WithLogger(logger)}
	if opts.Clock != nil {
		ctrlOpts = append(ctrlOpts, app.WithClock(opts.Clock))
	}
	if opts.IDs != nil {
		ctrlOpts = append(ctrlOpts, app.WithIDGenerator(opts.IDs))
	}
	ctrl := app.New(st, ctrlOpts...)

	if err := ctrl.Load(ctx); err != nil {
		st.Close()
		_ = out.Error(ErrCodeStorage, "failed to read gyms: "+err.Error(), nil)
		return nil, reportedExitError(ExitCommandError, "failed to read gyms", err)
	}

	return &session{store: st, ctrl: ctrl, logger: logger, out: out}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// fail reports err in the configured format and maps it to an exit code.
func (s *session) fail(err error) error {
	switch {
	case errors.Is(err, gym.ErrNameRequired):
		_ = s.out.Error(ErrCodeValidation, app.NameRequiredMessage, nil)
		return reportedExitError(ExitFailure, "gym not saved", err)
	case errors.Is(err, app.ErrUnknownGym):
		_ = s.out.Error(ErrCodeUnknownGym, err.Error(), nil)
		return reportedExitError(ExitFailure, "gym not found", err)
	default:
		_ = s.out.Error(ErrCodeStorage, err.Error(), nil)
		return reportedExitError(ExitCommandError, "storage error", err)
	}
}

// promptConfirmer asks yes/no questions on a line-oriented terminal.
// Anything other than "y" or "yes" declines; end of input declines.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *promptConfirmer) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N] ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	if errors.Is(err, io.EOF) && line == "" {
		fmt.Fprintln(p.out)
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
