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
	"github.com/roach88/wtmobile/internal/render"
)

const shellHelp = `Commands:
  name <text>     set the name field
  city <text>     set the city field (empty clears)
  notes <text>    set the notes field (empty clears)
  submit          add the gym, or save changes when editing
  edit <gym>      load a gym into the form (position, id or id prefix)
  delete <gym>    delete a gym after confirmation
  cancel          clear the form and stop editing
  list            redraw the page
  help            show this help
  quit            leave the shell`

// NewShellCommand creates the shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive form over the gym list",
		Long: `Start an interactive session with the add/edit form and the gym list.

Set fields with name/city/notes, then submit. The page is redrawn after every
command. Type help for the command list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(rootOpts, cmd)
		},
	}
}

func runShell(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(cmd.Context(), opts, cmd, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer s.Close()

	sh := &shell{
		ctrl: s.ctrl,
		in:   bufioReader(cmd.InOrStdin()),
		out:  s.out,
	}
	return sh.run(cmd.Context())
}

// shell is a line-oriented front end for one controller.
type shell struct {
	ctrl *app.Controller
	in   *bufio.Reader
	out  *OutputFormatter
}

func (sh *shell) run(ctx context.Context) error {
	if err := sh.draw(); err != nil {
		return err
	}

	for {
		if !sh.out.IsJSON() {
			fmt.Fprint(sh.out.Writer, "> ")
		}
		line, err := sh.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return WrapExitError(ExitCommandError, "read input", err)
		}
		eof := errors.Is(err, io.EOF)

		if strings.TrimSpace(line) != "" {
			quit, cmdErr := sh.exec(ctx, line)
			if cmdErr != nil {
				return cmdErr
			}
			if quit {
				return nil
			}
		}
		if eof {
			if !sh.out.IsJSON() {
				fmt.Fprintln(sh.out.Writer)
			}
			return nil
		}
	}
}

// exec runs one input line. Rejected input is reported and the loop goes on;
// only storage failures end the session.
func (sh *shell) exec(ctx context.Context, line string) (quit bool, err error) {
	line = strings.TrimRight(line, "\r\n")
	verb, rest, _ := strings.Cut(strings.TrimLeft(line, " \t"), " ")

	switch strings.ToLower(verb) {
	case "quit", "exit":
		return true, nil

	case "help", "?":
		fmt.Fprintln(sh.out.GetErrWriter(), shellHelp)
		return false, nil

	case "name", "city", "notes":
		if err := sh.ctrl.SetField(app.Field(strings.ToLower(verb)), rest); err != nil {
			return false, err
		}

	case "submit", "save":
		saved, err := sh.ctrl.Submit(ctx)
		switch {
		case errors.Is(err, gym.ErrNameRequired):
			// Message is part of the redrawn form.
		case err != nil:
			return false, WrapExitError(ExitCommandError, "storage error", err)
		default:
			fmt.Fprintf(sh.out.GetErrWriter(), "saved %s (%s)\n", saved.Name, saved.ID)
		}

	case "edit":
		g, err := sh.ctrl.Resolve(rest)
		if err == nil {
			err = sh.ctrl.StartEdit(g.ID)
		}
		if err != nil {
			_ = sh.out.Error(ErrCodeUnknownGym, err.Error(), nil)
			return false, nil
		}

	case "delete", "rm":
		g, err := sh.ctrl.Resolve(rest)
		if err != nil {
			_ = sh.out.Error(ErrCodeUnknownGym, err.Error(), nil)
			return false, nil
		}
		confirm := &promptConfirmer{in: sh.in, out: sh.out.GetErrWriter()}
		if _, err := sh.ctrl.Delete(ctx, g.ID, confirm); err != nil {
			return false, WrapExitError(ExitCommandError, "storage error", err)
		}

	case "cancel":
		sh.ctrl.Cancel()

	case "list", "ls":
		// Redraw only.

	default:
		_ = sh.out.Error(ErrCodeGeneric, fmt.Sprintf("unknown command %q (try help)", verb), nil)
		return false, nil
	}

	return false, sh.draw()
}

func (sh *shell) draw() error {
	view := sh.ctrl.View()
	return sh.out.Success(view, func(w io.Writer) error {
		return render.Page(w, view)
	})
}

// bufioReader reuses r when it is already buffered, so prompts inside a
// session read from the same stream as the session itself.
func bufioReader(r io.Reader) *bufio.Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return br
	}
	return bufio.NewReader(r)
}
