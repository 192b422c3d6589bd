package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/wtmobile/internal/app"
	"github.com/roach88/wtmobile/internal/gym"
	"github.com/roach88/wtmobile/internal/render"
)

// FormOptions holds the form flags shared by add and edit.
type FormOptions struct {
	*RootOptions
	Name  string
	City  string
	Notes string
}

func addFormFlags(cmd *cobra.Command, opts *FormOptions) {
	cmd.Flags().StringVar(&opts.Name, "name", "", "gym name")
	cmd.Flags().StringVar(&opts.City, "city", "", "city (optional)")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "free-text notes (optional)")
}

// savedResult is the JSON payload for add and edit.
type savedResult struct {
	Gym  gym.Gym   `json:"gym"`
	Gyms []gym.Gym `json:"gyms"`
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FormOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a gym",
		Long: `Add a gym to the local database.

The name is required; city and notes are optional. Surrounding whitespace is
trimmed and empty optional fields are stored as absent.

Example:
  wtmobile add --name "Anytime Madrid" --city Madrid
  wtmobile add --name PowerHouse --notes "24/7, great racks"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, cmd)
		},
	}
	addFormFlags(cmd, opts)

	return cmd
}

func runAdd(opts *FormOptions, cmd *cobra.Command) error {
	s, err := openSession(cmd.Context(), opts.RootOptions, cmd, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer s.Close()

	s.ctrl.SetDraft(gym.Draft{Name: opts.Name, City: opts.City, Notes: opts.Notes})
	saved, err := s.ctrl.Submit(cmd.Context())
	if err != nil {
		return s.fail(err)
	}

	return s.out.Success(savedResult{Gym: saved, Gyms: s.ctrl.Gyms()}, func(w io.Writer) error {
		fmt.Fprintf(w, "Added %s (%s)\n\n", saved.Name, saved.ID)
		return render.List(w, s.ctrl.View())
	})
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FormOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit <gym>",
		Short: "Edit a gym",
		Long: `Edit a gym, keeping its id and creation time.

<gym> is a position in the list (1 is the most recent), an id, or a unique
id prefix. Only the fields given as flags change; pass an empty value
(--city "") to clear an optional field.

Example:
  wtmobile edit 2 --city "Madrid Centro"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(opts, args[0], cmd)
		},
	}
	addFormFlags(cmd, opts)

	return cmd
}

func runEdit(opts *FormOptions, ref string, cmd *cobra.Command) error {
	s, err := openSession(cmd.Context(), opts.RootOptions, cmd, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer s.Close()

	target, err := s.ctrl.Resolve(ref)
	if err != nil {
		return s.fail(err)
	}
	if err := s.ctrl.StartEdit(target.ID); err != nil {
		return s.fail(err)
	}

	flags := cmd.Flags()
	for field, value := range map[app.Field]string{
		app.FieldName:  opts.Name,
		app.FieldCity:  opts.City,
		app.FieldNotes: opts.Notes,
	} {
		if !flags.Changed(string(field)) {
			continue
		}
		if err := s.ctrl.SetField(field, value); err != nil {
			return s.fail(err)
		}
	}

	saved, err := s.ctrl.Submit(cmd.Context())
	if err != nil {
		return s.fail(err)
	}

	return s.out.Success(savedResult{Gym: saved, Gyms: s.ctrl.Gyms()}, func(w io.Writer) error {
		fmt.Fprintf(w, "Saved %s (%s)\n\n", saved.Name, saved.ID)
		return render.List(w, s.ctrl.View())
	})
}

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	Yes bool
}

// deleteResult is the JSON payload for delete.
type deleteResult struct {
	ID      string    `json:"id"`
	Deleted bool      `json:"deleted"`
	Gyms    []gym.Gym `json:"gyms"`
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <gym>",
		Short: "Delete a gym",
		Long: `Delete a gym after confirmation.

Asks "Delete this gym? [y/N]" on the terminal unless --yes is given.
Declining leaves the database unchanged.

Example:
  wtmobile delete 1
  wtmobile delete 0190b6c2 --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args[0], cmd)
		},
	}
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func runDelete(opts *DeleteOptions, ref string, cmd *cobra.Command) error {
	s, err := openSession(cmd.Context(), opts.RootOptions, cmd, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer s.Close()

	target, err := s.ctrl.Resolve(ref)
	if err != nil {
		return s.fail(err)
	}

	var confirm app.Confirmer = app.AlwaysConfirm
	if !opts.Yes {
		confirm = &promptConfirmer{in: bufioReader(cmd.InOrStdin()), out: s.out.GetErrWriter()}
	}

	deleted, err := s.ctrl.Delete(cmd.Context(), target.ID, confirm)
	if err != nil {
		return s.fail(err)
	}

	return s.out.Success(deleteResult{ID: target.ID, Deleted: deleted, Gyms: s.ctrl.Gyms()}, func(w io.Writer) error {
		if !deleted {
			_, err := fmt.Fprintf(w, "Kept %s.\n", target.Name)
			return err
		}
		fmt.Fprintf(w, "Deleted %s (%s)\n\n", target.Name, target.ID)
		return render.List(w, s.ctrl.View())
	})
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List gyms, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(cmd.Context(), opts, cmd, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.out.Success(s.ctrl.Gyms(), func(w io.Writer) error {
		return render.List(w, s.ctrl.View())
	})
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <gym>",
		Short: "Show one gym in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], cmd)
		},
	}
}

func runShow(opts *RootOptions, ref string, cmd *cobra.Command) error {
	s, err := openSession(cmd.Context(), opts, cmd, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer s.Close()

	g, err := s.ctrl.Resolve(ref)
	if err != nil {
		return s.fail(err)
	}
	return s.out.Success(g, func(w io.Writer) error {
		return render.Gym(w, g)
	})
}
