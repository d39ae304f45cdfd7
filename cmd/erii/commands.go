package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tgienger/erii/internal/app"
	"github.com/tgienger/erii/internal/console"
	"github.com/tgienger/erii/internal/models"
	"github.com/tgienger/erii/internal/parse"
	"github.com/tgienger/erii/internal/tasks"
)

// report narrates out. A failed save still shows the change before the
// error is returned.
func report(cmd *cobra.Command, out tasks.Outcome, err error) error {
	if err != nil && !errors.Is(err, app.ErrNotSaved) {
		return err
	}
	console.NewNarrator(cmd.OutOrStdout()).Outcome(out)
	return err
}

func (c *cli) listCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(svc *app.Service) error {
				if asJSON {
					return svc.Export(cmd.OutOrStdout())
				}
				console.NewNarrator(cmd.OutOrStdout()).List(svc.List())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the list as JSON")
	return cmd
}

func (c *cli) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <todo|deadline|event> <task...>",
		Short: "Add a task",
		Long: `Add a task. The task text follows the same formats as the menu:

  todo      <description> /<priority>
  deadline  <description> /by yyyy-MM-dd HH:mm /<priority>
  event     <description> /from yyyy-MM-dd /to yyyy-MM-dd /<priority>

Priorities are SS, S, A, B, C and D.`,
		Example: `  erii add todo read book /B
  erii add deadline submit report /by 2030-09-30 18:30 /SS`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parse.ParseKind(args[0])
			if err != nil {
				return err
			}
			return c.withService(cmd, func(svc *app.Service) error {
				out, err := svc.AddText(cmd.Context(), kind, strings.Join(args[1:], " "))
				return report(cmd, out, err)
			})
		},
	}
}

func (c *cli) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <task-number>",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parse.TaskNumber(args[0])
			if err != nil {
				return err
			}
			return c.withService(cmd, func(svc *app.Service) error {
				out, err := svc.MarkDone(cmd.Context(), index)
				return report(cmd, out, err)
			})
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <task-number>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parse.TaskNumber(args[0])
			if err != nil {
				return err
			}
			return c.withService(cmd, func(svc *app.Service) error {
				out, err := svc.Delete(cmd.Context(), index)
				return report(cmd, out, err)
			})
		},
	}
}

func (c *cli) findCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <keyword...>",
		Short: "Find tasks whose description contains a keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(svc *app.Service) error {
				console.NewNarrator(cmd.OutOrStdout()).Matches(svc.Find(strings.Join(args, " ")))
				return nil
			})
		},
	}
}

func (c *cli) onCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "on <yyyy-MM-dd> [HH:mm]",
		Short: "List events on a date, or deadlines due at a date and time",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			say := console.NewNarrator(cmd.OutOrStdout())
			if len(args) == 2 {
				dt, err := parse.ParseDateTime(args[0] + " " + args[1])
				if err != nil {
					return err
				}
				return c.withService(cmd, func(svc *app.Service) error {
					say.Deadlines(dt, svc.DeadlinesAt(dt))
					return nil
				})
			}
			d, err := parse.ParseDate(args[0])
			if err != nil {
				return err
			}
			return c.withService(cmd, func(svc *app.Service) error {
				say.Events(d, svc.EventsOn(d))
				return nil
			})
		},
	}
}

func (c *cli) sortCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "sort <priority|type>",
		Short:     "Sort the list by priority or by task type",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{app.SortPriority, app.SortType},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(svc *app.Service) error {
				out, err := svc.Sort(cmd.Context(), strings.ToLower(args[0]))
				if err := report(cmd, out, err); err != nil {
					return err
				}
				console.NewNarrator(cmd.OutOrStdout()).List(svc.List())
				return nil
			})
		},
	}
}

func (c *cli) priorityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "priority <task-number> <SS|S|A|B|C|D>",
		Short: "Change the priority of a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parse.TaskNumber(args[0])
			if err != nil {
				return err
			}
			p, err := models.ParsePriority(args[1])
			if err != nil {
				return err
			}
			return c.withService(cmd, func(svc *app.Service) error {
				out, err := svc.SetPriority(cmd.Context(), index, p)
				return report(cmd, out, err)
			})
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write all tasks as JSON to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(svc *app.Service) error {
				if len(args) == 0 {
					return svc.Export(cmd.OutOrStdout())
				}
				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				if err := svc.Export(f); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks to %s.\n", svc.Len(), args[0])
				return nil
			})
		},
	}
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Append tasks from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()
			return c.withService(cmd, func(svc *app.Service) error {
				n, err := svc.Import(cmd.Context(), f)
				if err != nil && !errors.Is(err, app.ErrNotSaved) {
					return err
				}
				console.NewNarrator(cmd.OutOrStdout()).Imported(n, svc.Len())
				return err
			})
		},
	}
}
