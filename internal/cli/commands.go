package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/todo/internal/model"
	"github.com/Makepad-fr/todo/internal/ui"
)

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a new item (title can be multiple words)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usagef("usage: todo add <title...>")
			}
			st, err := a.todos()
			if err != nil {
				return err
			}
			_, added, err := st.Add(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if !added {
				return usagef("add: empty title")
			}
			ui.OK(a.stdout, "added")
			return nil
		},
	}
}

func (a *app) lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List items, pending first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("usage: todo ls")
			}
			st, err := a.todos()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, ui.Panel(listLines(st.DisplayOrder(), a.cfg.UI.Group)))
			return nil
		},
	}
}

func (a *app) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "done <index>",
		Aliases: []string{"toggle"},
		Short:   "Toggle done for the item at a 1-based index (as shown by ls)",
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := a.itemAt("done", args)
			if err != nil {
				return err
			}
			if _, err := a.store.Toggle(it.ID); err != nil {
				return err
			}
			ui.OK(a.stdout, "toggled")
			return nil
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <index>",
		Short: "Remove the item at a 1-based index (as shown by ls)",
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := a.itemAt("rm", args)
			if err != nil {
				return err
			}
			if _, err := a.store.Delete(it.ID); err != nil {
				return err
			}
			ui.OK(a.stdout, "removed")
			return nil
		},
	}
}

func (a *app) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all completed items",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("usage: todo clear")
			}
			st, err := a.todos()
			if err != nil {
				return err
			}
			n, err := st.ClearCompleted()
			if err != nil {
				return err
			}
			ui.OK(a.stdout, fmt.Sprintf("cleared %d completed", n))
			return nil
		},
	}
}

func (a *app) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(a)
		},
	}
}

// itemAt resolves a 1-based display index argument to an item.
func (a *app) itemAt(op string, args []string) (model.Item, error) {
	if len(args) != 1 {
		return model.Item{}, usagef("usage: todo %s <index>", op)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return model.Item{}, usagef("%s: not a number: %s", op, args[0])
	}
	st, err := a.todos()
	if err != nil {
		return model.Item{}, err
	}
	view := st.DisplayOrder()
	if n < 1 || n > len(view) {
		return model.Item{}, usagef("index out of range: have %d, got %d (run `todo ls` to see valid indexes)", len(view), n)
	}
	return view[n-1], nil
}
