package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/journal"
)

func printActions(actions []domain.ActionItem) {
	selected := journal.DefaultSelection(actions)
	for _, act := range actions {
		mark := " "
		if slices.Contains(selected, act.ID) {
			mark = "*"
		}
		fmt.Printf("%s %-20s [%-6s] %-8s %-15s %s\n", mark, act.ID, act.Priority, act.TimeEstimate, act.Category, act.Content)
		if act.Scheduled() {
			fmt.Printf("  %-20s scheduled %s %s\n", "", act.StartDate, act.StartTime)
		}
	}
}

func planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan [content]",
		Short: "Propose actions for free text without saving anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			actions := a.journal.PlanFor(cmd.Context(), strings.Join(args, " "), nil)
			if len(actions) == 0 {
				fmt.Println("No actions proposed.")
				return nil
			}
			printActions(actions)
			return nil
		},
	}
}

func actionsCmd() *cobra.Command {
	var (
		force bool
		save  []string
	)

	cmd := &cobra.Command{
		Use:   "actions [thought id]",
		Short: "Show or generate a thought's action plan",
		Long: "Shows the cached plan of a thought, generating it on first use.\n" +
			"Items marked * are preselected; --save stores actions as todos.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			note, err := a.journal.Thought(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Print("Thinking... ")
			actions, err := a.journal.GeneratePlan(cmd.Context(), note.ID, force)
			if err != nil {
				return err
			}
			fmt.Println("done")

			if len(actions) == 0 {
				fmt.Println("No actions proposed.")
				return nil
			}
			printActions(actions)

			if len(save) == 0 {
				return nil
			}
			if slices.Contains(save, "default") {
				save = journal.DefaultSelection(actions)
			}
			todos, err := a.journal.SaveSelected(cmd.Context(), note.ID, save)
			for _, t := range todos {
				fmt.Printf("Saved todo: %s  %s\n", shortID(t.ID), truncate(t.Content, 60))
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "regenerate even when a plan is cached")
	cmd.Flags().StringSliceVar(&save, "save", nil, "action ids to save as todos, or 'default' for the preselection")
	return cmd
}
