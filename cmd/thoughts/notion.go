package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbaille/thoughts/internal/domain"
)

func notionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notion",
		Short: "Sync todos with a Notion database",
	}

	cmd.AddCommand(notionSetupCmd())
	cmd.AddCommand(notionTestCmd())
	cmd.AddCommand(notionPushCmd())
	cmd.AddCommand(notionPullCmd())
	return cmd
}

func notionSetupCmd() *cobra.Command {
	var in domain.NotionSettings

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Store the Notion token and database",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			saved, err := a.notion().SaveSettings(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Printf("Notion database %s saved (sync enabled: %t)\n", saved.DatabaseID, saved.SyncEnabled)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Token, "token", "", "Notion integration token")
	cmd.Flags().StringVar(&in.DatabaseID, "database", "", "Notion database id")
	cmd.Flags().BoolVar(&in.SyncEnabled, "sync", false, "push todos on the serve schedule")
	cmd.MarkFlagRequired("database")
	return cmd
}

func notionTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Check the stored Notion credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			db, err := a.notion().TestConnection(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Connected to %q\n%s\n", db.Title, db.URL)
			return nil
		},
	}
}

func notionPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Push todos not yet in Notion",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.notion().Push(cmd.Context())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("Nothing to push.")
				return nil
			}
			for _, r := range results {
				if r.Success {
					fmt.Printf("ok     %s -> %s\n", shortID(r.ID), r.NotionPageID)
				} else {
					fmt.Printf("failed %s: %s\n", shortID(r.ID), r.Error)
				}
			}
			return nil
		},
	}
}

func notionPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "List the todos held in Notion",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			todos, err := a.notion().Pull(cmd.Context())
			if err != nil {
				return err
			}
			if len(todos) == 0 {
				fmt.Println("No todos in Notion.")
				return nil
			}
			printTodos(todos)
			return nil
		},
	}
}
