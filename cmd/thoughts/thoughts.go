package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbaille/thoughts/internal/fetcher"
	"github.com/pbaille/thoughts/internal/store"
)

func addCmd() *cobra.Command {
	var tags string

	cmd := &cobra.Command{
		Use:   "add [content or url]",
		Short: "Add a new thought; a single URL captures the page text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			add := a.journal.AddThought
			if fetcher.IsURL(content) {
				fmt.Print("Fetching... ")
				add = a.journal.CaptureURL
			}
			note, err := add(cmd.Context(), content, store.ParseTags(tags))
			if err != nil {
				return err
			}

			fmt.Printf("Added thought: %s\n", shortID(note.ID))
			fmt.Printf("Content: %s\n", truncate(note.Content, 80))
			return nil
		},
	}

	cmd.Flags().StringVarP(&tags, "tags", "t", "", "tags separated by commas or spaces")
	return cmd
}

func listCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent thoughts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			notes, err := a.journal.Thoughts(cmd.Context())
			if err != nil {
				return err
			}

			if len(notes) == 0 {
				fmt.Println("No thoughts yet. Use 'thoughts add' to create one.")
				return nil
			}

			for i, n := range notes {
				if i == limit {
					break
				}
				fmt.Printf("%s  %s\n", shortID(n.ID), truncate(n.Content, 60))
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of thoughts to show")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show thought details",
		Args:  cobra.ExactArgs(1),
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

			fmt.Printf("ID:      %s\n", note.ID)
			fmt.Printf("Created: %s\n", note.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Printf("Content:\n%s\n", note.Content)

			if len(note.Tags) > 0 {
				fmt.Printf("\nTags: %s\n", strings.Join(note.Tags, ", "))
			}
			if n := len(note.Transcript()); n > 0 {
				fmt.Printf("\nConversation: %d messages\n", n)
			}
			if len(note.GeneratedActions) > 0 {
				fmt.Printf("\nActions:\n")
				printActions(note.GeneratedActions)
			}

			return nil
		},
	}
}

func editCmd() *cobra.Command {
	var (
		content string
		tags    string
	)

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a thought's content or tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch store.NotePatch
			if cmd.Flags().Changed("content") {
				patch.Content = &content
			}
			if cmd.Flags().Changed("tags") {
				parsed := store.ParseTags(tags)
				patch.Tags = &parsed
			}
			if patch.Content == nil && patch.Tags == nil {
				return fmt.Errorf("nothing to edit: pass --content or --tags")
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			note, err := a.journal.Thought(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			note, err = a.journal.EditThought(cmd.Context(), note.ID, patch)
			if err != nil {
				return err
			}

			fmt.Printf("Updated thought: %s\n", shortID(note.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&content, "content", "c", "", "new content")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "new tags separated by commas or spaces")
	return cmd
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a thought",
		Args:  cobra.ExactArgs(1),
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
			if err := a.journal.DeleteThought(cmd.Context(), note.ID); err != nil {
				return err
			}

			fmt.Printf("Deleted thought: %s\n", shortID(note.ID))
			return nil
		},
	}
}

func tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List all tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			tags := a.journal.Tags()
			if len(tags) == 0 {
				fmt.Println("No tags yet. Use 'thoughts add --tags' to tag a thought.")
				return nil
			}

			for _, t := range tags {
				fmt.Printf("%-20s %d\n", t.Name, t.Count)
			}

			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search thoughts by content or tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			notes, err := a.journal.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if len(notes) == 0 {
				fmt.Println("No matching thoughts found.")
				return nil
			}

			for _, n := range notes {
				fmt.Printf("%s  %s\n", shortID(n.ID), truncate(n.Content, 60))
			}

			return nil
		},
	}
}
