package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/mindmap"
)

func chatCmd() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "chat [thought id] [message]",
		Short: "Talk a thought through with the AI partner",
		Long: "Sends one message when given, otherwise reads messages from stdin\n" +
			"until EOF. The transcript is stored with the thought.",
		Args: cobra.MinimumNArgs(1),
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
			if reset {
				if _, err := a.journal.ResetConversation(cmd.Context(), note.ID); err != nil {
					return err
				}
				fmt.Println("Conversation cleared.")
			}

			send := func(message string) error {
				_, err := a.journal.Converse(cmd.Context(), note.ID, message, func(delta string) {
					fmt.Print(delta)
				})
				fmt.Println()
				return err
			}

			if len(args) > 1 {
				return send(strings.Join(args[1:], " "))
			}

			note, err = a.journal.StartConversation(cmd.Context(), note.ID)
			if err != nil {
				return err
			}
			for _, m := range note.Transcript() {
				if m.Role == domain.RoleAssistant {
					fmt.Printf("ai> %s\n", m.Content)
				} else if m.Role == domain.RoleUser {
					fmt.Printf("you> %s\n", m.Content)
				}
			}

			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("you> ")
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line != "" {
					fmt.Print("ai> ")
					if err := send(line); err != nil {
						return err
					}
				}
				fmt.Print("you> ")
			}
			fmt.Println()
			return scanner.Err()
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "clear the conversation first")
	return cmd
}

func mindmapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mindmap [thought id]",
		Short: "Print the mind map of a thought and its conversation",
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

			fmt.Print(mindmap.Build(note.Content, note.Transcript()).Outline())
			return nil
		},
	}
}
