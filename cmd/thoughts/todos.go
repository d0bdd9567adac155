package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/store"
)

func todoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Manage todos",
	}

	cmd.AddCommand(todoAddCmd())
	cmd.AddCommand(todoListCmd())
	cmd.AddCommand(todoDoneCmd())
	cmd.AddCommand(todoRmCmd())
	cmd.AddCommand(todoScheduleCmd())
	return cmd
}

func printTodos(todos []domain.Todo) {
	for _, t := range todos {
		mark := " "
		if t.Done {
			mark = "x"
		}
		when := t.Date()
		if t.StartTime != "" {
			when += " " + t.StartTime
		} else if t.ScheduledTime != "" {
			when += " " + t.ScheduledTime
		}
		fmt.Printf("[%s] %s  %-16s %s\n", mark, shortID(t.ID), when, truncate(t.Content, 60))
	}
}

// findTodo resolves a todo by id or id prefix
func findTodo(todos []domain.Todo, idOrPrefix string) (*domain.Todo, error) {
	var found *domain.Todo
	for i := range todos {
		if todos[i].ID == idOrPrefix {
			return &todos[i], nil
		}
		if strings.HasPrefix(todos[i].ID, idOrPrefix) {
			if found != nil {
				return nil, fmt.Errorf("todo id %s is ambiguous", idOrPrefix)
			}
			found = &todos[i]
		}
	}
	if found == nil {
		return nil, fmt.Errorf("todo not found: %s", idOrPrefix)
	}
	return found, nil
}

func todoAddCmd() *cobra.Command {
	var (
		date    string
		at      string
		thought string
	)

	cmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Add a todo",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var todo *domain.Todo
			if thought != "" {
				note, err := a.journal.Thought(cmd.Context(), thought)
				if err != nil {
					return err
				}
				todo, err = a.journal.TodoFromThought(cmd.Context(), note.ID)
				if err != nil {
					return err
				}
			} else {
				todo, err = a.journal.AddTodo(cmd.Context(), store.TodoInput{
					Content:       strings.Join(args, " "),
					ScheduledDate: date,
					ScheduledTime: at,
				})
				if err != nil {
					return err
				}
			}

			fmt.Printf("Added todo: %s  %s\n", shortID(todo.ID), truncate(todo.Content, 60))
			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "scheduled date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&at, "at", "", "scheduled time (HH:MM)")
	cmd.Flags().StringVar(&thought, "from", "", "create the todo from a thought's content")
	return cmd
}

func todoListCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var todos []domain.Todo
			if date != "" {
				todos, err = a.journal.TodosOn(cmd.Context(), date)
			} else {
				todos, err = a.journal.Todos(cmd.Context())
			}
			if err != nil {
				return err
			}

			if len(todos) == 0 {
				fmt.Println("No todos.")
				return nil
			}
			printTodos(todos)
			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "only todos on this date (YYYY-MM-DD, today, tomorrow)")
	return cmd
}

func todoDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [id]",
		Short: "Toggle a todo's done state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			todos, err := a.journal.Todos(cmd.Context())
			if err != nil {
				return err
			}
			todo, err := findTodo(todos, args[0])
			if err != nil {
				return err
			}
			todo, err = a.journal.ToggleTodo(cmd.Context(), todo.ID)
			if err != nil {
				return err
			}

			printTodos([]domain.Todo{*todo})
			return nil
		},
	}
}

func todoRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			todos, err := a.journal.Todos(cmd.Context())
			if err != nil {
				return err
			}
			todo, err := findTodo(todos, args[0])
			if err != nil {
				return err
			}
			if err := a.journal.DeleteTodo(cmd.Context(), todo.ID); err != nil {
				return err
			}

			fmt.Printf("Deleted todo: %s\n", shortID(todo.ID))
			return nil
		},
	}
}

func todoScheduleCmd() *cobra.Command {
	var sched domain.Schedule

	cmd := &cobra.Command{
		Use:   "schedule [thought id] [action id]",
		Short: "Schedule an action of a thought's plan and save it as a todo",
		Args:  cobra.ExactArgs(2),
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
			todo, err := a.journal.ScheduleAction(cmd.Context(), note.ID, args[1], sched)
			if err != nil {
				return err
			}

			printTodos([]domain.Todo{*todo})
			return nil
		},
	}

	cmd.Flags().StringVar(&sched.StartDate, "date", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&sched.StartTime, "at", "", "start time (HH:MM)")
	cmd.Flags().StringVar(&sched.EndDate, "end-date", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&sched.EndTime, "end-at", "", "end time (HH:MM)")
	cmd.MarkFlagRequired("date")
	cmd.MarkFlagRequired("at")
	return cmd
}
