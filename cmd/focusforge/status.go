package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/thebtf/focusforge/internal/config"
	"github.com/thebtf/focusforge/pkg/client"
	"github.com/thebtf/focusforge/pkg/models"
)

const statusListLimit = 10

// workerClient resolves the worker URL from --url or the configured address.
func workerClient(url string) *client.Client {
	if url != "" {
		return client.New(url)
	}
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	return client.ForAddr(cfg.Host, cfg.Port)
}

func newStatusCmd() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show worker health and recent sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := workerClient(url)
			h, err := c.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("worker not reachable at %s: %w", c.BaseURL(), err)
			}
			sessions, err := c.ListSessions(cmd.Context(), statusListLimit)
			if err != nil {
				return err
			}
			writeStatus(cmd.OutOrStdout(), c.BaseURL(), h, sessions)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Worker base URL (default from config)")
	return cmd
}

func writeStatus(w io.Writer, url string, h *client.Health, sessions []models.Session) {
	fmt.Fprintf(w, "worker   %s (%s)\n", url, h.Status)
	fmt.Fprintf(w, "version  %s\n", h.Version)
	fmt.Fprintf(w, "uptime   %s\n", h.Uptime)
	fmt.Fprintf(w, "active   %d\n", h.ActiveSessions)

	if len(sessions) == 0 {
		fmt.Fprintln(w, "\nno sessions")
		return
	}
	fmt.Fprintln(w)
	for _, s := range sessions {
		started := time.UnixMilli(s.StartedAt).Local().Format("2006-01-02 15:04")
		fmt.Fprintf(w, "%-36s  %-10s  %s  %s\n", s.ID, s.Status, started, s.IntentRaw)
	}
}

func newPlanCmd() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "plan <session-id>",
		Short: "Print the task plan for a session from the worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := workerClient(url).Plan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			writePlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Worker base URL (default from config)")
	return cmd
}

func writePlan(w io.Writer, plan *models.TaskPlan) {
	if len(plan.PrioritizedTasks) == 0 {
		fmt.Fprintln(w, "no tasks")
	}
	for i, t := range plan.PrioritizedTasks {
		fmt.Fprintf(w, "%d. [%s/%s] %s (%s)\n", i+1, t.Priority, t.Urgency, t.Title, t.EstimatedTime)
	}
	for _, s := range plan.Suggestions {
		fmt.Fprintf(w, "- %s\n", s)
	}
}

func newJournalCmd() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "journal <session-id>",
		Short: "Print the journal entry for a session from the worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			md, err := workerClient(url).Journal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), md)
			return err
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Worker base URL (default from config)")
	return cmd
}
