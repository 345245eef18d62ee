package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Joseda-hg/taskmanagerx/internal/dateutil"
	"github.com/Joseda-hg/taskmanagerx/internal/db"
	"github.com/Joseda-hg/taskmanagerx/internal/model"
	"github.com/Joseda-hg/taskmanagerx/internal/taskmanager"
)

const sweepInterval = time.Minute

func newSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print task counts and overdue tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			updatedAt, err := a.store.UpdatedAt(cmd.Context(), db.KeyTasks)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), a.manager, updatedAt, time.Now(), a.cfg.Locale)
			return nil
		},
	}
}

func printSummary(w io.Writer, manager *taskmanager.Manager, updatedAt, now time.Time, locale string) {
	if company := manager.Company(); company != nil {
		fmt.Fprintf(w, "%s (%s)\n", company.Name, company.CNPJ)
	} else {
		fmt.Fprintln(w, "Empresa não cadastrada")
	}

	summary := manager.TaskSummary()
	fmt.Fprintf(w, "Vencem hoje: %d | Atrasadas: %d | Pendentes: %d\n", summary.DueToday, summary.Overdue, summary.Pending)

	counts := manager.StatusCounts()
	for _, status := range model.Statuses {
		fmt.Fprintf(w, "  %-10s %d\n", dateutil.StatusLabel(status, locale), counts[status])
	}
	fmt.Fprintf(w, "Pessoas: %d | Lembretes ativos: %d\n", len(manager.People()), manager.RemindersActive())
	if !updatedAt.IsZero() {
		fmt.Fprintf(w, "Atividades atualizadas %s\n", humanize.RelTime(updatedAt, now, "ago", "from now"))
	}

	printOverdue(w, manager, now, locale)
}

func printOverdue(w io.Writer, manager *taskmanager.Manager, now time.Time, locale string) {
	overdue := manager.TasksByStatus(model.StatusOverdue)
	if len(overdue) == 0 {
		return
	}
	fmt.Fprintln(w, "\nAtrasadas:")
	for _, task := range overdue {
		owner, _ := manager.Person(task.PersonID)
		fmt.Fprintf(w, "  %s | %s | prazo %s\n", task.Title, owner.Name, dateutil.FormatRelative(task.Deadline, now, locale))
	}
}

func newSweepCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Mark tasks past their deadline as overdue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.manager.Refresh(cmd.Context()); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%d atividade(s) atrasada(s)\n", len(a.manager.TasksByStatus(model.StatusOverdue)))
			printOverdue(w, a.manager, time.Now(), a.cfg.Locale)
			return nil
		},
	}
}

func newResetCmd(opts *options) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase every company, person, task and setting",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirm {
				return errors.New("reset erases all data; pass --yes to confirm")
			}
			a, err := openApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.manager.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Dados apagados")
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "confirm the reset")
	return cmd
}

func newNotifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Deliver due notifications in the foreground",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Entregando notificações a cada %s (ctrl+c para sair)\n", a.cfg.Notifications.Interval())

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return a.platform.Run(ctx)
			})
			g.Go(func() error {
				return sweepLoop(ctx, a)
			})
			return g.Wait()
		},
	}
}

func sweepLoop(ctx context.Context, a *app) error {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n, err := a.manager.Refresh(ctx); err != nil {
				a.logger.Error("sweep overdue tasks", zap.Error(err))
			} else if n > 0 {
				a.logger.Info("tasks marked overdue", zap.Int("count", n))
			}
		}
	}
}
