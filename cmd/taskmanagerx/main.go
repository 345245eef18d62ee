package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Joseda-hg/taskmanagerx/internal/tui"
	"github.com/Joseda-hg/taskmanagerx/internal/web"
)

type options struct {
	configPath string
	dbPath     string
	web        bool
	webOnly    bool
	port       int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "taskmanagerx",
		Short: "TaskManagerX - atividades, responsáveis e prazos da sua empresa",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd.Context(), opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file path")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "sqlite db path")
	root.Flags().BoolVar(&opts.web, "web", false, "enable web server")
	root.Flags().BoolVar(&opts.webOnly, "web-only", false, "run web server only")
	root.Flags().IntVar(&opts.port, "port", 0, "web server port")

	root.AddCommand(newSummaryCmd(opts))
	root.AddCommand(newSweepCmd(opts))
	root.AddCommand(newResetCmd(opts))
	root.AddCommand(newNotifyCmd(opts))
	return root
}

func runDashboard(ctx context.Context, opts *options) error {
	a, err := openApp(ctx, opts, !opts.webOnly)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := a.platform.Run(ctx); err != nil {
			a.logger.Error("notification dispatcher", zap.Error(err))
		}
	}()

	if a.cfg.WebEnabled || opts.webOnly {
		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", a.cfg.WebPort),
			Handler:           web.NewServer(a.manager, a.cfg.Locale).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = server.Shutdown(shutdownCtx)
		}()

		if opts.webOnly {
			fmt.Printf("Web server running at http://localhost%s\n", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}

		go func() {
			a.logger.Info("web server running", zap.String("addr", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("web server", zap.Error(err))
			}
		}()
	}

	return tui.Run(ctx, a.manager, a.cfg.Locale)
}
