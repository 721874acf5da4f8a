package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"flashq/internal/config"
	"flashq/internal/flash"
	"flashq/internal/model"
	"flashq/internal/server"
	"flashq/internal/session"
	"flashq/internal/store"
	"flashq/internal/worker"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logger *zap.Logger
	cfg    *config.Config

	sessionID string
	category  string
	cssClass  string
)

var rootCmd = &cobra.Command{
	Use:   "flashq",
	Short: "flashq - one-shot flash messages kept in server-side sessions",
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the delivery worker and web server",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Setup Signal Handling (Ctrl+C)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		// Setup Manual 'q' input handling
		go func() {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				if scanner.Text() == "q" {
					fmt.Println(" 'q' pressed. Stopping...")
					cancel()
					return
				}
			}
		}()

		go func() {
			<-sigChan
			logger.Info("Shutting down...")
			cancel()
		}()

		mode, err := cfg.PresentationMode()
		if err != nil {
			logger.Fatal("Invalid configuration", zap.Error(err))
		}

		var backend worker.Backend
		if cfg.RedisAddr == "" {
			// No Redis: sessions and deliveries live in this process only
			logger.Warn("No Redis address configured, using in-memory sessions")
			backend = store.NewMemoryStore()
		} else {
			// Initialize Store (FULL MODE - Redis + Badger)
			st, err := store.NewHybridStore(cfg.RedisAddr, cfg.BadgerPath, cfg.SessionTTL)
			if err != nil {
				logger.Fatal("Failed to init store", zap.Error(err))
			}
			defer st.Close()
			backend = st
		}

		w := worker.NewWorker(backend, logger)
		go w.Start(ctx)

		srv, err := server.NewServer(backend, server.Options{
			Port:            cfg.Port,
			Mode:            mode,
			ShowCloseButton: cfg.CloseButton,
			CookieName:      cfg.CookieName,
			SessionTTL:      cfg.SessionTTL,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to init server", zap.Error(err))
		}
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Web server stopped", zap.Error(err))
				cancel()
			}
		}()

		logger.Info("Server running.", zap.Stringer("mode", mode))
		fmt.Println("Press 'q' + Enter or Ctrl+C to stop.")

		// Block until shutdown
		<-ctx.Done()

		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", zap.Error(err))
		}
		logger.Info("Goodbye!")
	},
}

var pushCmd = &cobra.Command{
	Use:   "push [message]",
	Short: "Queue a flash message for a browser session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := model.ParseCategory(category)
		if err != nil {
			logger.Fatal("Invalid category", zap.Error(err))
		}

		requireRedis()

		// Initialize Store (CLIENT MODE - Redis Only)
		// Passing "" as the badger path ensures we don't try to open the BadgerDB file lock.
		st, err := store.NewHybridStore(cfg.RedisAddr, "", cfg.SessionTTL)
		if err != nil {
			logger.Fatal("Failed to init store", zap.Error(err))
		}
		defer st.Close()

		d := model.NewDelivery(sessionID, c, args[0])
		d.CSSOverride = cssClass
		if err := st.Push(context.Background(), d); err != nil {
			logger.Fatal("Failed to queue delivery", zap.Error(err))
		}

		logger.Info("Delivery queued",
			zap.String("id", d.ID.String()),
			zap.String("session_id", sessionID))
	},
}

var peekCmd = &cobra.Command{
	Use:   "peek",
	Short: "List the pending flash messages of a session without consuming them",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		requireRedis()

		st, err := store.NewHybridStore(cfg.RedisAddr, "", cfg.SessionTTL)
		if err != nil {
			logger.Fatal("Failed to init store", zap.Error(err))
		}
		defer st.Close()

		h := session.NewHandle(context.Background(), st, sessionID, logger)
		f, err := flash.New(h, flash.Options{Logger: logger})
		if err != nil {
			logger.Fatal("Failed to load session", zap.Error(err))
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCATEGORY\tCSS\tCONTENT")
		for _, m := range f.Messages() {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", m.ID, m.Category, m.CSSOverride, m.Content)
		}
		tw.Flush()
	},
}

// requireRedis stops commands that reach a running server's sessions, which
// only exist outside the process when Redis is used.
func requireRedis() {
	if cfg.RedisAddr == "" {
		logger.Fatal("This command needs --redis")
	}
}

func main() {
	var err error
	logger, err = zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err = config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	rootCmd.PersistentFlags().StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Address of Redis server; empty keeps sessions in memory (server only)")
	rootCmd.PersistentFlags().DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "Lifetime of stored sessions")

	serverCmd.Flags().StringVar(&cfg.BadgerPath, "badger", cfg.BadgerPath, "Path to BadgerDB data directory")
	serverCmd.Flags().StringVar(&cfg.Port, "port", cfg.Port, "HTTP port")
	serverCmd.Flags().StringVar(&cfg.Mode, "mode", cfg.Mode, "Presentation mode: toastr, bootstrap or unset")
	serverCmd.Flags().BoolVar(&cfg.CloseButton, "close-button", cfg.CloseButton, "Render a close button on messages")
	serverCmd.Flags().StringVar(&cfg.CookieName, "cookie", cfg.CookieName, "Session cookie name")

	for _, c := range []*cobra.Command{pushCmd, peekCmd} {
		c.Flags().StringVar(&sessionID, "session", "", "Target session id (the value of the session cookie)")
		c.MarkFlagRequired("session")
	}
	pushCmd.Flags().StringVar(&category, "category", "info", "Message category: default, info, success, warning, error")
	pushCmd.Flags().StringVar(&cssClass, "css", "", "CSS class override")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(peekCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
