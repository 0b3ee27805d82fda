package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/zhouzirui/ai-joe/backend/internal/config"
	"github.com/zhouzirui/ai-joe/backend/internal/handler"
	"github.com/zhouzirui/ai-joe/backend/internal/logging"
	"github.com/zhouzirui/ai-joe/backend/internal/service/conversation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		logging.Default().Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

type options struct {
	addr     string
	logLevel string
}

func commonFlags(opts *options) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error); overrides LOG_LEVEL",
			Destination: &opts.logLevel,
		},
	}
}

func serveFlags(opts *options) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address; overrides PORT",
			Destination: &opts.addr,
		},
	}
	return append(flags, commonFlags(opts)...)
}

func newCommand() *cli.Command {
	var opts options

	return &cli.Command{
		Name:  "ai-joe",
		Usage: "AI JOE backend: chat, transcription and text-to-speech proxy",
		Flags: serveFlags(&opts),
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, opts)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP server (default)",
				Flags: serveFlags(&opts),
				Action: func(ctx context.Context, c *cli.Command) error {
					return serve(ctx, opts)
				},
			},
			askCommand(),
		},
	}
}

func askCommand() *cli.Command {
	var (
		opts      options
		sessionID string
		debug     bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "session",
			Aliases:     []string{"s"},
			Usage:       "Session id",
			Value:       conversation.DefaultSessionID,
			Destination: &sessionID,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "Print debug information about the reply",
			Destination: &debug,
		},
	}
	flags = append(flags, commonFlags(&opts)...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Send one message through the conversation service and print the reply",
		ArgsUsage: "<message>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			message := strings.Join(c.Args().Slice(), " ")

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}

			resp, err := a.conversation.Send(ctx, conversation.Request{
				Message:   message,
				SessionID: sessionID,
				Debug:     debug,
			})
			if err != nil {
				return goerr.Wrap(err, "ask failed")
			}

			w := c.Root().Writer
			fmt.Fprintln(w, resp.AssistantResponse)
			if resp.Debug != nil {
				fmt.Fprintf(w, "model=%s vector_store=%t response_id=%s\n",
					resp.Debug.Model, resp.Debug.VectorStoreUsed, resp.Debug.ResponseID)
			}
			return nil
		},
	}
}

// loadConfig reads .env and the environment, then applies flag overrides.
func loadConfig(opts options) (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		logging.Default().Debug("no .env file loaded, using process environment", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load configuration")
	}

	if opts.addr != "" {
		addr, err := config.NormalizeAddr(opts.addr)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid --addr")
		}
		cfg.Server.Addr = addr
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	logging.SetDefault(logging.New(cfg.Log.Level, os.Stdout))
	return cfg, nil
}

func serve(ctx context.Context, opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}

	router := handler.NewRouter(handler.Dependencies{
		Chat:        a.conversation,
		Speech:      a.speech,
		Provider:    cfg.AI.Provider,
		AllowOrigin: cfg.Server.AllowOrigin,
		Logger:      logging.Default(),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logging.Default().Info("AI JOE backend listening", "addr", cfg.Server.Addr, "provider", cfg.AI.Provider)
	if err := runServer(ctx, srv); err != nil {
		return goerr.Wrap(err, "server error", goerr.V("addr", cfg.Server.Addr))
	}
	return nil
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
