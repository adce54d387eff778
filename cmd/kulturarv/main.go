// kulturarv is the chat agent for Norwegian cultural heritage sources. It
// serves the HTTP API, answers one-shot questions from the terminal and can
// list the registered retrieval tools.
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

	"github.com/spf13/cobra"

	"kulturarv/agent"
	"kulturarv/config"
	"kulturarv/llm"
	"kulturarv/logger"
	"kulturarv/registry"
	"kulturarv/server"
	"kulturarv/tools"
)

func main() {
	root := &cobra.Command{
		Use:           "kulturarv",
		Short:         "Chat agent over Norwegian cultural heritage sources",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), askCmd(), toolsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the wired-up components commands need.
type app struct {
	settings     *config.Settings
	log          logger.Logger
	registry     *registry.Registry
	orchestrator agent.Orchestrator
}

func buildApp(needModel bool) (*app, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:      settings.LogLevel,
		Format:     settings.LogFormat,
		EnableFile: settings.LogFile != "",
		FilePath:   settings.LogFile,
	})
	if err != nil {
		return nil, err
	}

	providers, err := config.LoadProviders(settings.ProvidersFile)
	if err != nil {
		return nil, err
	}

	reg := registry.New(log)
	if err := tools.RegisterAll(reg, providers, settings); err != nil {
		return nil, err
	}

	a := &app{settings: settings, log: log, registry: reg}
	if !needModel {
		return a, nil
	}

	if !settings.ChatEnabled() {
		return nil, errors.New("OPENAI_API_KEY is not configured")
	}
	model, err := llm.New(settings, log)
	if err != nil {
		return nil, err
	}

	switch settings.Strategy {
	case "iterative":
		a.orchestrator = agent.NewRunner(model, reg, log)
	default:
		a.orchestrator = agent.NewRoutedRunner(model, reg, agent.NewRouterBreaker(), log)
	}
	return a, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(true)
			if err != nil {
				return err
			}
			defer a.log.Close()

			srv := server.New(a.settings, a.registry, a.orchestrator, a.log)
			httpServer := &http.Server{
				Addr:    fmt.Sprintf("%s:%d", a.settings.Host, a.settings.Port),
				Handler: srv.Handler(),
			}

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				a.log.Info("Server starting",
					logger.String("addr", httpServer.Addr),
					logger.String("strategy", a.settings.Strategy),
					logger.Int("tools", a.registry.Len()))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-shutdown:
				a.log.Info("Shutdown signal received", logger.String("signal", sig.String()))
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown failed: %w", err)
			}
			a.log.Info("Server stopped gracefully")
			return nil
		},
	}
}

func askCmd() *cobra.Command {
	var sources []string

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Ask a single question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(true)
			if err != nil {
				return err
			}
			defer a.log.Close()

			req := agent.ChatRequest{
				Message: strings.Join(args, " "),
				Sources: sources,
			}
			resp, err := agent.Chat(cmd.Context(), a.orchestrator, req)
			if err != nil {
				return err
			}

			fmt.Println(resp.Response.Text)
			if len(resp.Sources) > 0 {
				fmt.Println("\nKilder:")
				for _, src := range resp.Sources {
					fmt.Printf("  - %s\n    %s\n", src.Title, src.URL)
				}
			}
			if len(resp.RelatedQueries) > 0 {
				fmt.Println("\nRelaterte spørsmål:")
				for _, q := range resp.RelatedQueries {
					fmt.Printf("  - %s\n", q)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&sources, "sources", nil, "restrict to these sources (wikipedia, snl, riksantikvaren)")
	return cmd
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the registered retrieval tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(false)
			if err != nil {
				return err
			}
			defer a.log.Close()

			for _, def := range a.registry.List() {
				fmt.Printf("%-28s %s\n", def.Name, def.Description)
			}
			fmt.Printf("\n%d tools registered\n", a.registry.Len())
			return nil
		},
	}
}
