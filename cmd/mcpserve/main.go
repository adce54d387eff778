// mcpserve exposes the retrieval tool registry as a stdio MCP server, so the
// same Norwegian cultural heritage tools can be used from any MCP client.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"kulturarv/config"
	"kulturarv/logger"
	"kulturarv/registry"
	"kulturarv/tools"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settings, err := config.Load()
	if err != nil {
		return err
	}

	// Stdout carries the MCP protocol, keep logs off it.
	log, err := logger.New(logger.Config{
		Level:      settings.LogLevel,
		Format:     "text",
		Output:     "stderr",
		EnableFile: settings.LogFile != "",
		FilePath:   settings.LogFile,
	})
	if err != nil {
		return err
	}
	defer log.Close()

	providers, err := config.LoadProviders(settings.ProvidersFile)
	if err != nil {
		return err
	}

	reg := registry.New(log)
	if err := tools.RegisterAll(reg, providers, settings); err != nil {
		return err
	}

	s := server.NewMCPServer(settings.ServerName, settings.ServerVersion,
		server.WithToolCapabilities(false),
	)

	for _, def := range reg.List() {
		name := def.Name
		s.AddTool(def, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			output, err := reg.Call(ctx, name, req.GetArguments())
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(output), nil
		})
	}

	log.Info("MCP server ready",
		logger.String("name", settings.ServerName),
		logger.Int("tools", reg.Len()))

	return server.ServeStdio(s)
}
