package cmd

import (
	"context"
	"fmt"
	"log"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taskbridge/clickup-mcp/internal/logger"
	"github.com/taskbridge/clickup-mcp/internal/session"
	"github.com/taskbridge/clickup-mcp/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server over stdin/stdout",
	Long: `Start a Model Context Protocol (MCP) server so AI tools can work with
ClickUp tasks: browse the workspace hierarchy, resolve fuzzy task/list/member
references, create and mutate tasks (singly or in bulk), and search documents.

The server runs until the client disconnects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServer(ctx context.Context) error {
	logger.SetVersion(version)
	logger.SetCommand("mcp")

	mcp.ConfigureHooks(mcp.Hooks{
		GetConfig: GetConfig,
		LogInfo: func(msg string) {
			if viper.GetBool("verbose") {
				log.Printf("[MCP INFO] %s", msg)
			}
		},
		LogError: func(err error) {
			if viper.GetBool("verbose") {
				log.Printf("[MCP ERROR] %v", err)
			}
		},
		LogToolCall: func(name string, params interface{}) {
			logger.SetLastToolCall(fmt.Sprintf("%s %+v", name, params))
			if viper.GetBool("verbose") {
				log.Printf("[MCP TOOL] %s called with params: %+v", name, params)
			}
		},
		GetVersion: func() string { return version },
	})

	sess := session.New(GlobalAppConfig, NewGateway())

	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "clickup-mcp",
		Version: version,
	}, &mcpsdk.ServerOptions{})

	if err := mcp.RegisterTools(server, sess); err != nil {
		return fmt.Errorf("failed to register MCP tools: %w", err)
	}

	if err := server.Run(ctx, mcpsdk.NewStdioTransport()); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
