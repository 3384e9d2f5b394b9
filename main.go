package main

import (
	"github.com/taskbridge/clickup-mcp/cmd"
	"github.com/taskbridge/clickup-mcp/internal/logger"
)

func main() {
	defer logger.HandlePanic()
	cmd.Execute()
}
