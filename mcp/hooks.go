package mcp

import (
	"github.com/taskbridge/clickup-mcp/types"
)

// Hooks carries the runtime dependencies the CLI layer injects into the MCP
// package so handlers stay free of global config and logging wiring.
type Hooks struct {
	GetConfig   func() *types.AppConfig
	LogInfo     func(string)
	LogError    func(error)
	LogToolCall func(string, interface{})
	GetVersion  func() string
}

var hooks = Hooks{
	GetConfig:   func() *types.AppConfig { return &types.AppConfig{} },
	LogInfo:     func(string) {},
	LogError:    func(error) {},
	LogToolCall: func(string, interface{}) {},
	GetVersion:  func() string { return "dev" },
}

// ConfigureHooks allows the CLI layer to inject runtime dependencies needed by MCP handlers.
func ConfigureHooks(h Hooks) {
	if h.GetConfig != nil {
		hooks.GetConfig = h.GetConfig
	}
	if h.LogInfo != nil {
		hooks.LogInfo = h.LogInfo
	}
	if h.LogError != nil {
		hooks.LogError = h.LogError
	}
	if h.LogToolCall != nil {
		hooks.LogToolCall = h.LogToolCall
	}
	if h.GetVersion != nil {
		hooks.GetVersion = h.GetVersion
	}
}

func currentConfig() *types.AppConfig {
	if hooks.GetConfig == nil {
		return &types.AppConfig{}
	}
	cfg := hooks.GetConfig()
	if cfg == nil {
		return &types.AppConfig{}
	}
	return cfg
}

func logInfo(msg string) {
	if hooks.LogInfo != nil {
		hooks.LogInfo(msg)
	}
}

func logError(err error) {
	if hooks.LogError != nil {
		hooks.LogError(err)
	}
}

func logToolCall(name string, params interface{}) {
	if hooks.LogToolCall != nil {
		hooks.LogToolCall(name, params)
	}
}

func currentVersion() string {
	return hooks.GetVersion()
}
