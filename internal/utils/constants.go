package utils

const (
	// ApplicationName names the binary, the MCP server and the global configuration directory.
	ApplicationName = "fsmcp"
	// ConfigFileName is the local configuration file looked up in the working directory.
	ConfigFileName = "fsmcp.yaml"
	// GlobalConfigFileName is the configuration file stored under the XDG configuration directory.
	GlobalConfigFileName = "config.yaml"
)

const (
	// LoggerInitializationFailedMessageFormat reports a logger that could not be built.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes a fatal command error.
	ApplicationExecutionFailedMessage = "fsmcp failed"
)
