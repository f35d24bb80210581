package config

import "time"

// Application constants
const (
	AppName    = "Sales Pulse"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. SALES_SERVER_PORT
	EnvPrefix = "SALES"

	// ConfigFileEnv names an explicit YAML config file
	ConfigFileEnv = "SALES_CONFIG_FILE"
)

// Category rule orderings
const (
	CategoryOrderTVFirst        = "tv_first"
	CategoryOrderApplianceFirst = "appliance_first"
)

// Log levels
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Defaults not tied to a config field
const (
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultRecordsLimit = 100
	MaxRecordsLimit     = 5000

	// DefaultReportTitle heads exported documents
	DefaultReportTitle = "Reporte de ventas"
)

// configLocations are searched in order when no file is given
var configLocations = []string{
	"config.yaml",
	"configs/config.yaml",
	"../configs/config.yaml",
}
