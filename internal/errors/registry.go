package errors

// template defines a registered error.
type template struct {
	Category Category
	Message  string
	Detail   string
}

var registry = map[string]template{
	// Configuration values (E100-E119)
	"E100": {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "log.level must be one of debug, info, warn, error.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid listen address",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid duration",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid log format",
		Detail:   "log.format must be text or json.",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Invalid session limit",
		Detail:   "server.maxSessions must not be negative.",
	},
	"E105": {
		Category: CategoryConfig,
		Message:  "Invalid heartbeat interval",
		Detail:   "server.heartbeatInterval must be shorter than server.readTimeout.",
	},

	// Configuration files (E120-E139)
	"E120": {
		Category: CategoryConfig,
		Message:  "Config file could not be read",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Config file could not be parsed",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Unsupported config file type",
		Detail:   "Config files must end in .json, .toml, .yaml or .yml.",
	},

	// Command line (E200-E219)
	"E200": {
		Category: CategoryCLI,
		Message:  "Server failed",
	},
	"E201": {
		Category: CategoryCLI,
		Message:  "Toast request rejected",
	},
	"E202": {
		Category: CategoryCLI,
		Message:  "Could not connect to server",
	},
	"E203": {
		Category: CategoryCLI,
		Message:  "Invalid toast kind",
		Detail:   "--kind must be success or error.",
	},
}
