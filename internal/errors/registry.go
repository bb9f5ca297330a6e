package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (A001-A099)
	// ============================================

	"A001": {
		Category: CategoryRuntime,
		Message:  "Handler panicked",
		Detail:   "A change handler panicked. The panic was recovered, the remaining handlers in the pass still ran and the subscription stays registered.",
	},
	"A002": {
		Category: CategoryRuntime,
		Message:  "Orphan subscription",
		Detail:   "A subscription was registered with no captures and no context. Nothing will ever remove it except an explicit Unsubscribe.",
	},
	"A003": {
		Category: CategoryRuntime,
		Message:  "Registration into disposed context",
		Detail:   "A subscription was registered into a context that has already been disposed, usually by a continuation that resumed after its handler invocation was superseded. The registration was refused.",
	},
	"A004": {
		Category: CategoryRuntime,
		Message:  "Notification pass depth exceeded",
		Detail:   "Handlers kept writing to containers while being notified, nesting deeper than the configured maximum. The value was stored but its notification pass was skipped.",
	},
	"A005": {
		Category: CategoryRuntime,
		Message:  "Capture already collected",
		Detail:   "A derived container was created with a capture that is already gone. It holds the zero value and follows nothing.",
	},

	// ============================================
	// Config Errors (A101-A199)
	// ============================================

	"A101": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No anchor.json was found in the current directory or any parent directory.",
	},
	"A102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file was read but one of its values is not valid.",
	},
	"A103": {
		Category: CategoryConfig,
		Message:  "Malformed configuration file",
		Detail:   "The configuration file is not valid JSON.",
	},

	// ============================================
	// Server Errors (A201-A299)
	// ============================================

	"A201": {
		Category: CategoryServer,
		Message:  "Unknown container",
		Detail:   "The requested container does not exist in the playground.",
	},
	"A202": {
		Category: CategoryServer,
		Message:  "WebSocket upgrade failed",
		Detail:   "The connection could not be upgraded to a WebSocket.",
	},
	"A203": {
		Category: CategoryServer,
		Message:  "Server failed",
		Detail:   "The playground server stopped with an error.",
	},
	"A204": {
		Category: CategoryServer,
		Message:  "Value rejected",
		Detail:   "The value is not in the configured palette, or the container is derived and cannot be written directly.",
	},

	// ============================================
	// CLI Errors (A301-A399)
	// ============================================

	"A301": {
		Category: CategoryCLI,
		Message:  "Subscriptions accumulate",
		Detail:   "The number of nested subscriptions grew across repeated handler invocations. Nested registrations should be replaced, not added to, on every invocation.",
	},
	"A302": {
		Category: CategoryCLI,
		Message:  "Invalid flag value",
		Detail:   "A command-line flag has a value outside its accepted range.",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
