package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://vango.dev/docs/labeled-input/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E003, E006-E009)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Scheduling fault",
		Detail:   "A recompute, patch, or lifecycle callback panicked during a flush. The scheduler queue was reset so unrelated instances keep updating.",
		DocURL:   docBase + "E001",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Missing mount target",
		Detail:   "A component with a fragment was mounted without a target node or document.",
		DocURL:   docBase + "E002",
	},
	"E003": {
		Category: CategoryRuntime,
		Message:  "Instance destroyed",
		Detail:   "The instance has been destroyed and no longer accepts writes.",
		DocURL:   docBase + "E003",
	},
	"E006": {
		Category: CategoryRuntime,
		Message:  "Unknown property",
		Detail:   "The property is not declared by the component.",
		DocURL:   docBase + "E006",
	},
	"E007": {
		Category: CategoryRuntime,
		Message:  "Focus target not found",
		Detail:   "No element with the field's name as id exists in the owner document.",
		DocURL:   docBase + "E007",
	},
	"E008": {
		Category: CategoryRuntime,
		Message:  "Lifecycle registration outside setup",
		Detail:   "Lifecycle callbacks must be registered while the component's Setup runs.",
		DocURL:   docBase + "E008",
	},

	// ============================================
	// Platform Errors (E004-E005, E010-E019)
	// ============================================

	"E004": {
		Category: CategoryPlatform,
		Message:  "Unknown element",
		Detail:   "No definition is registered for the requested tag name.",
		DocURL:   docBase + "E004",
	},
	"E005": {
		Category: CategoryPlatform,
		Message:  "Element already defined",
		Detail:   "A definition with this tag name is already registered.",
		DocURL:   docBase + "E005",
	},
	"E010": {
		Category: CategoryPlatform,
		Message:  "Invalid tag name",
		Detail:   "Custom element names must be lowercase and contain a hyphen.",
		DocURL:   docBase + "E010",
	},

	// ============================================
	// Config Errors (E020-E039)
	// ============================================

	"E020": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No labeled-input.json or labeled-input.yaml was found.",
		DocURL:   docBase + "E020",
	},
	"E021": {
		Category: CategoryConfig,
		Message:  "Invalid config",
		Detail:   "The configuration file could not be parsed.",
		DocURL:   docBase + "E021",
	},
	"E022": {
		Category: CategoryConfig,
		Message:  "Invalid dispatch mode",
		Detail:   "dispatch must be \"bus\" or \"composed\"; composed delivery requires shadow isolation.",
		DocURL:   docBase + "E022",
	},
	"E023": {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "log.level must be one of debug, info, warn, error.",
		DocURL:   docBase + "E023",
	},

	// ============================================
	// CLI Errors (E040-E069)
	// ============================================

	"E040": {
		Category: CategoryCLI,
		Message:  "Publish failed",
		Detail:   "Uploading the rendered bundle to object storage failed.",
		DocURL:   docBase + "E040",
	},
	"E041": {
		Category: CategoryCLI,
		Message:  "Missing bucket",
		Detail:   "publish requires a bucket, either from --bucket or publish.bucket in the config.",
		DocURL:   docBase + "E041",
	},
	"E060": {
		Category: CategoryCLI,
		Message:  "Preview server failed",
		Detail:   "The preview server stopped with an error.",
		DocURL:   docBase + "E060",
	},
	"E061": {
		Category: CategoryCLI,
		Message:  "Invalid attribute flag",
		Detail:   "Attribute flags must have the form name=value.",
		DocURL:   docBase + "E061",
	},
}

// GetAllCodes returns all registered error codes in sorted order.
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
