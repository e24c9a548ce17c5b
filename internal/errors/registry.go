package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E101-E199)
	// ============================================

	"E101": {
		Category: CategoryRuntime,
		Message:  "Render not implemented",
		Detail:   "The component embeds vdom.Base but does not define its own Render method, so the base Render was invoked.",
		DocURL:   "https://rangeui.dev/docs/errors/E101",
	},
	"E102": {
		Category: CategoryRuntime,
		Message:  "Render returned no node",
		Detail:   "A component's Render method returned a nil node without an error. Return a Text node with empty content to render nothing.",
		DocURL:   "https://rangeui.dev/docs/errors/E102",
	},
	"E103": {
		Category: CategoryRuntime,
		Message:  "Unsupported node type",
		Detail:   "Build accepts a tag name string or a component constructor of the form func() C.",
		DocURL:   "https://rangeui.dev/docs/errors/E103",
	},
	"E104": {
		Category: CategoryRuntime,
		Message:  "Invalid anchor",
		Detail:   "A node was mounted without an anchor, or patched before it was ever mounted.",
		DocURL:   "https://rangeui.dev/docs/errors/E104",
	},
	"E105": {
		Category: CategoryRuntime,
		Message:  "Component not mounted",
		Detail:   "The operation needs a component that has been mounted through Render.",
		DocURL:   "https://rangeui.dev/docs/errors/E105",
	},
	"E106": {
		Category: CategoryRuntime,
		Message:  "Too many queued updates",
		Detail:   "State updates issued during render passes kept queueing further updates. A component probably calls SetState unconditionally from Render.",
		DocURL:   "https://rangeui.dev/docs/errors/E106",
	},

	// ============================================
	// Host Errors (E201-E299)
	// ============================================

	"E201": {
		Category: CategoryHost,
		Message:  "Host operation failed",
		Detail:   "The host tree rejected a primitive operation.",
		DocURL:   "https://rangeui.dev/docs/errors/E201",
	},
	"E202": {
		Category: CategoryHost,
		Message:  "Invalid range bounds",
		Detail:   "A range must satisfy 0 <= start <= end <= number of children of its parent.",
		DocURL:   "https://rangeui.dev/docs/errors/E202",
	},
	"E203": {
		Category: CategoryHost,
		Message:  "Node does not belong to this document",
		Detail:   "Host nodes can only be used with the document that created them.",
		DocURL:   "https://rangeui.dev/docs/errors/E203",
	},
	"E204": {
		Category: CategoryHost,
		Message:  "Node cannot have children",
		Detail:   "Text nodes cannot be used as the parent of a range or an insertion.",
		DocURL:   "https://rangeui.dev/docs/errors/E204",
	},

	// ============================================
	// Config Errors (E301-E399)
	// ============================================

	"E301": {
		Category: CategoryConfig,
		Message:  "Configuration invalid",
		Detail:   "The configuration file or environment contains an invalid value.",
		DocURL:   "https://rangeui.dev/docs/errors/E301",
	},

	// ============================================
	// Snapshot Errors (E401-E499)
	// ============================================

	"E401": {
		Category: CategorySnapshot,
		Message:  "Snapshot publish failed",
		Detail:   "The rendered document could not be written to the snapshot store.",
		DocURL:   "https://rangeui.dev/docs/errors/E401",
	},

	"E402": {
		Category: CategorySnapshot,
		Message:  "Snapshot credentials missing",
		Detail:   "Publishing to S3 needs an access key and secret in the environment.",
		DocURL:   "https://rangeui.dev/docs/errors/E402",
	},

	// ============================================
	// Preview Errors (E501-E599)
	// ============================================

	"E501": {
		Category: CategoryPreview,
		Message:  "Event dispatch failed",
		Detail:   "The preview server could not deliver an event to the rendered document.",
		DocURL:   "https://rangeui.dev/docs/errors/E501",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
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
