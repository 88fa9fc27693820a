package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Generator Errors (E100-E119)
	// ============================================

	"E100": {
		Category:   CategoryUsage,
		Message:    "Missing project name",
		Suggestion: "Usage: projgen create <project-name>",
	},
	"E101": {
		Category:   CategoryValidation,
		Message:    "Invalid project name",
		Suggestion: "Use lowercase letters, digits, '-', '_' and '.', starting with a letter or digit",
	},
	"E102": {
		Category: CategoryTemplate,
		Message:  "Template rendering failed",
	},
	"E103": {
		Category: CategoryFilesystem,
		Message:  "Could not write project files",
	},
	"E104": {
		Category: CategoryCancelled,
		Message:  "Generation cancelled",
	},

	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {
		Category:   CategoryConfig,
		Message:    "Invalid projgen.yaml",
		Suggestion: "Check that projgen.yaml is valid YAML",
	},
	"E121": {
		Category:   CategoryConfig,
		Message:    "Invalid port range",
		Suggestion: "Set ports.min and ports.max so that 0 < min < max <= 65536",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"E123": {
		Category:   CategoryConfig,
		Message:    "Configuration file already exists",
		Suggestion: "Edit the existing projgen.yaml or pass --force to replace it",
	},

	// ============================================
	// Publish Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryPublish,
		Message:  "Publishing project failed",
	},
	"E141": {
		Category:   CategoryPublish,
		Message:    "Publishing is not configured",
		Suggestion: "Set publish.s3.bucket in projgen.yaml or PROJGEN_PUBLISH_S3_BUCKET",
	},
	"E145": {
		Category:   CategoryTemplate,
		Message:    "Unknown template",
		Suggestion: "Run 'projgen templates' to list available templates",
	},
}
