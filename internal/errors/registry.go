package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// docBase is the prefix of every error documentation URL.
const docBase = "https://kata-shadcn.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Manifest Errors (KR100-KR109)
	// ============================================

	"KR100": {
		Category: CategoryManifest,
		Message:  "Registry manifest not found",
		Detail:   "No registry.json was found in the project root. The build needs the manifest to know which components to publish.",
		DocURL:   docBase + "KR100",
	},
	"KR101": {
		Category: CategoryManifest,
		Message:  "Invalid registry manifest",
		Detail:   "registry.json could not be parsed as JSON.",
		DocURL:   docBase + "KR101",
	},
	"KR102": {
		Category: CategoryManifest,
		Message:  "Invalid registry item",
		Detail:   "A manifest item is missing a required field or has an invalid name.",
		DocURL:   docBase + "KR102",
	},
	"KR103": {
		Category: CategoryManifest,
		Message:  "Duplicate registry item",
		Detail:   "Two manifest items share the same name. Item names must be unique because they become output file names.",
		DocURL:   docBase + "KR103",
	},
	"KR104": {
		Category: CategoryManifest,
		Message:  "Registry manifest unreadable",
		Detail:   "registry.json exists but could not be read.",
		DocURL:   docBase + "KR104",
	},

	// ============================================
	// Collapse Map Errors (KR110-KR119)
	// ============================================

	"KR110": {
		Category: CategoryCollapse,
		Message:  "Category collapse map not found",
		Detail:   "lib/category-collapse.json is required. It maps name segments to human-readable categories.",
		DocURL:   docBase + "KR110",
	},
	"KR111": {
		Category: CategoryCollapse,
		Message:  "Invalid category collapse map",
		Detail:   "lib/category-collapse.json could not be parsed as JSON.",
		DocURL:   docBase + "KR111",
	},
	"KR112": {
		Category: CategoryCollapse,
		Message:  "Category collapse map is not an object",
		Detail:   "The collapse map must be a JSON object mapping segments to category names.",
		DocURL:   docBase + "KR112",
	},
	"KR113": {
		Category: CategoryCollapse,
		Message:  "Invalid category collapse value",
		Detail:   "Every value in the collapse map must be a string category name.",
		DocURL:   docBase + "KR113",
	},
	"KR114": {
		Category: CategoryCollapse,
		Message:  "Category collapse map unreadable",
		Detail:   "lib/category-collapse.json exists but could not be read.",
		DocURL:   docBase + "KR114",
	},

	// ============================================
	// Source Errors (KR120-KR129)
	// ============================================

	"KR120": {
		Category: CategorySource,
		Message:  "Source file unreadable",
		Detail:   "A component source file exists but could not be read.",
		DocURL:   docBase + "KR120",
	},
	"KR121": {
		Category: CategorySource,
		Message:  "Source files missing",
		Detail:   "One or more component source files listed in registry.json do not exist.",
		DocURL:   docBase + "KR121",
	},
	"KR122": {
		Category: CategorySource,
		Message:  "Invalid source path",
		Detail:   "A source path escapes the project root.",
		DocURL:   docBase + "KR122",
	},

	// ============================================
	// Output Errors (KR130-KR139)
	// ============================================

	"KR130": {
		Category: CategoryOutput,
		Message:  "Failed to write registry artifact",
		Detail:   "An output file could not be written.",
		DocURL:   docBase + "KR130",
	},
	"KR131": {
		Category: CategoryOutput,
		Message:  "Failed to encode registry artifact",
		Detail:   "An output document could not be serialized to JSON.",
		DocURL:   docBase + "KR131",
	},
	"KR132": {
		Category: CategoryOutput,
		Message:  "Project already initialized",
		Detail:   "The target directory already contains a registry manifest.",
		DocURL:   docBase + "KR132",
	},

	// ============================================
	// Policy Errors (KR140-KR149)
	// ============================================

	"KR140": {
		Category: CategoryPolicy,
		Message:  "Category count out of range",
		Detail:   "The number of distinct categories is outside the allowed range.",
		DocURL:   docBase + "KR140",
	},
	"KR141": {
		Category: CategoryPolicy,
		Message:  "Category too large",
		Detail:   "A single category holds more than the allowed share of all components.",
		DocURL:   docBase + "KR141",
	},
	"KR142": {
		Category: CategoryPolicy,
		Message:  "Content hash mismatch",
		Detail:   "A published registry item does not match the content hash recorded in the index.",
		DocURL:   docBase + "KR142",
	},

	// ============================================
	// Remote Errors (KR150-KR159)
	// ============================================

	"KR150": {
		Category: CategoryRemote,
		Message:  "Registry index not found",
		Detail:   "The agent index (index.json) could not be loaded. Run the build first.",
		DocURL:   docBase + "KR150",
	},
	"KR151": {
		Category: CategoryRemote,
		Message:  "Registry unavailable",
		Detail:   "Unable to fetch from the registry server.",
		DocURL:   docBase + "KR151",
	},
	"KR152": {
		Category: CategoryRemote,
		Message:  "Publish failed",
		Detail:   "Uploading registry artifacts to object storage failed.",
		DocURL:   docBase + "KR152",
	},
	"KR153": {
		Category: CategoryRemote,
		Message:  "Server failed",
		Detail:   "The registry HTTP server stopped unexpectedly.",
		DocURL:   docBase + "KR153",
	},

	// ============================================
	// Configuration Errors (KR160-KR169)
	// ============================================

	"KR160": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The kata-registry configuration file is malformed.",
		DocURL:   docBase + "KR160",
	},
	"KR161": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range.",
		DocURL:   docBase + "KR161",
	},
	"KR162": {
		Category: CategoryConfig,
		Message:  "Unknown project template",
		Detail:   "The requested init template does not exist.",
		DocURL:   docBase + "KR162",
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
