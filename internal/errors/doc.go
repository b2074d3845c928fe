// Package errors provides structured, actionable error messages for kata-registry.
//
// Every failure the registry tool can report has a unique code (e.g. "KR101")
// that maps to a short message, a longer explanation and a documentation URL.
// Errors carry an optional source location (the manifest or collapse map that
// failed to parse), a hint on how to fix the problem and the wrapped cause.
//
// # Error Categories
//
//   - manifest: registry.json is missing or malformed
//   - collapse: lib/category-collapse.json is missing or malformed
//   - source: a component source file could not be read
//   - output: an artifact could not be written
//   - policy: the category taxonomy or missing-file policy was violated
//   - remote: serving, fetching or publishing failed
//   - config: kata-registry configuration is invalid
//
// # Usage
//
//	err := errors.New("KR101").
//	    WithLocationFromJSON("registry.json", data, syntaxErr).
//	    WithSuggestion("Check for a trailing comma after the last item")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR KR101: Invalid registry manifest
//	//
//	//   registry.json:12:5
//	//
//	//     11 │       "title": "Hero 1",
//	//   → 12 │     },
//	//        │     ^
//	//
//	//   Hint: Check for a trailing comma after the last item
//	//
//	//   Learn more: https://kata-shadcn.dev/docs/errors/KR101
package errors
