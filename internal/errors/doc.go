// Package errors provides structured, actionable error messages for projgen.
//
// Every failure the generator can report carries a registered code, a short
// message, a longer explanation and, where there is one, a hint on how to fix
// it. The same error renders as colored terminal text for the CLI, as a single
// line for logs, and as JSON for the HTTP API.
//
// # Error Categories
//
//   - usage: the command line was incomplete (missing project name)
//   - validation: the project name was rejected before any I/O
//   - template: a template failed to parse or execute
//   - filesystem: creating directories or writing files failed
//   - config: projgen.yaml or an override was malformed
//   - publish: uploading a generated project failed
//
// # Usage
//
//	err := errors.New("E101").
//	    WithDetail(`"My App" contains uppercase letters`).
//	    WithSuggestion("Use lowercase letters, digits, '-', '_' and '.'")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E101: Invalid project name
//	//
//	//   "My App" contains uppercase letters
//	//
//	//   Hint: Use lowercase letters, digits, '-', '_' and '.'
package errors
