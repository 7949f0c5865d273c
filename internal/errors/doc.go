// Package errors provides structured, actionable error messages for the
// labeled-input runtime and tooling.
//
// Each error carries a unique code (e.g., "E001") that maps to a category,
// a short message, a detailed explanation, and a documentation URL:
//   - runtime: scheduling faults and misuse of destroyed instances
//   - platform: element registration and host document problems
//   - config: missing or invalid configuration files
//   - cli: preview and publish command failures
//
// # Usage
//
//	err := errors.New("E002").
//	    WithDetail("labeled-input was created without a shadow root or host").
//	    WithSuggestion("Pass a document node as Options.Target")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E002: Missing mount target
//	//
//	//   labeled-input was created without a shadow root or host
//	//
//	//   Hint: Pass a document node as Options.Target
//	//
//	//   Learn more: https://vango.dev/docs/labeled-input/errors/E002
package errors
