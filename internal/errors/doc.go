// Package errors provides structured, actionable error messages for the
// anchor CLI and live server.
//
// Each error has a unique code that maps to a short message and a longer
// explanation, and may carry a source location (for configuration files), a
// subject (the container or subscription involved) and a fix suggestion.
// The engine logs the same codes in its "code" attribute, so a log line and a
// CLI report of the same failure can be matched up.
//
// # Error Categories
//
//   - runtime: engine failures (handler panics, orphans, late registrations)
//   - config: anchor.json problems
//   - server: live playground failures
//   - cli: command-line usage and check failures
//
// # Error Codes
//
//	A001-A099  runtime
//	A101-A199  config
//	A201-A299  server
//	A301-A399  cli
//
// # Usage
//
//	err := errors.New("A102").
//	    WithLocation("anchor.json", 4, 18).
//	    WithSuggestion(`Use one of "warn", "reject" or "panic"`)
//
//	errors.PrintError(err)
//	// ERROR A102: Invalid configuration
//	//
//	//   anchor.json:4:18
//	//
//	//     2 │   "engine": {
//	//     3 │     "maxPassDepth": 16,
//	//   → 4 │     "orphanPolicy": "ignore"
//	//       │                     ^
//	//     5 │   }
//	//
//	//   Hint: Use one of "warn", "reject" or "panic"
package errors
