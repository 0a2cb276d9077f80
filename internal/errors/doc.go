// Package errors provides coded, actionable errors for the toastpop CLI
// and configuration loader.
//
// Each code maps to a registered template with a category, a short
// message and a longer detail. Call sites add context:
//
//	err := errors.New("E101").
//	    WithDetail("server.address \"::x\" is not host:port").
//	    WithSuggestion("Use a value like \":8080\" or \"127.0.0.1:8080\"")
//
// Codes are grouped by range:
//
//   - E100-E119: configuration values
//   - E120-E139: configuration files
//   - E200-E219: command line
//
// Format renders an error for a terminal; Error returns the one-line form.
package errors
