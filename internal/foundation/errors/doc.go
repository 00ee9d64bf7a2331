// Package errors provides classified error primitives used across studysite.
//
// A ClassifiedError carries a category (config, navigation, links, render, ...),
// a severity and structured context. Adapters translate classified errors into
// CLI exit codes and HTTP status codes.
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryNavigation, "sidebar references unknown document").
//		WithContext("doc_id", "week1/security").
//		WithContext("sidebar", "sidebar").
//		Build()
package errors
