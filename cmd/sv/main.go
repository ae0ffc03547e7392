// Package main provides the entry point for sv, a terminal client for
// moderating assignment responses.
//
// Usage:
//
//	sv browse /assignments/cats-3/#assignment-responses
//	sv list --assignment 3 --flag flag --markdown
//	sv tabs --page-file page.html "#notes"
//
// See --help for all available options.
package main

func main() {
	Execute()
}
