// Package catalog maps free-text book titles to the downloadable PDFs
// granted after a paid soft-copy order.
package catalog

import "strings"

// Entry pairs a lowercase keyword with the file it unlocks.
type Entry struct {
	Keyword string
	FileRef string
}

// Resolver scans its entries in declaration order and returns the first
// whose keyword occurs in the title. Order matters: list specific
// keywords before broad ones.
type Resolver struct {
	entries []Entry
}

func NewResolver(entries []Entry) *Resolver {
	return &Resolver{entries: entries}
}

// Default returns the built-in BookVerse download catalog.
func Default() *Resolver {
	return NewResolver([]Entry{
		{Keyword: "java", FileRef: "java-programming.pdf"},
		{Keyword: "python", FileRef: "python-basics.pdf"},
		{Keyword: "c programming", FileRef: "c-programming.pdf"},
		{Keyword: "dbms", FileRef: "dbms-notes.pdf"},
		{Keyword: "operating system", FileRef: "operating-systems.pdf"},
		{Keyword: "networks", FileRef: "computer-networks.pdf"},
		{Keyword: "data structures", FileRef: "data-structures.pdf"},
	})
}

// Resolve returns the file for the given title, matching keywords
// case-insensitively as substrings. ok is false when nothing matches.
func (r *Resolver) Resolve(title string) (string, bool) {
	lowered := strings.ToLower(title)
	for _, e := range r.entries {
		if strings.Contains(lowered, e.Keyword) {
			return e.FileRef, true
		}
	}
	return "", false
}
