package main

import "strings"

// splitFormFeedPages is a stand-in page extractor for --is_pdf: real PDF
// page extraction is an external collaborator (pkg/router.Parser) that
// this CLI doesn't implement, since no PDF parsing library appears
// anywhere in the available dependency set. Form feed (\f) is the
// conventional page-break character text tools already emit when
// flattening paginated documents, so it doubles as a local way to
// exercise the per-page chunking path without a real PDF library.
func splitFormFeedPages(content string) []string {
	return strings.Split(content, "\f")
}
