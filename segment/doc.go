// Package segment splits raw document text into size-bounded chunks for
// the extraction service.
//
// Splitting prefers semantic boundaries: recognized CV section headings
// first, blank-line paragraph breaks inside oversized sections, and hard
// character cuts only when a single paragraph alone exceeds the budget.
// Chunks from Split concatenate back to the original text exactly; the
// overlap variant trades that property for fewer truncation artifacts at
// cut points on large background imports.
package segment
