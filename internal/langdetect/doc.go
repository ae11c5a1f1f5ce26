// Package langdetect decides whether a transcript fragment is Japanese or Vietnamese.
//
// The heuristic scores script membership per rune and adds a fixed bonus per
// keyword hit. It only has to separate two languages with disjoint scripts, so
// no statistical model is involved.
package langdetect
