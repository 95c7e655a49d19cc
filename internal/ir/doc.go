// Package ir provides the canonical data types shared by every dragsort package.
//
// This package contains type definitions and content identity only. All
// other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Puzzle descriptions are immutable values supplied by the catalogue
//   - Item types are typed tags (Tag), zones accept a TagSet
//   - All JSON tags use snake_case
//   - Attempts are ordered by logical seq, never wall-clock time
package ir
