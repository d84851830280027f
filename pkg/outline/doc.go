// Package outline builds a [tree.Tree] from an org-style outline document.
//
// # Format
//
// A header line starts with a run of one or more marker characters (by
// default '*') followed by a space. The run length orders headers: a header
// becomes the child of the nearest preceding header with a shorter run, or
// of the synthetic root when there is none. Everything else is body text.
//
//	* Projects
//	** orgtree
//	Some notes about it.
//	* Reading
//
// # Weights
//
// Each body line contributes the number of runes in its trimmed text to the
// root and to every header that is still open above it. A header's weight is
// therefore the size of all text it contains, including its sub-headers'.
//
// # Malformed Headers
//
// A line that starts with the marker but has no space after the run, such
// as "**bold**", is not a header. By default it is counted as body text and
// reported in [Result.Warnings]. With [Options.Strict] the build fails with
// an INVALID_INPUT_FORMAT error carrying the line number.
//
// # Encodings
//
// Input is decoded with golang.org/x/text. Any name known to the WHATWG
// encoding index ("latin1", "windows-1252", "shift_jis", ...) is accepted.
package outline
