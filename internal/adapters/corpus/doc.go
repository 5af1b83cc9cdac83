// Package corpus handles reading corpus archives: gzip files of newline
// delimited JSON records, one submission per line
//
// Design choices:
// - Stream with bufio.Scanner but with a 32MB cap to reliably handle huge bodies.
// - Malformed JSON lines are skipped, not fatal.
// - Records carry their markers verbatim; zone derivation happens at extract time
// - Fetchers resolve bare archive names against a local directory or a base URL
package corpus
