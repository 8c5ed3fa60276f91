// Package build holds the per-invocation build context and the helpers that
// prepare the build directory.
//
// A Context is created once by the command layer and handed to the selected
// step; it never changes afterwards. Dirs creates and clears directories and
// narrates which branch it took through an observability.Reporter.
package build
