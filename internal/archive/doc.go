// Package archive reads and writes the zip archives handled by the build:
// the downloaded toolset and dependency archives (Extract) and the release
// archive (Package).
package archive
