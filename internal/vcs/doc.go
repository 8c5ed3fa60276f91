// Package vcs exports the committed source tree of a git working copy and
// records which revision a release was built from.
//
// The exporter reads objects through go-git, so no git binary is needed. Only
// files committed at HEAD are exported; untracked and modified files in the
// working copy are ignored, which is what makes an export reproducible.
package vcs
