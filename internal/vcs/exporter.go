package vcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/jarmon/jarmonbuild/internal/logfields"
	"github.com/jarmon/jarmonbuild/internal/observability"
)

// Export status codes. Zero means success.
const (
	StatusOK = iota
	StatusNoRepository
	StatusNoHead
	StatusWriteFailed
	StatusCanceled
)

// ExportError carries the non-zero status of a failed export.
type ExportError struct {
	Status int
	Src    string
	Dest   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s to %s failed with status %d: %v", e.Src, e.Dest, e.Status, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// Revision describes the commit a build was produced from.
type Revision struct {
	ID         string    `yaml:"revision_id"`
	Revno      int       `yaml:"revno"`
	BranchNick string    `yaml:"branch_nick"`
	Date       time.Time `yaml:"date"`
	Clean      bool      `yaml:"clean"`
}

// Exporter copies a versioned tree and reports its revision.
type Exporter interface {
	Export(ctx context.Context, srcDir, destDir string) error
	Revision(ctx context.Context, srcDir string) (Revision, error)
}

// GitExporter implements Exporter on top of go-git.
type GitExporter struct {
	reporter observability.Reporter
}

// NewGitExporter returns an exporter narrating through r.
func NewGitExporter(r observability.Reporter) *GitExporter {
	if r == nil {
		r = observability.Discard()
	}
	return &GitExporter{reporter: r}
}

func open(srcDir string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(srcDir, &git.PlainOpenOptions{DetectDotGit: true})
}

func headCommit(repo *git.Repository) (*plumbing.Reference, *object.Commit, error) {
	ref, err := repo.Head()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, nil, fmt.Errorf("get commit object: %w", err)
	}
	return ref, commit, nil
}

// Export writes every file committed at HEAD into destDir, creating it if needed.
func (g *GitExporter) Export(ctx context.Context, srcDir, destDir string) error {
	fail := func(status int, err error) error {
		return &ExportError{Status: status, Src: srcDir, Dest: destDir, Err: err}
	}

	repo, err := open(srcDir)
	if err != nil {
		return fail(StatusNoRepository, fmt.Errorf("open repository: %w", err))
	}
	ref, commit, err := headCommit(repo)
	if err != nil {
		return fail(StatusNoHead, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return fail(StatusNoHead, fmt.Errorf("get tree: %w", err))
	}

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return fail(StatusWriteFailed, err)
	}

	files := 0
	err = tree.Files().ForEach(func(f *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeFile(f, filepath.Join(destDir, filepath.FromSlash(f.Name))); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
		files++
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return fail(StatusCanceled, err)
		}
		return fail(StatusWriteFailed, err)
	}

	g.reporter.Info("Exported source tree",
		logfields.Revision(ref.Hash().String()),
		logfields.Path(destDir),
		logfields.Files(files))
	return nil
}

func writeFile(f *object.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return err
	}

	if f.Mode == filemode.Symlink {
		link, err := f.Contents()
		if err != nil {
			return err
		}
		_ = os.Remove(target)
		return os.Symlink(link, target)
	}

	perm := os.FileMode(0o644)
	if f.Mode == filemode.Executable {
		perm = 0o755
	}

	r, err := f.Reader()
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	// #nosec G304 -- target is derived from a git tree entry below destDir
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Revision reports HEAD of the repository containing srcDir.
func (g *GitExporter) Revision(_ context.Context, srcDir string) (Revision, error) {
	repo, err := open(srcDir)
	if err != nil {
		return Revision{}, fmt.Errorf("open repository: %w", err)
	}
	ref, commit, err := headCommit(repo)
	if err != nil {
		return Revision{}, err
	}

	revno, err := firstParentDepth(commit)
	if err != nil {
		return Revision{}, err
	}

	rev := Revision{
		ID:         commit.Hash.String(),
		Revno:      revno,
		BranchNick: "detached",
		Date:       commit.Committer.When,
	}
	if ref.Name().IsBranch() {
		rev.BranchNick = ref.Name().Short()
	}

	if wt, err := repo.Worktree(); err == nil {
		if status, err := wt.Status(); err == nil {
			rev.Clean = status.IsClean()
		}
	}

	g.reporter.Debug("Resolved revision", logfields.Revision(rev.ID), "revno", rev.Revno)
	return rev, nil
}

// firstParentDepth counts commits along the first-parent chain, HEAD included.
func firstParentDepth(c *object.Commit) (int, error) {
	n := 1
	for c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return 0, fmt.Errorf("walk history: %w", err)
		}
		c = parent
		n++
	}
	return n, nil
}
