package workspace

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/hashicorp/go-hclog"
)

// DetectRoot resolves the working directory linters should run in: the
// enclosing repository's worktree root when the target sits inside one,
// otherwise the target's own directory. Tools like pylint resolve module
// paths against the project root, so lint results stay consistent with what
// the editor shows.
func DetectRoot(target string, logger hclog.Logger) string {
	dir := target
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		dir = filepath.Dir(target)
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		logger.Debug("no enclosing repository found", "target", target, "error", err)
		return dir
	}
	worktree, err := repo.Worktree()
	if err != nil {
		logger.Debug("repository has no worktree", "target", target, "error", err)
		return dir
	}

	root := worktree.Filesystem.Root()
	logger.Debug("workspace root detected", "target", target, "root", root)
	return root
}
