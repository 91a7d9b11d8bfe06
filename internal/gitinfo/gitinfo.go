// Package gitinfo captures the state of the repository an experiment was
// launched from, for run provenance.
package gitinfo

import (
	gogit "github.com/go-git/go-git/v5"
)

// Info records the repository state at run creation.
type Info struct {
	Commit string `json:"commit"`
	Branch string `json:"branch,omitempty"`
	Dirty  bool   `json:"dirty"`
}

// Capture returns the state of the repository containing dir, or nil when dir
// is not inside a git repository. Capture never fails: provenance is best
// effort, and a script run outside version control is a recognized condition.
func Capture(dir string) *Info {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil
	}

	head, err := repo.Head()
	if err != nil {
		// Repository without commits.
		return nil
	}

	info := &Info{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}

	if worktree, err := repo.Worktree(); err == nil {
		if status, err := worktree.Status(); err == nil {
			info.Dirty = !status.IsClean()
		}
	}

	return info
}
