package engine

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	"github.com/sirupsen/logrus"

	"github.com/sofmeright/lintconf/src/ruleset"
)

// TargetBranchEnv overrides the branch changed files are diffed against.
const TargetBranchEnv = "LINTCONF_TARGET_BRANCH"

// Delta detects changed files relative to a baseline.
type Delta struct {
	RootDir      string
	TargetBranch string
	Log          *logrus.Logger
}

func (d *Delta) log() *logrus.Logger {
	if d.Log == nil {
		d.Log = logrus.New()
	}
	return d.Log
}

// ChangedFiles is the union of uncommitted work and the commits HEAD has
// over the target branch. A nil set means no baseline could be computed and
// the caller should keep every file.
func (d *Delta) ChangedFiles(ctx context.Context) (map[string]bool, error) {
	repo, err := git.PlainOpen(d.RootDir)
	if err != nil {
		d.log().Debugf("delta: no repository at %s", d.RootDir)
		return nil, nil
	}

	sources := []struct {
		name  string
		paths func() (map[string]bool, error)
	}{
		{"worktree", func() (map[string]bool, error) { return d.worktreeChanges(repo) }},
		{"branch", func() (map[string]bool, error) { return d.branchChanges(ctx, repo) }},
	}

	changed := map[string]bool{}
	for _, src := range sources {
		paths, err := src.paths()
		if err != nil {
			d.log().WithError(err).Debugf("delta: %s comparison unavailable", src.name)
			return nil, nil
		}
		for p := range paths {
			changed[p] = true
		}
	}
	d.log().Debugf("delta: %d changed paths", len(changed))
	return changed, nil
}

func (d *Delta) worktreeChanges(repo *git.Repository) (map[string]bool, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	status, err := wt.Status()
	if err != nil {
		return nil, err
	}

	changed := map[string]bool{}
	for p, st := range status {
		if st.Worktree != git.Unmodified || st.Staging != git.Unmodified {
			changed[p] = true
		}
	}
	return changed, nil
}

// branchChanges diffs the HEAD tree against the target branch tree.
func (d *Delta) branchChanges(ctx context.Context, repo *git.Repository) (map[string]bool, error) {
	targetBranch := d.targetBranch(repo)
	if targetBranch == "" {
		return nil, nil
	}

	headRef, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("getting HEAD: %w", err)
	}
	headCommit, err := repo.CommitObject(headRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("getting HEAD commit: %w", err)
	}

	targetRef, err := repo.Reference(plumbing.NewBranchReferenceName(targetBranch), true)
	if err != nil {
		targetRef, err = repo.Reference(plumbing.NewRemoteReferenceName("origin", targetBranch), true)
		if err != nil {
			d.log().Debugf("delta: target branch %q not found", targetBranch)
			return nil, nil
		}
	}
	targetCommit, err := repo.CommitObject(targetRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("getting target commit: %w", err)
	}

	// HEAD is the target: compare with the first parent instead.
	if headCommit.Hash == targetCommit.Hash {
		if headCommit.NumParents() == 0 {
			return nil, nil
		}
		parent, err := headCommit.Parent(0)
		if err != nil {
			return nil, nil
		}
		targetCommit = parent
	}

	headTree, err := headCommit.Tree()
	if err != nil {
		return nil, err
	}
	targetTree, err := targetCommit.Tree()
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTreeWithOptions(ctx, targetTree, headTree, &object.DiffTreeOptions{})
	if err != nil {
		return nil, fmt.Errorf("diffing trees: %w", err)
	}

	changed := make(map[string]bool)
	for _, change := range changes {
		if name := changeName(change); name != "" {
			changed[name] = true
		}
	}
	return changed, nil
}

// targetBranch picks, in order: the env override, the configured branch, a
// CI-provided merge target, origin/HEAD, then "main".
func (d *Delta) targetBranch(repo *git.Repository) string {
	if branch := os.Getenv(TargetBranchEnv); branch != "" {
		return branch
	}
	if d.TargetBranch != "" {
		return d.TargetBranch
	}

	ciVars := []string{
		"CI_MERGE_REQUEST_TARGET_BRANCH_NAME", // GitLab CI
		"GITHUB_BASE_REF",                     // GitHub Actions
		"BITBUCKET_PR_DESTINATION_BRANCH",     // Bitbucket
		"CHANGE_TARGET",                       // Jenkins
	}
	for _, v := range ciVars {
		if branch := os.Getenv(v); branch != "" {
			return branch
		}
	}

	if branch := detectDefaultBranch(repo); branch != "" {
		return branch
	}
	return "main"
}

// detectDefaultBranch reads the symbolic ref origin/HEAD.
func detectDefaultBranch(repo *git.Repository) string {
	// Unresolved: the symbolic target is what names the branch.
	ref, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", "HEAD"), false)
	if err != nil {
		return ""
	}
	const prefix = "refs/remotes/origin/"
	if target := ref.Target().String(); strings.HasPrefix(target, prefix) {
		return strings.TrimPrefix(target, prefix)
	}
	return ""
}

func changeName(change *object.Change) string {
	action, err := change.Action()
	if err != nil {
		return ""
	}
	switch action {
	case merkletrie.Insert, merkletrie.Modify:
		return change.To.Name
	case merkletrie.Delete:
		return change.From.Name
	}
	return ""
}

// FilterByDelta keeps the files present in changedSet. A nil set keeps all.
func FilterByDelta(files []FileInfo, changedSet map[string]bool) []FileInfo {
	if changedSet == nil {
		return files
	}

	var kept []FileInfo
	for _, f := range files {
		if changedSet[ruleset.NormalizePath(f.Path)] {
			kept = append(kept, f)
		}
	}
	return kept
}
