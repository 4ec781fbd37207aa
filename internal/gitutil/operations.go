// Package gitutil wraps shell git invocations used by the change
// planner to classify what changed since the last successful index.
// Grounded on the teacher's internal/git/operations.go (exec.Command
// based, never go-git) and extended with diff/status classification
// for spec §4.1 branch 2.
package gitutil

import (
	"fmt"
	"os/exec"
	"strings"
)

// ChangeStatus is the classification of a path between two refs.
type ChangeStatus string

const (
	StatusAdded    ChangeStatus = "added"
	StatusModified ChangeStatus = "modified"
	StatusDeleted  ChangeStatus = "deleted"
)

// Operations is the subset of git plumbing the planner needs. Kept as
// an interface so tests can inject a mock (see mock.go).
type Operations interface {
	// IsRepo reports whether projectPath is (inside) a git working tree.
	IsRepo(projectPath string) bool

	// CurrentCommit returns the current HEAD commit hash, or "" if unavailable.
	CurrentCommit(projectPath string) string

	// CurrentBranch returns the current branch name, "detached-{hash}" for
	// detached HEAD, or "unknown" if all git commands fail.
	CurrentBranch(projectPath string) string

	// DiffNameStatus runs `git diff --name-status fromCommit..HEAD` and
	// classifies each path. Renames are split into Deleted(old)+Added(new)
	// per spec §4.1.
	DiffNameStatus(projectPath, fromCommit string) (map[string]ChangeStatus, error)

	// WorkingTreeStatus runs `git status --porcelain` and classifies dirty
	// paths the same way, for include_uncommitted unions.
	WorkingTreeStatus(projectPath string) (map[string]ChangeStatus, error)
}

type gitOps struct{}

// NewOperations returns the real git-backed Operations implementation.
func NewOperations() Operations { return &gitOps{} }

func (g *gitOps) IsRepo(projectPath string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = projectPath
	out, err := cmd.Output()
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

func (g *gitOps) CurrentCommit(projectPath string) string {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = projectPath
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func (g *gitOps) CurrentBranch(projectPath string) string {
	cmd := exec.Command("git", "branch", "--show-current")
	cmd.Dir = projectPath
	output, err := cmd.Output()
	if err != nil || len(strings.TrimSpace(string(output))) == 0 {
		cmd = exec.Command("git", "rev-parse", "--short", "HEAD")
		cmd.Dir = projectPath
		output, err = cmd.Output()
		if err != nil {
			return "unknown"
		}
		return "detached-" + strings.TrimSpace(string(output))
	}
	return strings.TrimSpace(string(output))
}

// DiffNameStatus implements spec §4.1 branch 2's classification: Added,
// Modified, Renamed (split into Deleted(old)+Added(new)), Deleted.
func (g *gitOps) DiffNameStatus(projectPath, fromCommit string) (map[string]ChangeStatus, error) {
	cmd := exec.Command("git", "diff", "--name-status", "-M", fromCommit+"..HEAD")
	cmd.Dir = projectPath
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}
	return parseNameStatus(out), nil
}

func (g *gitOps) WorkingTreeStatus(projectPath string) (map[string]ChangeStatus, error) {
	cmd := exec.Command("git", "status", "--porcelain")
	cmd.Dir = projectPath
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git status failed: %w", err)
	}
	result := map[string]ChangeStatus{}
	for _, line := range strings.Split(string(out), "\n") {
		if len(line) < 4 {
			continue
		}
		code := strings.TrimSpace(line[:2])
		path := strings.TrimSpace(line[3:])
		if path == "" {
			continue
		}
		if strings.Contains(code, "R") {
			if oldPath, newPath, ok := strings.Cut(path, " -> "); ok {
				result[oldPath] = StatusDeleted
				result[newPath] = StatusAdded
				continue
			}
		}
		switch {
		case strings.Contains(code, "D"):
			result[path] = StatusDeleted
		case strings.Contains(code, "A") || code == "??":
			result[path] = StatusAdded
		default:
			result[path] = StatusModified
		}
	}
	return result, nil
}

// parseNameStatus parses `git diff --name-status -M` output, splitting
// renames into a delete of the old path and an add of the new path.
func parseNameStatus(out []byte) map[string]ChangeStatus {
	result := map[string]ChangeStatus{}
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		code := fields[0]
		switch {
		case strings.HasPrefix(code, "A"):
			result[fields[1]] = StatusAdded
		case strings.HasPrefix(code, "M"):
			result[fields[1]] = StatusModified
		case strings.HasPrefix(code, "D"):
			result[fields[1]] = StatusDeleted
		case strings.HasPrefix(code, "R"):
			if len(fields) >= 3 {
				result[fields[1]] = StatusDeleted
				result[fields[2]] = StatusAdded
			}
		}
	}
	return result
}
