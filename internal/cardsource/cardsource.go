// Package cardsource keeps the card directory in sync with a git remote.
package cardsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Result describes what Sync did.
type Result string

const (
	ResultCloned   Result = "cloned"
	ResultUpdated  Result = "updated"
	ResultUpToDate Result = "up-to-date"
)

var errNoRemote = errors.New("no git remote is configured for the card directory")

// Sync clones url into directory when it does not exist yet,
// or pulls branch into the existing clone. An empty branch uses the remote HEAD.
// Git progress is written to progress, which may be nil.
func Sync(ctx context.Context, url, branch, directory string, progress io.Writer) (Result, error) {
	if url == "" {
		return "", errNoRemote
	}

	var referenceName plumbing.ReferenceName
	if branch != "" {
		referenceName = plumbing.NewBranchReferenceName(branch)
	}

	_, err := os.Stat(directory)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Default().Info("cloning cards",
			slog.String("url", url),
			slog.String("directory", directory))
		if _, err := git.PlainCloneContext(ctx, directory, false, &git.CloneOptions{
			URL:           url,
			ReferenceName: referenceName,
			SingleBranch:  branch != "",
			Progress:      progress,
		}); err != nil {
			return "", fmt.Errorf("git.PlainClone(%s) > %w", url, err)
		}
		return ResultCloned, nil
	}
	if err != nil {
		return "", fmt.Errorf("os.Stat(%s) > %w", directory, err)
	}

	repo, err := git.PlainOpen(directory)
	if err != nil {
		return "", fmt.Errorf("git.PlainOpen(%s) > %w", directory, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("repo.Worktree() > %w", err)
	}

	slog.Default().Info("pulling cards",
		slog.String("directory", directory),
		slog.String("branch", branch))
	err = worktree.PullContext(ctx, &git.PullOptions{
		RemoteName:    git.DefaultRemoteName,
		ReferenceName: referenceName,
		SingleBranch:  branch != "",
		Progress:      progress,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return ResultUpToDate, nil
	}
	if err != nil {
		return "", fmt.Errorf("worktree.Pull() > %w", err)
	}
	return ResultUpdated, nil
}
