package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
)

// isGitURL reports whether input names a remote repository rather than a
// local path. Plain http(s) URLs only count when they end in .git.
func isGitURL(input string) bool {
	return (strings.HasSuffix(input, ".git") && strings.Contains(input, "://")) ||
		strings.HasPrefix(input, "git@") ||
		strings.HasPrefix(input, "ssh://") ||
		strings.HasPrefix(input, "git://")
}

// resolveRoot returns a local directory for arg, cloning it first when it is
// a git URL. cleanup removes any temporary clone and is never nil.
func resolveRoot(ctx context.Context, arg string, progress io.Writer) (string, func(), error) {
	if !isGitURL(arg) {
		return arg, func() {}, nil
	}
	dir, err := cloneGitRepo(ctx, arg, progress)
	if err != nil {
		return "", func() {}, err
	}
	return dir, func() {
		logger.Debug("removing clone", zap.String("dir", dir))
		_ = os.RemoveAll(dir)
	}, nil
}

// cloneGitRepo shallow-clones the default branch of url into a temporary
// directory and returns its path.
func cloneGitRepo(ctx context.Context, url string, progress io.Writer) (string, error) {
	tempDir, err := os.MkdirTemp("", "anatomize-git-")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary directory: %w", err)
	}

	logger.Info("cloning repository", zap.String("url", url), zap.String("dir", tempDir))
	_, err = git.PlainCloneContext(ctx, tempDir, false, &git.CloneOptions{
		URL:           url,
		Progress:      progress,
		ReferenceName: plumbing.HEAD,
		SingleBranch:  true,
		Depth:         1,
	})
	if err != nil {
		_ = os.RemoveAll(tempDir)
		return "", fmt.Errorf("failed to clone repository '%s': %w", url, err)
	}
	return tempDir, nil
}
