package ingest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GitIngester materializes repositories with shallow git clones.
type GitIngester struct {
	cloneDir string
	timeout  time.Duration
}

// NewGitIngester creates an ingester that clones under cloneDir, bounding
// each clone by timeout.
func NewGitIngester(cloneDir string, timeout time.Duration) *GitIngester {
	return &GitIngester{cloneDir: cloneDir, timeout: timeout}
}

// Clone performs a depth-1 clone of ref and returns the working tree
// path. When ref names a branch that does not exist, a second clone
// without the branch flag falls back to the remote default. A non-empty
// credential is injected into the https URL and never logged.
func (g *GitIngester) Clone(ctx context.Context, ref *Ref, credential string) (string, error) {
	if err := os.MkdirAll(g.cloneDir, 0o755); err != nil {
		return "", fmt.Errorf("creating clone dir: %w", err)
	}

	dest := filepath.Join(g.cloneDir, fmt.Sprintf("%s_%s_%s", ref.Owner, ref.Name, uuid.NewString()[:8]))
	cloneURL := ref.URL
	if credential != "" {
		cloneURL = strings.Replace(cloneURL, "https://", "https://"+credential+"@", 1)
	}

	err := g.run(ctx, ref, cloneArgs(cloneURL, dest, ref.Branch))
	if err != nil && ref.Branch != "" {
		os.RemoveAll(dest)
		err = g.run(ctx, ref, cloneArgs(cloneURL, dest, ""))
	}
	if err != nil {
		os.RemoveAll(dest)
		return "", err
	}
	return dest, nil
}

func cloneArgs(url, dest, branch string) []string {
	args := []string{"clone", "--depth", "1"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	return append(args, url, dest)
}

func (g *GitIngester) run(ctx context.Context, ref *Ref, args []string) error {
	cloneCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		cloneCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(cloneCtx, "git", args...)
	out, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}
	if cloneCtx.Err() == context.DeadlineExceeded {
		return &IngestError{Kind: KindUnreachable, Ref: ref.String(), Err: fmt.Errorf("clone timed out")}
	}
	return &IngestError{Kind: classifyCloneError(string(out)), Ref: ref.String(), Err: fmt.Errorf("git clone: %s", sanitize(string(out)))}
}

func classifyCloneError(output string) ErrorKind {
	lower := strings.ToLower(output)
	switch {
	case strings.Contains(lower, "authentication failed"),
		strings.Contains(lower, "could not read username"),
		strings.Contains(lower, "403"):
		return KindAuthRequired
	case strings.Contains(lower, "could not resolve host"),
		strings.Contains(lower, "repository not found"),
		strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "connection timed out"):
		return KindUnreachable
	default:
		return KindCloneFailed
	}
}

// sanitize strips embedded credentials from git output before it can
// reach logs or task state.
func sanitize(s string) string {
	return credentialRe.ReplaceAllString(strings.TrimSpace(s), "https://***@")
}

var credentialRe = regexp.MustCompile(`https://[^@/\s]+@`)

// Cleanup removes a working tree created by Clone. Paths outside the
// clone directory are refused.
func (g *GitIngester) Cleanup(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	root, err := filepath.Abs(g.cloneDir)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return fmt.Errorf("refusing to remove %s: outside clone dir", path)
	}
	return os.RemoveAll(abs)
}
