package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v68/github"
	gitlab "github.com/xanzy/go-gitlab"
)

// Metadata is hosting-platform information used to enrich the profile.
type Metadata struct {
	Description   string
	DefaultBranch string
	Stars         int
}

// MetadataResolver looks up repository metadata on the hosting platform.
type MetadataResolver interface {
	Resolve(ctx context.Context, ref *Ref) (*Metadata, error)
}

// ResolverFor returns the resolver for the ref's host, or nil when the
// host has no API integration. Callers treat a nil resolver and resolver
// errors the same way: proceed without metadata.
func ResolverFor(ref *Ref, token string) MetadataResolver {
	switch {
	case ref.Host == "github.com":
		return NewGitHubResolver(token)
	case ref.Host == "gitlab.com" || strings.HasPrefix(ref.Host, "gitlab."):
		return NewGitLabResolver("https://"+ref.Host, token)
	default:
		return nil
	}
}

// GitHubResolver resolves metadata via the GitHub REST API.
type GitHubResolver struct {
	client *github.Client
}

// NewGitHubResolver creates a resolver; token may be empty for public
// repositories.
func NewGitHubResolver(token string) *GitHubResolver {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &GitHubResolver{client: client}
}

func (r *GitHubResolver) Resolve(ctx context.Context, ref *Ref) (*Metadata, error) {
	repo, _, err := r.client.Repositories.Get(ctx, ref.Owner, ref.Name)
	if err != nil {
		return nil, fmt.Errorf("fetching GitHub metadata for %s: %w", ref, err)
	}
	return &Metadata{
		Description:   repo.GetDescription(),
		DefaultBranch: repo.GetDefaultBranch(),
		Stars:         repo.GetStargazersCount(),
	}, nil
}

// GitLabResolver resolves metadata via the GitLab API.
type GitLabResolver struct {
	baseURL string
	token   string
}

// NewGitLabResolver creates a resolver for a GitLab instance.
func NewGitLabResolver(baseURL, token string) *GitLabResolver {
	return &GitLabResolver{baseURL: baseURL, token: token}
}

func (r *GitLabResolver) Resolve(ctx context.Context, ref *Ref) (*Metadata, error) {
	client, err := gitlab.NewClient(r.token, gitlab.WithBaseURL(r.baseURL))
	if err != nil {
		return nil, fmt.Errorf("creating GitLab client: %w", err)
	}

	project, _, err := client.Projects.GetProject(ref.String(), nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching GitLab metadata for %s: %w", ref, err)
	}
	return &Metadata{
		Description:   project.Description,
		DefaultBranch: project.DefaultBranch,
		Stars:         project.StarCount,
	}, nil
}
