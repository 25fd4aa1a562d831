// Package ingest validates repository references and materializes
// working trees via shallow git clones.
package ingest

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrorKind classifies ingest failures.
type ErrorKind int

const (
	// KindInvalidReference means the reference never pointed at a
	// plausible repository; rejected before any network activity.
	KindInvalidReference ErrorKind = iota
	// KindUnreachable means the host or repository could not be reached.
	KindUnreachable
	// KindAuthRequired means the remote rejected our credentials.
	KindAuthRequired
	// KindCloneFailed covers all other clone errors.
	KindCloneFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidReference:
		return "invalid reference"
	case KindUnreachable:
		return "unreachable"
	case KindAuthRequired:
		return "authentication required"
	case KindCloneFailed:
		return "clone failed"
	}
	return "unknown"
}

// IngestError wraps an ingest failure with its classification.
type IngestError struct {
	Kind ErrorKind
	Ref  string
	Err  error
}

func (e *IngestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Ref, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Ref)
}

func (e *IngestError) Unwrap() error { return e.Err }

// Ref identifies a remote repository.
type Ref struct {
	Host   string
	Owner  string
	Name   string
	Branch string // optional; empty means the remote default
	URL    string // normalized https clone URL
}

// String returns the canonical owner/name form.
func (r *Ref) String() string {
	return r.Owner + "/" + r.Name
}

var nameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ParseRef validates a raw repository reference. Accepted forms are
// https URLs on any git host whose path is owner/name, with an optional
// .git suffix. Anything else fails with KindInvalidReference.
func ParseRef(raw string) (*Ref, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &IngestError{Kind: KindInvalidReference, Ref: raw, Err: fmt.Errorf("empty reference")}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, &IngestError{Kind: KindInvalidReference, Ref: raw, Err: err}
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, &IngestError{Kind: KindInvalidReference, Ref: raw, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return nil, &IngestError{Kind: KindInvalidReference, Ref: raw, Err: fmt.Errorf("missing host")}
	}

	path := strings.Trim(u.Path, "/")
	segments := strings.Split(path, "/")
	if len(segments) != 2 || segments[0] == "" || segments[1] == "" {
		return nil, &IngestError{Kind: KindInvalidReference, Ref: raw, Err: fmt.Errorf("path must be owner/name")}
	}

	owner := segments[0]
	name := strings.TrimSuffix(segments[1], ".git")
	if !nameRe.MatchString(owner) || !nameRe.MatchString(name) {
		return nil, &IngestError{Kind: KindInvalidReference, Ref: raw, Err: fmt.Errorf("invalid owner or repository name")}
	}

	return &Ref{
		Host:  u.Host,
		Owner: owner,
		Name:  name,
		URL:   fmt.Sprintf("https://%s/%s/%s.git", u.Host, owner, name),
	}, nil
}
