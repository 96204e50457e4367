// Package ports declares the upstream services the tracker server talks to.
package ports

import (
	"context"
	"errors"

	"github.com/ayoisaiah/worklog/tracker"
)

// ErrIssueNotFound is returned by an IssueLookup when the key does not
// resolve to an issue.
var ErrIssueNotFound = errors.New("issue not found")

// Issue is the upstream record an issue key resolves to.
type Issue struct {
	Key string
	ID  string
}

// IssueLookup resolves issue keys before a tracker is created for them.
type IssueLookup interface {
	Lookup(ctx context.Context, key string) (Issue, error)
}

// Submitter books tracked time upstream.
type Submitter interface {
	Submit(ctx context.Context, worklogs []tracker.View) error
}
