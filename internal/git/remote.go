package git

import (
	"context"
	"fmt"
	"strings"
)

// AddRemote registers a remote, fetching it right away when fetch is set.
func (r *Repo) AddRemote(ctx context.Context, name, url string, fetch bool) error {
	args := []string{"remote", "add"}
	if fetch {
		args = append(args, "-f")
	}
	args = append(args, name, url)
	if _, err := r.run(ctx, args...); err != nil {
		return fmt.Errorf("add remote %s: %w", name, err)
	}
	return nil
}

// RemoveRemote deletes the named remote and its remote-tracking refs.
func (r *Repo) RemoveRemote(ctx context.Context, name string) error {
	if _, err := r.run(ctx, "remote", "remove", name); err != nil {
		return fmt.Errorf("remove remote %s: %w", name, err)
	}
	return nil
}

// Remotes returns the output of git remote -v.
func (r *Repo) Remotes(ctx context.Context) (string, error) {
	return r.output(ctx, "remote", "-v")
}

// RemoteURL returns the fetch URL of the named remote.
// The bool result is false when no such remote exists.
func (r *Repo) RemoteURL(ctx context.Context, name string) (string, bool, error) {
	out, err := r.Remotes(ctx)
	if err != nil {
		return "", false, err
	}
	url, ok := parseRemoteURL(out, name)
	return url, ok, nil
}

// parseRemoteURL finds the fetch URL of name in git remote -v output,
// whose lines look like "origin\thttps://host/repo.git (fetch)".
func parseRemoteURL(out, name string) (string, bool) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != name {
			continue
		}
		if len(fields) >= 3 && fields[2] != "(fetch)" {
			continue
		}
		return fields[1], true
	}
	return "", false
}

// Push pushes the current branch to remote and sets it as upstream.
func (r *Repo) Push(ctx context.Context, remote string) (string, error) {
	branch, err := r.CurrentBranch(ctx)
	if err != nil {
		return "", err
	}
	out, err := r.output(ctx, "push", "--porcelain", "--set-upstream", remote, branch)
	if err != nil {
		return out, fmt.Errorf("push %s to %s: %w", branch, remote, err)
	}
	return out, nil
}

// PushRef pushes localRef to remoteRef on remote.
func (r *Repo) PushRef(ctx context.Context, remote, localRef, remoteRef string) (string, error) {
	refspec := localRef + ":" + remoteRef
	out, err := r.output(ctx, "push", "--porcelain", remote, refspec)
	if err != nil {
		return out, fmt.Errorf("push %s to %s: %w", refspec, remote, err)
	}
	return out, nil
}
