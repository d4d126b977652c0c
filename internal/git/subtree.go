package git

import (
	"context"
	"fmt"
	"strings"
)

func subtreeArgs(op, prefix, remote, ref string, squash bool) []string {
	args := []string{"subtree", op, "--prefix", prefix, remote, ref}
	if squash {
		args = append(args, "--squash")
	}
	return args
}

// SubtreeAdd merges ref of remote into the repository under prefix.
// With squash the imported history is collapsed into a single commit.
func (r *Repo) SubtreeAdd(ctx context.Context, prefix, remote, ref string, squash bool) error {
	if _, err := r.run(ctx, subtreeArgs("add", prefix, remote, ref, squash)...); err != nil {
		return fmt.Errorf("subtree add %s: %w", prefix, err)
	}
	return nil
}

// SubtreePull merges new commits of ref from remote into prefix.
func (r *Repo) SubtreePull(ctx context.Context, prefix, remote, ref string, squash bool) error {
	if _, err := r.run(ctx, subtreeArgs("pull", prefix, remote, ref, squash)...); err != nil {
		return fmt.Errorf("subtree pull %s: %w", prefix, err)
	}
	return nil
}

// SubtreeSplit writes the history of prefix to branch, with prefix as the
// root, and returns the id of the split commit.
func (r *Repo) SubtreeSplit(ctx context.Context, prefix, branch string) (string, error) {
	out, err := r.output(ctx, "subtree", "split", "--prefix", prefix, "-b", branch)
	if err != nil {
		return "", fmt.Errorf("subtree split %s: %w", prefix, err)
	}
	// progress lines precede the commit id on the last line
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[len(fields)-1], nil
}
