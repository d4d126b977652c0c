package monorepo

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/raphi011/monorepo/internal/git"
	"github.com/raphi011/monorepo/internal/log"
	"github.com/raphi011/monorepo/internal/registry"
)

// InitialCommitMessage is used for the empty commit that gives a new
// monorepo a HEAD to merge subtrees into.
const InitialCommitMessage = "Initial commit"

// splitBranchPrefix names the temporary branch a split is written to.
const splitBranchPrefix = "split/"

// Engine runs subtree workflows against one monorepo.
type Engine struct {
	repo         *git.Repo
	registryPath string
}

// New creates an engine for the monorepo at repo. registryPath is
// resolved against the monorepo directory when relative.
func New(repo *git.Repo, registryPath string) *Engine {
	if registryPath == "" {
		registryPath = registry.DefaultFile
	}
	if !filepath.IsAbs(registryPath) {
		registryPath = filepath.Join(repo.Dir(), registryPath)
	}
	return &Engine{repo: repo, registryPath: registryPath}
}

// RegistryPath returns the absolute path of the registry file.
func (e *Engine) RegistryPath() string {
	return e.registryPath
}

// Result describes a finished workflow.
type Result struct {
	Name       string
	Repository string
	Directory  string
	Ref        string // ref merged from, or branch pushed to for a split
	Commit     string // split commit id
	Replaced   bool   // an existing registry entry was overwritten
	Registered bool   // the registry file was rewritten
}

// AddOptions configures Add.
type AddOptions struct {
	Name       string
	Repository string
	Ref        string // defaults to the monorepo's current branch
	Directory  string // defaults to Name
	Squash     bool
}

// SplitOptions configures Split.
type SplitOptions struct {
	Name       string
	Repository string
	Directory  string // defaults to the registered directory, then Name
	Branch     string // defaults to the monorepo's current branch
}

// PullOptions configures Pull.
type PullOptions struct {
	Name   string
	Ref    string // defaults to the monorepo's current branch
	Squash bool
}

// Init makes the monorepo directory a repository with at least one commit
// and writes an empty registry when none exists yet.
func (e *Engine) Init(ctx context.Context) (*Result, error) {
	if err := e.ensureRepository(ctx); err != nil {
		return nil, err
	}

	res := &Result{}
	if _, err := os.Stat(e.registryPath); err == nil {
		return res, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, &registry.CorruptError{Path: e.registryPath, Err: err}
	}

	if err := registry.New().Save(e.registryPath); err != nil {
		return res, err
	}
	res.Registered = true
	return res, nil
}

// Add imports ref of repository into the monorepo under the package
// directory and records the package. Nothing is recorded unless every git
// step succeeded, and a remote created by a failed Add is removed again.
func (e *Engine) Add(ctx context.Context, opts AddOptions) (res *Result, err error) {
	if err := required("name", opts.Name, "repository", opts.Repository); err != nil {
		return nil, err
	}
	reg, err := registry.Load(e.registryPath)
	if err != nil {
		return nil, err
	}

	dir := opts.Directory
	if dir == "" {
		dir = opts.Name
	}
	prefix, err := cleanPrefix(dir)
	if err != nil {
		return nil, err
	}

	if err := e.ensureRepository(ctx); err != nil {
		return nil, err
	}
	added, err := e.ensureRemote(ctx, opts.Name, opts.Repository, true)
	if added {
		defer func() {
			if res == nil && err != nil {
				e.dropRemote(ctx, opts.Name)
			}
		}()
	}
	if err != nil {
		return nil, err
	}

	ref, err := e.refOrCurrent(ctx, opts.Ref)
	if err != nil {
		return nil, err
	}

	l := log.FromContext(ctx)
	l.Debug("adding subtree", "name", opts.Name, "prefix", prefix, "ref", ref, "squash", opts.Squash)
	if err := e.repo.SubtreeAdd(ctx, prefix, opts.Name, ref, opts.Squash); err != nil {
		return nil, err
	}
	if err := e.repo.SubtreePull(ctx, prefix, opts.Name, ref, opts.Squash); err != nil {
		return nil, err
	}

	res = &Result{
		Name:       opts.Name,
		Repository: opts.Repository,
		Directory:  prefix,
		Ref:        ref,
		Replaced:   reg.Upsert(opts.Name, opts.Repository, prefix),
	}
	if err := reg.Save(e.registryPath); err != nil {
		return res, err
	}
	res.Registered = true
	return res, nil
}

// Pull merges new commits of a registered package into its directory.
// The registry is not modified.
func (e *Engine) Pull(ctx context.Context, opts PullOptions) (*Result, error) {
	if err := required("name", opts.Name); err != nil {
		return nil, err
	}
	reg, err := registry.Load(e.registryPath)
	if err != nil {
		return nil, err
	}
	pkg, ok := reg.Get(opts.Name)
	if !ok {
		return nil, &UnknownPackageError{Name: opts.Name, Suggestions: reg.Suggest(opts.Name)}
	}

	if _, err := e.ensureRemote(ctx, opts.Name, pkg.Repository, false); err != nil {
		return nil, err
	}
	ref, err := e.refOrCurrent(ctx, opts.Ref)
	if err != nil {
		return nil, err
	}

	log.FromContext(ctx).Debug("pulling subtree", "name", opts.Name, "prefix", pkg.Directory, "ref", ref)
	if err := e.repo.SubtreePull(ctx, pkg.Directory, opts.Name, ref, opts.Squash); err != nil {
		return nil, err
	}

	return &Result{
		Name:       opts.Name,
		Repository: pkg.Repository,
		Directory:  pkg.Directory,
		Ref:        ref,
	}, nil
}

// Split extracts the history of the package directory and pushes it to
// repository, creating a bare repository first when repository is a local
// path that does not hold one. The push addresses repository directly, so
// the package remote used by Add and Pull is left alone. The registry is
// updated only when the package is not yet recorded for that repository.
func (e *Engine) Split(ctx context.Context, opts SplitOptions) (res *Result, err error) {
	if err := required("name", opts.Name, "repository", opts.Repository); err != nil {
		return nil, err
	}
	reg, err := registry.Load(e.registryPath)
	if err != nil {
		return nil, err
	}
	existing, registered := reg.Get(opts.Name)

	dir := opts.Directory
	switch {
	case dir != "":
	case registered:
		dir = existing.Directory
	default:
		dir = opts.Name
	}
	prefix, err := cleanPrefix(dir)
	if err != nil {
		return nil, err
	}

	branch, err := e.refOrCurrent(ctx, opts.Branch)
	if err != nil {
		return nil, err
	}

	if IsLocalPath(opts.Repository) {
		if err := e.ensureBareTarget(ctx, opts.Repository); err != nil {
			return nil, err
		}
	}
	l := log.FromContext(ctx)
	tmp := splitBranchPrefix + opts.Name
	l.Debug("splitting subtree", "name", opts.Name, "prefix", prefix, "branch", tmp)
	commit, err := e.repo.SubtreeSplit(ctx, prefix, tmp)
	if err != nil {
		return nil, err
	}
	defer func() {
		if delErr := e.repo.DeleteBranch(ctx, tmp); delErr != nil {
			if err == nil {
				err = delErr
			} else {
				l.Debug("temporary branch not removed", "branch", tmp, "error", delErr)
			}
		}
	}()

	if _, err := e.repo.PushRef(ctx, opts.Repository, tmp, "refs/heads/"+branch); err != nil {
		return nil, err
	}

	res = &Result{
		Name:       opts.Name,
		Repository: opts.Repository,
		Directory:  prefix,
		Ref:        branch,
		Commit:     commit,
	}
	if registered && existing.Repository == opts.Repository {
		return res, nil
	}
	res.Replaced = reg.Upsert(opts.Name, opts.Repository, prefix)
	if err := reg.Save(e.registryPath); err != nil {
		return res, err
	}
	res.Registered = true
	return res, nil
}

// ensureRepository initialises the monorepo directory and gives it a first
// commit when needed, so subtrees can be merged into an empty directory.
func (e *Engine) ensureRepository(ctx context.Context) error {
	root, err := e.repo.IsRepositoryRoot(ctx)
	if err != nil {
		return err
	}
	if !root {
		log.FromContext(ctx).Debug("initialising repository", "dir", e.repo.Dir())
		if err := e.repo.Init(ctx, false); err != nil {
			return err
		}
	}

	has, err := e.repo.HasCommits(ctx)
	if err != nil {
		return err
	}
	if !has {
		return e.repo.Commit(ctx, InitialCommitMessage, true)
	}
	return nil
}

// ensureRemote adds the remote unless it already exists with the same URL.
// added reports whether this call created it. git records the remote before
// fetching, so a failed fetch still counts as added.
func (e *Engine) ensureRemote(ctx context.Context, name, url string, fetch bool) (added bool, err error) {
	existing, ok, err := e.repo.RemoteURL(ctx, name)
	if err != nil {
		return false, err
	}
	if ok {
		if existing != url {
			return false, &RemoteConflictError{Name: name, Existing: existing, Wanted: url}
		}
		return false, nil
	}
	return true, e.repo.AddRemote(ctx, name, url, fetch)
}

// dropRemote removes a remote left behind by a failed workflow. It runs
// even when ctx is already cancelled.
func (e *Engine) dropRemote(ctx context.Context, name string) {
	if err := e.repo.RemoveRemote(context.WithoutCancel(ctx), name); err != nil {
		log.FromContext(ctx).Debug("remote not removed", "name", name, "error", err)
	}
}

// ensureBareTarget makes sure a local split target holds a repository.
func (e *Engine) ensureBareTarget(ctx context.Context, dir string) error {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(e.repo.Dir(), dir)
	}
	target, err := e.repo.At(dir)
	if err != nil {
		return err
	}
	root, err := target.IsRepositoryRoot(ctx)
	if err != nil || root {
		return err
	}
	log.FromContext(ctx).Debug("creating bare repository", "dir", target.Dir())
	return target.Init(ctx, true)
}

func (e *Engine) refOrCurrent(ctx context.Context, ref string) (string, error) {
	if ref != "" {
		return ref, nil
	}
	return e.repo.CurrentBranch(ctx)
}

// cleanPrefix normalizes a package directory to a slash separated path
// relative to the monorepo root.
func cleanPrefix(dir string) (string, error) {
	p := path.Clean(filepath.ToSlash(dir))
	if p == "." || path.IsAbs(p) || p == ".." || strings.HasPrefix(p, "../") || filepath.IsAbs(dir) {
		return "", &InvalidDirectoryError{Directory: dir}
	}
	return p, nil
}

// IsLocalPath reports whether a repository location is a filesystem path
// rather than a URL or scp-like address (user@host:path).
func IsLocalPath(repository string) bool {
	if strings.Contains(repository, "://") {
		return false
	}
	colon := strings.IndexByte(repository, ':')
	if colon < 0 {
		return true
	}
	slash := strings.IndexByte(repository, '/')
	return slash >= 0 && slash < colon
}

func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return &MissingArgumentError{Name: pairs[i]}
		}
	}
	return nil
}
