package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
)

// FetchResult records where one dependency ended up on disk.
type FetchResult struct {
	Name   string
	Dir    string
	Commit string
}

// FetchDependencies materializes the manifest's git and path dependencies
// under cacheDir. Checkouts are keyed by resolved commit, so a dependency
// already fetched at the pinned revision is reused without touching the
// network. Version-constraint dependencies need a registry and are
// rejected here.
func FetchDependencies(log *zap.Logger, m *Manifest, cacheDir string) (map[string]*FetchResult, error) {
	results := make(map[string]*FetchResult, len(m.Dependencies))
	for name, spec := range m.Dependencies {
		switch {
		case spec == nil:
			continue
		case spec.Path != "":
			dir := spec.Path
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(filepath.Dir(m.Path), dir)
			}
			info, err := os.Stat(dir)
			if err != nil {
				return nil, fmt.Errorf("dependency %q: path %s: %w", name, dir, err)
			}
			if !info.IsDir() {
				return nil, fmt.Errorf("dependency %q: %s is not a directory", name, dir)
			}
			results[name] = &FetchResult{Name: name, Dir: dir}
		case spec.Git != "":
			res, err := fetchGit(log, cacheDir, name, spec)
			if err != nil {
				return nil, err
			}
			results[name] = res
		default:
			return nil, fmt.Errorf("dependency %q: version constraints require a registry, use git or path", name)
		}
	}
	return results, nil
}

func fetchGit(log *zap.Logger, cacheDir, name string, spec *DependencySpec) (*FetchResult, error) {
	baseDir := filepath.Join(cacheDir, "src", sanitizeSegment(name))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}

	revision, descriptor := revisionFromSpec(spec)

	// An explicit rev is already a stable key; if it is on disk the
	// clone can be skipped entirely.
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		dir := filepath.Join(baseDir, sanitizeSegment(rev))
		if _, err := os.Stat(dir); err == nil {
			log.Debug("dependency already fetched",
				zap.String("dependency", name), zap.String("rev", rev))
			return &FetchResult{Name: name, Dir: dir, Commit: rev}, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return nil, err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return nil, err
	}

	log.Debug("cloning dependency",
		zap.String("dependency", name), zap.String("url", spec.Git))
	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{
		URL:   spec.Git,
		Depth: 1,
	})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("dependency %q: clone %s: %w", name, spec.Git, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("dependency %q: resolve %s: %w", name, revision, err)
	}

	targetDir := filepath.Join(baseDir, sanitizeSegment(hash.String()))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return &FetchResult{Name: name, Dir: targetDir, Commit: hash.String()}, nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("dependency %q: checkout %s: %w", name, descriptor, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, err
	}
	return &FetchResult{Name: name, Dir: targetDir, Commit: hash.String()}, nil
}

// revisionFromSpec picks the revision to resolve. With no selector the
// remote's HEAD is used.
func revisionFromSpec(spec *DependencySpec) (plumbing.Revision, string) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/heads/" + branch), branch
	}
	return plumbing.Revision("HEAD"), "HEAD"
}

func sanitizeSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	var b strings.Builder
	for _, r := range segment {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "head"
	}
	return b.String()
}
