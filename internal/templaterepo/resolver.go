package templaterepo

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/sourcebox-llc/template-lab/internal/constants"
	"github.com/sourcebox-llc/template-lab/internal/template"
)

// fetchErrorPrefix marks an auxiliary file whose content could not be fetched.
const fetchErrorPrefix = "Error fetching file: "

const defaultFlightTimeout = 2 * time.Minute

// Resolver turns repository references into Templates.
type Resolver struct {
	logger        *zerolog.Logger
	client        *Client
	cache         *Cache
	concurrency   int
	flightTimeout time.Duration
	group         singleflight.Group
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCache enables the in-memory resolution cache.
func WithCache(cache *Cache) ResolverOption {
	return func(r *Resolver) {
		r.cache = cache
	}
}

// WithConcurrency caps how many auxiliary files are fetched at once.
func WithConcurrency(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithFlightTimeout bounds one shared repository fetch, which runs
// independently of the callers waiting on it.
func WithFlightTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.flightTimeout = d
		}
	}
}

// NewResolver creates a Resolver backed by client.
func NewResolver(logger *zerolog.Logger, client *Client, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		logger:        logger,
		client:        client,
		concurrency:   constants.DefaultResolverConcurrency,
		flightTimeout: defaultFlightTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve parses repoURL and resolves it at its default branch, or at the
// ref embedded in a /tree/<ref> URL.
func (r *Resolver) Resolve(ctx context.Context, repoURL string, meta template.Metadata) (template.Template, error) {
	source, err := ParseReference(repoURL)
	if err != nil {
		return template.Template{}, err
	}
	return r.ResolveSource(ctx, source, meta)
}

// ResolveAt is Resolve pinned to ref. An empty ref behaves like Resolve.
func (r *Resolver) ResolveAt(ctx context.Context, repoURL, ref string, meta template.Metadata) (template.Template, error) {
	source, err := ParseReference(repoURL)
	if err != nil {
		return template.Template{}, err
	}
	if ref != "" {
		source = source.WithRef(ref)
	}
	return r.ResolveSource(ctx, source, meta)
}

// ResolveSource resolves source. An empty source.Ref is replaced by the
// repository's default branch.
func (r *Resolver) ResolveSource(ctx context.Context, source RepoSource, meta template.Metadata) (template.Template, error) {
	if err := ctx.Err(); err != nil {
		return template.Template{}, fmt.Errorf("resolution of %s interrupted: %w", source, err)
	}
	if source.Ref == "" {
		branch, err := r.client.DefaultBranch(ctx, source)
		if err != nil {
			return template.Template{}, newResolutionError(MetadataFetchError, source.String(), "failed to fetch repository info", err)
		}
		source.Ref = branch
	}

	if r.cache != nil {
		if t, ok := r.cache.Load(source); ok {
			return t.WithMetadata(meta), nil
		}
	}

	// The flight outlives any one caller; each caller waits on its own ctx.
	ch := r.group.DoChan(source.Key(), func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.flightTimeout)
		defer cancel()

		t, err := r.fetch(flightCtx, source)
		if err != nil {
			return nil, err
		}
		if r.cache != nil {
			r.cache.Save(source, t)
		}
		return t, nil
	})

	select {
	case <-ctx.Done():
		return template.Template{}, fmt.Errorf("resolution of %s interrupted: %w", source, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return template.Template{}, res.Err
		}
		if res.Shared {
			r.logger.Debug().Msgf("Shared in-flight resolution of %s", source)
		}
		return res.Val.(template.Template).WithMetadata(meta), nil
	}
}

// ResolveRaw builds a one-file Template from a single file URL. GitHub blob
// view URLs are rewritten to their raw form first.
func (r *Resolver) ResolveRaw(ctx context.Context, fileURL string, meta template.Metadata) (template.Template, error) {
	rawURL := NormalizeRawURL(fileURL)
	r.logger.Debug().Msgf("Fetching the template from %s", rawURL)

	content, err := r.client.FetchRaw(ctx, rawURL)
	if err != nil {
		return template.Template{}, newResolutionError(MainFileFetchError, rawURL, "failed to download template", err)
	}

	name := path.Base(strings.TrimRight(strings.SplitN(rawURL, "?", 2)[0], "/"))
	if name == "." || name == "/" || name == "" {
		name = template.DefaultMainFile
	}
	return template.New(name, content, nil).WithMetadata(meta), nil
}

func (r *Resolver) fetch(ctx context.Context, source RepoSource) (template.Template, error) {
	files, err := r.client.ListFiles(ctx, source)
	if err != nil {
		return template.Template{}, newResolutionError(TreeFetchError, source.String(), "failed to fetch repository tree", err)
	}
	if len(files) == 0 {
		return template.Template{}, newResolutionError(EmptyRepository, source.String(), "no files found in the repository", nil)
	}

	mainFile := SelectMainFile(files)
	r.logger.Debug().Msgf("Selected main file %s for %s", mainFile, source)

	mainContent, err := r.client.FetchFile(ctx, source, mainFile)
	if err != nil {
		return template.Template{}, newResolutionError(MainFileFetchError, r.client.FileURL(source, mainFile), "failed to fetch main file", err)
	}

	others, err := r.fetchOthers(ctx, source, files, mainFile)
	if err != nil {
		return template.Template{}, fmt.Errorf("resolution of %s interrupted: %w", source, err)
	}

	return template.New(mainFile, mainContent, others), nil
}

// fetchOthers fetches every file except mainFile. A failed file gets a
// placeholder instead of failing the group; only cancellation stops it.
func (r *Resolver) fetchOthers(ctx context.Context, source RepoSource, files []string, mainFile string) (map[string]string, error) {
	var mu sync.Mutex
	others := make(map[string]string, len(files)-1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, file := range files {
		if file == mainFile {
			continue
		}
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			content, err := r.client.FetchFile(gctx, source, file)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				r.logger.Warn().Err(err).Msgf("Failed to fetch %s from %s", file, source)
				content = fetchErrorPrefix + err.Error()
			}

			mu.Lock()
			others[file] = content
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return others, nil
}

// SelectMainFile picks the entry-point file: app.py, then main.py, then the
// smallest .py path, then the smallest path overall. Paths compare
// case-insensitively, with byte order breaking ties.
func SelectMainFile(files []string) string {
	if len(files) == 0 {
		return ""
	}

	present := make(map[string]bool, len(files))
	var pyFiles []string
	for _, f := range files {
		present[f] = true
		if strings.HasSuffix(f, ".py") {
			pyFiles = append(pyFiles, f)
		}
	}

	switch {
	case present["app.py"]:
		return "app.py"
	case present["main.py"]:
		return "main.py"
	case len(pyFiles) > 0:
		return smallestPath(pyFiles)
	}
	return smallestPath(files)
}

func smallestPath(paths []string) string {
	best := paths[0]
	for _, p := range paths[1:] {
		if pathLess(p, best) {
			best = p
		}
	}
	return best
}

func pathLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// IsFetchErrorPlaceholder reports whether content is the placeholder left
// for an auxiliary file that could not be fetched.
func IsFetchErrorPlaceholder(content string) bool {
	return strings.HasPrefix(content, fetchErrorPrefix)
}
