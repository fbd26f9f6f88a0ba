package links

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dislovemartin/prompts/weburl"
)

const userAgent = "prompts-linkcheck/1.0"

// Issue is one broken link finding.
type Issue struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Target string `json:"target"`
	Reason string `json:"reason"`
}

// Result aggregates one checking run.
type Result struct {
	Files  int
	Links  int
	Issues []Issue
}

// OK reports whether the run found no broken links.
func (r *Result) OK() bool {
	return len(r.Issues) == 0
}

// Options configure a Checker.
type Options struct {
	// Root resolves targets that start with a slash. Defaults to ".".
	Root string
	// External enables probing of http(s) targets.
	External bool
	// Timeout bounds each external request.
	Timeout time.Duration
	// Concurrency bounds parallel external probes.
	Concurrency int
	Logger      *slog.Logger
}

// Checker finds broken links across a batch of markdown files.
type Checker struct {
	root        string
	external    bool
	concurrency int
	logger      *slog.Logger
	client      *http.Client

	// anchors caches heading slugs per file path.
	anchors map[string]map[string]bool
}

// NewChecker creates a checker with the given options.
func NewChecker(opts Options) *Checker {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Checker{
		root:        opts.Root,
		external:    opts.External,
		concurrency: opts.Concurrency,
		logger:      logger,
		client:      &http.Client{Timeout: opts.Timeout},
		anchors:     make(map[string]map[string]bool),
	}
}

type externalRef struct {
	file string
	line int
}

// CheckFiles checks every file and returns the combined result.
// Unreadable files are skipped with a warning; a broken link never
// aborts the run.
func (c *Checker) CheckFiles(ctx context.Context, paths []string) (*Result, error) {
	res := &Result{}
	external := make(map[string][]externalRef)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			c.logger.Warn("skipping unreadable file", "path", path, "error", err)
			continue
		}
		res.Files++

		text := string(data)
		if _, ok := c.anchors[path]; !ok {
			c.anchors[path] = Anchors(text)
		}

		fileLinks := ExtractLinks(text)
		res.Links += len(fileLinks)

		for _, link := range fileLinks {
			switch classify(link.Target) {
			case kindSkip:
			case kindExternal:
				if c.external {
					external[link.Target] = append(external[link.Target], externalRef{file: path, line: link.Line})
				}
			case kindFragment:
				frag := unescapeFragment(strings.TrimPrefix(link.Target, "#"))
				if !c.anchors[path][strings.ToLower(frag)] {
					res.Issues = append(res.Issues, Issue{
						File:   path,
						Line:   link.Line,
						Target: link.Target,
						Reason: fmt.Sprintf("anchor #%s not found", frag),
					})
				}
			case kindInternal:
				if issue, broken := c.checkInternal(path, link); broken {
					res.Issues = append(res.Issues, issue)
				}
			}
		}

		c.logger.Debug("checked file", "path", path, "links", len(fileLinks))
	}

	if c.external && len(external) > 0 {
		c.checkExternal(ctx, external, res)
	}

	sort.Slice(res.Issues, func(i, j int) bool {
		a, b := res.Issues[i], res.Issues[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Target < b.Target
	})

	return res, nil
}

type targetKind int

const (
	kindInternal targetKind = iota
	kindExternal
	kindFragment
	kindSkip
)

// classify buckets a link destination for checking.
func classify(target string) targetKind {
	switch {
	case target == "":
		return kindSkip
	case strings.HasPrefix(target, "#"):
		return kindFragment
	case strings.HasPrefix(target, "http://"), strings.HasPrefix(target, "https://"):
		return kindExternal
	case strings.HasPrefix(target, "//"):
		return kindExternal
	case strings.Contains(target, ":"):
		// mailto:, tel:, data:, and other schemes.
		return kindSkip
	default:
		return kindInternal
	}
}

// checkInternal resolves a file target relative to its source document
// and verifies the file, and any fragment anchor, exists.
func (c *Checker) checkInternal(sourceFile string, link Link) (Issue, bool) {
	pathPart, frag, _ := strings.Cut(link.Target, "#")
	pathPart, _, _ = strings.Cut(pathPart, "?")
	if unescaped, err := url.PathUnescape(pathPart); err == nil {
		pathPart = unescaped
	}
	frag = unescapeFragment(frag)

	var resolved string
	if strings.HasPrefix(pathPart, "/") {
		resolved = filepath.Join(c.root, pathPart)
	} else {
		resolved = filepath.Join(filepath.Dir(sourceFile), pathPart)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return Issue{File: sourceFile, Line: link.Line, Target: link.Target, Reason: "file not found"}, true
	}

	if frag != "" && !info.IsDir() && isMarkdown(resolved) {
		anchors, err := c.loadAnchors(resolved)
		if err != nil {
			return Issue{File: sourceFile, Line: link.Line, Target: link.Target, Reason: "target unreadable"}, true
		}
		if !anchors[strings.ToLower(frag)] {
			return Issue{
				File:   sourceFile,
				Line:   link.Line,
				Target: link.Target,
				Reason: fmt.Sprintf("anchor #%s not found", frag),
			}, true
		}
	}

	return Issue{}, false
}

// unescapeFragment decodes percent-escapes in an anchor fragment so
// targets written "#my%20heading" match the slugged heading. Malformed
// escapes are kept literal.
func unescapeFragment(frag string) string {
	if unescaped, err := url.PathUnescape(frag); err == nil {
		return unescaped
	}
	return frag
}

// loadAnchors reads and caches the anchor set of a markdown file.
func (c *Checker) loadAnchors(path string) (map[string]bool, error) {
	if anchors, ok := c.anchors[path]; ok {
		return anchors, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	anchors := Anchors(string(data))
	c.anchors[path] = anchors
	return anchors, nil
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// checkExternal probes each distinct external target once with bounded
// concurrency, then maps failures back onto every occurrence. Targets
// the URL guard refuses are skipped, not reported.
func (c *Checker) checkExternal(ctx context.Context, targets map[string][]externalRef, res *Result) {
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for target, refs := range targets {
		target, refs := target, refs
		probeURL := target
		if strings.HasPrefix(probeURL, "//") {
			probeURL = "https:" + probeURL
		}
		if err := weburl.ValidateLinkTarget(probeURL); err != nil {
			c.logger.Debug("not probing guarded target", "target", target, "reason", err)
			continue
		}

		g.Go(func() error {
			if err := c.probe(ctx, probeURL); err != nil {
				mu.Lock()
				for _, ref := range refs {
					res.Issues = append(res.Issues, Issue{
						File:   ref.file,
						Line:   ref.line,
						Target: target,
						Reason: err.Error(),
					})
				}
				mu.Unlock()
			}
			return nil
		})
	}

	g.Wait()
}

// probe checks one URL, trying HEAD first and falling back to GET for
// servers that reject HEAD.
func (c *Checker) probe(ctx context.Context, target string) error {
	status, err := c.request(ctx, http.MethodHead, target)
	if err == nil {
		if status < 400 {
			return nil
		}
		if status != http.StatusMethodNotAllowed &&
			status != http.StatusForbidden &&
			status != http.StatusNotImplemented {
			return fmt.Errorf("HTTP %d", status)
		}
	}

	status, err = c.request(ctx, http.MethodGet, target)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if status >= 400 {
		return fmt.Errorf("HTTP %d", status)
	}
	return nil
}

func (c *Checker) request(ctx context.Context, method, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain a little so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, nil
}
