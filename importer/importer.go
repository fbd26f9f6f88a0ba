package importer

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dislovemartin/prompts/weburl"
)

// Options configure an Importer.
type Options struct {
	// Timeout bounds the page fetch.
	Timeout time.Duration
	// UserAgent identifies the fetcher.
	UserAgent string
	// MaxContentSize caps the fetched body in bytes.
	MaxContentSize int64
	// Category is written into the template frontmatter.
	Category string
	Logger   *slog.Logger
}

// Importer fetches a page and writes it into the corpus as a template.
type Importer struct {
	fetcher   *Fetcher
	converter *Converter
	category  string
	logger    *slog.Logger
	now       func() time.Time
}

// New creates an importer with the given options.
func New(opts Options) *Importer {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "prompts-importer/1.0"
	}
	if opts.MaxContentSize <= 0 {
		opts.MaxContentSize = 10 * 1024 * 1024
	}
	if opts.Category == "" {
		opts.Category = "imported"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Importer{
		fetcher:   NewFetcher(opts.Timeout, opts.UserAgent, opts.MaxContentSize),
		converter: NewConverter(),
		category:  opts.Category,
		logger:    logger,
		now:       time.Now,
	}
}

// frontmatter is the provenance header of an imported template.
type frontmatter struct {
	Title      string `yaml:"title"`
	SourceURL  string `yaml:"source_url"`
	ImportedAt string `yaml:"imported_at"`
	Category   string `yaml:"category"`
	Byline     string `yaml:"byline,omitempty"`
	Summary    string `yaml:"summary,omitempty"`
}

// Import fetches rawURL and writes the converted template into outDir.
// The filename is the URL slug; an existing file with the same slug is
// overwritten. Returns the written path.
func (i *Importer) Import(ctx context.Context, rawURL, outDir string) (string, error) {
	fetched, err := i.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	pageURL, err := url.Parse(fetched.FinalURL)
	if err != nil {
		return "", fmt.Errorf("parse final URL: %w", err)
	}

	converted, err := i.converter.Convert(fetched.Body, pageURL)
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", rawURL, err)
	}
	if strings.TrimSpace(converted.Markdown) == "" {
		return "", fmt.Errorf("no article content extracted from %s", rawURL)
	}

	slug := weburl.Slug(rawURL)
	if !weburl.ValidSlug(slug) {
		return "", fmt.Errorf("could not derive a filename from %s", rawURL)
	}

	doc, err := i.render(converted, rawURL)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(outDir, slug+".md")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return "", fmt.Errorf("write template: %w", err)
	}

	i.logger.Info("imported template",
		"url", rawURL, "path", path, "title", converted.Title)

	return path, nil
}

// render assembles the frontmatter block and the markdown body.
func (i *Importer) render(converted *ConvertResult, sourceURL string) (string, error) {
	title := converted.Title
	if title == "" {
		title = weburl.ExtractDomain(sourceURL)
	}

	fm := frontmatter{
		Title:      title,
		SourceURL:  sourceURL,
		ImportedAt: i.now().UTC().Format(time.RFC3339),
		Category:   i.category,
		Byline:     converted.Byline,
		Summary:    converted.Excerpt,
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(header)
	sb.WriteString("---\n\n")
	sb.WriteString(converted.Markdown)
	sb.WriteString("\n")
	return sb.String(), nil
}
