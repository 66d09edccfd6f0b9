// Package remote downloads documents named by URL or arXiv identifier into
// an on-disk cache so the reader can open them like local files.
package remote

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	cacheTTL           = 24 * time.Hour
	partialSuffix      = ".part"
	metaSuffix         = ".meta"
	defaultHTTPTimeout = 90 * time.Second
)

var ErrNotRemote = errors.New("not a URL or arXiv identifier")

var (
	arxivURLRe = regexp.MustCompile(`(?i)arxiv\.org/(?:abs|pdf)/([0-9a-z.\-/]+?)(?:\.pdf)?$`)
	arxivIDRe  = regexp.MustCompile(`(?i)^(?:arxiv:)?(\d{4}\.\d{4,5}(?:v\d+)?)$`)
)

// Source is a resolved remote document.
type Source struct {
	URL  string
	Name string
}

// Resolve maps input to a download URL and a display name. arXiv abstract
// pages and bare identifiers resolve to the paper's PDF.
func Resolve(input string) (Source, error) {
	input = strings.TrimSpace(input)
	if m := arxivIDRe.FindStringSubmatch(input); m != nil {
		return arxivSource(m[1]), nil
	}
	u, err := url.Parse(input)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Source{}, fmt.Errorf("%w: %q", ErrNotRemote, input)
	}
	if m := arxivURLRe.FindStringSubmatch(u.Host + u.Path); m != nil {
		return arxivSource(m[1]), nil
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		name = u.Host
	}
	return Source{URL: u.String(), Name: name}, nil
}

func arxivSource(id string) Source {
	id = strings.TrimSuffix(id, "/")
	return Source{
		URL:  fmt.Sprintf("https://arxiv.org/pdf/%s.pdf", id),
		Name: strings.ReplaceAll(id, "/", "-") + ".pdf",
	}
}

// IsRemote reports whether input should be fetched rather than read from
// disk.
func IsRemote(input string) bool {
	_, err := Resolve(input)
	return err == nil
}

// Cache keeps downloaded documents keyed by URL. Fresh copies are served
// from disk; stale ones are revalidated with ETag or Last-Modified, and
// interrupted downloads resume with a Range request.
type Cache struct {
	dir    string
	client *http.Client
}

type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"lastModified"`
	CachedAt     time.Time `json:"cachedAt"`
	Size         int64     `json:"size"`
}

func NewCache(dir string, client *http.Client) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("cache directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Cache{dir: dir, client: client}, nil
}

// Fetch returns the local path of src, downloading it when needed. A stale
// copy is still served when the server cannot be reached.
func (c *Cache) Fetch(ctx context.Context, src Source) (string, error) {
	docPath, metaPath, partialPath := c.pathsFor(src)

	if info, err := os.Stat(docPath); err == nil && time.Since(info.ModTime()) < cacheTTL && info.Size() > 0 {
		return docPath, nil
	}

	meta, _ := readMeta(metaPath)
	info, _ := os.Stat(docPath)
	p, err := c.download(ctx, src.URL, docPath, metaPath, partialPath, meta, info)
	if err == nil {
		return p, nil
	}
	if info != nil && info.Size() > 0 {
		return docPath, nil
	}
	return "", err
}

func (c *Cache) download(ctx context.Context, rawURL, docPath, metaPath, partialPath string, meta cacheMeta, current os.FileInfo) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	if current != nil && current.Size() > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	var partialSize int64
	if info, err := os.Stat(partialPath); err == nil && info.Size() > 0 {
		partialSize = info.Size()
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", partialSize))
		if meta.ETag != "" {
			req.Header.Set("If-Range", meta.ETag)
		} else if meta.LastModified != "" {
			req.Header.Set("If-Range", meta.LastModified)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		if current != nil && current.Size() > 0 {
			meta.CachedAt = time.Now().UTC()
			now := time.Now()
			_ = os.Chtimes(docPath, now, now)
			_ = writeMeta(metaPath, meta)
			return docPath, nil
		}
		return c.download(ctx, rawURL, docPath, metaPath, partialPath, cacheMeta{}, nil)
	case http.StatusOK:
		return c.saveBody(resp, docPath, metaPath, partialPath, false)
	case http.StatusPartialContent:
		return c.saveBody(resp, docPath, metaPath, partialPath, partialSize > 0)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("download %s failed: %s (%s)", rawURL, resp.Status, string(body))
	}
}

func (c *Cache) saveBody(resp *http.Response, docPath, metaPath, partialPath string, appendExisting bool) (string, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if appendExisting {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(partialPath, flags, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(partialPath, docPath); err != nil {
		return "", err
	}

	meta := cacheMeta{
		URL:          resp.Request.URL.String(),
		ETag:         resp.Header.Get("Etag"),
		LastModified: resp.Header.Get("Last-Modified"),
		CachedAt:     time.Now().UTC(),
	}
	if info, err := os.Stat(docPath); err == nil {
		meta.Size = info.Size()
	}
	if err := writeMeta(metaPath, meta); err != nil {
		return "", err
	}
	return docPath, nil
}

// pathsFor keeps the source's extension on the cached file so the type
// boundary can still classify it by name.
func (c *Cache) pathsFor(src Source) (doc, meta, partial string) {
	key := cacheKey(src.URL)
	base := filepath.Join(c.dir, key)
	return base + strings.ToLower(path.Ext(src.Name)), base + metaSuffix, base + partialSuffix
}

func cacheKey(rawURL string) string {
	sum := sha1.Sum([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}

func readMeta(p string) (cacheMeta, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return cacheMeta{}, err
	}
	var meta cacheMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheMeta{}, err
	}
	return meta, nil
}

func writeMeta(p string, meta cacheMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// Locate turns reader input into a document name and a local path. Remote
// input is fetched through cache and named by its URL; anything else is a
// local path, made absolute, with a leading ~ expanded.
func Locate(ctx context.Context, input string, cache *Cache) (name, local string, err error) {
	if src, err := Resolve(input); err == nil {
		if cache == nil {
			return "", "", fmt.Errorf("cannot fetch %s without a download cache", src.URL)
		}
		p, err := cache.Fetch(ctx, src)
		if err != nil {
			return "", "", err
		}
		return src.URL, p, nil
	}
	p := input
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", "", err
	}
	return abs, abs, nil
}
