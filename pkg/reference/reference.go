// Package reference loads the reference block table.
//
// The reference table describes vanilla blocks for packs that ship textures
// without a blocks.json, or whose blocks.json only covers a few overrides.
// It can come from one of four sources:
//
//   - "builtin": the table embedded in the binary
//   - a file path
//   - an http(s) URL, fetched with retries and cached
//   - "none": no reference table
//
// A [Loader] loads its source at most once per process. Load failures are
// logged and yield a nil table, which callers treat as "no reference".
//
// Remote documents are stored in RFC 8785 canonical form, so the same
// content always produces the same cache entry and [Digest], and keys come
// back in sorted order whether or not the cache was hit.
package reference

import (
	"context"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gowebpki/jcs"

	"github.com/matzehuels/cubeskin/pkg/blocks"
	"github.com/matzehuels/cubeskin/pkg/cache"
	"github.com/matzehuels/cubeskin/pkg/errors"
	"github.com/matzehuels/cubeskin/pkg/httputil"
	"github.com/matzehuels/cubeskin/pkg/observability"
)

// Well-known sources.
const (
	SourceBuiltin = "builtin"
	SourceNone    = "none"
)

// DefaultSource is used when no source is configured.
const DefaultSource = SourceBuiltin

//go:embed blocks_reference.json
var builtinJSON []byte

// Builtin returns the embedded reference document.
func Builtin() []byte {
	return builtinJSON
}

// IsURL reports whether source is fetched over HTTP.
func IsURL(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Canonicalize returns the RFC 8785 (JCS) canonical form of a JSON document.
func Canonicalize(data []byte) ([]byte, error) {
	out, err := jcs.Transform(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "canonicalize reference")
	}
	return out, nil
}

// Digest canonicalizes data and returns the hex SHA-256 of the result.
func Digest(data []byte) (string, error) {
	canonical, err := Canonicalize(data)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Loader loads a reference table from a single source.
type Loader struct {
	Source  string
	Cache   cache.Cache
	Keyer   cache.Keyer
	Client  *httputil.Client
	Refresh bool
	Logger  *log.Logger

	once   sync.Once
	table  *blocks.Table
	digest string
	err    error
}

// NewLoader creates a loader for source. An empty source means
// [DefaultSource]. A nil cache disables caching of remote documents.
func NewLoader(source string, c cache.Cache, logger *log.Logger) *Loader {
	if source == "" {
		source = DefaultSource
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Loader{
		Source: source,
		Cache:  c,
		Keyer:  cache.NewDefaultKeyer(),
		Client: httputil.NewClient(nil),
		Logger: logger,
	}
}

// Load returns the reference table, or nil if the source is "none" or could
// not be loaded. Only the first call does any work.
func (l *Loader) Load(ctx context.Context) *blocks.Table {
	l.once.Do(func() {
		l.table, l.digest, l.err = l.load(ctx)
		switch {
		case l.err != nil:
			l.Logger.Warn("reference table unavailable", "source", l.Source, "error", l.err)
			l.table = nil
		case l.table != nil:
			l.Logger.Debug("loaded reference table", "source", l.Source, "blocks", l.table.Len(), "digest", l.digest)
		}
	})
	return l.table
}

// Err returns the error from the first Load, if any.
func (l *Loader) Err() error {
	return l.err
}

// Digest returns the SHA-256 of the canonical reference document. It is
// empty until Load succeeds.
func (l *Loader) Digest() string {
	return l.digest
}

func (l *Loader) load(ctx context.Context) (*blocks.Table, string, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case strings.EqualFold(l.Source, SourceNone):
		return nil, "", nil
	case strings.EqualFold(l.Source, SourceBuiltin):
		data = builtinJSON
	case IsURL(l.Source):
		data, err = l.fetch(ctx)
	default:
		data, err = os.ReadFile(l.Source)
		if err != nil {
			err = errors.Wrap(errors.ErrCodeFileNotFound, err, "read reference %s", l.Source)
		}
	}
	if err != nil {
		return nil, "", err
	}

	table, err := blocks.Parse(data)
	if err != nil {
		return nil, "", err
	}
	digest, err := Digest(data)
	if err != nil {
		return nil, "", err
	}
	return table, digest, nil
}

// fetch returns the canonical remote document, from the cache when possible.
func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	key := l.Keyer.ReferenceKey(l.Source)
	hooks := observability.Cache()

	if !l.Refresh {
		if data, ok, err := l.Cache.Get(ctx, key); err == nil && ok {
			hooks.OnCacheHit(ctx, "reference")
			return data, nil
		}
		hooks.OnCacheMiss(ctx, "reference")
	}

	var body []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		body, err = l.Client.Get(ctx, l.Source)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch reference %s", l.Source)
	}

	canonical, err := Canonicalize(body)
	if err != nil {
		return nil, err
	}
	if err := l.Cache.Set(ctx, key, canonical, cache.TTLReference); err != nil {
		l.Logger.Debug("reference cache write failed", "error", err)
	} else {
		hooks.OnCacheSet(ctx, "reference", len(canonical))
	}
	return canonical, nil
}

// Describe returns a short human-readable description of source.
func Describe(source string) string {
	switch {
	case source == "" || strings.EqualFold(source, SourceBuiltin):
		return "built-in reference table"
	case strings.EqualFold(source, SourceNone):
		return "no reference table"
	case IsURL(source):
		return fmt.Sprintf("reference table from %s", source)
	default:
		return fmt.Sprintf("reference table file %s", source)
	}
}
