package corpus

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"marginalia/internal/platform/logger"
)

const (
	defaultHTTPTO    = 0
	maxScanTokenSize = 32 * 1024 * 1024
	sampleRawMax     = 2048 // max bytes of raw JSON to log for the sample
)

// Fetcher fetches a reader for a given archive
type Fetcher interface {
	Fetch(ctx context.Context, ref FileRef) (io.ReadCloser, error)
}

// HTTPFetcher fetches archives from a base URL
type HTTPFetcher struct {
	Base   string
	Client *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher for the given base URL
func NewHTTPFetcher(base string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		Base:   strings.TrimRight(base, "/"),
		Client: &http.Client{Timeout: timeout},
	}
}

// Fetch returns a reader for the gzip archive with the given name
func (f *HTTPFetcher) Fetch(ctx context.Context, ref FileRef) (io.ReadCloser, error) {
	if !ref.Valid() {
		return nil, fmt.Errorf("corpus: bad archive name %q", ref.Name)
	}
	url := f.Base + "/" + ref.Name
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return nil, fmt.Errorf(
				"corpus: unexpected status %d for %s; error closing body: %v",
				resp.StatusCode, url, closeErr,
			)
		}
		return nil, fmt.Errorf("corpus: unexpected status %d for %s", resp.StatusCode, url)
	}
	return resp.Body, nil
}

// DirFetcher serves archives straight from a local directory.
// The returned *os.File exposes Name, so callers counting cache hits see
// local reads as hits
type DirFetcher struct {
	Dir string
}

// NewDirFetcher creates a DirFetcher rooted at dir
func NewDirFetcher(dir string) *DirFetcher { return &DirFetcher{Dir: dir} }

// Fetch opens the named archive from the directory
func (f *DirFetcher) Fetch(_ context.Context, ref FileRef) (io.ReadCloser, error) {
	if !ref.Valid() {
		return nil, fmt.Errorf("corpus: bad archive name %q", ref.Name)
	}
	return os.Open(filepath.Join(f.Dir, ref.Name))
}

// Reader streams Record items from a gzip archive
type Reader struct {
	r       io.ReadCloser
	gz      *gzip.Reader
	sc      *bufio.Scanner
	err     error
	records int
	bytes   int64
	sampled bool // logs exactly one sample raw line per gzip
}

// NewReader creates a new Reader from the given ReadCloser
func NewReader(r io.ReadCloser) (*Reader, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		if cerr := r.Close(); cerr != nil {
			return nil, cerr
		}
		return nil, err
	}
	sc := bufio.NewScanner(gz)
	buf := make([]byte, 512*1024)
	sc.Buffer(buf, maxScanTokenSize)
	return &Reader{r: r, gz: gz, sc: sc}, nil
}

// Next reads the next record; returns io.EOF when done
func (rd *Reader) Next() (Record, error) {
	if rd.err != nil {
		return Record{}, rd.err
	}
	for {
		if !rd.sc.Scan() {
			if err := rd.sc.Err(); err != nil {
				rd.err = err
				return Record{}, err
			}
			rd.err = io.EOF
			return Record{}, io.EOF
		}
		line := rd.sc.Bytes()
		cp := make([]byte, len(line))
		copy(cp, line)

		var rec Record
		if err := json.Unmarshal(cp, &rec); err != nil {
			// skip malformed lines
			continue
		}
		rd.records++
		rd.bytes += int64(len(cp) + 1) // include newline

		// Log a single raw-line sample (first valid JSON line in this gzip)
		if !rd.sampled {
			rd.sampled = true
			l := logger.Named("corpus")
			l.Debug().
				Int("line_bytes", len(cp)).
				Str("sample_raw", truncateUTF8(cp, sampleRawMax)).
				Msg("corpus: sample raw line")
		}

		return rec, nil
	}
}

// Close closes the underlying reader
func (rd *Reader) Close() error {
	var first error
	if rd.gz != nil {
		if err := rd.gz.Close(); err != nil && !errors.Is(err, io.ErrClosedPipe) {
			first = err
		}
	}
	if rd.r != nil {
		if err := rd.r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Stats returns the number of records parsed and total uncompressed bytes read so far
func (rd *Reader) Stats() (records int, bytes int64) {
	return rd.records, rd.bytes
}

// truncateUTF8 returns a string made from b, truncated to at most max bytes,
// backing up to a UTF-8 boundary if needed, and appending an ellipsis if truncated
func truncateUTF8(b []byte, max int) string {
	if max <= 0 || len(b) <= max {
		return string(b)
	}
	i := max
	// back up to the start of a rune (0b10xxxxxx indicates continuation byte)
	for i > 0 && (b[i]&0xC0) == 0x80 {
		i--
	}
	if i <= 0 {
		i = max
	}
	return string(b[:i]) + "..."
}
