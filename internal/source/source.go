// Package source opens the line streams the table tools read from: local
// files, standard input, HTTP(S) and FTP URLs and s3:// objects, with transparent
// decompression chosen by file suffix.
package source

import (
	"compress/bzip2"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Stdin is the name that selects standard input.
const Stdin = "-"

// ErrUnsupportedScheme is returned for URL schemes that cannot be fetched.
var ErrUnsupportedScheme = errors.New("unsupported url scheme")

// S3Options configures access to s3:// sources. Credentials come from the
// standard AWS environment variables when AccessKey is empty.
type S3Options struct {
	Endpoint  string
	Region    string
	UseSSL    bool
	AccessKey string
	SecretKey string
}

// Options controls how sources are opened.
type Options struct {
	// HTTPTimeout bounds http(s) requests and ftp dials; zero means 60s.
	HTTPTimeout time.Duration
	HTTPClient  *http.Client
	S3          S3Options
	// Stdin overrides os.Stdin, mainly for tests.
	Stdin io.Reader
}

// Opener resolves names to readable streams.
type Opener struct {
	opts Options
	s3   *minio.Client
}

// NewOpener returns an Opener using opts.
func NewOpener(opts Options) *Opener {
	return &Opener{opts: opts}
}

// Open returns a reader for name. "-" or "" is standard input, which is never
// closed by the returned ReadCloser. The caller must Close the result.
func (o *Opener) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	raw, err := o.openTransport(ctx, name)
	if err != nil {
		return nil, err
	}
	rc, err := decompress(raw, suffixName(name))
	if err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return rc, nil
}

func (o *Opener) openTransport(ctx context.Context, name string) (io.ReadCloser, error) {
	switch {
	case name == "" || name == Stdin:
		in := o.opts.Stdin
		if in == nil {
			in = os.Stdin
		}
		return io.NopCloser(in), nil
	case strings.HasPrefix(name, "http://"), strings.HasPrefix(name, "https://"):
		return o.openHTTP(ctx, name)
	case strings.HasPrefix(name, "s3://"):
		return o.openS3(ctx, name)
	case strings.HasPrefix(name, "ftp://"):
		return o.openFTP(ctx, name)
	case strings.Contains(name, "://"):
		return nil, fmt.Errorf("open %s: %w", name, ErrUnsupportedScheme)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

func (o *Opener) openHTTP(ctx context.Context, name string) (io.ReadCloser, error) {
	client := o.opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: o.timeout()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, name, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %s: %s", name, resp.Status, strings.TrimSpace(string(b)))
	}
	return resp.Body, nil
}

func (o *Opener) openFTP(ctx context.Context, name string) (io.ReadCloser, error) {
	u, err := url.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if u.Hostname() == "" || u.Path == "" || u.Path == "/" {
		return nil, fmt.Errorf("open %s: expected ftp://host/path", name)
	}
	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), "21")
	}
	user, pass := "anonymous", "anonymous"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}
	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(o.timeout()))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	if err := conn.Login(user, pass); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("fetch %s: login: %w", name, err)
	}
	resp, err := conn.Retr(u.Path)
	if err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	return &stacked{Reader: resp, closers: []func() error{resp.Close, conn.Quit}}, nil
}

func (o *Opener) timeout() time.Duration {
	if o.opts.HTTPTimeout > 0 {
		return o.opts.HTTPTimeout
	}
	return 60 * time.Second
}

func (o *Opener) openS3(ctx context.Context, name string) (io.ReadCloser, error) {
	u, err := url.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	bucket, key := u.Host, strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("open %s: expected s3://bucket/key", name)
	}
	client, err := o.s3Client()
	if err != nil {
		return nil, err
	}
	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	// GetObject is lazy; Stat surfaces missing objects before reading starts.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}
	return obj, nil
}

func (o *Opener) s3Client() (*minio.Client, error) {
	if o.s3 != nil {
		return o.s3, nil
	}
	cfg := o.opts.S3
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "s3.amazonaws.com"
	}
	creds := credentials.NewEnvAWS()
	if cfg.AccessKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	o.s3 = client
	return client, nil
}

// suffixName returns the part of name whose extension selects the codec.
func suffixName(name string) string {
	if strings.Contains(name, "://") {
		if u, err := url.Parse(name); err == nil {
			return strings.ToLower(u.Path)
		}
	}
	return strings.ToLower(name)
}

func decompress(rc io.ReadCloser, name string) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		zr, err := gzip.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return &stacked{Reader: zr, closers: []func() error{zr.Close, rc.Close}}, nil
	case strings.HasSuffix(name, ".bz2"):
		return &stacked{Reader: bzip2.NewReader(rc), closers: []func() error{rc.Close}}, nil
	case strings.HasSuffix(name, ".xz"):
		xr, err := xz.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		return &stacked{Reader: xr, closers: []func() error{rc.Close}}, nil
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		dec, err := zstd.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return &stacked{Reader: dec, closers: []func() error{func() error { dec.Close(); return nil }, rc.Close}}, nil
	case strings.HasSuffix(name, ".lz4"):
		return &stacked{Reader: lz4.NewReader(rc), closers: []func() error{rc.Close}}, nil
	default:
		return rc, nil
	}
}

// stacked closes every layer of a decoder chain, innermost last.
type stacked struct {
	io.Reader
	closers []func() error
}

func (s *stacked) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
