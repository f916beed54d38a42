package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

const payload = "a\t1\nb\t2\n"

func readAll(t *testing.T, o *Opener, name string) string {
	t.Helper()
	rc, err := o.Open(context.Background(), name)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestOpenPlainAndStdin(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "plain.tsv")
	require.NoError(t, os.WriteFile(p, []byte(payload), 0o644))

	o := NewOpener(Options{Stdin: strings.NewReader("from stdin\n")})
	assert.Equal(t, payload, readAll(t, o, p))
	assert.Equal(t, "from stdin\n", readAll(t, o, "-"))
}

func TestOpenCompressed(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, wrap func(io.Writer) io.WriteCloser) string {
		var buf bytes.Buffer
		w := wrap(&buf)
		_, err := w.Write([]byte(payload))
		require.NoError(t, err)
		require.NoError(t, w.Close())
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, buf.Bytes(), 0o644))
		return p
	}
	files := []string{
		write("data.tsv.gz", func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) }),
		write("data.tsv.zst", func(w io.Writer) io.WriteCloser {
			enc, err := zstd.NewWriter(w)
			require.NoError(t, err)
			return enc
		}),
		write("data.tsv.xz", func(w io.Writer) io.WriteCloser {
			xw, err := xz.NewWriter(w)
			require.NoError(t, err)
			return xw
		}),
		write("data.tsv.lz4", func(w io.Writer) io.WriteCloser { return lz4.NewWriter(w) }),
	}
	o := NewOpener(Options{})
	for _, p := range files {
		assert.Equal(t, payload, readAll(t, o, p), p)
	}
}

func TestOpenHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.Error(w, "nope", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	o := NewOpener(Options{HTTPClient: srv.Client()})
	assert.Equal(t, payload, readAll(t, o, srv.URL+"/data.tsv"))

	_, err := o.Open(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

// serveFTP runs a single-session FTP server that knows just enough of the
// protocol to hand out files over EPSV data connections.
func serveFTP(t *testing.T, files map[string][]byte) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		reply := func(format string, args ...any) { fmt.Fprintf(conn, format+"\r\n", args...) }
		var data net.Listener
		reply("220 ready")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
			switch strings.ToUpper(verb) {
			case "USER":
				reply("331 password please")
			case "PASS":
				reply("230 logged in")
			case "TYPE":
				reply("200 type set")
			case "EPSV":
				if data, err = net.Listen("tcp", "127.0.0.1:0"); err != nil {
					reply("425 no data connection")
					continue
				}
				reply("229 Entering Extended Passive Mode (|||%d|)", data.Addr().(*net.TCPAddr).Port)
			case "RETR":
				body, ok := files[arg]
				if !ok || data == nil {
					reply("550 not found")
					continue
				}
				reply("150 sending")
				dc, err := data.Accept()
				if err == nil {
					_, _ = dc.Write(body)
					dc.Close()
				}
				data.Close()
				data = nil
				reply("226 done")
			case "QUIT":
				reply("221 bye")
				return
			default:
				reply("502 not implemented")
			}
		}
	}()
	return ln.Addr().String()
}

func TestOpenFTP(t *testing.T) {
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	addr := serveFTP(t, map[string][]byte{"/pub/data.tsv.gz": gz.Bytes()})
	o := NewOpener(Options{HTTPTimeout: 5 * time.Second})
	assert.Equal(t, payload, readAll(t, o, "ftp://user:secret@"+addr+"/pub/data.tsv.gz"))
}

func TestOpenErrors(t *testing.T) {
	o := NewOpener(Options{})
	_, err := o.Open(context.Background(), "gopher://example.com/x.tsv")
	assert.True(t, errors.Is(err, ErrUnsupportedScheme))

	_, err = o.Open(context.Background(), "ftp://example.com/")
	assert.Error(t, err)

	_, err = o.Open(context.Background(), filepath.Join(t.TempDir(), "absent.tsv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = o.Open(context.Background(), "s3://bucket-only")
	assert.Error(t, err)
}

func TestLines(t *testing.T) {
	l := NewLines(strings.NewReader("x\r\ny\n\nz"))
	var got []string
	for {
		line, ok := l.Next()
		if !ok {
			break
		}
		got = append(got, line)
	}
	require.NoError(t, l.Err())
	assert.Equal(t, []string{"x", "y", "", "z"}, got)
}
