package fetcher

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/hkdywg/toolfetch/internal/output"
	"github.com/hkdywg/toolfetch/internal/utils"
	"github.com/stretchr/testify/require"
)

func payload(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func TestDownloadWritesFullStream(t *testing.T) {
	data := payload(10_000)
	var proxyConn string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxyConn = r.Header.Get("Proxy-Connection")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Write(data)
	}))
	defer srv.Close()

	for _, chunk := range []int{1, 7, 512, 4096, 1 << 20} {
		out := filepath.Join(t.TempDir(), "archive.tar.xz")
		f := New(Options{ChunkSize: chunk})
		require.NoError(t, f.Download(context.Background(), out, srv.URL+"/archive.tar.xz"))

		got, err := os.ReadFile(out)
		require.NoError(t, err)
		require.Len(t, got, len(data), "chunk size %d", chunk)
		require.Equal(t, data, got)
	}
	require.Equal(t, "keep-alive", proxyConn)
}

func TestDownloadWithoutContentLength(t *testing.T) {
	data := payload(3000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data[:1000])
		w.(http.Flusher).Flush()
		w.Write(data[1000:])
	}))
	defer srv.Close()

	var progress bytes.Buffer
	out := filepath.Join(t.TempDir(), "blob")
	f := New(Options{Progress: &progress})
	require.NoError(t, f.Download(context.Background(), out, srv.URL))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, data, got)
	require.Contains(t, progress.String(), "[n/a]")
}

func TestDownloadEmptyBodyReportsComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "0")
	}))
	defer srv.Close()

	var progress bytes.Buffer
	out := filepath.Join(t.TempDir(), "empty.bin")
	f := New(Options{Progress: &progress})
	require.NoError(t, f.Download(context.Background(), out, srv.URL))

	info, err := os.Stat(out)
	require.NoError(t, err)
	require.Zero(t, info.Size())
	require.Contains(t, progress.String(), "[100.00%]")
	require.NotContains(t, progress.String(), "[n/a]")
}

func TestDownloadTruncatesExistingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("new"))
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(out, []byte("old content that is longer"), 0644))
	require.NoError(t, New(Options{}).Download(context.Background(), out, srv.URL))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "new", string(got))
}

func TestDownloadFailsOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	err := New(Options{}).Download(context.Background(), filepath.Join(t.TempDir(), "x"), srv.URL)
	require.ErrorIs(t, err, utils.ErrUnexpectedStatus)
}

func TestDownloadPropagatesTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	err := New(Options{}).Download(context.Background(), filepath.Join(t.TempDir(), "x"), addr)
	require.Error(t, err)
}

func TestDownloadRejectsUnknownScheme(t *testing.T) {
	err := New(Options{}).Download(context.Background(), "x", "ftp://example.com/file")
	require.ErrorContains(t, err, "unsupported URL scheme")
}

func TestDownloadValidatesS3URL(t *testing.T) {
	err := New(Options{}).Download(context.Background(), "x", "s3://bucket-only")
	require.ErrorIs(t, err, utils.ErrInvalidS3URL)
}

func TestIsDirectorySource(t *testing.T) {
	require.True(t, IsDirectorySource("git+https://example.com/tc.git#v1"))
	require.False(t, IsDirectorySource("https://example.com/tc.tar.xz"))
	require.False(t, IsDirectorySource("s3://mirror/tc.tar.xz"))
}

func TestParseGitURL(t *testing.T) {
	cloneURL, ref, err := parseGitURL("git+https://example.com/tc.git#release-7.4")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/tc.git", cloneURL)
	require.Equal(t, "release-7.4", ref)

	_, ref, err = parseGitURL("git+ssh://git@example.com/tc.git")
	require.NoError(t, err)
	require.Empty(t, ref)

	_, _, err = parseGitURL("https://example.com/tc.git")
	require.Error(t, err)

	require.Equal(t, "refs/heads/main", refName("main").String())
	require.Equal(t, "refs/tags/v1", refName("refs/tags/v1").String())
	require.Nil(t, gitAuth("git@example.com:tc.git", "token"))
	require.NotNil(t, gitAuth("https://example.com/tc.git", "token"))
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func TestProgressReporterUsesTrueElapsedTime(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	var buf bytes.Buffer
	p := newProgressReporter("gcc.tar.xz", &buf, 2*time.Second, 8*utils.MiB)
	p.now = clock.Now
	p.state.LastReport = clock.now

	clock.now = clock.now.Add(time.Second)
	p.Add(utils.MiB)
	require.Empty(t, buf.String(), "no report before the interval")

	// 4 MiB over 4 real seconds is 1 MiB/s, not the 2 MiB/s a fixed 2s divisor would give.
	clock.now = clock.now.Add(3 * time.Second)
	p.Add(3 * utils.MiB)
	require.Contains(t, buf.String(), "[50.00%] 1.00 MiB/s")

	state := p.State()
	require.Equal(t, int64(4*utils.MiB), state.BytesAtLastReport)
	require.Equal(t, clock.now, state.LastReport)
}

func TestDownloadStatePercentIsNotClamped(t *testing.T) {
	s := DownloadState{BytesWritten: 150, TotalBytes: 100}
	pct, ok := s.Percent()
	require.True(t, ok)
	require.InDelta(t, 150.0, pct, 1e-9)

	s.TotalBytes = -1
	_, ok = s.Percent()
	require.False(t, ok)
}

func TestDownloadStateEmptyBodyIsComplete(t *testing.T) {
	s := DownloadState{TotalBytes: 0}
	pct, ok := s.Percent()
	require.True(t, ok)
	require.Equal(t, 100.0, pct)
	require.Contains(t, output.ProgressLine("empty.bin", pct, ok, 0, 0), "[100.00%]")
}
