package utils

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureDirIsIdempotent(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "a", "b", "c")

	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())

	entries, err := os.ReadDir(filepath.Join(root, "a", "b"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestEnsureDirRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	require.Error(t, EnsureDir(file))
}

func TestParseHeaderArgs(t *testing.T) {
	headers := ParseHeaderArgs([]string{"Authorization: Basic abc", "X-Empty:", "bogus"})
	require.Equal(t, map[string]string{"Authorization": "Basic abc", "X-Empty": ""}, headers)
}

func TestFormatBytes(t *testing.T) {
	require.Equal(t, "512 B", FormatBytes(512))
	require.Equal(t, "1.00 KiB", FormatBytes(1024))
	require.Equal(t, "1.50 MiB", FormatBytes(MiB+MiB/2))
}

func TestMiBPerSecond(t *testing.T) {
	require.Equal(t, 0.0, MiBPerSecond(MiB, 0))
	require.InDelta(t, 1.0, MiBPerSecond(4*MiB, 4), 1e-9)
	require.InDelta(t, 0.5, MiBPerSecond(MiB, 2), 1e-9)
}

func TestFileNameFromURL(t *testing.T) {
	require.Equal(t, "gcc.tar.xz", FileNameFromURL("https://example.com/a/b/gcc.tar.xz"))
	require.Equal(t, "download", FileNameFromURL("https://example.com/"))
	require.Equal(t, "download", FileNameFromURL("https://example.com"))
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := ParseS3URL("s3://mirror/toolchains/gcc.tar.xz")
	require.NoError(t, err)
	require.Equal(t, "mirror", bucket)
	require.Equal(t, "toolchains/gcc.tar.xz", key)

	for _, bad := range []string{"https://mirror/key", "s3://mirror", "s3:///key"} {
		_, _, err := ParseS3URL(bad)
		require.ErrorIs(t, err, ErrInvalidS3URL, bad)
	}
}

func TestHTTPClientSetsHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	client := NewHTTPClient(HTTPClientConfig{
		Headers: map[string]string{"X-Mirror": "ci"},
		Token:   "secret",
	})
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, "keep-alive", got.Get("Proxy-Connection"))
	require.Equal(t, ToolUserAgent, got.Get("User-Agent"))
	require.Equal(t, "ci", got.Get("X-Mirror"))
	require.Equal(t, "Bearer secret", got.Get("Authorization"))
}
