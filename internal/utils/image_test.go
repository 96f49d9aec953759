package utils

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func pngDataURI(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestSaveDataURIImage(t *testing.T) {
	dir := t.TempDir()

	rel, err := SaveDataURIImage(dir, pngDataURI(t))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(rel, filepath.Join("crops")+string(filepath.Separator)))
	require.True(t, strings.HasSuffix(rel, ".png"))

	// The stored file must decode back as a png.
	f, err := os.Open(filepath.Join(dir, rel))
	require.NoError(t, err)
	defer f.Close()
	_, format, err := image.Decode(f)
	require.NoError(t, err)
	require.Equal(t, "png", format)
}

func TestSaveDataURIImageRejectsBadPayloads(t *testing.T) {
	dir := t.TempDir()

	cases := []string{
		"",
		"plain text",
		"data:image/png;base64,!!!not-base64!!!",
		"data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not an image")),
		"data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte("<html>")),
	}
	for _, in := range cases {
		_, err := SaveDataURIImage(dir, in)
		require.ErrorIs(t, err, ErrInvalidImage, "input %q", in)
	}
}
