package mime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForPath(t *testing.T) {
	require.Equal(t, HTML, ForPath("/var/www/index.html"))
	require.Equal(t, JPEG, ForPath("photo.JPG"))
	require.Equal(t, MP4, ForPath("movies/trailer.mp4"))
	require.Empty(t, ForPath("Makefile"))
	require.Empty(t, ForPath("archive.unknownext"))
}

func TestComplies(t *testing.T) {
	require.True(t, Complies(JSON, "application/json"))
	require.True(t, Complies(JSON, "Application/JSON; charset=utf-8"))
	require.True(t, Complies(JSON, ""))
	require.False(t, Complies(JSON, "text/plain"))
}
