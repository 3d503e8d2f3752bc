package mime

import (
	"path/filepath"
	"strings"
)

var Extension = map[string]MIME{
	".avif": AVIF,
	".css":  CSS,
	".gif":  GIF,
	".htm":  HTML,
	".html": HTML,
	".jpeg": JPEG,
	".jpg":  JPEG,
	".js":   JS,
	".mjs":  JS,
	".json": JSON,
	".pdf":  PDF,
	".png":  PNG,
	".svg":  SVG,
	".wasm": WASM,
	".webp": WEBP,
	".xml":  XML,
	".gz":   GZIP,
	".yaml": YAML,
	".yml":  YAML,
	".zip":  ZIP,
	".ico":  ICO,
	".txt":  Plain,
	".mp4":  MP4,
	".webm": WEBM,
	".mp3":  MP3,
	".ogg":  OGG,
}

// ForPath guesses the MIME type by the file extension. Unknown extensions result in an
// empty string, so the caller decides on a fallback.
func ForPath(path string) MIME {
	return Extension[strings.ToLower(filepath.Ext(path))]
}
