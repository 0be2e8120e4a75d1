package media

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

const (
	// URLPrefix is where stored uploads are served.
	URLPrefix = "/uploads/"

	maxBaseLen  = 10
	defaultBase = "image"
)

var unsafeBaseRe = regexp.MustCompile(`[^a-zA-Z0-9]`)

// StoredName builds the file name an upload is kept under:
// <unix-ms>-<base><ext>. The base is the ASCII transliteration of the
// original name reduced to at most ten letters and digits.
func StoredName(original, ext string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = unsafeBaseRe.ReplaceAllString(slug.Make(base), "")
	if len(base) > maxBaseLen {
		base = base[:maxBaseLen]
	}
	if base == "" {
		base = defaultBase
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + base + strings.ToLower(ext)
}

// URLFor returns the public path of a stored file name.
func URLFor(name string) string {
	return URLPrefix + name
}

// nameFromURL extracts the stored file name from a public upload path. ok is
// false for anything that does not name a single file under URLPrefix.
func nameFromURL(urlPath string) (string, bool) {
	name, found := strings.CutPrefix(strings.TrimSpace(urlPath), URLPrefix)
	if !found || name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", false
	}
	return name, true
}
