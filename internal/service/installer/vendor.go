package installer

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/oshokin/desktop-packager/internal/wheel"
)

// DescriptionFilename is the file CPACK_PACKAGE_DESCRIPTION_FILE points at.
const DescriptionFilename = "package_description_file.txt"

// authorEmail matches `"Jane Doe" <jane@example.org>` and `Jane Doe <jane@example.org>`.
var authorEmail = regexp.MustCompile(`^\s*"?(?P<author>[^"<]+?)"?\s*<(?P<email>[^<>@\s]+@[^<>\s]+)>`)

// Vendor picks the installer vendor: the author named in Author-email,
// then the Author header, then fallback.
func Vendor(md *wheel.Metadata, fallback string) string {
	if md == nil {
		return fallback
	}

	for _, entry := range strings.Split(md.AuthorEmail, ",") {
		if m := authorEmail.FindStringSubmatch(entry); m != nil {
			return strings.TrimSpace(m[authorEmail.SubexpIndex("author")])
		}
	}

	if author := strings.TrimSpace(md.Author); author != "" {
		return author
	}

	return fallback
}

// WriteDescription writes the first line of the wheel summary into dir and
// returns the absolute, slash separated path of the file.
func WriteDescription(dir string, md *wheel.Metadata) (string, error) {
	var summary string
	if md != nil {
		summary, _, _ = strings.Cut(md.Summary, "\n")
	}

	path := filepath.Join(dir, DescriptionFilename)
	if err := writeFile(path, []byte(strings.TrimSpace(summary))); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve description path: %w", err)
	}

	return filepath.ToSlash(abs), nil
}
