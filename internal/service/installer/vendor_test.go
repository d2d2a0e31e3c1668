package installer

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/desktop-packager/internal/wheel"
)

// TestVendor prefers the Author-email name, then Author, then the fallback.
func TestVendor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		md   *wheel.Metadata
		want string
	}{
		{"quoted", &wheel.Metadata{AuthorEmail: `"Jane Doe" <jane@example.org>`}, "Jane Doe"},
		{"unquoted", &wheel.Metadata{AuthorEmail: `Jane Doe <jane@example.org>`}, "Jane Doe"},
		{"second entry", &wheel.Metadata{AuthorEmail: `ops@example.org, "Ops Team" <ops@example.org>`}, "Ops Team"},
		{"author header", &wheel.Metadata{AuthorEmail: "jane@example.org", Author: "Jane"}, "Jane"},
		{"fallback", &wheel.Metadata{}, "Acme"},
		{"no metadata", nil, "Acme"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, Vendor(tc.md, "Acme"))
		})
	}
}

// TestWriteDescription writes only the first summary line.
func TestWriteDescription(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	path, err := WriteDescription(dir, &wheel.Metadata{Summary: "Scans folders\nsecond line"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Scans folders", string(data))
}
