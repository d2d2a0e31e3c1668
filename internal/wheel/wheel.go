package wheel

import (
	"archive/zip"
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"path"
	"path/filepath"
	"strings"
)

const (
	// Extension is the file extension of wheel archives.
	Extension = ".whl"

	// MetadataFilename is the core metadata file inside the .dist-info folder.
	MetadataFilename = "METADATA"

	// TopLevelFilename lists the importable top-level packages.
	TopLevelFilename = "top_level.txt"

	// maxMemberSize caps how much of a single archive member is read.
	maxMemberSize = 16 << 20
)

// MalformedArchiveError reports a wheel missing an expected member.
type MalformedArchiveError struct {
	// Archive is the wheel path.
	Archive string
	// File is the member that could not be found or read.
	File string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *MalformedArchiveError) Error() string {
	msg := fmt.Sprintf("malformed archive %s: no %s file", e.Archive, e.File)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *MalformedArchiveError) Unwrap() error {
	return e.Err
}

// ErrMemberTooLarge is returned for archive members above the read limit.
var ErrMemberTooLarge = errors.New("archive member too large")

// Metadata is the subset of core metadata the packager uses.
type Metadata struct {
	// Name is the distribution name.
	Name string
	// Version is the distribution version string.
	Version string
	// Summary is the one-line description.
	Summary string
	// License is the free-form license text, if any.
	License string
	// LicenseExpression is the SPDX expression, if any.
	LicenseExpression string
	// LicenseFiles are the License-File entries, relative to .dist-info/licenses.
	LicenseFiles []string
	// Author is the Author header.
	Author string
	// AuthorEmail is the Author-email header.
	AuthorEmail string
}

// ReadFile returns the contents of the regular member whose base name is name.
// A member of the top-level .dist-info folder wins over one anywhere else.
func ReadFile(archive, name string) ([]byte, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, &MalformedArchiveError{Archive: archive, File: name, Err: err}
	}

	defer func() {
		_ = zr.Close()
	}()

	var found *zip.File

	for _, f := range zr.File {
		dir, base := path.Split(f.Name)
		if f.FileInfo().IsDir() || base != name {
			continue
		}

		if isDistInfo(dir) {
			found = f

			break
		}

		if found == nil {
			found = f
		}
	}

	if found == nil {
		return nil, &MalformedArchiveError{Archive: archive, File: name}
	}

	data, err := readMember(found)
	if err != nil {
		return nil, &MalformedArchiveError{Archive: archive, File: name, Err: err}
	}

	return data, nil
}

// readMember reads a zip member, refusing oversized entries.
func readMember(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > maxMemberSize {
		return nil, fmt.Errorf("%s: %w", f.Name, ErrMemberTooLarge)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}

	defer func() {
		_ = rc.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(rc, maxMemberSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}

	if len(data) > maxMemberSize {
		return nil, fmt.Errorf("%s: %w", f.Name, ErrMemberTooLarge)
	}

	return data, nil
}

// ReadMetadata parses the METADATA file of a wheel.
func ReadMetadata(archive string) (*Metadata, error) {
	data, err := ReadFile(archive, MetadataFilename)
	if err != nil {
		return nil, err
	}

	md, err := ParseMetadata(bytes.NewReader(data))
	if err != nil {
		return nil, &MalformedArchiveError{Archive: archive, File: MetadataFilename, Err: err}
	}

	return md, nil
}

// errMissingNameOrVersion is returned when METADATA lacks its mandatory fields.
var errMissingNameOrVersion = errors.New("name or version is empty")

// ParseMetadata reads the RFC 822 style header block of a METADATA file.
// The description body after the first blank line is ignored.
func ParseMetadata(r io.Reader) (*Metadata, error) {
	rd := textproto.NewReader(bufio.NewReader(r))
	h, err := rd.ReadMIMEHeader()

	md := &Metadata{
		Name:              h.Get("Name"),
		Version:           h.Get("Version"),
		Summary:           firstLine(h.Get("Summary")),
		License:           h.Get("License"),
		LicenseExpression: h.Get("License-Expression"),
		LicenseFiles:      h.Values("License-File"),
		Author:            h.Get("Author"),
		AuthorEmail:       h.Get("Author-Email"),
	}

	if md.Name == "" || md.Version == "" {
		// Like other metadata readers, a trailing parse error is tolerated
		// as long as the mandatory fields were read.
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read metadata headers: %w", err)
		}

		return nil, fmt.Errorf("%w (name: %q, version: %q)", errMissingNameOrVersion, md.Name, md.Version)
	}

	return md, nil
}

// TopLevel returns the first package listed in top_level.txt.
func TopLevel(archive string) (string, error) {
	if !strings.EqualFold(filepath.Ext(archive), Extension) {
		return "", &MalformedArchiveError{Archive: archive, File: TopLevelFilename, Err: errNotWheel}
	}

	data, err := ReadFile(archive, TopLevelFilename)
	if err != nil {
		return "", err
	}

	for _, line := range strings.Split(string(data), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			return name, nil
		}
	}

	return "", &MalformedArchiveError{Archive: archive, File: TopLevelFilename, Err: errEmptyTopLevel}
}

var (
	errNotWheel      = errors.New("unknown file type, expected a wheel")
	errEmptyTopLevel = errors.New("no package listed")
)

// ReadLicenseFile returns the contents of the first License-File entry found
// in the archive. Entries are resolved against the .dist-info folder, trying
// licenses/<name> before <name>, so package data never shadows them.
func ReadLicenseFile(archive string, md *Metadata) ([]byte, bool, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, false, &MalformedArchiveError{Archive: archive, File: MetadataFilename, Err: err}
	}

	defer func() {
		_ = zr.Close()
	}()

	members := make(map[string]*zip.File, len(zr.File))
	distInfo := ""

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		members[f.Name] = f

		if dir, base := path.Split(f.Name); base == MetadataFilename && isDistInfo(dir) {
			distInfo = strings.TrimSuffix(dir, "/")
		}
	}

	if distInfo == "" {
		return nil, false, &MalformedArchiveError{Archive: archive, File: MetadataFilename}
	}

	for _, name := range md.LicenseFiles {
		name = strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(name)), "/")

		for _, candidate := range []string{
			path.Join(distInfo, "licenses", name),
			path.Join(distInfo, name),
		} {
			f, ok := members[candidate]
			if !ok {
				continue
			}

			data, err := readMember(f)
			if err != nil {
				return nil, false, &MalformedArchiveError{Archive: archive, File: candidate, Err: err}
			}

			return data, true, nil
		}
	}

	return nil, false, nil
}

// isDistInfo reports whether dir is a top-level .dist-info folder.
func isDistInfo(dir string) bool {
	dir = strings.TrimSuffix(dir, "/")

	return dir != "" && !strings.Contains(dir, "/") && strings.HasSuffix(dir, ".dist-info")
}

// LicenseText returns the free-form license text or the SPDX expression.
func (m *Metadata) LicenseText() string {
	if text := strings.TrimSpace(m.License); text != "" && !strings.EqualFold(text, "UNKNOWN") {
		return m.License
	}

	return strings.TrimSpace(m.LicenseExpression)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")

	return strings.TrimSpace(line)
}
