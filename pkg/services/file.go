package services

import (
	"path"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// splitSegments breaks a request path into clean segments relative to the
// data directory. Anything that could step outside it is rejected.
func splitSegments(target string) ([]string, error) {
	var segments []string
	for _, seg := range strings.Split(target, "/") {
		switch {
		case seg == "":
			continue
		case seg == "." || seg == "..":
			return nil, errors.Wrapf(ErrInvalidPath, "%q", target)
		case strings.ContainsAny(seg, "\\\x00"):
			return nil, errors.Wrapf(ErrInvalidPath, "%q", target)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// fileRef identifies a data file by directory, slug and (possibly unknown) extension.
type fileRef struct {
	dir  string // relative to the data directory, slash separated
	slug string
	ext  string
}

func (r fileRef) name() string {
	return r.slug + r.ext
}

func (r fileRef) relPath() string {
	return path.Join(r.dir, r.name())
}

// parseFileRef splits target into directory, slug and extension. The
// extension is only split off when it is one the codecs recognize.
func parseFileRef(target string) (fileRef, error) {
	if strings.HasSuffix(target, "/") {
		return fileRef{}, errors.Wrapf(ErrInvalidPath, "%q names a directory, not a file", target)
	}
	segments, err := splitSegments(target)
	if err != nil {
		return fileRef{}, err
	}
	if len(segments) == 0 {
		return fileRef{}, errors.Wrap(ErrInvalidPath, "missing file name")
	}

	last := segments[len(segments)-1]
	ref := fileRef{
		dir:  path.Join(segments[:len(segments)-1]...),
		slug: last,
	}
	if ext := path.Ext(last); ext != "" && ext != last && IsRecognizedExt(ext) {
		ref.slug = strings.TrimSuffix(last, ext)
		ref.ext = ext
	}
	return ref, nil
}

// titleFromSlug turns "data-file_new" into "Data File New".
func titleFromSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	caser := cases.Title(language.English)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}
