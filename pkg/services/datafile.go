package services

import (
	"net/url"
	"path"
	"strings"

	"data-admin/pkg/models"

	"github.com/go-logr/logr"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/pkg/errors"
)

// APIBasePath is where the HTTP API is mounted; api_url values point below it.
const APIBasePath = "/_api"

// DataStore reads and writes the files under a site's data directory.
//
// There is no locking: concurrent writers to the same file race on the
// filesystem and the last write wins.
type DataStore struct {
	fs      vfs.FileSystem
	dataDir string
	baseURL string
	log     logr.Logger
}

// NewDataStore returns a store for dataDir inside fs. fs is expected to be
// rooted at the site root, so dataDir is a slash separated path below "/".
func NewDataStore(fs vfs.FileSystem, dataDir, baseURL string, log logr.Logger) *DataStore {
	return &DataStore{
		fs:      fs,
		dataDir: strings.Trim(path.Clean("/"+dataDir), "/"),
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// DataDir returns the data directory relative to the site root.
func (s *DataStore) DataDir() string {
	return s.dataDir
}

func (s *DataStore) abs(rel string) string {
	return path.Join("/", s.dataDir, rel)
}

// List returns summaries of every file below subdir, recursively.
func (s *DataStore) List(subdir string) ([]models.DataFile, error) {
	segments, err := splitSegments(subdir)
	if err != nil {
		return nil, err
	}
	dir := path.Join(segments...)
	root := s.abs(dir)

	ok, err := vfs.DirExists(s.fs, root)
	if err != nil {
		return nil, errors.Wrapf(err, "checking directory %s", root)
	}
	if !ok {
		// a site without a data directory simply has no data files
		if dir == "" {
			return []models.DataFile{}, nil
		}
		return nil, errors.Wrapf(ErrNotFound, "directory %q", dir)
	}

	base := s.abs("")
	files := []models.DataFile{}
	err = vfs.Walk(s.fs, root, func(p string, info vfs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		// dotfiles are ignored, as the site generator does
		if !info.Mode().IsRegular() || strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, base), "/")
		files = append(files, s.describe(refFromRel(rel)))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", root)
	}
	return files, nil
}

// Read resolves target and returns the file with its raw and parsed content.
func (s *DataStore) Read(target string) (*models.DataFileContent, error) {
	ref, err := parseFileRef(target)
	if err != nil {
		return nil, err
	}
	ref, err = s.find(ref)
	if err != nil {
		return nil, err
	}
	return s.load(ref)
}

// Write creates or replaces the file target resolves to. An existing file
// keeps its extension; a new one without an explicit extension gets DefaultExt.
func (s *DataStore) Write(target string, req models.WriteRequest) (*models.DataFileContent, error) {
	if req.RawContent == nil && req.Content == nil {
		return nil, errors.Wrap(ErrInvalidContent, "request needs content or raw_content")
	}
	ref, err := parseFileRef(target)
	if err != nil {
		return nil, err
	}

	created := false
	existing, err := s.find(ref)
	switch {
	case err == nil:
		ref = existing
	case errors.Is(err, ErrNotFound):
		created = true
		if ref.ext == "" {
			ref.ext = DefaultExt
		}
	default:
		return nil, err
	}

	data, err := encodeRequest(ref.ext, req)
	if err != nil {
		return nil, err
	}

	if err := s.fs.MkdirAll(s.abs(ref.dir), 0755); err != nil {
		return nil, errors.Wrapf(err, "creating directory %s", ref.dir)
	}
	if err := vfs.WriteFile(s.fs, s.abs(ref.relPath()), data, 0644); err != nil {
		return nil, errors.Wrapf(err, "writing %s", ref.relPath())
	}
	s.log.V(1).Info("wrote data file", "path", ref.relPath(), "bytes", len(data), "created", created)

	return s.load(ref)
}

// Delete removes the file target resolves to.
func (s *DataStore) Delete(target string) error {
	ref, err := parseFileRef(target)
	if err != nil {
		return err
	}
	ref, err = s.find(ref)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(s.abs(ref.relPath())); err != nil {
		if vfs.IsErrNotExist(err) {
			return errors.Wrapf(ErrNotFound, "data file %q", ref.relPath())
		}
		return errors.Wrapf(err, "removing %s", ref.relPath())
	}
	s.log.V(1).Info("deleted data file", "path", ref.relPath())
	return nil
}

// find locates the file for ref. Without an extension the first entry of
// the directory whose name minus extension equals the slug wins.
func (s *DataStore) find(ref fileRef) (fileRef, error) {
	dir := s.abs(ref.dir)
	notFound := errors.Wrapf(ErrNotFound, "data file %q", path.Join(ref.dir, ref.name()))

	if ref.ext != "" {
		info, err := s.fs.Stat(path.Join(dir, ref.name()))
		if err != nil {
			if vfs.IsErrNotExist(err) || vfs.IsErrNotDir(err) {
				return ref, notFound
			}
			return ref, errors.Wrapf(err, "stat %s", ref.relPath())
		}
		if !info.Mode().IsRegular() {
			return ref, notFound
		}
		return ref, nil
	}

	entries, err := vfs.ReadDir(s.fs, dir)
	if err != nil {
		if vfs.IsErrNotExist(err) || vfs.IsErrNotDir(err) {
			return ref, notFound
		}
		return ref, errors.Wrapf(err, "reading directory %s", ref.dir)
	}
	for _, e := range entries {
		name := e.Name()
		// dotfiles never match a slug, same as in List
		if !e.Mode().IsRegular() || strings.HasPrefix(name, ".") {
			continue
		}
		ext := path.Ext(name)
		if name == ref.slug || strings.TrimSuffix(name, ext) == ref.slug {
			return fileRef{dir: ref.dir, slug: strings.TrimSuffix(name, ext), ext: ext}, nil
		}
	}
	return ref, notFound
}

func (s *DataStore) load(ref fileRef) (*models.DataFileContent, error) {
	data, err := vfs.ReadFile(s.fs, s.abs(ref.relPath()))
	if err != nil {
		if vfs.IsErrNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "data file %q", ref.relPath())
		}
		return nil, errors.Wrapf(err, "reading %s", ref.relPath())
	}

	content, err := CodecFor(ref.ext).Decode(data)
	if err != nil {
		s.log.V(1).Info("data file does not parse, serving raw text", "path", ref.relPath(), "error", err.Error())
		content = string(data)
	}

	return &models.DataFileContent{
		DataFile:   s.describe(ref),
		RawContent: string(data),
		Content:    content,
	}, nil
}

func (s *DataStore) describe(ref fileRef) models.DataFile {
	rel := ref.relPath()
	return models.DataFile{
		Path:         "/" + path.Join(s.dataDir, rel),
		RelativePath: rel,
		Slug:         ref.slug,
		Ext:          ref.ext,
		Title:        titleFromSlug(ref.slug),
		APIURL:       s.apiURL(rel),
		HTTPURL:      nil,
	}
}

func (s *DataStore) apiURL(rel string) string {
	parts := strings.Split(rel, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.baseURL + APIBasePath + "/data/" + strings.Join(parts, "/")
}

// refFromRel splits a relative path found on disk. Unlike parseFileRef any
// extension counts, since the file is known to exist.
func refFromRel(rel string) fileRef {
	dir, name := path.Split(rel)
	ext := path.Ext(name)
	return fileRef{
		dir:  strings.TrimSuffix(dir, "/"),
		slug: strings.TrimSuffix(name, ext),
		ext:  ext,
	}
}

// encodeRequest produces the bytes to write for ext. raw_content wins over
// content and is written verbatim apart from a trailing newline.
func encodeRequest(ext string, req models.WriteRequest) ([]byte, error) {
	codec := CodecFor(ext)
	if req.RawContent != nil {
		raw := *req.RawContent
		if !strings.HasSuffix(raw, "\n") {
			raw += "\n"
		}
		if _, err := codec.Decode([]byte(raw)); err != nil {
			return nil, errors.Wrapf(ErrInvalidContent, "raw_content is not valid for %s: %v", ext, err)
		}
		return []byte(raw), nil
	}
	data, err := codec.Encode(req.Content)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidContent, "cannot serialize content as %s: %v", ext, err)
	}
	return data, nil
}
