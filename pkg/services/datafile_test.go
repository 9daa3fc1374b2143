package services

import (
	"path"
	"testing"

	"data-admin/pkg/models"

	"github.com/go-logr/logr"
	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://localhost:4000"

func newTestFS(t *testing.T, files map[string]string) vfs.FileSystem {
	t.Helper()
	fs := memoryfs.New()
	require.NoError(t, fs.MkdirAll("/_data", 0755))
	for p, content := range files {
		require.NoError(t, fs.MkdirAll(path.Dir(p), 0755))
		require.NoError(t, vfs.WriteFile(fs, p, []byte(content), 0644))
	}
	return fs
}

func newTestStore(t *testing.T, files map[string]string) (*DataStore, vfs.FileSystem) {
	t.Helper()
	fs := newTestFS(t, files)
	return NewDataStore(fs, "_data", testBaseURL+"/", logr.Discard()), fs
}

func strPtr(s string) *string { return &s }

func TestDataStore_ReadWithAndWithoutExtension(t *testing.T) {
	store, _ := newTestStore(t, map[string]string{
		"/_data/data_file.yml": "foo: bar\n",
	})

	withoutExt, err := store.Read("data_file")
	require.NoError(t, err)
	withExt, err := store.Read("/data_file.yml")
	require.NoError(t, err)
	require.Equal(t, withExt, withoutExt)

	require.Equal(t, models.DataFile{
		Path:         "/_data/data_file.yml",
		RelativePath: "data_file.yml",
		Slug:         "data_file",
		Ext:          ".yml",
		Title:        "Data File",
		APIURL:       "http://localhost:4000/_api/data/data_file.yml",
	}, withExt.DataFile)
	require.Equal(t, "foo: bar\n", withExt.RawContent)
	require.Equal(t, map[string]interface{}{"foo": "bar"}, withExt.Content)
}

func TestDataStore_ReadSubdirectory(t *testing.T) {
	store, _ := newTestStore(t, map[string]string{
		"/_data/books/authors.yml": "foo: bar\n",
	})

	for _, target := range []string{"books/authors", "books/authors.yml", "/books/authors"} {
		file, err := store.Read(target)
		require.NoError(t, err, target)
		require.Equal(t, "/_data/books/authors.yml", file.Path)
		require.Equal(t, "books/authors.yml", file.RelativePath)
		require.Equal(t, "Authors", file.Title)
		require.Equal(t, "http://localhost:4000/_api/data/books/authors.yml", file.APIURL)
	}
}

func TestDataStore_ReadNotFound(t *testing.T) {
	store, _ := newTestStore(t, map[string]string{
		"/_data/data_file.yml": "foo: bar\n",
	})

	for _, target := range []string{"missing", "missing.yml", "data_file.json", "nodir/data_file"} {
		_, err := store.Read(target)
		require.ErrorIs(t, err, ErrNotFound, target)
	}
}

func TestDataStore_ReadUnrecognizedExtension(t *testing.T) {
	store, _ := newTestStore(t, map[string]string{
		"/_data/notes.txt": "just text\n",
	})

	for _, target := range []string{"notes", "notes.txt"} {
		file, err := store.Read(target)
		require.NoError(t, err, target)
		require.Equal(t, "notes", file.Slug)
		require.Equal(t, ".txt", file.Ext)
		require.Equal(t, "just text\n", file.Content)
	}
}

func TestDataStore_ReadMalformedFallsBackToRaw(t *testing.T) {
	store, _ := newTestStore(t, map[string]string{
		"/_data/broken.json": "{not json",
	})

	file, err := store.Read("broken")
	require.NoError(t, err)
	require.Equal(t, "{not json", file.RawContent)
	require.Equal(t, "{not json", file.Content)
}

func TestDataStore_List(t *testing.T) {
	store, _ := newTestStore(t, map[string]string{
		"/_data/data_file.yml":     "foo: bar\n",
		"/_data/books/authors.yml": "foo: bar\n",
		"/_data/.hidden":           "x",
	})

	files, err := store.List("")
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Contains(t, files, models.DataFile{
		Path:         "/_data/data_file.yml",
		RelativePath: "data_file.yml",
		Slug:         "data_file",
		Ext:          ".yml",
		Title:        "Data File",
		APIURL:       "http://localhost:4000/_api/data/data_file.yml",
	})
	require.Contains(t, files, models.DataFile{
		Path:         "/_data/books/authors.yml",
		RelativePath: "books/authors.yml",
		Slug:         "authors",
		Ext:          ".yml",
		Title:        "Authors",
		APIURL:       "http://localhost:4000/_api/data/books/authors.yml",
	})

	// everything the listing names can be fetched directly
	for _, f := range files {
		full, err := store.Read(f.RelativePath)
		require.NoError(t, err)
		require.Equal(t, f, full.DataFile)
	}
}

func TestDataStore_ListSubdirectory(t *testing.T) {
	store, fs := newTestStore(t, map[string]string{
		"/_data/data_file.yml":     "foo: bar\n",
		"/_data/books/authors.yml": "foo: bar\n",
	})

	files, err := store.List("/books/")
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "books/authors.yml", files[0].RelativePath)

	_, err = store.List("missing/")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, fs.MkdirAll("/_data/empty", 0755))
	files, err = store.List("empty")
	require.NoError(t, err)
	require.NotNil(t, files)
	require.Empty(t, files)
}

func TestDataStore_WriteNewFromContent(t *testing.T) {
	store, fs := newTestStore(t, nil)

	file, err := store.Write("data-file-new", models.WriteRequest{
		Content: map[string]interface{}{"foo": "bar"},
	})
	require.NoError(t, err)
	require.Equal(t, &models.DataFileContent{
		DataFile: models.DataFile{
			Path:         "/_data/data-file-new.yml",
			RelativePath: "data-file-new.yml",
			Slug:         "data-file-new",
			Ext:          ".yml",
			Title:        "Data File New",
			APIURL:       "http://localhost:4000/_api/data/data-file-new.yml",
		},
		RawContent: "foo: bar\n",
		Content:    map[string]interface{}{"foo": "bar"},
	}, file)

	data, err := vfs.ReadFile(fs, "/_data/data-file-new.yml")
	require.NoError(t, err)
	require.Equal(t, "foo: bar\n", string(data))

	read, err := store.Read("data-file-new")
	require.NoError(t, err)
	require.Equal(t, file, read)
}

func TestDataStore_WriteRawContentMatchesContent(t *testing.T) {
	store, _ := newTestStore(t, nil)

	fromContent, err := store.Write("a/data-file-new", models.WriteRequest{
		Content: map[string]interface{}{"foo": "bar"},
	})
	require.NoError(t, err)
	require.NoError(t, store.Delete("a/data-file-new"))

	fromRaw, err := store.Write("a/data-file-new", models.WriteRequest{
		RawContent: strPtr("foo: bar"),
	})
	require.NoError(t, err)
	require.Equal(t, fromContent, fromRaw)
	require.Equal(t, "foo: bar\n", fromRaw.RawContent)
}

func TestDataStore_WriteRawContentWins(t *testing.T) {
	store, _ := newTestStore(t, nil)

	file, err := store.Write("both", models.WriteRequest{
		Content:    map[string]interface{}{"ignored": true},
		RawContent: strPtr("kept: value\n"),
	})
	require.NoError(t, err)
	require.Equal(t, "kept: value\n", file.RawContent)
	require.Equal(t, map[string]interface{}{"kept": "value"}, file.Content)
}

func TestDataStore_WriteCreatesSubdirectories(t *testing.T) {
	store, fs := newTestStore(t, nil)

	file, err := store.Write("test-dir/nested/data-file-new", models.WriteRequest{
		Content: map[string]interface{}{"foo": "bar"},
	})
	require.NoError(t, err)
	require.Equal(t, "test-dir/nested/data-file-new.yml", file.RelativePath)
	require.Equal(t, "/_data/test-dir/nested/data-file-new.yml", file.Path)

	exists, err := vfs.FileExists(fs, "/_data/test-dir/nested/data-file-new.yml")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestDataStore_WriteUpdatesInPlace(t *testing.T) {
	store, fs := newTestStore(t, map[string]string{
		"/_data/data-file-update.yml": "foo2: bar2",
		"/_data/people.json":          `{"old": true}`,
	})

	file, err := store.Write("data-file-update", models.WriteRequest{
		Content: map[string]interface{}{"foo": "bar2"},
	})
	require.NoError(t, err)
	require.Equal(t, ".yml", file.Ext)
	require.Equal(t, "foo: bar2\n", file.RawContent)
	require.Equal(t, map[string]interface{}{"foo": "bar2"}, file.Content)

	file, err = store.Write("people", models.WriteRequest{
		Content: map[string]interface{}{"name": "Ann"},
	})
	require.NoError(t, err)
	require.Equal(t, "people.json", file.RelativePath)
	require.Equal(t, "{\n  \"name\": \"Ann\"\n}\n", file.RawContent)

	exists, err := vfs.FileExists(fs, "/_data/people.yml")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestDataStore_WriteExplicitExtension(t *testing.T) {
	store, _ := newTestStore(t, nil)

	file, err := store.Write("config.toml", models.WriteRequest{
		Content: map[string]interface{}{"title": "Site"},
	})
	require.NoError(t, err)
	require.Equal(t, ".toml", file.Ext)
	require.Equal(t, map[string]interface{}{"title": "Site"}, file.Content)
}

func TestDataStore_WriteInvalid(t *testing.T) {
	store, fs := newTestStore(t, nil)

	_, err := store.Write("empty", models.WriteRequest{})
	require.ErrorIs(t, err, ErrInvalidContent)

	_, err = store.Write("broken", models.WriteRequest{RawContent: strPtr("foo: [bar")})
	require.ErrorIs(t, err, ErrInvalidContent)

	_, err = store.Write("list.csv", models.WriteRequest{Content: "not rows"})
	require.ErrorIs(t, err, ErrInvalidContent)

	exists, err := vfs.Exists(fs, "/_data/broken.yml")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestDataStore_Delete(t *testing.T) {
	store, fs := newTestStore(t, map[string]string{
		"/_data/data-file-delete.yml":          "foo2: bar2",
		"/_data/test-dir/data-file-delete.yml": "foo2: bar2",
	})

	require.NoError(t, store.Delete("data-file-delete"))
	require.NoError(t, store.Delete("test-dir/data-file-delete.yml"))

	for _, p := range []string{"/_data/data-file-delete.yml", "/_data/test-dir/data-file-delete.yml"} {
		exists, err := vfs.Exists(fs, p)
		require.NoError(t, err)
		require.False(t, exists, p)
	}

	_, err := store.Read("data-file-delete")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, store.Delete("data-file-delete"), ErrNotFound)
}

func TestDataStore_RejectsTraversal(t *testing.T) {
	store, fs := newTestStore(t, map[string]string{
		"/secret.yml": "password: hunter2\n",
	})

	for _, target := range []string{"../secret", "../../etc/passwd", "books/../../secret.yml", "./x", `a\..\b`} {
		_, err := store.Read(target)
		require.ErrorIs(t, err, ErrInvalidPath, target)

		_, err = store.Write(target, models.WriteRequest{Content: "x"})
		require.ErrorIs(t, err, ErrInvalidPath, target)

		require.ErrorIs(t, store.Delete(target), ErrInvalidPath, target)
	}

	_, err := store.List("../")
	require.ErrorIs(t, err, ErrInvalidPath)

	exists, err := vfs.Exists(fs, "/secret.yml")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestDataStore_CustomDataDir(t *testing.T) {
	fs := newTestFS(t, map[string]string{
		"/src/data/site.yml": "name: test\n",
	})
	store := NewDataStore(fs, "./src/data/", testBaseURL, logr.Discard())
	require.Equal(t, "src/data", store.DataDir())

	file, err := store.Read("site")
	require.NoError(t, err)
	require.Equal(t, "/src/data/site.yml", file.Path)
	require.Equal(t, "site.yml", file.RelativePath)
}

func TestDataStore_ListMissingDataDirectory(t *testing.T) {
	store := NewDataStore(memoryfs.New(), "_data", testBaseURL, logr.Discard())

	files, err := store.List("")
	require.NoError(t, err)
	require.NotNil(t, files)
	require.Empty(t, files)

	_, err = store.List("books/")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDataStore_WriteDirectoryTarget(t *testing.T) {
	store, fs := newTestStore(t, map[string]string{
		"/_data/books/authors.yml": "foo: bar\n",
	})

	_, err := store.Write("books/", models.WriteRequest{Content: map[string]interface{}{"foo": "bar"}})
	require.ErrorIs(t, err, ErrInvalidPath)
	require.ErrorIs(t, store.Delete("books/"), ErrInvalidPath)

	exists, err := vfs.Exists(fs, "/_data/books.yml")
	require.NoError(t, err)
	require.False(t, exists)
}
