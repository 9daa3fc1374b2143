package models

// DataFile is the summary view of a file under the site's data directory.
type DataFile struct {
	Path         string  `json:"path"`          // e.g. /_data/books/authors.yml
	RelativePath string  `json:"relative_path"` // relative to the data directory
	Slug         string  `json:"slug"`
	Ext          string  `json:"ext"`
	Title        string  `json:"title"`
	APIURL       string  `json:"api_url"`
	HTTPURL      *string `json:"http_url"` // data files are never published on their own
}

// DataFileContent is the full view returned for a single file.
type DataFileContent struct {
	DataFile
	RawContent string      `json:"raw_content"`
	Content    interface{} `json:"content"`
}

// WriteRequest is the body of a PUT on a data file.
// RawContent takes precedence over Content when both are set.
type WriteRequest struct {
	Content    interface{} `json:"content"`
	RawContent *string     `json:"raw_content"`
}
