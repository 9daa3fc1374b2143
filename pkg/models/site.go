package models

// SiteConfig holds the settings read from the site's _config file.
type SiteConfig struct {
	DataDir string `json:"data_dir"`
	URL     string `json:"url"`
	BaseURL string `json:"baseurl"`

	// Raw is the whole parsed document, served by the configuration endpoint.
	Raw map[string]interface{} `json:"-"`
}
