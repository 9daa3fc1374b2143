package services

import (
	"fmt"
	"path"

	"data-admin/pkg/models"

	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/pkg/errors"
)

// DefaultDataDir is the data directory used when the site config names none.
const DefaultDataDir = "_data"

var siteConfigFiles = []string{"_config.yml", "_config.yaml", "_config.toml"}

// LoadSiteConfig reads the first site config file found at the root of fs.
// A site without one gets the defaults.
func LoadSiteConfig(fs vfs.FileSystem) (*models.SiteConfig, error) {
	cfg := &models.SiteConfig{
		DataDir: DefaultDataDir,
		Raw:     map[string]interface{}{},
	}

	for _, name := range siteConfigFiles {
		p := "/" + name
		data, err := vfs.ReadFile(fs, p)
		if err != nil {
			if vfs.IsErrNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, "reading %s", name)
		}

		doc, err := CodecFor(path.Ext(name)).Decode(data)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", name)
		}
		if doc == nil {
			return cfg, nil
		}
		raw, ok := doc.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: expected a mapping at the top level, got %T", name, doc)
		}

		cfg.Raw = raw
		if v, ok := raw["data_dir"].(string); ok && v != "" {
			cfg.DataDir = v
		}
		cfg.URL, _ = raw["url"].(string)
		cfg.BaseURL, _ = raw["baseurl"].(string)
		return cfg, nil
	}
	return cfg, nil
}
