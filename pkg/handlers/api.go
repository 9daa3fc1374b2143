package handlers

import (
	"net/http"
	"strings"

	"data-admin/pkg/models"
	"data-admin/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/pkg/errors"
)

// API serves the data file endpoints.
type API struct {
	store *services.DataStore
	site  *models.SiteConfig
	log   logr.Logger
}

func NewAPI(store *services.DataStore, site *models.SiteConfig, log logr.Logger) *API {
	return &API{store: store, site: site, log: log}
}

// GetData lists a directory when the path is empty or ends in a slash,
// otherwise it returns a single file.
func (a *API) GetData(c *gin.Context) {
	target := c.Param("path")
	if target == "" || strings.HasSuffix(target, "/") {
		files, err := a.store.List(target)
		if err != nil {
			a.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, files)
		return
	}

	file, err := a.store.Read(target)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

func (a *API) PutData(c *gin.Context) {
	var req models.WriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	file, err := a.store.Write(c.Param("path"), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

func (a *API) DeleteData(c *gin.Context) {
	if err := a.store.Delete(c.Param("path")); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (a *API) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, a.site.Raw)
}

// fail maps store errors onto status codes.
func (a *API) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidPath), errors.Is(err, services.ErrInvalidContent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		a.log.Error(err, "request failed", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
