package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/natansdj/electives/repository"
)

func (ctl *Controller) AllModules(c *gin.Context) {
	modules, err := ctl.Store.AllModules(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to fetch modules")
		return
	}

	c.JSON(http.StatusOK, modules)
}

// SearchModules handles GET /modules/search?q=
func (ctl *Controller) SearchModules(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		abort(c, http.StatusBadRequest, "Search query is required")
		return
	}

	modules, err := ctl.Store.SearchModules(c.Request.Context(), q)
	if err != nil {
		fail(c, err, "Failed to search modules")
		return
	}

	c.JSON(http.StatusOK, modules)
}

func (ctl *Controller) GetModule(c *gin.Context) {
	module, err := ctl.Store.ModuleByCode(c.Request.Context(), c.Param("module_code"))
	if errors.Is(err, repository.ErrNotFound) {
		abort(c, http.StatusNotFound, "Module not found")
		return
	}
	if err != nil {
		fail(c, err, "Failed to fetch module")
		return
	}

	c.JSON(http.StatusOK, module)
}
