package httpapi

import (
	"context"
	"net/http"

	"github.com/dkarlovs/tacpanel/internal/server/models"
	"github.com/dkarlovs/tacpanel/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (a *API) createServer(c *gin.Context) {
	var req createServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	srv, err := a.servers.Create(c.Request.Context(), currentUserID(c), services.CreateServerParams{
		Name:        req.Name,
		GameType:    req.GameType,
		Port:        req.Port,
		MaxPlayers:  req.MaxPlayers,
		InstallPath: req.InstallPath,
	})
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toServerResponse(srv))
}

func (a *API) listServers(c *gin.Context) {
	list, err := a.servers.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		a.abortWithError(c, err)
		return
	}

	// Empty list, never null.
	out := make([]serverResponse, 0, len(list))
	for _, srv := range list {
		out = append(out, toServerResponse(srv))
	}
	c.JSON(http.StatusOK, out)
}

func (a *API) getServer(c *gin.Context) {
	srv, err := a.servers.Get(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toServerResponse(srv))
}

func (a *API) updateServer(c *gin.Context) {
	var req updateServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	srv, err := a.servers.Update(c.Request.Context(), c.Param("id"), currentUserID(c), services.UpdateServerParams{
		Name:       req.Name,
		Port:       req.Port,
		MaxPlayers: req.MaxPlayers,
	})
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toServerResponse(srv))
}

func (a *API) systemResources(c *gin.Context) {
	res, err := a.servers.Resources(c.Request.Context(), currentUserID(c))
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, systemResourcesResponse{
		CPUPercent:    res.CPUPercent,
		MemoryPercent: res.MemoryPercent,
		MemoryUsedGB:  res.MemoryUsedGB,
		MemoryTotalGB: res.MemoryTotalGB,
		DiskPercent:   res.DiskPercent,
		DiskUsedGB:    res.DiskUsedGB,
		DiskTotalGB:   res.DiskTotalGB,
	})
}

func (a *API) deleteServer(c *gin.Context) {
	if err := a.servers.Delete(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Server deleted"})
}

func (a *API) startServer(c *gin.Context) {
	a.lifecycle(c, a.servers.Start)
}

func (a *API) stopServer(c *gin.Context) {
	a.lifecycle(c, a.servers.Stop)
}

func (a *API) restartServer(c *gin.Context) {
	a.lifecycle(c, a.servers.Restart)
}

func (a *API) lifecycle(c *gin.Context, op func(ctx context.Context, id, userID string) (*models.ServerInstance, error)) {
	srv, err := op(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toServerResponse(srv))
}
