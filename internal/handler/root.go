package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type WelcomeResponse struct {
	Message   string            `json:"message" example:"Welcome to the Book API"`
	Endpoints map[string]string `json:"endpoints"`
}

// Root godoc
// @Summary      API index
// @Description  Welcome message and the available resource paths
// @Tags         root
// @Produce      json
// @Success      200  {object}  WelcomeResponse
// @Router       / [get]
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, WelcomeResponse{
		Message: "Welcome to the Book API",
		Endpoints: map[string]string{
			"books": "/books",
		},
	})
}
