package handlers

import "github.com/gin-gonic/gin"

type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeResponse(c *gin.Context, data any, statusCode int) {
	c.JSON(statusCode, response{Success: true, Data: data})
}

func writeError(c *gin.Context, statusCode int, message string) {
	c.Abort()
	c.JSON(statusCode, response{Success: false, Error: message})
}
