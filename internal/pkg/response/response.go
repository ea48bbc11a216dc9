package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every denial shares one envelope so the wire never reveals which check
// failed. Detail lives in the server logs only.

// OK sends a 200 with the success envelope wrapping data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// Created sends a 201 with the success envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// Message sends a 200 with just a human message.
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// BadRequest sends a 400 denial.
func BadRequest(c *gin.Context, message string) {
	deny(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 denial.
func Unauthorized(c *gin.Context) {
	deny(c, http.StatusUnauthorized, "authentication required")
}

// Forbidden sends a 403 denial.
func Forbidden(c *gin.Context) {
	deny(c, http.StatusForbidden, "access denied")
}

// NotFound sends a 404 denial.
func NotFound(c *gin.Context) {
	deny(c, http.StatusNotFound, "not found")
}

// Conflict sends a 409 denial.
func Conflict(c *gin.Context, message string) {
	deny(c, http.StatusConflict, message)
}

// TooManyRequests sends a 429 denial.
func TooManyRequests(c *gin.Context) {
	deny(c, http.StatusTooManyRequests, "too many requests, slow down")
}

// InternalError sends a 500 denial without leaking the cause.
func InternalError(c *gin.Context) {
	deny(c, http.StatusInternalServerError, "something went wrong")
}

func deny(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
