package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success writes a 200 JSON envelope.
func Success(c *gin.Context, data interface{}) {
	Respond(c, http.StatusOK, data)
}

// Respond writes a success envelope with the given status.
func Respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"code": 0,
		"msg":  "ok",
		"data": data,
	})
}

// Fail writes an error envelope. extra fields are merged into the body.
func Fail(c *gin.Context, status int, msg string, extra ...gin.H) {
	body := gin.H{
		"code": status,
		"msg":  msg,
	}
	for _, e := range extra {
		for k, v := range e {
			body[k] = v
		}
	}
	c.JSON(status, body)
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code": status,
		"msg":  msg,
	})
}
