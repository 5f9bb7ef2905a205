package response

import (
	"net/http"

	apperrors "SecuroHub/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Body is the JSON envelope every API handler answers with.
type Body struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

func Success(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusOK, Body{Code: http.StatusOK, Msg: msg, Data: data})
}

func Created(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusCreated, Body{Code: http.StatusCreated, Msg: msg, Data: data})
}

// Fail answers 400 with msg.
func Fail(c *gin.Context, msg string, data any) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Body{Code: http.StatusBadRequest, Msg: msg, Data: data})
}

// Error answers with the status carried by err (500 for uncoded errors).
func Error(c *gin.Context, err error) {
	code := apperrors.GetCode(err)
	msg := apperrors.GetMessage(err)
	if code >= http.StatusInternalServerError {
		msg = http.StatusText(code)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(code, Body{Code: code, Msg: msg})
}
