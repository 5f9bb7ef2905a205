package handlers

import (
	"SecuroHub/pkg/constant"
	"SecuroHub/pkg/errors"
	"SecuroHub/pkg/response"

	"github.com/gin-gonic/gin"
)

var errorMessageIDs = []struct {
	err *errors.Error
	id  string
}{
	{errors.ErrUnauthorized, "Unauthorized"},
	{errors.ErrInvalidCredentials, "InvalidCredentials"},
	{errors.ErrUsernameTaken, "UsernameTaken"},
	{errors.ErrInvalidUsername, "InvalidUsername"},
	{errors.ErrWeakPassword, "WeakPassword"},
	{errors.ErrPasswordTooLong, "PasswordTooLong"},
	{errors.ErrInvalidRole, "InvalidRole"},
	{errors.ErrEmptyMessage, "EmptyMessage"},
	{errors.ErrEmptyDescription, "EmptyDescription"},
	{errors.ErrInvalidCoordinates, "InvalidCoordinates"},
	{errors.ErrInvalidStatus, "InvalidStatus"},
	{errors.ErrUnknownContact, "UnknownContact"},
	{errors.ErrNoPendingEmergency, "NoPendingEmergency"},
}

// t localizes a message for the request's language.
func (h *Handlers) t(c *gin.Context, id, fallback string, data map[string]interface{}) string {
	if h.I18n == nil {
		return fallback
	}
	return h.I18n.T(c.GetString(constant.LangField), id, fallback, data)
}

// fail answers with err, localizing the known domain errors.
func (h *Handlers) fail(c *gin.Context, err error) {
	for _, e := range errorMessageIDs {
		if errors.Is(err, e.err) {
			_ = c.Error(err)
			c.AbortWithStatusJSON(e.err.Code, response.Body{Code: e.err.Code, Msg: h.t(c, e.id, e.err.Message, nil)})
			return
		}
	}
	response.Error(c, err)
}
