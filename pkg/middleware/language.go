package middleware

import (
	"SecuroHub/pkg/constant"
	"SecuroHub/pkg/i18n"

	"github.com/gin-gonic/gin"
)

// LanguageMiddleware resolves the response language from ?lang= or
// Accept-Language and stores it under constant.LangField.
func LanguageMiddleware(i18nSupport *i18n.I18nSupport) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constant.LangField, i18nSupport.Match(c.Query("lang"), c.GetHeader("Accept-Language")))
		c.Next()
	}
}
