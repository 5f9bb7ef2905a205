package handlers

import (
	"net/http"
	"time"

	"SecuroHub/internal/models"
	"SecuroHub/pkg/auth"
	"SecuroHub/pkg/constant"
	"SecuroHub/pkg/logger"
	"SecuroHub/pkg/metrics"
	"SecuroHub/pkg/response"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SignupForm struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type LoginForm struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handlers) handleRoles(c *gin.Context) {
	response.Success(c, "roles", models.Roles())
}

func (h *Handlers) handleUserSignup(c *gin.Context) {
	var form SignupForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Fail(c, "invalid request", gin.H{"error": err.Error()})
		return
	}
	user, err := models.Signup(h.db, form.Username, form.Password, form.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, h.t(c, "SignupSuccess", "account created", nil), user)
}

func (h *Handlers) handleUserSignin(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Fail(c, "invalid request", gin.H{"error": err.Error()})
		return
	}
	user, err := models.Authenticate(h.db, form.Username, form.Password)
	h.recordLogin(c, form.Username, err == nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := models.Login(c, user); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.t(c, "LoginSuccess", "login success", nil), user)
}

func (h *Handlers) recordLogin(c *gin.Context, username string, success bool) {
	status := "ok"
	if !success {
		status = "error"
	}
	if h.Metrics != nil {
		h.Metrics.RecordBusinessOperation(metrics.OpLogin, status)
	}
	event := &models.LoginEvent{Username: username, Success: success, IP: c.ClientIP()}
	if h.Auditor != nil {
		info := h.Auditor.ClientInfo(c)
		event.IP, event.Browser, event.OS, event.Device, event.City = info.IP, info.Browser, info.OS, info.Device, info.City
	}
	if err := models.RecordLoginEvent(h.db, event); err != nil {
		logger.Warn("record login event failed", zap.Error(err))
	}
}

func (h *Handlers) handleUserLogout(c *gin.Context) {
	if err := models.Logout(c); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.t(c, "LogoutSuccess", "logout success", nil), nil)
}

func (h *Handlers) handleUserInfo(c *gin.Context) {
	user := models.CurrentUser(c)
	pending, _ := sessions.Default(c).Get(constant.SessionPendingEmergency).(string)
	logins, err := models.RecentLoginEvents(h.db, user.Username, 5)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "me", gin.H{
		"user":             user,
		"pendingEmergency": pending,
		"recentLogins":     logins,
	})
}

// handleIssueToken trades credentials for a bearer token.
func (h *Handlers) handleIssueToken(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Fail(c, "invalid request", gin.H{"error": err.Error()})
		return
	}
	user, err := models.Authenticate(h.db, form.Username, form.Password)
	h.recordLogin(c, form.Username, err == nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	token, exp, err := auth.Issue(h.jwtSecret, user.Username, string(user.Role), time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Body{
		Code: http.StatusOK,
		Msg:  h.t(c, "TokenIssued", "token issued", nil),
		Data: gin.H{"token": token, "tokenType": "Bearer", "expiresAt": exp.UTC()},
	})
}
