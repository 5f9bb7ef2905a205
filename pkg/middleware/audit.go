package middleware

import (
	"net"
	"time"

	"SecuroHub/pkg/constant"
	"SecuroHub/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/mssola/user_agent"
	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const ClientInfoField = "_securo_client_info"

// ClientInfo describes the caller of a request.
type ClientInfo struct {
	IP      string
	Browser string
	OS      string
	Device  string
	City    string
}

// Auditor derives ClientInfo from requests and writes an operation log line
// per request. City lookup needs a GeoLite2 City database.
type Auditor struct {
	geo *geoip2.Reader
}

// NewAuditor opens the GeoIP database when geoipPath is set.
func NewAuditor(geoipPath string) (*Auditor, error) {
	a := &Auditor{}
	if geoipPath == "" {
		return a, nil
	}
	reader, err := geoip2.Open(geoipPath)
	if err != nil {
		return nil, err
	}
	a.geo = reader
	return a, nil
}

func (a *Auditor) Close() error {
	if a.geo != nil {
		return a.geo.Close()
	}
	return nil
}

func (a *Auditor) ClientInfo(c *gin.Context) ClientInfo {
	if v, ok := c.Get(ClientInfoField); ok {
		if info, ok := v.(ClientInfo); ok {
			return info
		}
	}
	ua := user_agent.New(c.GetHeader("User-Agent"))
	browser, version := ua.Browser()
	if version != "" {
		browser += " " + version
	}
	device := "desktop"
	if ua.Bot() {
		device = "bot"
	} else if ua.Mobile() {
		device = "mobile"
	}
	info := ClientInfo{
		IP:      clientIPFromRequest(c),
		Browser: browser,
		OS:      ua.OS(),
		Device:  device,
		City:    a.city(clientIPFromRequest(c)),
	}
	c.Set(ClientInfoField, info)
	return info
}

func (a *Auditor) city(ip string) string {
	if a.geo == nil {
		return ""
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	record, err := a.geo.City(parsed)
	if err != nil {
		return ""
	}
	return record.City.Names["en"]
}

// Middleware logs one operation line per request.
func (a *Auditor) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		info := a.ClientInfo(c)
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", info.IP),
			zap.String("browser", info.Browser),
			zap.String("os", info.OS),
		}
		if user := c.GetString(constant.SessionUsername); user != "" {
			fields = append(fields, zap.String("user", user))
		}
		if info.City != "" {
			fields = append(fields, zap.String("city", info.City))
		}
		logger.Info("operation", fields...)
	}
}

// InjectDB exposes db to handlers and the auth helpers.
func InjectDB(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constant.DbField, db)
		c.Next()
	}
}
