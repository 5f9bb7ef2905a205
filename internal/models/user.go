package models

import (
	stderrors "errors"
	"regexp"
	"strings"
	"time"

	"SecuroHub/pkg/auth"
	"SecuroHub/pkg/constant"
	"SecuroHub/pkg/errors"
	"SecuroHub/pkg/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const SigUserCreate = "user.create"

const (
	MinPasswordLength = 6
	// bcrypt ignores nothing past 72 bytes and refuses longer input
	MaxPasswordLength = 72
)

type Role string

const (
	RoleCriminologist  Role = "Criminologist"
	RoleLawEnforcement Role = "Law Enforcement"
	RoleResearcher     Role = "Researcher"
	RoleStudent        Role = "Student"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{3,32}$`)

// Roles returns the account roles in display order.
func Roles() []Role {
	return []Role{RoleCriminologist, RoleLawEnforcement, RoleResearcher, RoleStudent}
}

// ParseRole matches s case-insensitively against the known roles and
// returns the canonical spelling.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for _, r := range Roles() {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", errors.ErrInvalidRole
}

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:32;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:128"`
	Role         Role      `json:"role" gorm:"size:32"`
	CreatedAt    time.Time `json:"createdAt"`
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Signup validates the form and creates the account.
func Signup(db *gorm.DB, username, password, role string) (*User, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return nil, errors.ErrInvalidUsername
	}
	if len(password) < MinPasswordLength {
		return nil, errors.ErrWeakPassword
	}
	if len(password) > MaxPasswordLength {
		return nil, errors.ErrPasswordTooLong
	}
	r, err := ParseRole(role)
	if err != nil {
		return nil, err
	}
	if existing, _ := GetUserByUsername(db, username); existing != nil {
		return nil, errors.ErrUsernameTaken
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	user := &User{Username: username, PasswordHash: hash, Role: r}
	if err := db.Create(user).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrUsernameTaken
		}
		return nil, errors.Wrap(err, "create user")
	}
	util.Sig().Emit(SigUserCreate, user)
	return user, nil
}

// Authenticate returns ErrInvalidCredentials for an unknown user and a wrong
// password alike.
func Authenticate(db *gorm.DB, username, password string) (*User, error) {
	user, err := GetUserByUsername(db, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.CheckPassword(password) {
		return nil, errors.ErrInvalidCredentials
	}
	return user, nil
}

// GetUserByUsername returns nil, nil when no such user exists.
func GetUserByUsername(db *gorm.DB, username string) (*User, error) {
	var user User
	err := db.Where("username = ?", username).Take(&user).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query user")
	}
	return &user, nil
}

func CountUsers(db *gorm.DB) (int64, error) {
	var n int64
	err := db.Model(&User{}).Count(&n).Error
	return n, err
}

// Login stores the user in the session.
func Login(c *gin.Context, user *User) error {
	session := sessions.Default(c)
	session.Set(constant.SessionUsername, user.Username)
	session.Delete(constant.SessionPendingEmergency)
	if err := session.Save(); err != nil {
		return err
	}
	c.Set(constant.UserField, user)
	c.Set(constant.SessionUsername, user.Username)
	return nil
}

// Logout clears the whole session, pending emergency selection included.
func Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}

// CurrentUser resolves the user from the request context, the session cookie
// or a bearer token, in that order.
func CurrentUser(c *gin.Context) *User {
	if cached, ok := c.Get(constant.UserField); ok {
		if user, ok := cached.(*User); ok {
			return user
		}
	}
	value, ok := c.Get(constant.DbField)
	if !ok {
		return nil
	}
	db := value.(*gorm.DB)

	var username string
	if name, ok := sessions.Default(c).Get(constant.SessionUsername).(string); ok {
		username = name
	} else if header := c.GetHeader("Authorization"); header != "" {
		principal, err := auth.ParseBearer(header, c.GetString(constant.JWTSecretField))
		if err != nil {
			return nil
		}
		username = principal.Name
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), principal))
	}
	if username == "" {
		return nil
	}
	user, err := GetUserByUsername(db, username)
	if err != nil || user == nil {
		return nil
	}
	c.Set(constant.UserField, user)
	c.Set(constant.SessionUsername, user.Username)
	return user
}

func AuthRequired(c *gin.Context) {
	if CurrentUser(c) == nil {
		c.AbortWithStatusJSON(errors.ErrUnauthorized.Code, gin.H{
			"code": errors.ErrUnauthorized.Code,
			"msg":  errors.ErrUnauthorized.Message,
		})
		return
	}
	c.Next()
}
