package handlers

import (
	"strings"

	"VidTube.com/pkg/auth"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Response struct {
	Code    int64       `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// SendResponse pack response, HTTP status follows the error kind
func SendResponse(c *app.RequestContext, err error, data interface{}) {
	Err := errno.ConvertErr(err)
	if err != nil && Err.ErrCode == errno.ServiceErrCode {
		hlog.Errorf("%s %s failed: %+v", c.Method(), c.Path(), err)
	}
	c.JSON(Err.HTTPStatus(), Response{
		Code:    Err.ErrCode,
		Message: Err.ErrMsg,
		Data:    data,
	})
}

// bindErr 绑定失败统一视为参数错误
func bindErr(err error) error {
	return errno.ParamErr.WithMessage(err.Error())
}

// CurrentPrincipal 返回当前请求的用户, 匿名时为 nil
func CurrentPrincipal(c *app.RequestContext) *auth.Principal {
	v, ok := c.Get(constants.PrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*auth.Principal)
	return p
}

func pathID(c *app.RequestContext, name string) (primitive.ObjectID, error) {
	return utils.ParseObjectID(c.Param(name), name)
}

type PageParam struct {
	Page  int64 `query:"page"`
	Limit int64 `query:"limit"`
}

type ContentParam struct {
	Content string `json:"content" form:"content"`
}

type VideoListParam struct {
	Page     int64  `query:"page"`
	Limit    int64  `query:"limit"`
	Query    string `query:"query"`
	SortBy   string `query:"sortBy"`
	SortType string `query:"sortType"`
	UserID   string `query:"userId"`
}

type VideoUpdateParam struct {
	Title       *string `json:"title" form:"title"`
	Description *string `json:"description" form:"description"`
}

type PlaylistParam struct {
	Name        *string `json:"name" form:"name"`
	Description *string `json:"description" form:"description"`
}

type RegisterParam struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	FullName string `json:"fullName" form:"fullName"`
	Password string `json:"password" form:"password"`
}

type LoginParam struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Login 用户名优先, 否则使用邮箱
func (p LoginParam) Login() string {
	if strings.TrimSpace(p.Username) != "" {
		return p.Username
	}
	return p.Email
}
