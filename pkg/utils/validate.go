package utils

import (
	"regexp"
	"strings"

	"VidTube.com/pkg/errno"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	emailRegex    = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-z0-9_.]{3,30}$`)
)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidUsername 用户名统一小写, 3-30 位字母数字下划线或点
func IsValidUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// ParseObjectID 解析路径或表单中的 id, 非法时返回参数错误
func ParseObjectID(raw, field string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, errno.ParamErr.WithMessage("Invalid " + field)
	}
	return id, nil
}
