package errno

import "github.com/cloudwego/hertz/pkg/protocol/consts"

const (
	SuccessCode          = 0
	ServiceErrCode       = 10001
	ParamErrCode         = 10002
	UnauthenticatedCode  = 10003
	ForbiddenCode        = 10004
	NotFoundCode         = 10005
	ConflictCode         = 10006
	InvalidOperationCode = 10007
	UpstreamErrCode      = 10008
	RateLimitedCode      = 10009
)

var (
	Success            = NewErrNo(SuccessCode, "Success")
	ServiceErr         = NewErrNo(ServiceErrCode, "Service is unable to start successfully")
	InternalErr        = NewErrNo(ServiceErrCode, "Internal server error")
	ParamErr           = NewErrNo(ParamErrCode, "Wrong Parameter has been given")
	UnauthenticatedErr = NewErrNo(UnauthenticatedCode, "Unauthorized request")
	ForbiddenErr       = NewErrNo(ForbiddenCode, "You are not allowed to modify this resource")
	NotFoundErr        = NewErrNo(NotFoundCode, "Resource not found")
	ConflictErr        = NewErrNo(ConflictCode, "Resource already exists")
	InvalidOpErr       = NewErrNo(InvalidOperationCode, "Operation is not allowed")
	UpstreamErr        = NewErrNo(UpstreamErrCode, "Media service request failed")
	RateLimitedErr     = NewErrNo(RateLimitedCode, "Too many requests, slow down")
)

var kinds = map[int64]string{
	SuccessCode:          "Success",
	ServiceErrCode:       "Internal",
	ParamErrCode:         "InvalidArgument",
	UnauthenticatedCode:  "Unauthenticated",
	ForbiddenCode:        "Forbidden",
	NotFoundCode:         "NotFound",
	ConflictCode:         "Conflict",
	InvalidOperationCode: "InvalidOperation",
	UpstreamErrCode:      "UpstreamFailure",
	RateLimitedCode:      "RateLimited",
}

var statuses = map[int64]int{
	SuccessCode:          consts.StatusOK,
	ServiceErrCode:       consts.StatusInternalServerError,
	ParamErrCode:         consts.StatusBadRequest,
	UnauthenticatedCode:  consts.StatusUnauthorized,
	ForbiddenCode:        consts.StatusForbidden,
	NotFoundCode:         consts.StatusNotFound,
	ConflictCode:         consts.StatusConflict,
	InvalidOperationCode: consts.StatusBadRequest,
	UpstreamErrCode:      consts.StatusBadGateway,
	RateLimitedCode:      consts.StatusTooManyRequests,
}
