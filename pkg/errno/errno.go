package errno

import (
	"errors"
	"fmt"
)

type ErrNo struct {
	ErrCode int64
	ErrMsg  string
}

func (e ErrNo) Error() string {
	return fmt.Sprintf("err_code=%d, err_msg=%s", e.ErrCode, e.ErrMsg)
}

func NewErrNo(code int64, msg string) ErrNo {
	return ErrNo{
		ErrCode: code,
		ErrMsg:  msg,
	}
}

func (e ErrNo) WithMessage(msg string) ErrNo {
	e.ErrMsg = msg
	return e
}

// Kind is the stable taxonomy name of the error, e.g. "NotFound".
func (e ErrNo) Kind() string {
	if k, ok := kinds[e.ErrCode]; ok {
		return k
	}
	return kinds[ServiceErrCode]
}

func (e ErrNo) HTTPStatus() int {
	if s, ok := statuses[e.ErrCode]; ok {
		return s
	}
	return statuses[ServiceErrCode]
}

// Is reports a match on the error code so errors.Is(err, errno.NotFoundErr)
// holds for any message variant.
func (e ErrNo) Is(target error) bool {
	t, ok := target.(ErrNo)
	if !ok {
		return false
	}
	return t.ErrCode == e.ErrCode
}

// ConvertErr convert error to Errno
func ConvertErr(err error) ErrNo {
	if err == nil {
		return Success
	}
	Err := ErrNo{}
	if errors.As(err, &Err) {
		return Err
	}
	s := InternalErr
	return s
}
