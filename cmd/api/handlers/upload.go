package handlers

import (
	"os"
	"path/filepath"

	"VidTube.com/config"
	"VidTube.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
	herrors "github.com/cloudwego/hertz/pkg/common/errors"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// saveUpload 将 multipart 文件落盘到上传目录; 未上传时返回空路径, 表单损坏时返回 ParamErr
func saveUpload(c *app.RequestContext, field string) (string, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, protocol.ErrMissingFile) || errors.Is(err, herrors.ErrNoMultipartForm) {
		return "", nil
	}
	if err != nil {
		hlog.Warnf("parse upload %s failed: %v", field, err)
		return "", errno.ParamErr.WithMessage("Malformed multipart form")
	}
	if fh == nil {
		return "", nil
	}
	dir := config.ConfigInfo.Server.UploadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errno.InternalErr
	}
	dst := filepath.Join(dir, uuid.NewString()+filepath.Ext(fh.Filename))
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		hlog.Errorf("save upload %s failed: %v", field, err)
		return "", errno.InternalErr
	}
	return dst, nil
}

// removeUploads 请求结束后清理本地临时文件
func removeUploads(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			hlog.Warnf("remove upload %s failed: %v", p, err)
		}
	}
}
