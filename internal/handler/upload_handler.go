package handler

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

// MaxUploadBytes 单张图片的大小上限
const MaxUploadBytes = 10 << 20

var uploadExtensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
}

// UploadImage 处理图片上传请求，返回地址与像素尺寸供封面与相册使用
func (a *API) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+(1<<20))

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			respondError(c, http.StatusRequestEntityTooLarge, "图片不能超过 10MB")
			return
		}
		respondError(c, http.StatusBadRequest, "未找到上传的图片")
		return
	}
	if file.Size > MaxUploadBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "图片不能超过 10MB")
		return
	}

	config, format, err := decodeImageConfig(file)
	if err != nil {
		respondError(c, http.StatusBadRequest, "只允许上传 JPEG、PNG、GIF 或 WebP 图片")
		return
	}
	ext, ok := uploadExtensions[format]
	if !ok {
		respondError(c, http.StatusBadRequest, "只允许上传 JPEG、PNG、GIF 或 WebP 图片")
		return
	}

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		a.log.Error("create upload dir", zap.String("dir", a.uploadDir), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "创建上传目录失败")
		return
	}

	newFilename := fmt.Sprintf("%s-%s%s", a.now().Format("20060102"), uuid.NewString(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(a.uploadDir, newFilename)); err != nil {
		a.log.Error("save upload", zap.String("file", newFilename), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "保存文件失败")
		return
	}

	fileURL := path.Join(a.uploadURL, newFilename)
	c.JSON(http.StatusCreated, gin.H{
		"message": "上传成功",
		"data": gin.H{
			"url":    fileURL,
			"width":  config.Width,
			"height": config.Height,
			"format": format,
			"size":   file.Size,
		},
	})
}

func decodeImageConfig(file *multipart.FileHeader) (image.Config, string, error) {
	src, err := file.Open()
	if err != nil {
		return image.Config{}, "", err
	}
	defer src.Close()
	return image.DecodeConfig(src)
}
