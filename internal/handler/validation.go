package handler

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/tourcms/internal/service"
)

var validatorOnce sync.Once

// registerValidators 向 gin 的默认校验器注册 slug 规则，空值交给 omitempty 处理。
func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return service.SlugPattern.MatchString(fl.Field().String())
		})
	})
}
