package server

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/orgball2608/wedding-gallery/internal/domain"
)

var registerOnce sync.Once

// registerValidators adds the "mediatype" tag: an image/* or video/* MIME type.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("mediatype", func(fl validator.FieldLevel) bool {
			_, ok := domain.KindFromMIME(fl.Field().String())
			return ok
		})
	})
}
