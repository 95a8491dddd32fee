package http

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/streaks"
)

var registerOnce sync.Once

// registerValidators adds the calendar_date tag to gin's validator engine.
// timezone is a validator built-in.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		mustRegister(v, "calendar_date", validateCalendarDate)
	})
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register %s validator: %v", tag, err))
	}
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := streaks.ParseDate(fl.Field().String())
	return err == nil
}

type locationQuery struct {
	TZ string `form:"tz" binding:"omitempty,timezone"`
}

// requestLocation resolves ?tz=, falling back to def.
func requestLocation(c *gin.Context, def *time.Location) (*time.Location, error) {
	var q locationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return nil, err
	}
	if q.TZ == "" {
		return def, nil
	}
	return time.LoadLocation(q.TZ)
}
