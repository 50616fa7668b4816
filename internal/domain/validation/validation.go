// Package validation checks device and scene values before they reach the store
// or the cloud.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"domotic/internal/domain/model"
	"gopkg.in/go-playground/validator.v9"
)

const (
	tagColorMode = "color_mode"
	tagHueSat    = "hue_saturation"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			name = strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(sceneColorMode, model.Scene{})
	return &Validator{validate: v}
}

// Device validates identity fields and the bulb type.
func (v *Validator) Device(d model.Device) error {
	return v.Struct(d)
}

// Scene validates ranges, the exclusive color mode and that the device type supports color.
func (v *Validator) Scene(deviceType model.DeviceType, s model.Scene) error {
	if err := v.Struct(s); err != nil {
		return err
	}
	if deviceType != model.DeviceTypeColorBulb && s.HasColor() {
		return &model.ValidationError{
			Field:  "scene",
			Reason: fmt.Sprintf("color attributes are not supported by %s devices", deviceType),
		}
	}
	return nil
}

// Struct validates any tagged struct and reports the first failing field.
func (v *Validator) Struct(obj interface{}) error {
	err := v.validate.Struct(obj)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return &model.ValidationError{Field: "value", Reason: err.Error()}
	}
	return &model.ValidationError{Field: errs[0].Field(), Reason: reason(errs[0])}
}

func sceneColorMode(sl validator.StructLevel) {
	s := sl.Current().Interface().(model.Scene)
	if s.Temperature != nil && (s.Hue != nil || s.Saturation != nil) {
		sl.ReportError(s.Temperature, "temperature", "Temperature", tagColorMode, "")
	}
	if (s.Hue == nil) != (s.Saturation == nil) {
		sl.ReportError(s.Hue, "hue", "Hue", tagHueSat, "")
	}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case tagColorMode:
		return "temperature and hue/saturation are mutually exclusive"
	case tagHueSat:
		return "hue and saturation must be set together"
	default:
		return "failed " + fe.Tag()
	}
}
