package validation

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	validatorv10 "github.com/go-playground/validator/v10"
)

var (
	nigerianPhonePattern = regexp.MustCompile(`^(\+?234|0)?[789][01]\d{8}$`)
	personNamePattern    = regexp.MustCompile(`^[\p{L}][\p{L} '.-]{1,99}$`)
)

const (
	TagNigerianPhone = "ng_phone"
	TagPersonName    = "person_name"
	TagNotBlank      = "notblank"
)

var (
	defaultOnce sync.Once
	defaultV    *validatorv10.Validate
)

// New 返回注册了业务规则的 validator
func New() *validatorv10.Validate {
	v := validatorv10.New()
	register(v)
	return v
}

// Default 全局共享实例
func Default() *validatorv10.Validate {
	defaultOnce.Do(func() {
		defaultV = New()
	})
	return defaultV
}

// RegisterGin 把业务规则注册到 gin 的绑定校验器
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validatorv10.Validate)
	if !ok {
		return errors.New("gin validator engine is not validator/v10")
	}
	register(v)
	return nil
}

func register(v *validatorv10.Validate) {
	_ = v.RegisterValidation(TagNigerianPhone, func(fl validatorv10.FieldLevel) bool {
		return IsNigerianPhone(fl.Field().String())
	})
	_ = v.RegisterValidation(TagPersonName, func(fl validatorv10.FieldLevel) bool {
		return personNamePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterValidation(TagNotBlank, func(fl validatorv10.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// IsNigerianPhone 校验尼日利亚手机号（允许空格与连字符）
func IsNigerianPhone(raw string) bool {
	return nigerianPhonePattern.MatchString(compactPhone(raw))
}

// NormalizePhone 统一为 +234XXXXXXXXXX；无法识别时原样返回去空格结果
func NormalizePhone(raw string) string {
	phone := compactPhone(raw)
	switch {
	case strings.HasPrefix(phone, "+234"):
		return phone
	case strings.HasPrefix(phone, "234"):
		return "+" + phone
	case strings.HasPrefix(phone, "0") && len(phone) == 11:
		return "+234" + phone[1:]
	case len(phone) == 10:
		return "+234" + phone
	}
	return phone
}

func compactPhone(raw string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))
}

// FieldErrors 把校验错误转换为 字段 -> 规则 的映射
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	var ve validatorv10.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return out
	}
	if err != nil {
		out["error"] = err.Error()
	}
	return out
}

// FirstMessage 第一条可读错误，用于响应 msg
func FirstMessage(err error) string {
	var ve validatorv10.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		switch fe.Tag() {
		case "required", TagNotBlank:
			return fe.Field() + " is required"
		case TagNigerianPhone:
			return "invalid phone number"
		case TagPersonName:
			return "invalid name"
		case "email":
			return "invalid email address"
		case "min":
			return fe.Field() + " must be at least " + fe.Param()
		case "oneof":
			return fe.Field() + " must be one of: " + fe.Param()
		}
		return fe.Field() + " is invalid"
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
