package sdk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError 启动前的本地参数校验失败，不会发出任何网络请求
type ValidationError struct {
	Fields []string
	msg    string
}

func (e *ValidationError) Error() string {
	return "参数校验失败: " + e.msg
}

// IsValidationError 判断错误是否来自本地参数校验
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate request: %w", err)
	}

	ve := &ValidationError{}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, fe.Field())
		parts = append(parts, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
	}
	ve.msg = strings.Join(parts, ", ")
	return ve
}
