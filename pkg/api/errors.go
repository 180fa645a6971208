package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// 错误代码常量
const (
	ErrCodeInternalServerError = http.StatusInternalServerError // 服务器内部错误
	ErrCodeBadRequest          = http.StatusBadRequest          // 请求参数错误
	ErrCodeNotFound            = http.StatusNotFound            // 资源不存在
	ErrCodeNotAdmitted         = http.StatusUnprocessableEntity // 规则未通过后端准入
)

// ServiceError 自定义服务错误类型
type ServiceError struct {
	Code    int    // HTTP 状态码
	Message string // 错误消息
	Err     error  // 原始错误
}

// Error 实现 error 接口
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// NewRuleNotFoundError 创建规则不存在错误
func NewRuleNotFoundError(ruleID uint32) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("规则 %d 不存在", ruleID),
	}
}

// NewInvalidRuleError 创建规则格式无效错误
func NewInvalidRuleError(err error) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeBadRequest,
		Message: "规则格式无效",
		Err:     err,
	}
}

// NewNotAdmittedError 创建规则未被受理错误
func NewNotAdmittedError(ruleID uint32) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeNotAdmitted,
		Message: fmt.Sprintf("规则 %d 未通过后端准入", ruleID),
	}
}

// HandleError 统一错误处理函数
func HandleError(c echo.Context, err error) error {
	logrus.WithFields(logrus.Fields{
		"error":  err.Error(),
		"path":   c.Request().URL.Path,
		"method": c.Request().Method,
	}).Error("API 错误")

	if svcErr, ok := err.(*ServiceError); ok {
		return c.JSON(svcErr.Code, Response{
			Code:    svcErr.Code,
			Message: svcErr.Message,
		})
	}

	return c.JSON(http.StatusInternalServerError, Response{
		Code:    http.StatusInternalServerError,
		Message: "服务器内部错误",
	})
}
