// Package errors 提供统一的错误定义
package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1002"
	CodeConflict           ErrorCode = "1003"
	CodeInternalError      ErrorCode = "1004"
	CodeServiceUnavailable ErrorCode = "1005"

	// 领域校验错误 (2xxx)
	CodeValidationFailed ErrorCode = "2001"
	CodeInvalidQuery     ErrorCode = "2002"
	CodeVersionConflict  ErrorCode = "2003"

	// 资源错误 (3xxx)
	CodeMotifNotFound    ErrorCode = "3001"
	CodeConflictNotFound ErrorCode = "3002"

	// 外部服务错误 (5xxx)
	CodeDatabaseError ErrorCode = "5001"
	CodeCacheError    ErrorCode = "5002"
	CodeStorageError  ErrorCode = "5003"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	Fields     []string  `json:"fields,omitempty"` // 校验错误涉及的全部字段
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息
func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail
	return e
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// NewValidation 创建校验错误，violations 为 "字段: 原因" 形式的全部违规项
func NewValidation(violations []string) *AppError {
	fields := make([]string, 0, len(violations))
	for _, v := range violations {
		if idx := strings.Index(v, ":"); idx > 0 {
			fields = append(fields, strings.TrimSpace(v[:idx]))
		} else {
			fields = append(fields, v)
		}
	}
	return &AppError{
		Code:       CodeValidationFailed,
		Message:    "motif validation failed",
		Detail:     strings.Join(violations, "; "),
		Fields:     fields,
		HTTPStatus: codeToHTTPStatus(CodeValidationFailed),
	}
}

// NewNotFound 创建资源不存在错误
func NewNotFound(resource, id string) *AppError {
	code := CodeNotFound
	switch resource {
	case "motif":
		code = CodeMotifNotFound
	case "conflict":
		code = CodeConflictNotFound
	}
	return New(code, fmt.Sprintf("%s not found: %s", resource, id))
}

// NewInvalidQuery 创建非法查询错误
func NewInvalidQuery(reason string) *AppError {
	return New(CodeInvalidQuery, "invalid query").WithDetail(reason)
}

// NewVersionConflict 创建乐观并发冲突错误
func NewVersionConflict(motifID string, expected int64) *AppError {
	return New(CodeVersionConflict, "concurrent modification detected").
		WithDetail(fmt.Sprintf("motif %s version %d is stale", motifID, expected))
}

// NewStorage 包装底层存储错误
func NewStorage(err error, op string) *AppError {
	return Wrap(err, CodeStorageError, "storage operation failed").WithDetail(op)
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeInvalidQuery:
		return http.StatusBadRequest
	case CodeNotFound, CodeMotifNotFound, CodeConflictNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeVersionConflict:
		return http.StatusConflict
	case CodeValidationFailed:
		return http.StatusUnprocessableEntity
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrConflict           = New(CodeConflict, "resource conflict")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrMotifNotFound = New(CodeMotifNotFound, "motif not found")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}

// IsNotFound 检查是否为资源不存在错误
func IsNotFound(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		switch appErr.Code {
		case CodeNotFound, CodeMotifNotFound, CodeConflictNotFound:
			return true
		}
	}
	return false
}

// IsVersionConflict 检查是否为乐观并发冲突
func IsVersionConflict(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == CodeVersionConflict
}
