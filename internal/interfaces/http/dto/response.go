// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"github.com/gin-gonic/gin"

	"rpg-motif-api/pkg/errors"
	"rpg-motif-api/pkg/logger"
)

// Response 统一响应结构
type Response[T any] struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Data    T         `json:"data,omitempty"`
	Meta    *PageMeta `json:"meta,omitempty"`
	TraceID string    `json:"trace_id,omitempty"`
}

// PageMeta 分页元数据
type PageMeta struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	ErrorCode string   `json:"error_code,omitempty"`
	Details   string   `json:"details,omitempty"`
	Fields    []string `json:"fields,omitempty"`
}

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Error   *ErrorDetail `json:"error,omitempty"`
	TraceID string       `json:"trace_id,omitempty"`
}

// Success 返回成功响应
func Success[T any](c *gin.Context, data T) {
	c.JSON(200, Response[T]{
		Code:    200,
		Message: "success",
		Data:    data,
		TraceID: c.GetString("trace_id"),
	})
}

// SuccessWithPage 返回带分页的成功响应
func SuccessWithPage[T any](c *gin.Context, data T, meta *PageMeta) {
	c.JSON(200, Response[T]{
		Code:    200,
		Message: "success",
		Data:    data,
		Meta:    meta,
		TraceID: c.GetString("trace_id"),
	})
}

// Created 返回创建成功响应 (201)
func Created[T any](c *gin.Context, data T) {
	c.JSON(201, Response[T]{
		Code:    201,
		Message: "created",
		Data:    data,
		TraceID: c.GetString("trace_id"),
	})
}

// NoContent 返回无内容响应 (204)
func NoContent(c *gin.Context) {
	c.Status(204)
}

// Error 返回错误响应
func Error(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, ErrorResponse{
		Code:    httpCode,
		Message: message,
		TraceID: c.GetString("trace_id"),
	})
}

// BadRequest 返回 400 错误
func BadRequest(c *gin.Context, message string) {
	Error(c, 400, message)
}

// NotFound 返回 404 错误
func NotFound(c *gin.Context, message string) {
	Error(c, 404, message)
}

// InternalError 返回 500 错误
func InternalError(c *gin.Context, message string) {
	Error(c, 500, message)
}

// Fail 按 AppError 映射 HTTP 状态码返回错误响应。
// 非 AppError 统一按内部错误处理，细节只进日志不出响应。
func Fail(c *gin.Context, err error) {
	appErr := errors.AsAppError(err)

	if appErr.HTTPStatus >= 500 {
		logger.Error(c.Request.Context(), "request failed", err,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
	}

	resp := ErrorResponse{
		Code:    appErr.HTTPStatus,
		Message: appErr.Message,
		TraceID: c.GetString("trace_id"),
	}
	if appErr.Detail != "" || len(appErr.Fields) > 0 {
		resp.Error = &ErrorDetail{
			ErrorCode: string(appErr.Code),
			Details:   appErr.Detail,
			Fields:    appErr.Fields,
		}
	} else {
		resp.Error = &ErrorDetail{ErrorCode: string(appErr.Code)}
	}

	c.JSON(appErr.HTTPStatus, resp)
}
