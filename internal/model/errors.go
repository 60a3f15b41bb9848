package model

import (
	"errors"
	"fmt"
)

// Code 问题/错误代码，值稳定，用于 API 输出与日志
type Code string

const (
	CodeFacilityNotFound       Code = "FacilityNotFound"
	CodeAmbiguousMatch         Code = "AmbiguousMatch"
	CodeInvalidMonth           Code = "InvalidMonth"
	CodeInvalidYear            Code = "InvalidYear"
	CodeDateNotInPast          Code = "DateNotInPast"
	CodeDuplicateScorecard     Code = "DuplicateScorecard"
	CodeScoreOutOfRange        Code = "ScoreOutOfRange"
	CodeTotalMismatch          Code = "TotalMismatch"
	CodeSheetNotFound          Code = "SheetNotFound"
	CodeHeaderNotFound         Code = "HeaderNotFound"
	CodeLowConfidenceItemMatch Code = "LowConfidenceItemMatch"

	CodeNonNumericScore  Code = "NonNumericScore"
	CodeMetadataNotFound Code = "MetadataNotFound"
	CodeItemMismatch     Code = "ItemMismatch"
	CodeChartsMetClamped Code = "ChartsMetClamped"
	CodeRowFailed        Code = "RowFailed"
)

// Issue 单行的错误或警告
type Issue struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// NewIssue 创建 Issue
func NewIssue(code Code, format string, args ...any) Issue {
	return Issue{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (i Issue) String() string { return i.Message }

// Messages 提取消息文本
func Messages(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, it := range issues {
		out = append(out, it.Message)
	}
	return out
}

// Error 带代码的错误，按代码比较 (errors.Is)
type Error struct {
	Code    Code
	Message string
	Err     error
}

// NewError 创建带代码的错误
func NewError(code Code, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is 代码相同即视为同一类错误
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrFacilityNotFound = &Error{Code: CodeFacilityNotFound}
	ErrAmbiguousMatch   = &Error{Code: CodeAmbiguousMatch}
)

// CodeOf 返回错误链上第一个 *Error 的代码
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
