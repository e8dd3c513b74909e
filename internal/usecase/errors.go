package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// エラーコード（レスポンスの code）
const (
	CodeValidation        = "validation_error"
	CodeNotFound          = "not_found"
	CodeOutOfStock        = "out_of_stock"
	CodeInsufficientStock = "insufficient_stock"
	CodeEmptyCart         = "empty_cart"
	CodeInvalidAddress    = "invalid_address"
	CodeInvalidTransition = "invalid_transition"
	CodeEmptyOrder        = "empty_order"
	CodeInvalidStatus     = "invalid_status"
	CodeUnauthorized      = "unauthorized"
	CodeForbidden         = "forbidden"
	CodeConflict          = "conflict"
	CodeInternal          = "internal"
)

// HTTPError は usecase が返すエラー。handler はこれをそのままJSONにする。
// Err は原因（ログ用）で、クライアントには返さない。
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details interface{}
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.Err }

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Code:    codeForStatus(status),
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func newCodedError(status int, code string, message string, details interface{}) error {
	return &HTTPError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// DBエラーは中身を隠して500
func dbError(err error) error {
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: "db error",
		Err:     err,
	}
}

func validationError(message string) error {
	return newCodedError(http.StatusBadRequest, CodeValidation, message, nil)
}

func notFound(message string) error {
	return newCodedError(http.StatusNotFound, CodeNotFound, message, nil)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	default:
		return CodeInternal
	}
}

// 在庫不足の詳細
type StockDetails struct {
	CakeID    int64  `json:"cakeId"`
	Name      string `json:"name"`
	Available int64  `json:"available"`
	InCart    int64  `json:"inCart"`
	Requested int64  `json:"requested"`
}
