package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 固定のエラーメッセージ
const (
	msgTodoNotFound   = "Todo not found"
	msgTodoDeleted    = "Todo deleted successfully"
	msgInternalError  = "Internal Server Error"
	msgFieldRequired  = "Field required"
	msgInvalidJSON    = "JSON decode error"
	msgInvalidInteger = "Input should be a valid integer"
	msgInvalidString  = "Input should be a valid string"
	msgInvalidObject  = "Input should be a valid dictionary"
)

// ErrorDetail は 422 レスポンスの detail 配列の1要素です。
type ErrorDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

var registerTagNameOnce sync.Once

// useJSONFieldNames はバリデーションエラーのフィールド名を json タグの名前にします。
func useJSONFieldNames() {
	registerTagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// bindingErrorDetails は bindJSONObject のエラーをフィールド単位の detail に変換します。
func bindingErrorDetails(err error) []ErrorDetail {
	var (
		validationErrs validator.ValidationErrors
		typeErr        *json.UnmarshalTypeError
		syntaxErr      *json.SyntaxError
	)
	switch {
	case errors.As(err, &validationErrs):
		details := make([]ErrorDetail, 0, len(validationErrs))
		for _, fe := range validationErrs {
			d := ErrorDetail{Loc: []string{"body", fe.Field()}, Msg: fe.Error(), Type: fe.Tag()}
			if fe.Tag() == "required" {
				d.Msg, d.Type = msgFieldRequired, "missing"
			}
			details = append(details, d)
		}
		return details
	case errors.As(err, &typeErr):
		// ボディ自体がオブジェクトでない場合は Go の型名を出さない
		if typeErr.Field == "" {
			return []ErrorDetail{objectRequired()}
		}
		loc := append([]string{"body"}, strings.Split(typeErr.Field, ".")...)
		return []ErrorDetail{{Loc: loc, Msg: "Input should be a valid " + typeErr.Type.String(), Type: typeErr.Type.Kind().String() + "_type"}}
	case errors.Is(err, errNullBody):
		return []ErrorDetail{objectRequired()}
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return []ErrorDetail{{Loc: []string{"body"}, Msg: msgInvalidJSON, Type: "json_invalid"}}
	default:
		return []ErrorDetail{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}}
	}
}

func objectRequired() ErrorDetail {
	return ErrorDetail{Loc: []string{"body"}, Msg: msgInvalidObject, Type: "model_attributes_type"}
}

// errNullBody はボディが JSON の null だった場合のエラーです。
var errNullBody = errors.New("request body is null")

// bindJSONObject はボディを JSON オブジェクトとして読み込み、binding タグで検証します。
// encoding/json は null を「何もしない」としてエラーにしないため、先に弾きます。
func bindJSONObject(c *gin.Context, obj any) error {
	body, err := c.GetRawData()
	if err != nil {
		return err
	}
	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return errNullBody
	}
	return binding.JSON.BindBody(body, obj)
}

func abortValidation(c *gin.Context, details ...ErrorDetail) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": details})
}

func abortNotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": msgTodoNotFound})
}

// abortInternal はストア障害など回復しないエラーを 500 で返します。
// 詳細はログにのみ出し、クライアントには返しません。
func abortInternal(c *gin.Context, err error, msg string) {
	slog.ErrorContext(c.Request.Context(), msg, "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": msgInternalError})
}
