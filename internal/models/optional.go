package models

import (
	"bytes"
	"encoding/json"
)

// Optional は JSON のキーが「送られたかどうか」を保持するラッパーです。
// 省略されたキーと明示的な null を区別するために使います。
//
//	{}                    -> Set=false
//	{"description": null} -> Set=true, Null=true
//	{"description": "x"}  -> Set=true, Value="x"
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some は値ありの Optional を返します。
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Null は明示的な null を表す Optional を返します。
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// UnmarshalJSON はキーが存在した場合にのみ呼ばれるため、ここで Set を立てます。
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Value = zero
		o.Null = true
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON は未設定・null のどちらも null として出力します。
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Ptr は値をポインタで返します。未設定または null の場合は nil です。
func (o Optional[T]) Ptr() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}
