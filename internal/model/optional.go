package model

import "encoding/json"

// Optional — поле, которое может отсутствовать. Set отличает "не передано"
// от переданного нулевого значения. Null отмечает явный JSON null: для
// ненулевых полей вызывающий код должен его отклонять.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// IsZero позволяет `json:",omitzero"` пропускать неустановленные поля.
func (o Optional[T]) IsZero() bool {
	return !o.Set
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON вызывается только для присутствующего ключа, поэтому и
// отмечает поле как переданное.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		var zero T
		o.Value = zero
		o.Null = true
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}
