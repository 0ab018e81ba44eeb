package util

import (
	"bytes"
	"encoding/json"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var nullJSONBytes = []byte("null")

var jsoniterconfiged = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

func MarshalJSON(v interface{}) ([]byte, error) {
	b, err := jsoniterconfiged.Marshal(v)

	return b, errors.WithStack(err)
}

func UnmarshalJSON(b []byte, v interface{}) error {
	if IsNilJSON(b) {
		return nil
	}

	return errors.WithStack(jsoniterconfiged.Unmarshal(b, v))
}

func MustMarshalJSON(v interface{}) []byte {
	b, err := MarshalJSON(v)
	if err != nil {
		panic(err)
	}

	return b
}

func MarshalJSONIndent(v interface{}) ([]byte, error) {
	// NOTE jsoniter.MarshalIndent, v1.1.12 does not work ;(
	b, err := json.MarshalIndent(v, "", "  ")

	return b, errors.WithStack(err)
}

func IsNilJSON(b []byte) bool {
	i := bytes.TrimSpace(b)

	return len(i) < 1 || bytes.Equal(i, nullJSONBytes)
}
