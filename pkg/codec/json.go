package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Unmarshal decodes JSON documents. Numbers inside untyped values are kept as json.Number
// so 64-bit integers survive the round trip instead of being rounded through float64.
func Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("invalid character after top-level value")
	}
	return nil
}
