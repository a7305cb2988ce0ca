package canonical

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gowebpki/jcs"
)

// maxSafeInteger is 2^53, the largest magnitude an IEEE-754 double
// represents exactly for every integer below it.
const maxSafeInteger = 1 << 53

// ErrSerialization reports a value that has no canonical encoding.
var ErrSerialization = errors.New("value is not canonically encodable")

// Marshal encodes v as canonical JSON.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return Transform(buf.Bytes())
}

// Transform rewrites JSON text into its canonical form.
func Transform(data []byte) ([]byte, error) {
	if err := checkNumbers(data); err != nil {
		return nil, err
	}
	out, err := jcs.Transform(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return out, nil
}

// DecodeStrict decodes exactly one JSON value from data into v. Unknown
// object fields and trailing non-whitespace data are errors.
func DecodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after JSON value")
	}
	return nil
}

// checkNumbers walks data and rejects integers outside the exactly
// representable double range.
func checkNumbers(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		n, ok := tok.(json.Number)
		if !ok || strings.ContainsAny(n.String(), ".eE") {
			continue
		}
		i, err := n.Int64()
		if err != nil || i > maxSafeInteger || i < -maxSafeInteger {
			return fmt.Errorf("%w: integer %s exceeds 2^53", ErrSerialization, n)
		}
	}
}
