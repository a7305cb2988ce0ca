package canonical_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blah/internal/canonical"
)

type forward struct {
	Alpha string `json:"alpha"`
	Beta  int    `json:"beta"`
	Gamma []int  `json:"gamma"`
}

type backward struct {
	Gamma []int  `json:"gamma"`
	Beta  int    `json:"beta"`
	Alpha string `json:"alpha"`
}

func TestMarshal_FieldOrderIndependent(t *testing.T) {
	a, err := canonical.Marshal(forward{Alpha: "x", Beta: 7, Gamma: []int{3, 1, 2}})
	require.NoError(t, err)
	b, err := canonical.Marshal(backward{Gamma: []int{3, 1, 2}, Beta: 7, Alpha: "x"})
	require.NoError(t, err)

	assert.Equal(t, string(a), string(b))
	assert.Equal(t, `{"alpha":"x","beta":7,"gamma":[3,1,2]}`, string(a))
}

func TestMarshal_MapKeysSortedAndNoHTMLEscaping(t *testing.T) {
	out, err := canonical.Marshal(map[string]any{
		"z": "<tag> & more",
		"a": map[string]int{"y": 1, "b": 2},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"b":2,"y":1},"z":"<tag> & more"}`, string(out))
}

func TestMarshal_RejectsNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := canonical.Marshal(map[string]float64{"v": v})
		if !errors.Is(err, canonical.ErrSerialization) {
			t.Fatalf("Marshal(%v): want ErrSerialization, got %v", v, err)
		}
	}
}

func TestMarshal_RejectsUnsafeIntegers(t *testing.T) {
	_, err := canonical.Marshal(map[string]uint64{"v": math.MaxUint64})
	require.ErrorIs(t, err, canonical.ErrSerialization)

	out, err := canonical.Marshal(map[string]uint64{"v": 1 << 53})
	require.NoError(t, err)
	assert.Equal(t, `{"v":9007199254740992}`, string(out))
}

func TestMarshal_RejectsUnsupportedType(t *testing.T) {
	_, err := canonical.Marshal(map[string]any{"ch": make(chan int)})
	require.ErrorIs(t, err, canonical.ErrSerialization)
}

func TestTransform_StripsWhitespaceAndNormalizesNumbers(t *testing.T) {
	out, err := canonical.Transform([]byte("{\n  \"b\": 1.50,\n  \"a\": [ 3, 2 ]\n}\n"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":[3,2],"b":1.5}`, string(out))
}

func TestMarshal_Repeatable(t *testing.T) {
	v := forward{Alpha: "héllo\n", Beta: -3}
	first, err := canonical.Marshal(v)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := canonical.Marshal(v)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestDecodeStrict(t *testing.T) {
	var v forward
	require.NoError(t, canonical.DecodeStrict([]byte(`{"alpha":"a","beta":1}`), &v))
	assert.Equal(t, "a", v.Alpha)

	assert.Error(t, canonical.DecodeStrict([]byte(`{"alpha":"a","extra":true}`), &v))
	assert.Error(t, canonical.DecodeStrict([]byte(`{"alpha":"a"} {"alpha":"b"}`), &v))
	assert.NoError(t, canonical.DecodeStrict([]byte("{\"alpha\":\"a\"}\n"), &v))
}
