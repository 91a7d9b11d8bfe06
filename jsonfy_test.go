package xmanager

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSerialize(t *testing.T) {
	t.Parallel()

	t.Run("round-trips scalars and a numeric matrix", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t)

		m.Set("seed", 1)
		m.Set("name", "run-a")
		m.Set("weights", mat.NewDense(2, 2, []float64{1.0, 2.0, 3.0, 4.0}))

		out, err := m.Serialize()
		require.NoError(t, err)
		require.Equal(t, 1, out["seed"])
		require.Equal(t, "run-a", out["name"])
		require.Equal(t, [][]float64{{1.0, 2.0}, {3.0, 4.0}}, out["weights"])
	})

	t.Run("never contains the run directory path", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t)

		m.Set("seed", 1)

		out, err := m.Serialize()
		require.NoError(t, err)
		require.NotContains(t, out, "root_path")
		require.NotContains(t, out, "rootPath")
		for _, v := range out {
			require.NotEqual(t, m.Root(), v)
		}
	})

	t.Run("serializes nested structs over their exported fields", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t)

		type trainConfig struct {
			A int
			B []int
		}
		m.Set("config", trainConfig{A: 1, B: []int{1, 2, 3}})
		m.Set("configPtr", &trainConfig{A: 4, B: nil})

		out, err := m.Serialize()
		require.NoError(t, err)
		require.Equal(t, map[string]any{"A": 1, "B": []any{1, 2, 3}}, out["config"])
		require.Equal(t, map[string]any{"A": 4, "B": []any{}}, out["configPtr"])
	})

	t.Run("stringifies map keys", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t)

		m.Set("layers", map[int]string{1: "conv", 2: "dense"})

		out, err := m.Serialize()
		require.NoError(t, err)
		require.Equal(t, map[string]any{"1": "conv", "2": "dense"}, out["layers"])
	})

	t.Run("passes through values that marshal themselves", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t)

		started := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
		m.Set("started", started)

		out, err := m.Serialize()
		require.NoError(t, err)
		require.Equal(t, "2026-08-24T10:00:00Z", out["started"])
	})

	t.Run("nil values serialize as null", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t)

		var p *int
		m.Set("absent", nil)
		m.Set("nilPtr", p)

		out, err := m.Serialize()
		require.NoError(t, err)
		require.Nil(t, out["absent"])
		require.Nil(t, out["nilPtr"])
	})

	t.Run("does not modify the field set", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t)

		m.Set("seed", 1)
		_, err := m.Serialize()
		require.NoError(t, err)
		_, err = m.Serialize()
		require.NoError(t, err)

		v, ok := m.Get("seed")
		require.True(t, ok)
		require.Equal(t, 1, v)
	})
}

func TestSerializePolicy(t *testing.T) {
	t.Parallel()

	t.Run("strict fails on a non-serializable field", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t)

		m.Set("seed", 1)
		m.Set("ch", make(chan int))

		_, err := m.Serialize()
		require.Error(t, err)
		require.ErrorIs(t, err, ErrNotSerializable)

		var serr *SerializationError
		require.ErrorAs(t, err, &serr)
		require.Equal(t, "ch", serr.Field)
		require.Contains(t, serr.Type, "chan")
	})

	t.Run("strict fails on an opaque handle", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t)

		f, err := os.Open(os.DevNull)
		require.NoError(t, err)
		defer f.Close()

		m.Set("file", f)

		_, err = m.Serialize()
		require.ErrorIs(t, err, ErrNotSerializable)
	})

	t.Run("strict fails on a non-serializable value nested in a container", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t)

		m.Set("nested", map[string]any{"fn": func() {}})

		_, err := m.Serialize()
		require.ErrorIs(t, err, ErrNotSerializable)
	})

	t.Run("lenient omits the offending field", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t, WithPolicy(PolicyLenient))

		m.Set("seed", 1)
		m.Set("ch", make(chan int))

		out, err := m.Serialize()
		require.NoError(t, err)
		require.Equal(t, 1, out["seed"])
		require.NotContains(t, out, "ch")
	})

	t.Run("lenient omits offending map entries", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t, WithPolicy(PolicyLenient))

		m.Set("mixed", map[string]any{"good": 1, "bad": make(chan int)})

		out, err := m.Serialize()
		require.NoError(t, err)
		require.Equal(t, map[string]any{"good": 1}, out["mixed"])
	})

	t.Run("lenient drops a sequence containing an unconvertible element", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t, WithPolicy(PolicyLenient))

		m.Set("seq", []any{1, make(chan int)})

		out, err := m.Serialize()
		require.NoError(t, err)
		require.NotContains(t, out, "seq")
	})
}

func TestSaveParams(t *testing.T) {
	t.Parallel()

	t.Run("persisted file matches in-memory serialization", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t)

		m.Set("seed", 1)
		m.Set("name", "run-a")
		m.Set("weights", mat.NewDense(2, 2, []float64{1.0, 2.0, 3.0, 4.0}))

		require.NoError(t, m.SaveParams())

		data, err := os.ReadFile(filepath.Join(m.Root(), "params.json"))
		require.NoError(t, err)
		var fromFile map[string]any
		require.NoError(t, json.Unmarshal(data, &fromFile))

		serialized, err := m.Serialize()
		require.NoError(t, err)
		normalized, err := json.Marshal(serialized)
		require.NoError(t, err)
		var fromMemory map[string]any
		require.NoError(t, json.Unmarshal(normalized, &fromMemory))

		require.Equal(t, fromMemory, fromFile)
		require.Equal(t, []any{[]any{1.0, 2.0}, []any{3.0, 4.0}}, fromFile["weights"])
		require.NotContains(t, fromFile, "root_path")
	})

	t.Run("emits top-level keys in assignment order", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t)

		m.Set("c", 1)
		m.Set("a", 2)
		m.Set("b", 3)

		require.NoError(t, m.SaveParams())

		data, err := os.ReadFile(filepath.Join(m.Root(), "params.json"))
		require.NoError(t, err)
		text := string(data)
		require.Less(t, strings.Index(text, `"c"`), strings.Index(text, `"a"`))
		require.Less(t, strings.Index(text, `"a"`), strings.Index(text, `"b"`))
	})

	t.Run("uses two-space indentation", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t)

		m.Set("seed", 1)
		require.NoError(t, m.SaveParams())

		data, err := os.ReadFile(filepath.Join(m.Root(), "params.json"))
		require.NoError(t, err)
		require.Contains(t, string(data), "\n  \"seed\": 1")
	})

	t.Run("overwrites on repeated saves", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t)

		m.Set("seed", 1)
		require.NoError(t, m.SaveParams())

		m.Set("seed", 2)
		require.NoError(t, m.SaveParams())

		data, err := os.ReadFile(filepath.Join(m.Root(), "params.json"))
		require.NoError(t, err)
		var fromFile map[string]any
		require.NoError(t, json.Unmarshal(data, &fromFile))
		require.Equal(t, 2.0, fromFile["seed"])
	})

	t.Run("strict policy failure leaves no partial file", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t)

		m.Set("ch", make(chan int))

		err := m.SaveParams()
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrNotSerializable))

		_, err = os.Stat(filepath.Join(m.Root(), "params.json"))
		require.True(t, os.IsNotExist(err))
	})

	t.Run("saves under an alternate file name", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t)

		m.Set("seed", 1)
		require.NoError(t, m.SaveParamsAs("final.json"))

		_, err := os.Stat(filepath.Join(m.Root(), "final.json"))
		require.NoError(t, err)
	})
}
