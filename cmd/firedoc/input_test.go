package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commented = `{
	// the only field
	"a": {"stringValue": "x"}, /* trailing comma next */
}`

func TestReadInput_Stdin(t *testing.T) {
	for _, path := range []string{"", "-"} {
		got, err := readInput(path, strings.NewReader(commented))
		require.NoError(t, err)
		assert.JSONEq(t, `{"a": {"stringValue": "x"}}`, string(got))
	}
}

func TestReadInput_Compressed(t *testing.T) {
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write([]byte(commented))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zst := enc.EncodeAll([]byte(commented), nil)
	require.NoError(t, enc.Close())

	dir := t.TempDir()
	for name, data := range map[string][]byte{
		"fields.json.gz":  gz.Bytes(),
		"fields.json.zst": zst,
		"fields.jsonc":    []byte(commented),
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, data, 0o600))
			got, err := readInput(path, nil)
			require.NoError(t, err)
			assert.JSONEq(t, `{"a": {"stringValue": "x"}}`, string(got))
		})
	}
}

func TestReadInput_Errors(t *testing.T) {
	_, err := readInput(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.ErrorContains(t, err, "read input")

	_, err = readInput("", bytes.NewReader([]byte{0x1f, 0x8b, 0x00}))
	assert.ErrorContains(t, err, "gzip")

	_, err = readInput("", bytes.NewReader([]byte{0x28, 0xb5, 0x2f, 0xfd, 0x00}))
	assert.ErrorContains(t, err, "zstd")
}

func TestDecode_CompressedFile(t *testing.T) {
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write([]byte(taggedFields))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "fields.json.gz")
	require.NoError(t, os.WriteFile(path, gz.Bytes(), 0o600))

	out, err := runCmd(t, "", "decode", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"m1":{"s2":"v2"},"n1":1}`, out)
}
