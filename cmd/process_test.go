package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSubmission(t *testing.T) {
	dir := t.TempDir()
	paths := map[string][]byte{
		"license.png": []byte("license-bytes"),
		"claim.pdf":   []byte("claim-bytes"),
		"car.jpg":     []byte("image-bytes"),
	}
	for name, data := range paths {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}

	sub, err := readSubmission(
		filepath.Join(dir, "license.png"),
		filepath.Join(dir, "claim.pdf"),
		filepath.Join(dir, "car.jpg"),
	)
	require.NoError(t, err)

	assert.Equal(t, "license.png", sub.License.Name)
	assert.Equal(t, []byte("license-bytes"), sub.License.Data)
	assert.Equal(t, "claim.pdf", sub.Claim.Name)
	assert.Equal(t, "car.jpg", sub.Vehicle.Name)
	assert.Equal(t, []byte("image-bytes"), sub.Vehicle.Data)
}

func TestReadSubmission_MissingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "license.png"), []byte("x"), 0o644))

	_, err := readSubmission(
		filepath.Join(dir, "license.png"),
		filepath.Join(dir, "nope.pdf"),
		filepath.Join(dir, "car.jpg"),
	)
	assert.Error(t, err)
}
