package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalArchiveRoundTrip(t *testing.T) {
	archive, err := NewLocalArchive(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, archive.Store("reports/2025-06-20/run.json", []byte(`{"ok":true}`)))
	require.NoError(t, archive.Store("reports/2025-06-21/run.json", []byte(`{"ok":true}`)))
	require.NoError(t, archive.Store("snapshots/latest.json", []byte(`{}`)))

	data, err := archive.Retrieve("reports/2025-06-20/run.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))

	names, err := archive.List("reports/")
	require.NoError(t, err)
	assert.Equal(t, []string{"reports/2025-06-20/run.json", "reports/2025-06-21/run.json"}, names)

	require.NoError(t, archive.Delete("snapshots/latest.json"))
	_, err = archive.Retrieve("snapshots/latest.json")
	assert.Error(t, err)
}

func TestLocalArchiveRequiresRoot(t *testing.T) {
	_, err := NewLocalArchive("")
	assert.Error(t, err)
}
