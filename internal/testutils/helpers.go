package testutils

import (
	"context"
	"path/filepath"
	"testing"

	loamadapter "github.com/aretw0/datamodel/pkg/adapters/loam"
	"github.com/aretw0/datamodel/pkg/codec"
	"github.com/stretchr/testify/require"
)

// SetupTestRepo creates a temporary directory, opens a loam-backed repository in it and
// writes the given schemas and records. It returns the absolute path to the directory.
// It fails the test immediately on error.
func SetupTestRepo(t *testing.T, schemas []codec.SchemaDocument, records ...codec.RecordDocument) (string, *loamadapter.Repository) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loamadapter.Open(absPath)
	require.NoError(t, err, "Failed to open loam repo")

	ctx := context.Background()
	for _, doc := range schemas {
		require.NoError(t, repo.SaveSchema(ctx, doc), "Failed to save schema %q", doc.Name)
	}
	for _, doc := range records {
		require.NoError(t, repo.Save(ctx, doc), "Failed to save record %q", doc.Name)
	}
	return absPath, repo
}
