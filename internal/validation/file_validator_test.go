package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/shared/testutil"
)

func TestFileValidator_ValidateInputDirectory(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		errorContains string
	}{
		{
			name:      "existing directory",
			setupFunc: func(t *testing.T) string { return t.TempDir() },
		},
		{
			name: "missing directory",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing")
			},
			wantErr:       true,
			errorContains: "does not exist",
		},
		{
			name: "file instead of directory",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "Dataset_de_ventas_Enero.csv")
				require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
				return file
			},
			wantErr:       true,
			errorContains: "is not a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			v := NewFileValidator(logger)

			err := v.ValidateInputDirectory(tt.setupFunc(t))

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.True(t, logs.HasAttr("component", "file_validator"))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFileValidator_ValidateOutputFile(t *testing.T) {
	v := NewFileValidator(nil)

	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reports", "2019", "ventas.xlsx")
		require.NoError(t, v.ValidateOutputFile(path))

		info, err := os.Stat(filepath.Dir(path))
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Empty(t, entries, "probe file must be removed")
	})

	t.Run("existing file is fine", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ventas.csv")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0644))
		assert.NoError(t, v.ValidateOutputFile(path))
	})

	t.Run("directory is rejected", func(t *testing.T) {
		err := v.ValidateOutputFile(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is a directory")
	})
}
