package media

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func fmtRange(start, end int64) string {
	return fmt.Sprintf("bytes=%d-%d", start, end)
}

// writeSample writes size bytes where byte i is i%251 and returns the path.
func writeSample(t *testing.T, name string, size int) (string, []byte) {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path, data
}
