package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	assert.Equal(t, "/custom/data/shell", DataDir())
	assert.Equal(t, "/custom/data/shell/apps", AppsRoot())
	assert.Equal(t, "/custom/data/shell/state/notes", AppDataDir("notes"))
}

func TestDataDirDefault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	assert.Equal(t, filepath.Join(home, ".local", "share", "shell"), DataDir())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	assert.Equal(t, filepath.Join(home, "Documents"), ExpandHome("~/Documents"))
	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, "/etc/hosts", ExpandHome("/etc/hosts"))
	assert.Equal(t, "/a/b", ExpandHome("/a//b/"))
}
