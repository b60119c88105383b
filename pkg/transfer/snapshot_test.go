package transfer

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtMostafa/bnd/pkg/naming"
	"github.com/AtMostafa/bnd/pkg/session"
)

func TestSnapshotSession(t *testing.T) {
	defer func() { fs = afero.NewOsFs() }()

	name := naming.SessionName{Subject: subject, Label: "2023_01_05_10_30"}
	sessionDir := "/data/raw/M017/" + sessionName
	write := func(path, contents string) {
		fullPath := filepath.Join(sessionDir, path)
		require.NoError(t, fs.MkdirAll(filepath.Dir(fullPath), 0755))
		require.NoError(t, afero.WriteFile(fs, fullPath, []byte(contents), 0644))
	}

	tests := []struct {
		name     string
		sel      session.Selection
		expPaths []string
	}{
		{
			name: "Behavior",
			sel:  session.Selection{Behavior: true},
			expPaths: []string{
				sessionName + ".txt",
				sessionName + "_MotSen1-X.pca",
				"run_task-task_files/task.py",
			},
		},
		{
			name: "Ephys",
			sel:  session.Selection{Ephys: true},
			expPaths: []string{
				sessionName + "_g0/" + sessionName + "_g0_imec0/" + sessionName + "_g0_t0.imec0.ap.bin",
			},
		},
		{
			name: "Video",
			sel:  session.Selection{Video: true},
			expPaths: []string{
				sessionName + "_cameras/" + sessionName + "_camera_0.avi",
			},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			fs = afero.NewMemMapFs()
			write(sessionName+".txt", "log")
			write(sessionName+"_MotSen1-X.pca", "x")
			write(".DS_Store", "finder")
			write("notes.md", "notes")
			write("run_task-task_files/task.py", "task")
			write("run_task-task_files/.ipynb_checkpoints/task.py", "old task")
			write(sessionName+"_g0/"+sessionName+"_g0_imec0/"+sessionName+"_g0_t0.imec0.ap.bin", "spikes")
			write(sessionName+"_cameras/"+sessionName+"_camera_0.avi", "frames")

			files, err := SnapshotSession(sessionDir, name, test.sel)
			require.NoError(t, err)

			var expPaths []string
			for _, path := range test.expPaths {
				expPaths = append(expPaths, filepath.FromSlash(path))
			}
			assert.Equal(t, expPaths, files.Paths())

			for _, path := range files.Paths() {
				f := files[path]
				assert.Equal(t, filepath.Join(sessionDir, path), f.ContentsPath)
				assert.NotEmpty(t, f.ContentsHash)
			}
		})
	}
}

func TestHashFile(t *testing.T) {
	defer func() { fs = afero.NewOsFs() }()
	fs = afero.NewMemMapFs()

	require.NoError(t, afero.WriteFile(fs, "/a", []byte("spikes"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/b", []byte("spikes"), 0600))
	require.NoError(t, afero.WriteFile(fs, "/c", []byte("spikes!"), 0644))

	a, err := HashFile("/a")
	require.NoError(t, err)
	b, err := HashFile("/b")
	require.NoError(t, err)
	c, err := HashFile("/c")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	_, err = HashFile("/missing")
	assert.Error(t, err)
}
