package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/climbr/internal/common"
	"github.com/Veraticus/climbr/internal/grade"
	"github.com/Veraticus/climbr/internal/model"
	"github.com/Veraticus/climbr/internal/testutil"
)

var pngBytes = testutil.PNG

type testEnv struct {
	dbPath string
	photo  string
	dir    string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()

	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CLIMBR_VISION_API_KEY", "")
	t.Setenv("CLIMBR_EXPORT_DIR", filepath.Join(dir, "exports"))

	photo := filepath.Join(dir, "wall.png")
	require.NoError(t, os.WriteFile(photo, pngBytes, 0600))

	return testEnv{dir: dir, dbPath: filepath.Join(dir, "climbr.db"), photo: photo}
}

func (e testEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetArgs(append([]string{"--database", e.dbPath, "--log-level", "error"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	out, _, err := env.run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "climbr dev\n", out)
}

func TestGrades(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "", "grades", "v4", "--format", "json")
	require.NoError(t, err)
	var pairs []grade.Pair
	require.NoError(t, json.Unmarshal([]byte(out), &pairs))
	assert.Equal(t, []grade.Pair{{V: "V4", Font: "6A+"}}, pairs)

	out, _, err = env.run(t, "", "grades")
	require.NoError(t, err)
	assert.Contains(t, out, "VB")
	assert.Contains(t, out, "8A")

	_, _, err = env.run(t, "", "grades", "V99")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "not a V grade")
}

func TestAnalyze_DemoWithPatches(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "", "analyze", env.photo, "--demo", "--format", "json",
		"--grade", "0=v4", "--grade", "2=V7", "--font", "2=7A", "--notes", "1=crimpy start")
	require.NoError(t, err)

	var doc model.ExportDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.WallSet, 6)
	assert.Equal(t, "V4", doc.WallSet[0].GradeV)
	assert.Equal(t, "6A+", doc.WallSet[0].GradeFont)
	assert.Equal(t, "crimpy start", doc.WallSet[1].SetterNotes)
	assert.Equal(t, "V7", doc.WallSet[2].GradeV)
	assert.Equal(t, "7A", doc.WallSet[2].GradeFont)
	assert.Empty(t, doc.WallSet[3].GradeV)
}

func TestAnalyze_Stdin(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, string(pngBytes), "analyze", "-", "--demo")
	require.NoError(t, err)
	assert.Contains(t, out, "6 routes (demo)")
	assert.Contains(t, out, "Red")
}

func TestAnalyze_Export(t *testing.T) {
	env := newTestEnv(t)

	_, errOut, err := env.run(t, "", "analyze", env.photo, "--demo", "--export")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Exported to")

	matches, err := filepath.Glob(filepath.Join(env.dir, "exports", "wall-set-*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Len(t, fields, 2)
	assert.Contains(t, fields, "wallSet")
	assert.Contains(t, fields, "created")
}

func TestAnalyze_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		wantMsg string
		args    []string
	}{
		{
			name:    "remote without key",
			args:    []string{"analyze", env.photo, "--remote"},
			wantMsg: "no API key configured",
		},
		{
			name:    "missing file",
			args:    []string{"analyze", filepath.Join(env.dir, "nope.jpg"), "--demo"},
			wantMsg: "cannot use",
		},
		{
			name:    "bad patch",
			args:    []string{"analyze", env.photo, "--demo", "--grade", "V4"},
			wantMsg: "want IDX=VALUE",
		},
		{
			name:    "index out of range",
			args:    []string{"analyze", env.photo, "--demo", "--grade", "9=V4"},
			wantMsg: "route 9",
		},
		{
			name:    "invalid grade",
			args:    []string{"analyze", env.photo, "--demo", "--grade", "0=V42"},
			wantMsg: "route 0",
		},
		{
			name:    "bad format",
			args:    []string{"analyze", env.photo, "--demo", "--format", "xml"},
			wantMsg: "unsupported format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.run(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, common.UserMessage(err), tt.wantMsg)
		})
	}
}

func TestSets_SaveListShowDelete(t *testing.T) {
	env := newTestEnv(t)

	_, errOut, err := env.run(t, "", "analyze", env.photo, "--demo", "--save", "--grade", "0=V2")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Saved wall set")

	out, _, err := env.run(t, "", "sets", "list", "--format", "json")
	require.NoError(t, err)
	var sets []model.WallSet
	require.NoError(t, json.Unmarshal([]byte(out), &sets))
	require.Len(t, sets, 1)
	assert.Equal(t, "wall.png", sets[0].Source)
	assert.Equal(t, 6, sets[0].RouteCount)
	assert.Equal(t, 1, sets[0].GradedCount)

	id := sets[0].ID
	out, _, err = env.run(t, "", "sets", "show", id)
	require.NoError(t, err)
	var doc model.ExportDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "V2", doc.WallSet[0].GradeV)

	_, _, err = env.run(t, "", "sets", "delete", id)
	require.NoError(t, err)

	_, _, err = env.run(t, "", "sets", "show", id)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestKey(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "", "key", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "No anthropic API key stored")

	_, _, err = env.run(t, "sk-test-123456789\n", "key", "set")
	require.NoError(t, err)

	out, _, err = env.run(t, "", "key", "show")
	require.NoError(t, err)
	assert.Equal(t, "sk-t********6789\n", out)

	out, _, err = env.run(t, "", "key", "show", "--provider", "openai")
	require.NoError(t, err)
	assert.Contains(t, out, "No openai API key stored")

	_, _, err = env.run(t, "", "key", "show", "--provider", "acme")
	require.Error(t, err)

	_, _, err = env.run(t, "", "key", "set", "  ")
	require.Error(t, err)

	_, _, err = env.run(t, "", "key", "clear")
	require.NoError(t, err)

	out, _, err = env.run(t, "", "key", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "No anthropic API key stored")
}
