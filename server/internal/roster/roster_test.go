package roster

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"pickup-ledger/server/internal/model"
)

// TestLoadJSONAndYAML 验证两种格式加载结果一致且保持顺序。
func TestLoadJSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "students.json")
	yamlPath := filepath.Join(dir, "students.yaml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"name":"하루나","studentId":"10010"},{"name":"하루나(새해)","studentId":"10057"}]`), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte("- name: 하루나\n  studentId: \"10010\"\n- name: 하루나(새해)\n  studentId: \"10057\"\n"), 0o644))

	want := []model.StudentName{
		{Name: "하루나", StudentID: "10010"},
		{Name: "하루나(새해)", StudentID: "10057"},
	}

	fromJSON, err := Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, want, fromJSON)

	fromYAML, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, want, fromYAML)
}

// TestLoadRejectsIncompleteEntry 验证缺字段的条目会导致加载失败。
func TestLoadRejectsIncompleteEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"하루나"}]`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

// TestRosterStudentsReturnsCopy 验证调用方修改返回值不影响名册。
func TestRosterStudentsReturnsCopy(t *testing.T) {
	r := New([]model.StudentName{{Name: "마키", StudentID: "10012"}})
	got := r.Students()
	got[0].Name = "mutated"

	assert.Equal(t, "마키", r.Students()[0].Name)
}

// TestWatchReloadsOnWrite 验证文件改写后名册被替换，且 ctx 取消后 goroutine 退出。
func TestWatchReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "students.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"마키","studentId":"10012"}]`), 0o644))

	r := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, r, zap.NewNop()) }()

	// 等待 watcher 注册完成后再写入。
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(`[{"name":"미유","studentId":"10024"}]`), 0o644)
		students := r.Students()
		return len(students) == 1 && students[0].Name == "미유"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
