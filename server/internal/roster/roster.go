package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"pickup-ledger/server/internal/model"
)

// Roster 持有当前的学生名字索引，可在运行时整体替换。
type Roster struct {
	mu       sync.RWMutex
	students []model.StudentName
}

func New(students []model.StudentName) *Roster {
	r := &Roster{}
	r.Replace(students)
	return r
}

// Students 返回学生列表副本，顺序与加载时一致（名字匹配依赖该顺序）。
func (r *Roster) Students() []model.StudentName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.StudentName, len(r.students))
	copy(out, r.students)
	return out
}

// Replace 整体替换学生列表。
func (r *Roster) Replace(students []model.StudentName) {
	cp := make([]model.StudentName, len(students))
	copy(cp, students)

	r.mu.Lock()
	r.students = cp
	r.mu.Unlock()
}

// Load 从 JSON 或 YAML 文件加载学生列表，按扩展名区分格式。
func Load(path string) ([]model.StudentName, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var students []model.StudentName
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &students)
	default:
		err = json.Unmarshal(data, &students)
	}
	if err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	for i, s := range students {
		if s.Name == "" || s.StudentID == "" {
			return nil, fmt.Errorf("parse roster: entry %d missing name or studentId", i)
		}
	}
	return students, nil
}
