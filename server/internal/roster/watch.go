package roster

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch 监听名册文件，写入或重建后重新加载并替换 r 的内容。
// 重新加载失败时保留旧名册。ctx 取消后返回。
// 监听的是所在目录，这样编辑器"写临时文件再改名"的保存方式也能被捕获。
func Watch(ctx context.Context, path string, r *Roster, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create roster watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch roster dir: %w", err)
	}

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(evt.Name) != target {
				continue
			}
			if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
				continue
			}
			students, err := Load(path)
			if err != nil {
				logger.Warn("roster reload failed, keeping previous roster", zap.String("path", path), zap.Error(err))
				continue
			}
			r.Replace(students)
			logger.Info("roster reloaded", zap.String("path", path), zap.Int("students", len(students)))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("roster watcher error", zap.Error(err))
		}
	}
}
