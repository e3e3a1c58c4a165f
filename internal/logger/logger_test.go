package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("开发模式创建成功", func(t *testing.T) {
		log, err := NewLogger(Config{Level: "debug", Development: true})
		require.NoError(t, err)
		assert.NotNil(t, log)
	})

	t.Run("无效级别回退到info", func(t *testing.T) {
		log, err := NewLogger(Config{Level: "not-a-level"})
		require.NoError(t, err)
		assert.NotNil(t, log)
	})

	t.Run("日志文件目录自动创建", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "logs", "suimail.log")
		log, err := NewLogger(Config{Level: "info", LogFile: logFile})
		require.NoError(t, err)
		assert.NotNil(t, log)
		assert.DirExists(t, filepath.Dir(logFile))
	})
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, defaultMaxSizeMB, orDefault(0, defaultMaxSizeMB))
	assert.Equal(t, defaultMaxSizeMB, orDefault(-1, defaultMaxSizeMB))
	assert.Equal(t, 50, orDefault(50, defaultMaxSizeMB))
}
