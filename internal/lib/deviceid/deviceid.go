// Package deviceid выдаёт стабильный идентификатор установки для учёта поисков.
package deviceid

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/keygen-sh/machineid"
)

// AppID - ключ, которым хешируется машинный идентификатор.
const AppID = "phytocheck"

const fileName = ".device-id"

var protectedID = machineid.ProtectedID

// Resolve возвращает идентификатор устройства. Порядок: явно заданный в
// конфигурации, хеш машинного идентификатора, сохранённый в dataDir случайный
// идентификатор. Пустая строка означает, что идентификатора нет и серверная
// проверка квоты не выполняется.
func Resolve(configured, dataDir string) string {
	if id := strings.TrimSpace(configured); id != "" {
		return id
	}
	if id, err := protectedID(AppID); err == nil && id != "" {
		return id
	}
	if dataDir == "" {
		return ""
	}
	return persistentID(filepath.Join(dataDir, fileName))
}

func persistentID(path string) string {
	if content, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(content)); id != "" {
			return id
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ""
	}
	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id), 0o644); err != nil {
		return ""
	}
	return id
}
