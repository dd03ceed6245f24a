package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Client - настройки клиентского приложения.
type Client struct {
	Env      string `yaml:"env" env:"PHYTOCHECK_ENV" env-default:"prod"`
	DataDir  string `yaml:"data_dir" env:"PHYTOCHECK_DATA_DIR"`
	Platform string `yaml:"platform" env:"PHYTOCHECK_PLATFORM" env-default:"android"`
	Tracker  `yaml:"tracker"`
	Dataset  `yaml:"dataset"`
}

// Tracker структура для настройки обращений к сервису учёта устройств.
// Пустой URL отключает серверную проверку квоты.
type Tracker struct {
	URL      string        `yaml:"url" env:"PHYTOCHECK_TRACKER_URL"`
	Timeout  time.Duration `yaml:"timeout" env:"PHYTOCHECK_TRACKER_TIMEOUT" env-default:"5s"`
	DeviceID string        `yaml:"device_id" env:"PHYTOCHECK_DEVICE_ID"`
}

// Dataset структура для подключения внешнего справочника вместо встроенного.
type Dataset struct {
	ProductsPath    string `yaml:"products_path" env:"PHYTOCHECK_PRODUCTS_PATH"`
	RiskPhrasesPath string `yaml:"risk_phrases_path" env:"PHYTOCHECK_RISK_PHRASES_PATH"`
	UpdatedAt       string `yaml:"updated_at" env:"PHYTOCHECK_DATASET_DATE"`
}

// External сообщает, задан ли внешний справочник.
func (d Dataset) External() bool {
	return d.ProductsPath != "" && d.RiskPhrasesPath != ""
}

// LoadClient читает конфиг клиента из YAML-файла, если путь задан, иначе из
// переменных окружения. Пустой DataDir заменяется каталогом пользователя.
func LoadClient(path string) (*Client, error) {
	const op = "config.LoadClient"

	var cfg Client
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.DataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			base = os.TempDir()
		}
		cfg.DataDir = filepath.Join(base, "phytocheck")
	}
	return &cfg, nil
}

// StorePath возвращает путь к файлу локального хранилища.
func (c *Client) StorePath() string {
	return filepath.Join(c.DataDir, "phytocheck.db")
}
