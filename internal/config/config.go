// Package config 应用配置：可执行文件同目录下的 config.toml，环境变量覆盖，结构体标签校验
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Log      LogConfig      `toml:"log"`
	Matching MatchingConfig `toml:"matching"`
	Import   ImportConfig   `toml:"import"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port" validate:"min=1,max=65535"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir" validate:"required"`
	DBName  string `toml:"db_name" validate:"required"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=trace debug info warn warning error"`
	Format string `toml:"format" validate:"oneof=console json"`
}

// MatchingConfig 模糊匹配参数
type MatchingConfig struct {
	FacilityThreshold float64 `toml:"facility_threshold" validate:"gt=0,lte=1"`
	ItemThreshold     float64 `toml:"item_threshold" validate:"gt=0,lte=1"`
	TypoSimilarity    int     `toml:"typo_similarity" validate:"min=0,max=100"`
	StrictAmbiguity   bool    `toml:"strict_ambiguity"`
	AmbiguityMargin   float64 `toml:"ambiguity_margin" validate:"gte=0,lt=1"`
}

// ImportConfig 导入参数
type ImportConfig struct {
	Workers           int     `toml:"workers" validate:"min=1,max=64"`
	DefaultSampleSize float64 `toml:"default_sample_size" validate:"gt=0"`
	TotalTolerance    float64 `toml:"total_tolerance" validate:"gte=0"`
	MinYear           int     `toml:"min_year" validate:"min=1900"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20261,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
			DBName:  "systemscheck.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Matching: MatchingConfig{
			FacilityThreshold: 0.5,
			ItemThreshold:     0.5,
			TypoSimilarity:    85,
			StrictAmbiguity:   false,
			AmbiguityMargin:   0.02,
		},
		Import: ImportConfig{
			Workers:           4,
			DefaultSampleSize: 3,
			TotalTolerance:    0.1,
			MinYear:           2000,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}
	serverMap, ok := raw["server"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultPath 可执行文件同目录下的 config.toml
func DefaultPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadFile 从指定路径加载配置；文件不存在时使用默认配置。之后应用环境变量覆盖并校验。
func LoadFile(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, info, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := applyEnv(config); err != nil {
		return nil, info, err
	}
	if err := Validate(config); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// LoadConfig 从可执行文件同目录的 config.toml 加载配置
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadFile(DefaultPath())
	return config, err
}

// applyEnv 环境变量覆盖
func applyEnv(config *AppConfig) error {
	if v := os.Getenv("SYSTEMSCHECK_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv("SYSTEMSCHECK_LOG_LEVEL"); v != "" {
		config.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("SYSTEMSCHECK_STRICT_AMBIGUITY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SYSTEMSCHECK_STRICT_AMBIGUITY %q: %w", v, err)
		}
		config.Matching.StrictAmbiguity = b
	}
	return nil
}

var validate = validator.New()

// Validate 按结构体标签校验配置
func Validate(config *AppConfig) error {
	if err := validate.Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SaveConfig 保存配置到指定路径
func SaveConfig(config *AppConfig, path string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ResolveDataDir 数据目录：绝对路径原样使用，相对路径相对于可执行文件目录
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir)
}

// EnsureDataDir 确保数据目录存在；工作簿在内存中处理，不落盘
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// DBPath 数据库文件路径
func DBPath(config *AppConfig) string {
	return filepath.Join(ResolveDataDir(config), config.Data.DBName)
}
