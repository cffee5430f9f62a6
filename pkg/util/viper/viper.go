package viper

import (
	"bytes"
	"path/filepath"
	"strings"

	spfviper "github.com/spf13/viper"

	"github.com/lk2023060901/databrief-go/pkg/util/merr"
)

// EnvPrefix 为环境变量覆盖配置时使用的前缀，例如 BRIEF_CODEC_MAXDEPTH 覆盖 codec.maxDepth。
const EnvPrefix = "BRIEF"

// Config 封装 spf13/viper 实例，对外提供精简的 YAML/JSON 配置加载接口。
type Config struct {
	v *spfviper.Viper
}

// New 创建一个空的 Config，并开启环境变量覆盖。
// 未加载任何文件时，Unmarshal 只会应用默认值与环境变量。
func New() *Config {
	v := spfviper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return &Config{
		v: v,
	}
}

// LoadFile 将 YAML 或 JSON 配置文件加载到 Config 中。
// 文件类型通过扩展名（.yaml/.yml/.json）推断。
func (c *Config) LoadFile(path string) error {
	c.v.SetConfigFile(path)
	if typ := configType(path); typ != "" {
		c.v.SetConfigType(typ)
	}
	// 其它扩展名交由 viper 自行推断，或在读取时返回清晰的错误信息。
	return merr.WrapErrIoFailed(path, c.v.ReadInConfig())
}

// LoadBytes 从内存加载配置，typ 为 yaml 或 json。
func (c *Config) LoadBytes(data []byte, typ string) error {
	c.v.SetConfigType(typ)
	return merr.WrapErrIoFailed("<memory>", c.v.ReadConfig(bytes.NewReader(data)))
}

// SetDefault 设置 key 的默认值。
func (c *Config) SetDefault(key string, value any) {
	c.v.SetDefault(key, value)
}

// IsSet 判断 key 是否在配置文件、环境变量或默认值中出现过。
func (c *Config) IsSet(key string) bool {
	return c.v.IsSet(key)
}

func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// ConfigFileUsed 返回已加载的配置文件路径，未加载时为空。
func (c *Config) ConfigFileUsed() string {
	return c.v.ConfigFileUsed()
}

// Unmarshal 将完整配置反序列化到 dst。
// dst 应为结构体或 map 的指针，未出现的 key 保持 dst 中原有的值。
func (c *Config) Unmarshal(dst any) error {
	return c.v.Unmarshal(dst)
}

// UnmarshalKey 将指定 key 对应的子配置反序列化到 dst。
// dst 应为结构体或 map 的指针。
func (c *Config) UnmarshalKey(key string, dst any) error {
	return c.v.UnmarshalKey(key, dst)
}

func configType(path string) string {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		return ""
	}
}
