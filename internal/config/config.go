package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
	// 生成二维码时使用的对外地址，例如 https://party.example.com
	PublicBaseURL string `mapstructure:"public_base_url"`

	Game   GameConfig   `mapstructure:"game"`
	Room   RoomConfig   `mapstructure:"room"`
	Avatar AvatarConfig `mapstructure:"avatar"`
}

type GameConfig struct {
	MinPlayers         int           `mapstructure:"min_players"`
	WordShowDuration   time.Duration `mapstructure:"word_show_duration"`
	DiscussionDuration time.Duration `mapstructure:"discussion_duration"`
	VotingDuration     time.Duration `mapstructure:"voting_duration"`
}

type RoomConfig struct {
	MaxPlayers    int           `mapstructure:"max_players"`
	MaxAge        time.Duration `mapstructure:"max_age"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	CodeLength    int           `mapstructure:"code_length"`
}

type AvatarConfig struct {
	URLTemplate string   `mapstructure:"url_template"`
	Styles      []string `mapstructure:"styles"`
}

var cfg *AppConfig

func GetConfig() *AppConfig {
	if cfg == nil {
		cfg = InitConfig()
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("public_base_url", "http://localhost:8080")

	v.SetDefault("game.min_players", 3)
	v.SetDefault("game.word_show_duration", 5*time.Second)
	v.SetDefault("game.discussion_duration", 90*time.Second)
	v.SetDefault("game.voting_duration", 30*time.Second)

	v.SetDefault("room.max_players", 8)
	v.SetDefault("room.max_age", 2*time.Hour)
	v.SetDefault("room.sweep_interval", time.Minute)
	v.SetDefault("room.code_length", 6)

	v.SetDefault("avatar.url_template", "https://api.dicebear.com/9.x/{style}/svg?seed={id}")
	v.SetDefault("avatar.styles", []string{"bottts", "pixel-art", "adventurer", "fun-emoji"})
}

// InitConfig 依次读取 .env、app_config.json 和 IMPOSTOR_ 前缀的环境变量，
// 后者覆盖前者，缺失的配置文件不视为错误
func InitConfig() *AppConfig {
	config, err := Load(".")
	if err != nil {
		panic(fmt.Errorf("加载配置失败: %w", err))
	}

	return config
}

func Load(dir string) (*AppConfig, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("读取 .env 失败: %w", err)
	}

	v := viper.New()

	v.SetConfigName("app_config")
	v.SetConfigType("json")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("IMPOSTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var config AppConfig

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *AppConfig) validate() error {
	if c.Game.MinPlayers < 3 {
		return fmt.Errorf("game.min_players 不能小于 3，当前为 %d", c.Game.MinPlayers)
	}
	if c.Room.MaxPlayers < c.Game.MinPlayers {
		return fmt.Errorf("room.max_players (%d) 不能小于 game.min_players (%d)", c.Room.MaxPlayers, c.Game.MinPlayers)
	}
	if c.Room.CodeLength < 4 {
		return fmt.Errorf("room.code_length 不能小于 4，当前为 %d", c.Room.CodeLength)
	}
	if len(c.Avatar.Styles) == 0 {
		return errors.New("avatar.styles 不能为空")
	}
	return nil
}
