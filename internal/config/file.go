package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the optional YAML overlay named by CONFIG_FILE.
type File struct {
	Env      string `yaml:"env"`
	HTTPAddr string `yaml:"http_addr"`
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	Store struct {
		Driver        string `yaml:"driver"`
		MongoURI      string `yaml:"mongo_uri"`
		MongoDatabase string `yaml:"mongo_database"`
		DBURL         string `yaml:"db_url"`
		SQLitePath    string `yaml:"sqlite_path"`
		RedisURL      string `yaml:"redis_url"`
		AutoMigrate   bool   `yaml:"auto_migrate"`
	} `yaml:"store"`

	NATSURL          string `yaml:"nats_url"`
	CORSAllowOrigins string `yaml:"cors_allow_origins"`

	UnknownAuthorDisplayName string `yaml:"unknown_author_display_name"`

	Worker struct {
		InsertRPS int    `yaml:"insert_rps"`
		Queue     string `yaml:"queue"`
	} `yaml:"worker"`
}

func LoadFile(path string) (File, error) {
	var f File
	b, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return f, nil
}
