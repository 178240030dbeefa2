package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

const (
	defaultConfigPath  = "configs/config.dev.yaml"
	fallbackConfigPath = "configs/config.example.yaml"
)

// resolveConfigPath 优先级：--config > CONFIG_PATH > dev；dev 不存在则回退 example
func resolveConfigPath(flag string) (string, error) {
	cfgPath := flag
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}
	if _, err := os.Stat(cfgPath); err != nil {
		if flag != "" {
			return "", fmt.Errorf("config file not found: %s", cfgPath)
		}
		if _, err2 := os.Stat(fallbackConfigPath); err2 != nil {
			return "", fmt.Errorf("config file not found: %s (fallback %s also missing)", cfgPath, fallbackConfigPath)
		}
		log.Printf("config %s not found, fallback to %s", cfgPath, fallbackConfigPath)
		cfgPath = fallbackConfigPath
	}
	// 归一化路径，方便日志可读
	if abs, err := filepath.Abs(cfgPath); err == nil {
		cfgPath = abs
	}
	return cfgPath, nil
}
