package shieldconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Default returns the built-in calibration
func Default() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		// struct tags are static, a failure here is a programming error
		panic(fmt.Sprintf("shieldconfig: invalid default tags: %v", err))
	}
	return cfg
}

// Load reads YAML file and returns Config with raw bytes.
// Keys absent from the file keep their defaults; an empty path yields Default().
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Config, []byte, error) {
	if path == "" {
		cfg := Default()
		return cfg, nil, Validate(cfg)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read shield config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, data, err
	}
	return cfg, data, nil
}

// Parse decodes YAML on top of the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode shield config: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Hash generates SHA256 hash from Config (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// VersionTag returns "<version>+<first 8 hash chars>"
func VersionTag(version string, cfg *Config) (string, error) {
	hash, err := Hash(cfg)
	if err != nil {
		return "", err
	}
	return version + "+" + hash[:8], nil
}
