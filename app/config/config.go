package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type BatchCfg struct {
	Workers      int `yaml:"workers" json:"workers"`
	MaxAddresses int `yaml:"max_addresses" json:"max_addresses"`
}

type CacheCfg struct {
	TTLHours int `yaml:"ttl_hours" json:"ttl_hours"`
	L1Size   int `yaml:"l1_size" json:"l1_size"`
}

type NormalizerCfg struct {
	TablesDir           string   `yaml:"tables_dir" json:"tables_dir"`
	UseGeocoderFallback bool     `yaml:"use_geocoder_fallback" json:"use_geocoder_fallback"`
	UseLibpostal        bool     `yaml:"use_libpostal" json:"use_libpostal"`
	IndexResults        bool     `yaml:"index_results" json:"index_results"`
	Batch               BatchCfg `yaml:"batch" json:"batch"`
	Cache               CacheCfg `yaml:"cache" json:"cache"`
}

var C NormalizerCfg

func Load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, &C); err != nil {
		return err
	}
	applyDefaults()
	applyEnvOverrides()
	return nil
}

// LoadDefaults fills C without a config file, env overrides included.
func LoadDefaults() {
	C = NormalizerCfg{}
	applyDefaults()
	applyEnvOverrides()
}

func applyDefaults() {
	if C.Batch.Workers <= 0 {
		C.Batch.Workers = 4
	}
	if C.Batch.MaxAddresses <= 0 {
		C.Batch.MaxAddresses = 20000
	}
	if C.Cache.TTLHours <= 0 {
		C.Cache.TTLHours = 24
	}
	if C.Cache.L1Size <= 0 {
		C.Cache.L1Size = 10000
	}
}

func applyEnvOverrides() {
	switch os.Getenv("USE_GEOCODER_FALLBACK") {
	case "0":
		C.UseGeocoderFallback = false
	case "1":
		C.UseGeocoderFallback = true
	}
	switch os.Getenv("USE_LIBPOSTAL") {
	case "0":
		C.UseLibpostal = false
	case "1":
		C.UseLibpostal = true
	}
	if dir := os.Getenv("ADDRESS_TABLES_DIR"); dir != "" {
		C.TablesDir = dir
	}
	if w := os.Getenv("BATCH_WORKERS"); w != "" {
		if n, err := strconv.Atoi(w); err == nil && n > 0 {
			C.Batch.Workers = n
		}
	}
}

func RequestTimeout() time.Duration { return 1500 * time.Millisecond }
