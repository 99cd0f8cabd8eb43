package config

import (
	"errors"
	"fmt"
	"os"

	"animalitos/domain/entities"

	"github.com/BurntSushi/toml"
)

// PotsFile is the TOML layout of the pot configuration:
//
//	[[pots]]
//	name = "Prize"
//	percentage = "60"
//	color = "#f5b700"
type PotsFile struct {
	Pots []entities.PotConfig `toml:"pots"`
}

// LoadPotConfigs reads and validates the pot configuration at path
func LoadPotConfigs(path string) ([]entities.PotConfig, error) {
	var file PotsFile
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("pot configuration %s not found: %w", path, err)
		}
		return nil, fmt.Errorf("failed to parse pot configuration %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, entities.NewValidationError("unknown keys in %s: %v", path, undecoded)
	}
	return ParsePotConfigs(file.Pots)
}

// ParsePotConfigs validates decoded pot configs
func ParsePotConfigs(configs []entities.PotConfig) ([]entities.PotConfig, error) {
	if err := entities.ValidatePotConfigs(configs); err != nil {
		return nil, err
	}
	return configs, nil
}

// DecodePotConfigs parses and validates TOML text, such as a configuration piped
// to `pots configure --file -`
func DecodePotConfigs(data string) ([]entities.PotConfig, error) {
	var file PotsFile
	meta, err := toml.Decode(data, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pot configuration: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, entities.NewValidationError("unknown pot configuration keys: %v", undecoded)
	}
	return ParsePotConfigs(file.Pots)
}
