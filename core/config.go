package core

import (
	"fmt"
	"strings"
)

const (
	DefaultServiceName      = "ownership"
	DefaultNamespace        = "owner"
	DefaultAddressMinLength = 3
	DefaultAddressMaxLength = 255
)

type EmergencyOwnerConfig struct {
	Enabled bool `koanf:"enabled" mapstructure:"enabled"`
}

type AddressConfig struct {
	Prefix    string `koanf:"prefix" mapstructure:"prefix"`
	MinLength int    `koanf:"min_length" mapstructure:"min_length"`
	MaxLength int    `koanf:"max_length" mapstructure:"max_length"`
	Normalize bool   `koanf:"normalize" mapstructure:"normalize"`
}

type Config struct {
	ServiceName    string               `koanf:"service_name" mapstructure:"service_name"`
	Namespace      string               `koanf:"namespace" mapstructure:"namespace"`
	EmergencyOwner EmergencyOwnerConfig `koanf:"emergency_owner" mapstructure:"emergency_owner"`
	Address        AddressConfig        `koanf:"address" mapstructure:"address"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:    DefaultServiceName,
		Namespace:      DefaultNamespace,
		EmergencyOwner: EmergencyOwnerConfig{},
		Address: AddressConfig{
			MinLength: DefaultAddressMinLength,
			MaxLength: DefaultAddressMaxLength,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.Namespace) == "" {
		return fmt.Errorf("core: namespace is required")
	}
	if c.Address.MinLength < 0 || c.Address.MaxLength < 0 {
		return fmt.Errorf("core: address length bounds must be >= 0")
	}
	if c.Address.MaxLength > 0 && c.Address.MinLength > c.Address.MaxLength {
		return fmt.Errorf("core: address min_length exceeds max_length")
	}
	return nil
}
