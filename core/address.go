package core

import (
	"fmt"
	"strings"
	"unicode"
)

// AddressResolver turns untrusted input into a validated Identity.
type AddressResolver func(raw string) (Identity, error)

type AddressValidator interface {
	Resolve(raw string) (Identity, error)
}

// BasicAddressValidator enforces the address rules from AddressConfig. It
// stands in for host specific address validation.
type BasicAddressValidator struct {
	Prefix    string
	MinLength int
	MaxLength int
	Normalize bool
}

func NewBasicAddressValidator(cfg AddressConfig) BasicAddressValidator {
	return BasicAddressValidator{
		Prefix:    strings.TrimSpace(cfg.Prefix),
		MinLength: cfg.MinLength,
		MaxLength: cfg.MaxLength,
		Normalize: cfg.Normalize,
	}
}

func (v BasicAddressValidator) Resolve(raw string) (Identity, error) {
	address := strings.TrimSpace(raw)
	if address == "" {
		return "", fmt.Errorf("core: address is required")
	}
	if v.Normalize {
		address = strings.ToLower(address)
	}
	if strings.IndexFunc(address, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("core: address %q contains whitespace", raw)
	}
	if address != strings.ToLower(address) {
		return "", fmt.Errorf("core: address %q is not normalized", raw)
	}
	if v.MinLength > 0 && len(address) < v.MinLength {
		return "", fmt.Errorf("core: address %q shorter than %d characters", raw, v.MinLength)
	}
	if v.MaxLength > 0 && len(address) > v.MaxLength {
		return "", fmt.Errorf("core: address %q longer than %d characters", raw, v.MaxLength)
	}
	if prefix := strings.ToLower(v.Prefix); prefix != "" && !strings.HasPrefix(address, prefix) {
		return "", fmt.Errorf("core: address %q must start with %q", raw, prefix)
	}
	return Identity(address), nil
}

func (v BasicAddressValidator) Resolver() AddressResolver {
	return v.Resolve
}

// UncheckedResolver accepts any non-empty trimmed input.
func UncheckedResolver(raw string) (Identity, error) {
	address := strings.TrimSpace(raw)
	if address == "" {
		return "", fmt.Errorf("core: address is required")
	}
	return Identity(address), nil
}

var _ AddressValidator = BasicAddressValidator{}
