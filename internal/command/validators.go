// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/staranto/assetctl/internal/asset"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

// AddressValidator rejects a hex address whose mixed case fails the EIP-55
// checksum. All-lower and all-upper addresses pass.
func AddressValidator(value any) error {
	s := strings.TrimSpace(value.(string))
	if s == "" || !asset.IsHexAddress(s) {
		return nil
	}
	if !asset.ValidChecksum(s) {
		return fmt.Errorf("bad checksum, expected %s", asset.ChecksumAddress(s))
	}
	return nil
}

func OutputValidator(value any) error {
	validOutputFlagValues := []string{"text", "json", "yaml"}
	if !slices.Contains(validOutputFlagValues, value.(string)) {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}

func VariantValidator(value any) error {
	_, err := asset.ParseVariant(value.(string))
	return err
}

func PositiveDurationValidator(value any) error {
	if value.(time.Duration) <= 0 {
		return errors.New("must be greater than zero")
	}
	return nil
}
