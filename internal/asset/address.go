// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package asset

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// IsHexAddress reports whether s is 0x followed by 40 hex digits.
func IsHexAddress(s string) bool {
	if len(s) != 42 || (s[:2] != "0x" && s[:2] != "0X") { //nolint:mnd
		return false
	}
	_, err := hex.DecodeString(s[2:])
	return err == nil
}

// NormalizeAddress trims s and lower-cases it when it is a well-formed hex
// address. Anything else is returned trimmed but otherwise untouched.
func NormalizeAddress(s string) string {
	s = strings.TrimSpace(s)
	if IsHexAddress(s) {
		return "0x" + strings.ToLower(s[2:])
	}
	return s
}

// ChecksumAddress renders a hex address in EIP-55 mixed case. Non-addresses
// are returned unchanged.
func ChecksumAddress(s string) string {
	if !IsHexAddress(s) {
		return s
	}
	lower := strings.ToLower(s[2:])

	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(lower))
	sum := hex.EncodeToString(h.Sum(nil))

	out := []byte(lower)
	for i, c := range out {
		if c >= 'a' && c <= 'f' && sum[i] >= '8' {
			out[i] = c - 'a' + 'A'
		}
	}
	return "0x" + string(out)
}

// ValidChecksum reports whether a mixed-case address carries a correct EIP-55
// checksum. All-lower and all-upper addresses carry none and are accepted.
func ValidChecksum(s string) bool {
	if !IsHexAddress(s) {
		return false
	}
	body := s[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	return ChecksumAddress(s)[2:] == body
}
