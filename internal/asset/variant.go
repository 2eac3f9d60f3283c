// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package asset

import (
	"fmt"
	"strings"
)

// Variant identifies one of the gated content kinds served for a token. The
// string value is the name the authorization backend expects in the request
// path.
type Variant string

const (
	VariantTransparent Variant = "toxic-transparent"
	VariantPreReveal   Variant = "pre-toxic-transparent"
	VariantPixelArt    Variant = "pixel-art"
	VariantGLB         Variant = "glb"
	VariantFBX         Variant = "fbx"
)

// Variants lists every known variant in display order.
var Variants = []Variant{
	VariantTransparent,
	VariantPreReveal,
	VariantPixelArt,
	VariantGLB,
	VariantFBX,
}

var variantAliases = map[string]Variant{
	"transparent": VariantTransparent,
	"pre-reveal":  VariantPreReveal,
	"prereveal":   VariantPreReveal,
	"pixelated":   VariantPixelArt,
	"pixel":       VariantPixelArt,
}

// ParseVariant resolves a wire name or alias, case-insensitively.
func ParseVariant(s string) (Variant, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range Variants {
		if string(v) == s {
			return v, nil
		}
	}
	if v, ok := variantAliases[s]; ok {
		return v, nil
	}
	return "", fmt.Errorf("unknown variant %q (valid: %s): %w", s, VariantNames(), ErrInvalidKey)
}

// VariantNames returns the comma-separated wire names.
func VariantNames() string {
	names := make([]string, 0, len(Variants))
	for _, v := range Variants {
		names = append(names, string(v))
	}
	return strings.Join(names, ", ")
}

// Valid reports whether v is one of the known variants.
func (v Variant) Valid() bool {
	for _, known := range Variants {
		if v == known {
			return true
		}
	}
	return false
}

// Is3D reports whether the variant is a binary model file.
func (v Variant) Is3D() bool {
	return v == VariantGLB || v == VariantFBX
}

// Extension is the file extension, dot included, used for downloads.
func (v Variant) Extension() string {
	switch v {
	case VariantGLB:
		return ".glb"
	case VariantFBX:
		return ".fbx"
	default:
		return ".png"
	}
}

// ContentType is used when the backend does not declare one.
func (v Variant) ContentType() string {
	switch v {
	case VariantGLB:
		return "model/gltf-binary"
	case VariantFBX:
		return "application/octet-stream"
	default:
		return "image/png"
	}
}

func (v Variant) String() string {
	return string(v)
}
