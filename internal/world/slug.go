// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package world

import (
	"crypto/rand"
	"regexp"
	"strings"
)

const (
	slugBaseMaxLength = 50
	slugSuffixLength  = 6
	slugAlphabet      = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var (
	slugStripRe    = regexp.MustCompile(`[^\w\s-]`)
	slugHyphenRe   = regexp.MustCompile(`\s+`)
	slugCollapseRe = regexp.MustCompile(`-+`)
)

// GenerateSlug derives a URL-safe identifier from a display name and
// appends a random base-36 suffix. Uniqueness is probabilistic; the
// store's unique constraint on (world_id, slug) is the backstop and the
// service regenerates on collision.
func GenerateSlug(name string) string {
	base := strings.ToLower(name)
	base = slugStripRe.ReplaceAllString(base, "")
	base = slugHyphenRe.ReplaceAllString(strings.TrimSpace(base), "-")
	base = slugCollapseRe.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if len(base) > slugBaseMaxLength {
		base = strings.Trim(base[:slugBaseMaxLength], "-")
	}
	suffix := randomSlugSuffix()
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

func randomSlugSuffix() string {
	buf := make([]byte, slugSuffixLength)
	// rand.Read never fails on supported platforms.
	_, _ = rand.Read(buf)
	out := make([]byte, slugSuffixLength)
	for i, b := range buf {
		out[i] = slugAlphabet[int(b)%len(slugAlphabet)]
	}
	return string(out)
}
