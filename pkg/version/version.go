/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/

// Package version parses cluster runtime release strings such as
// "v1.28.5+k3s1". Upgrade detection compares parsed versions, so cosmetic
// differences like a missing leading "v" do not trigger a reinstall.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrEmpty      = errors.New("version string is empty")
	ErrMalformed  = errors.New("version is not in MAJOR.MINOR.PATCH form")
	ErrNonNumeric = errors.New("version component is not numeric")
)

// Version is a cluster runtime release. Build carries the distribution
// metadata after the plus sign, e.g. "k3s1".
type Version struct {
	Major int    `json:"major" yaml:"major"`
	Minor int    `json:"minor" yaml:"minor"`
	Patch int    `json:"patch" yaml:"patch"`
	Build string `json:"build,omitempty" yaml:"build,omitempty"`
}

// Parse parses a release string. A leading "v" and surrounding whitespace
// are tolerated; the numeric part must have exactly three components.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Version{}, ErrEmpty
	}

	core, build, _ := strings.Cut(trimmed, "+")
	core = strings.TrimPrefix(core, "v")

	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, p)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2], Build: build}, nil
}

// String renders the canonical form, e.g. "v1.28.5+k3s1".
func (v Version) String() string {
	s := fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// Equal reports whether two versions name the same release, including the
// distribution build.
func (v Version) Equal(o Version) bool {
	return v == o
}

// Equivalent reports whether two release strings name the same release.
// Strings that do not parse fall back to trimmed literal comparison, which
// errs on the side of reinstalling.
func Equivalent(a, b string) bool {
	va, errA := Parse(a)
	vb, errB := Parse(b)
	if errA != nil || errB != nil {
		return strings.TrimSpace(a) == strings.TrimSpace(b)
	}
	return va.Equal(vb)
}
