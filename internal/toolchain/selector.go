// Package toolchain holds the table of known cross-compilation toolchains
// and the environment file written after a toolchain is installed.
package toolchain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hkdywg/toolfetch/internal/utils"
	"github.com/samber/lo"
)

// Toolchain describes one downloadable toolchain build.
type Toolchain struct {
	Arch         string `mapstructure:"arch" yaml:"arch"`
	Host         string `mapstructure:"host" yaml:"host"`
	Archive      string `mapstructure:"archive" yaml:"archive"`
	URLPrefix    string `mapstructure:"url_prefix" yaml:"url_prefix"`
	Source       string `mapstructure:"source" yaml:"source,omitempty"`
	Ref          string `mapstructure:"ref" yaml:"ref,omitempty"`
	BinDir       string `mapstructure:"bin_dir" yaml:"bin_dir"`
	CrossCompile string `mapstructure:"cross_compile" yaml:"cross_compile"`
}

// URL is where the toolchain is fetched from. An explicit Source wins over
// URLPrefix+Archive; a Ref is appended as a fragment to git sources.
func (t Toolchain) URL() string {
	if t.Source == "" {
		return t.URLPrefix + t.Archive
	}
	if t.Ref != "" && strings.HasPrefix(t.Source, "git+") && !strings.Contains(t.Source, "#") {
		return t.Source + "#" + t.Ref
	}
	return t.Source
}

func (t Toolchain) key() string {
	return t.Arch + "/" + t.Host
}

func (t Toolchain) validate() error {
	if t.Arch == "" || t.Host == "" {
		return fmt.Errorf("toolchain entry needs arch and host")
	}
	if t.Source == "" && (t.Archive == "" || t.URLPrefix == "") {
		return fmt.Errorf("toolchain %s needs archive and url_prefix, or source", t.key())
	}
	if t.Source != "" && t.Archive == "" && !strings.HasPrefix(t.Source, "git+") {
		return fmt.Errorf("toolchain %s needs an archive name for source %s", t.key(), t.Source)
	}
	return nil
}

// BuiltinToolchains returns the entries compiled into the binary.
func BuiltinToolchains() []Toolchain {
	return []Toolchain{
		{
			Arch:         "aarch64",
			Host:         "linux",
			Archive:      "gcc-linaro-7.4.1-2019.02-x86_64_aarch64-linux-gnu.tar.xz",
			URLPrefix:    "https://releases.linaro.org/components/toolchain/binaries/7.4-2019.02/aarch64-linux-gnu/",
			BinDir:       "gcc-linaro-7.4.1-2019.02-x86_64_aarch64-linux-gnu/bin",
			CrossCompile: "aarch64-linux-gnu-",
		},
	}
}

// Selector maps (arch, host) to a toolchain. It is read-only once built.
type Selector struct {
	entries map[string]Toolchain
}

// NewSelector builds a selector from the built-in table followed by
// overrides; a later entry with the same arch and host replaces an
// earlier one.
func NewSelector(overrides ...Toolchain) (*Selector, error) {
	s := &Selector{entries: make(map[string]Toolchain)}
	for _, tc := range append(BuiltinToolchains(), overrides...) {
		if err := tc.validate(); err != nil {
			return nil, err
		}
		s.entries[tc.key()] = tc
	}
	return s, nil
}

// Lookup returns a copy of the entry for arch and host, or an error
// wrapping utils.ErrToolchainNotFound.
func (s *Selector) Lookup(arch, host string) (Toolchain, error) {
	tc, ok := s.entries[arch+"/"+host]
	if !ok {
		return Toolchain{}, fmt.Errorf("no toolchain for %s/%s: %w", arch, host, utils.ErrToolchainNotFound)
	}
	return tc, nil
}

// Entries lists every toolchain sorted by arch then host.
func (s *Selector) Entries() []Toolchain {
	list := lo.Values(s.entries)
	sort.Slice(list, func(i, j int) bool {
		if list[i].Arch != list[j].Arch {
			return list[i].Arch < list[j].Arch
		}
		return list[i].Host < list[j].Host
	})
	return list
}
