package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

type EnvVar struct {
	Name  string
	Value string
}

// EnvVars returns the variables exported for a toolchain installed in dir,
// in the order they are written.
func EnvVars(tc Toolchain, dir string) []EnvVar {
	toolPath := dir
	if tc.BinDir != "" {
		toolPath = filepath.Join(dir, filepath.FromSlash(tc.BinDir))
	}
	return []EnvVar{
		{Name: "COMPILE_TOOL_PATH", Value: toolPath},
		{Name: "PATH", Value: "$PATH:$COMPILE_TOOL_PATH"},
		{Name: "CROSS_COMPILE", Value: tc.CrossCompile},
	}
}

// AbsEnvVars is EnvVars with dir made absolute, so the file can be
// sourced from any working directory.
func AbsEnvVars(tc Toolchain, dir string) ([]EnvVar, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("error resolving toolchain dir: %w", err)
	}
	return EnvVars(tc, abs), nil
}

var envEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`")

// FormatEnv renders vars as sourceable `export NAME="VALUE"` lines. Dollar
// signs are left alone so $PATH expands when sourced.
func FormatEnv(vars []EnvVar) string {
	var sb strings.Builder
	for _, v := range vars {
		fmt.Fprintf(&sb, "export %s=\"%s\"\n", v.Name, envEscaper.Replace(v.Value))
	}
	return sb.String()
}

// WriteEnvFile replaces path with the rendered vars.
func WriteEnvFile(path string, vars []EnvVar) error {
	if err := os.WriteFile(path, []byte(FormatEnv(vars)), 0644); err != nil {
		return fmt.Errorf("error writing env file: %w", err)
	}
	log.Debug().Str("op", "toolchain/env").Int("vars", len(vars)).Msgf("Wrote %s", path)
	return nil
}
