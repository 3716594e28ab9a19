// Package config reads the optional HCL configuration file of the handcheck CLI and
// feeds its attributes to kong as flag values. Flags given on the command line win.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config mirrors the CLI flags that may be set from a file. Every attribute is optional;
// a nil field leaves the flag alone.
type Config struct {
	RandomSeed   *int64  `hcl:"random_seed,optional"`
	StrictBlinds *bool   `hcl:"strict_blinds,optional"`
	AllowLegacy  *bool   `hcl:"allow_legacy,optional"`
	EnforcePots  *bool   `hcl:"enforce_pots,optional"`
	Workers      *int    `hcl:"workers,optional"`
	ReportDB     *string `hcl:"report_db,optional"`
	Debug        *bool   `hcl:"debug,optional"`
	LogJSON      *bool   `hcl:"log_json,optional"`
}

// Load reads a configuration file.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative")
	}
	if c.ReportDB != nil {
		dsn := *c.ReportDB
		if !strings.HasPrefix(dsn, "sqlite:") && !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
			return fmt.Errorf("report_db must start with sqlite: or postgres://, got %q", dsn)
		}
	}
	return nil
}

// Values returns the set attributes keyed by attribute name, formatted as they would
// be on the command line.
func (c *Config) Values() map[string]string {
	out := make(map[string]string)
	setBool := func(name string, v *bool) {
		if v != nil {
			out[name] = strconv.FormatBool(*v)
		}
	}
	if c.RandomSeed != nil {
		out["random_seed"] = strconv.FormatInt(*c.RandomSeed, 10)
	}
	if c.Workers != nil {
		out["workers"] = strconv.Itoa(*c.Workers)
	}
	if c.ReportDB != nil {
		out["report_db"] = *c.ReportDB
	}
	setBool("strict_blinds", c.StrictBlinds)
	setBool("allow_legacy", c.AllowLegacy)
	setBool("enforce_pots", c.EnforcePots)
	setBool("debug", c.Debug)
	setBool("log_json", c.LogJSON)
	return out
}

// Resolver exposes the configuration to kong. Flag names map to attributes by
// replacing dashes with underscores.
func (c *Config) Resolver() kong.Resolver {
	values := c.Values()
	return kong.ResolverFunc(func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		v, ok := values[strings.ReplaceAll(flag.Name, "-", "_")]
		if !ok {
			return nil, nil
		}
		return v, nil
	})
}

// Loader is a kong.ConfigurationLoader for HCL files.
func Loader(r io.Reader) (kong.Resolver, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	name := "config.hcl"
	if f, ok := r.(interface{ Name() string }); ok {
		name = f.Name()
	}
	config, err := Parse(src, name)
	if err != nil {
		return nil, err
	}
	return config.Resolver(), nil
}
