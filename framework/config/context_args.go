package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ApplicationContextArgs configures an application context.
//
//	name: shop
//	caseSensitive: false
//	refresh: true
//	resources:
//	  - controllers
//	  - stores
type ApplicationContextArgs struct {
	Name string `yaml:"name"`
	// CaseSensitive controls whether named lookups distinguish case.
	CaseSensitive bool `yaml:"caseSensitive"`
	// Refresh builds every singleton when the context is created.
	Refresh bool `yaml:"refresh"`
	// Resources lists the container tags whose singletons Refresh builds.
	// Empty means every singleton.
	Resources []string `yaml:"resources"`
}

// DefaultContextArgs returns args with CaseSensitive and Refresh enabled.
func DefaultContextArgs() ApplicationContextArgs {
	return ApplicationContextArgs{
		Name:          "application",
		CaseSensitive: true,
		Refresh:       true,
	}
}

// LoadContextArgs starts from DefaultContextArgs, overlays the YAML file at
// path (skipped when path is empty) and then the CONTEXT_* environment
// variables. Keys missing from the file keep their defaults.
func LoadContextArgs(path string) (ApplicationContextArgs, error) {
	args := DefaultContextArgs()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return args, fmt.Errorf("config: read context file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &args); err != nil {
			return args, fmt.Errorf("config: parse context file %s: %w", path, err)
		}
	}

	args.Name = env("CONTEXT_NAME", args.Name)
	args.CaseSensitive = envBool("CONTEXT_CASE_SENSITIVE", args.CaseSensitive)
	args.Refresh = envBool("CONTEXT_REFRESH", args.Refresh)
	if v := os.Getenv("CONTEXT_RESOURCES"); v != "" {
		args.Resources = splitList(v)
	}
	return args, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
