// Package parser provides YAML parsers for configuration files and locals.
package parser

import (
	"fmt"

	"github.com/reglet-dev/tmplkit/domain/entities"
	"github.com/reglet-dev/tmplkit/domain/ports"
	"gopkg.in/yaml.v3"
)

// YamlConfigParser implements ConfigParser for YAML.
type YamlConfigParser struct{}

// NewYamlConfigParser creates a new YamlConfigParser.
func NewYamlConfigParser() ports.ConfigParser {
	return &YamlConfigParser{}
}

// Parse unmarshals YAML bytes over the default Config.
func (p *YamlConfigParser) Parse(data []byte) (*entities.Config, error) {
	cfg := entities.DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// YamlLocalsParser implements LocalsParser for YAML (and therefore JSON).
type YamlLocalsParser struct{}

// NewYamlLocalsParser creates a new YamlLocalsParser.
func NewYamlLocalsParser() ports.LocalsParser {
	return &YamlLocalsParser{}
}

// Parse unmarshals a YAML mapping into Locals. An empty document yields empty locals.
func (p *YamlLocalsParser) Parse(data []byte) (entities.Locals, error) {
	locals := entities.Locals{}
	if err := yaml.Unmarshal(data, &locals); err != nil {
		return nil, fmt.Errorf("failed to parse locals: %w", err)
	}
	if locals == nil {
		locals = entities.Locals{}
	}
	return locals, nil
}
