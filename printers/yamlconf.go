package printers

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/confstatus/printer"
)

// YAMLConfig prints a configuration value as YAML.
type YAMLConfig struct {
	value func() any
}

// NewYAMLConfig returns a printer that marshals the result of value on
// every rendering.
func NewYAMLConfig(value func() any) *YAMLConfig {
	return &YAMLConfig{value: value}
}

func (c *YAMLConfig) Title() string { return "%config.title" }

func (c *YAMLConfig) PrintConfiguration(_ context.Context, w printer.Writer) error {
	data, err := yaml.Marshal(c.value())
	if err != nil {
		return fmt.Errorf("printers: marshal config: %w", err)
	}
	_, err = w.Write(data)
	return err
}
