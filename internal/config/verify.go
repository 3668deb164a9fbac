package config

import (
	"fmt"
	"os"
)

type VerifyConfig struct {
	Input string
}

func (c VerifyConfig) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("missing input directory")
	}
	info, err := os.Stat(c.Input)
	if err != nil {
		return fmt.Errorf("input directory '%s' does not exist", c.Input)
	}
	if !info.IsDir() {
		return fmt.Errorf("input '%s' is not a directory", c.Input)
	}
	return nil
}
