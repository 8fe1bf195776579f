package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/novaterra/npc-engine/pkg/npc"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <character-or-environment.json> [...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		if err := validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	if !strings.HasSuffix(filepath.Base(filename), ".json") {
		return fmt.Errorf("config file must have .json extension: %s", filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	switch {
	case npc.LooksLikeCharacter(data):
		return validateCharacter(data, filename)
	case npc.LooksLikeEnvironment(data):
		return validateEnvironment(data, filename)
	default:
		return fmt.Errorf("file %s matches neither the character nor the environment key set", filename)
	}
}

func validateCharacter(data []byte, filename string) error {
	c, err := npc.ParseCharacter(data)
	if err != nil {
		return fmt.Errorf("file %s: %w", filename, err)
	}

	problems := c.Validate()
	if age, err := strconv.Atoi(c.Age.String()); err == nil && age <= 0 {
		problems = append(problems, "age is not positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("character errors in %s:\n  - %s", filename, strings.Join(problems, "\n  - "))
	}

	fmt.Printf("Character %q is valid!\n", c.Name)
	return nil
}

func validateEnvironment(data []byte, filename string) error {
	e, err := npc.ParseEnvironment(data)
	if err != nil {
		return fmt.Errorf("file %s: %w", filename, err)
	}

	if problems := e.Validate(); len(problems) > 0 {
		return fmt.Errorf("environment errors in %s:\n  - %s", filename, strings.Join(problems, "\n  - "))
	}

	fmt.Printf("Environment %q is valid!\n", e.Era)
	return nil
}
