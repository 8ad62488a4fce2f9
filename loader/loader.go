// Package loader reads and writes vulkyn program files: assembly
// source on disk is parsed into a Program, and a resolved Program is
// encoded to or decoded from the on-disk image format.
package loader

import (
	"fmt"
	"os"

	"github.com/WillemNicolas/vulkyn/asm"
	"github.com/WillemNicolas/vulkyn/image"
	"github.com/WillemNicolas/vulkyn/vm"
)

// LoadSource reads path and assembles it into a fully-resolved
// Program.
func LoadSource(path string) (*vm.Program, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-specified assembly source path
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	prog, err := asm.Parse(path, string(data))
	if err != nil {
		return nil, err
	}
	return prog, nil
}

// LoadImage reads path and decodes it as a vulkyn program image.
func LoadImage(path string) (*vm.Program, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-specified image path
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	prog, err := image.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return prog, nil
}

// SaveImage encodes prog and writes it to path.
func SaveImage(path string, prog *vm.Program) error {
	data, err := image.Encode(prog)
	if err != nil {
		return fmt.Errorf("failed to encode program: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user-specified image output path
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", path, closeErr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
