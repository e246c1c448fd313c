//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target to run when none is specified
var Default = Build

// Build compiles the project binaries into the bin/ directory.
func Build() error {
	fmt.Println("Building...")
	return sh.Run("go", "build", "-o", "./bin", "./...")
}

// Install copies the dmxload binary to /usr/local/bin.
func Install() error {
	mg.Deps(Build)
	fmt.Println("Installing...")
	return sh.Run("cp", "bin/dmxload", "/usr/local/bin/dmxload")
}

// Test runs all tests in the project with verbose output.
func Test() error {
	fmt.Println("Running Tests...")
	return sh.Run("go", "test", "-v", "./...")
}

// TestMapping runs the generator tests only.
func TestMapping() error {
	fmt.Println("Running Mapping Tests...")
	return sh.Run("go", "test", "-test.fullpath=true", "-timeout", "30s", "./mapping/...", "./sqlgen/...")
}

// Migrate generates the load script, using dmxload.hcl when present.
// DMXLOAD_* environment variables override the file.
func Migrate() error {
	mg.Deps(Build)
	fmt.Println("Generating initial data load...")
	args := []string{}
	if _, err := os.Stat("dmxload.hcl"); err == nil {
		args = append(args, "--config", "dmxload.hcl")
	}
	return sh.RunV("./bin/dmxload", args...)
}

// Clean removes the bin directory, test outputs and the generated load script.
func Clean() error {
	fmt.Println("Cleaning...")
	if err := os.RemoveAll("bin"); err != nil {
		return err
	}
	if err := os.RemoveAll("test_output"); err != nil {
		return err
	}
	if err := os.Remove("initial_data_inserts.sql"); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println("Running go mod tidy...")
	return sh.Run("go", "mod", "tidy")
}

// Check runs formatting and linting checks (fmt, vet).
func Check() error {
	mg.Deps(Fmt, Vet)
	return nil
}

// Fmt runs go fmt ./...
func Fmt() error {
	fmt.Println("Running go fmt...")
	return sh.Run("go", "fmt", "./...")
}

// Vet runs go vet ./...
func Vet() error {
	fmt.Println("Running go vet...")
	return sh.Run("go", "vet", "./...")
}
