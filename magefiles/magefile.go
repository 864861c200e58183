//go:build mage

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Build tidies deps, then compiles ./bin/tatpro-server and ./bin/intake.
func Build() error {
	mg.Deps(Tidy)
	fmt.Println(">> Building binaries...")
	if err := sh.Run("go", "build", "-o", "bin/tatpro-server", "./cmd/server"); err != nil {
		return err
	}
	return sh.Run("go", "build", "-o", "bin/intake", "./cmd/intake")
}

// Run builds then executes the server binary.
func Run() error {
	mg.Deps(Build)
	fmt.Printf(">> Starting server on :%s ...\n", port())
	return sh.Run("./bin/tatpro-server")
}

// Dev starts the server via go run against the in-memory store.
func Dev() error {
	fmt.Println(">> Dev mode: go run ./cmd/server ...")
	cmd := exec.Command("go", "run", "./cmd/server")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), "PORT="+port(), "STORE=memory")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	// Forward Ctrl-C so the server drains and closes its store.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		fmt.Println("\n>> Shutting down...")
		cmd.Process.Signal(syscall.SIGTERM)
	}()
	return cmd.Wait()
}

// Wizard runs the terminal intake form.
func Wizard() error {
	cmd := exec.Command("go", "run", "./cmd/intake", "wizard")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println(">> go mod tidy...")
	return sh.Run("go", "mod", "tidy")
}

// Test runs all unit tests.
func Test() error {
	fmt.Println(">> Running tests...")
	return sh.Run("go", "test", "./...")
}

// Golden regenerates golden files for the handler tests.
func Golden() error {
	fmt.Println(">> Updating golden files...")
	return sh.Run("go", "test", "./internal/handlers/...", "-update")
}

// Lint runs golangci-lint if available.
func Lint() error {
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		fmt.Println(">> golangci-lint not found; skipping.")
		return nil
	}
	return sh.Run("golangci-lint", "run", "./...")
}

// Clean removes build artifacts, the local SQLite DB, and the wizard's data dir.
func Clean() error {
	fmt.Println(">> Cleaning...")
	os.RemoveAll("bin")
	os.RemoveAll(".tatpro")
	for _, f := range []string{"tatpro.db", "tatpro.db-wal", "tatpro.db-shm"} {
		os.Remove(f)
	}
	return nil
}

// Install installs both binaries to $GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	return sh.Run("go", "install", "./cmd/server", "./cmd/intake")
}

func port() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return "3000"
}

func init() {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("error loading .env file", "err", err)
	}
}
