package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultCommand is looked up on PATH when no explicit engine path resolves.
	DefaultCommand = "tesseract"
	// WindowsDefaultPath is where the Tesseract installer puts the binary on Windows.
	WindowsDefaultPath = `C:\Program Files\Tesseract-OCR\tesseract.exe`
)

// waitDelay bounds how long Wait blocks on pipes after the process is killed.
const waitDelay = 2 * time.Second

// ResolveCommand picks the Tesseract executable: override if it exists, else the
// Windows install path if on Windows and present, else DefaultCommand for PATH lookup.
// Hosts call this once at startup and pass the result to NewCommandEngine.
func ResolveCommand(override string) string {
	return resolveCommand(override, runtime.GOOS, fileExists)
}

func resolveCommand(override, goos string, exists func(string) bool) string {
	if override != "" && exists(override) {
		return override
	}
	if goos == "windows" && exists(WindowsDefaultPath) {
		return WindowsDefaultPath
	}
	return DefaultCommand
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CommandEngine runs the tesseract executable, feeding the image on stdin and
// reading text from stdout.
type CommandEngine struct {
	command  string
	language string
	logger   *zap.Logger
}

// CommandOption configures a CommandEngine.
type CommandOption func(*CommandEngine)

// WithLanguage sets the language pack passed with -l. Empty omits the flag.
func WithLanguage(lang string) CommandOption {
	return func(e *CommandEngine) { e.language = lang }
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) CommandOption {
	return func(e *CommandEngine) { e.logger = l }
}

// NewCommandEngine returns an engine invoking command (a path or a name looked up on PATH).
func NewCommandEngine(command string, opts ...CommandOption) *CommandEngine {
	if command == "" {
		command = DefaultCommand
	}
	e := &CommandEngine{
		command:  command,
		language: DefaultLanguage,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Command returns the configured executable.
func (e *CommandEngine) Command() string {
	return e.command
}

// Recognize runs tesseract on image under ctx. A missing executable yields
// ErrEngineNotFound; an expired ctx yields a timeout error.
func (e *CommandEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	bin, err := exec.LookPath(e.command)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrEngineNotFound, e.command)
	}
	args := []string{"stdin", "stdout"}
	if e.language != "" {
		args = append(args, "-l", e.language)
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.WaitDelay = waitDelay
	cmd.Stdin = bytes.NewReader(image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	e.logger.Debug("tesseract finished",
		zap.String("command", bin),
		zap.Int("image_bytes", len(image)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("tesseract timed out: %w", ctxErr)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("tesseract: %w: %s", err, msg)
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return stdout.String(), nil
}
