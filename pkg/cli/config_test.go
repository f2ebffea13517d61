package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klinvill/substring-search/pkg/compression"
	"github.com/klinvill/substring-search/pkg/hash"
	"github.com/klinvill/substring-search/pkg/input"
	"github.com/klinvill/substring-search/pkg/match"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, true},
		{"negative k", func(c *Config) { c.K = -1 }, true},
		{"zero k", func(c *Config) { c.K = 0 }, false},
		{"no workers", func(c *Config) { c.WorkerCount = 0 }, true},
		{"bad strategy", func(c *Config) { c.Strategy = "random" }, true},
		{"bad hash", func(c *Config) { c.Hash = "md5" }, true},
		{"salt too small", func(c *Config) { c.Hash = "polynomial"; c.Salt = 1 }, true},
		{"polynomial salt", func(c *Config) { c.Hash = "polynomial"; c.Salt = 31 }, false},
		{"bad compression", func(c *Config) { c.ReportCompression = "rar" }, true},
		{"bad format", func(c *Config) { c.OutputFormat = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfig()
			tt.modify(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	c := NewConfig()
	c.K = 12
	c.Strategy = "alternating"
	c.Hash = "murmur3"
	if err := c.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded := NewConfig()
	if err := loaded.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.K != 12 || loaded.Strategy != "alternating" || loaded.Hash != "murmur3" {
		t.Errorf("loaded = %+v", loaded)
	}

	mc, err := loaded.MatchConfig()
	if err != nil {
		t.Fatalf("MatchConfig() error = %v", err)
	}
	if mc.Strategy != match.StrategyAlternating || mc.Hash != hash.KindMurmur3 {
		t.Errorf("MatchConfig() = %+v", mc)
	}

	if err := os.WriteFile(path, []byte(`{"k": -3}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := NewConfig().LoadFromFile(path); err == nil {
		t.Error("LoadFromFile() should reject invalid values")
	}
}

func TestConfigConversions(t *testing.T) {
	c := NewConfig()
	c.Normalize = false
	c.EnableMmap = false
	c.WorkerCount = 3
	c.CacheEntries = 5

	opts := c.LoadOptions()
	if opts.Normalize || opts.UseMmap {
		t.Errorf("LoadOptions() = %+v", opts)
	}

	bc := c.BatchConfig()
	if bc.Workers != 3 || bc.CacheEntries != 5 || bc.Load == nil {
		t.Errorf("BatchConfig() = %+v", bc)
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("warn", &buf)

	logger.Debug("debug %d", 1)
	logger.Info("info %d", 2)
	logger.Warn("warn %d", 3)
	logger.Error("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below level were written: %q", out)
	}
	if !strings.Contains(out, "[substring] [WARN] warn 3") || !strings.Contains(out, "[substring] [ERROR] error 4") {
		t.Errorf("output = %q", out)
	}

	buf.Reset()
	logger.SetLevel("debug")
	logger.Debug("now visible")
	if !strings.Contains(buf.String(), "[DEBUG] now visible") {
		t.Errorf("output = %q", buf.String())
	}
	if logger.GetLevel() != LogLevelDebug {
		t.Errorf("GetLevel() = %v", logger.GetLevel())
	}
}

func TestClassifyErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"canceled", fmt.Errorf("batch: %w", context.Canceled), ErrInterrupted},
		{"not exist", input.NewInputError("stat", "x", os.ErrNotExist), ErrFileNotFound},
		{"permission", os.ErrPermission, ErrPermissionDenied},
		{"utf8", fmt.Errorf("%w: offset 3", input.ErrInvalidUTF8), ErrInvalidEncoding},
		{"empty corpus", input.ErrEmptyCorpus, ErrEmptyCorpus},
		{"decompress", compression.NewCompressionError(compression.CompressionZstd, "decompress", errors.New("bad frame")), ErrDecompression},
		{"engine", match.ErrInvalidSalt, ErrEngineConfig},
		{"other", errors.New("boom"), ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); got != tt.want {
				t.Errorf("classify() = %s, want %s", got, tt.want)
			}
		})
	}

	wrapped := WrapError(ErrFileRead, "加载序列失败", input.NewInputError("stat", "x", os.ErrNotExist))
	if wrapped.Code != ErrFileNotFound {
		t.Errorf("WrapError() code = %s, want FILE_NOT_FOUND", wrapped.Code)
	}
	if NewErrorHandler(NewWriterLogger("error", &bytes.Buffer{}), false).Handle(wrapped) != 3 {
		t.Error("FILE_NOT_FOUND should exit with 3")
	}
}
