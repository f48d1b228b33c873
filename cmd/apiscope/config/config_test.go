package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/loykin/apiscope/internal/common"
)

func TestConfigDoc_Load_NotRegularFile(t *testing.T) {
	d := t.TempDir()
	var c ConfigDoc
	if err := c.Load(d); err == nil {
		t.Fatalf("expected error for directory path (not a regular file)")
	}
}

func TestConfigDoc_Load_ResolvesBaseDir(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "apiscope.yaml")
	body := "logging:\n  level: debug\nbootstrap: ./boot.yaml\nbase_dir: features\nclient_class: resty\nvars:\n  env: qa\n"
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	var c ConfigDoc
	if err := c.Load(p); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.BaseDir != filepath.Join(d, "features") {
		t.Fatalf("expected base dir relative to settings file, got %q", c.BaseDir)
	}
	if c.Logging.Level != "debug" || c.Bootstrap != "./boot.yaml" || c.ClientClass != "resty" {
		t.Fatalf("unexpected doc: %+v", c)
	}
	if c.Vars["env"] != "qa" {
		t.Fatalf("expected vars.env=qa, got %#v", c.Vars)
	}
}

func TestConfigDoc_Load_Empty(t *testing.T) {
	p := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(p, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	var c ConfigDoc
	if err := c.Load(p); err != nil {
		t.Fatalf("empty settings should load: %v", err)
	}
}

func TestConfigDoc_Load_JSON(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "apiscope.json")
	body := `{"logging":{"level":"warn","mask_sensitive":false},"base_dir":"/srv/features","client_class":"resty"}`
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	var c ConfigDoc
	if err := c.Load(p); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Logging.Level != "warn" || c.BaseDir != "/srv/features" || c.ClientClass != "resty" {
		t.Fatalf("unexpected doc: %+v", c)
	}
	if c.Logging.MaskSensitive == nil || *c.Logging.MaskSensitive {
		t.Fatalf("expected mask_sensitive=false")
	}
}

func TestConfigDoc_Decode_WeakTypes(t *testing.T) {
	var c ConfigDoc
	err := c.Decode(map[string]any{
		"logging":      map[string]any{"level": "warn", "mask_sensitive": "false"},
		"client_class": "resty",
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if c.Logging.MaskSensitive == nil || *c.Logging.MaskSensitive {
		t.Fatalf("expected mask_sensitive=false, got %v", c.Logging.MaskSensitive)
	}
	if c.ClientClass != "resty" {
		t.Fatalf("expected client_class, got %q", c.ClientClass)
	}
}

func TestConfigDoc_SetupLogging(t *testing.T) {
	defer common.SetDefaultLogger(common.GetLogger())
	defer common.EnableMasking(true)

	var buf bytes.Buffer
	mask := false
	c := ConfigDoc{Logging: LoggingConfig{Level: "debug", Format: "json", MaskSensitive: &mask}}
	if err := c.SetupLogging(&buf); err != nil {
		t.Fatalf("SetupLogging: %v", err)
	}
	if common.IsMaskingEnabled() {
		t.Fatalf("expected global masking disabled")
	}
	if !strings.Contains(buf.String(), `"msg":"logging configured"`) {
		t.Fatalf("expected json log line, got %q", buf.String())
	}
}

func TestConfigDoc_SetupLogging_Invalid(t *testing.T) {
	defer common.SetDefaultLogger(common.GetLogger())
	for _, c := range []ConfigDoc{
		{Logging: LoggingConfig{Level: "loud"}},
		{Logging: LoggingConfig{Format: "xml"}},
	} {
		if err := c.SetupLogging(&bytes.Buffer{}); err == nil {
			t.Fatalf("expected error for %+v", c.Logging)
		}
	}
}
