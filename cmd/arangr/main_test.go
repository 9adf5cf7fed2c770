package main

import (
	"reflect"
	"testing"

	"github.com/arangr/arangr/internal/config"
	"github.com/arangr/arangr/internal/preview"
)

func TestLimitsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Preview.MaxTextBytes = 1024
	cfg.Preview.MaxPDFPages = 3
	cfg.Preview.MaxImageDim = 800

	limits := limitsFromConfig(cfg)

	if limits.MaxTextBytes != 1024 {
		t.Errorf("MaxTextBytes = %d, want 1024", limits.MaxTextBytes)
	}
	if limits.MaxPDFPages != 3 {
		t.Errorf("MaxPDFPages = %d, want 3", limits.MaxPDFPages)
	}
	if limits.MaxImageDim != 800 {
		t.Errorf("MaxImageDim = %d, want 800", limits.MaxImageDim)
	}
}

func TestLimitsFromConfigZeroFallsBackToDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Preview.MaxTextBytes = 0
	cfg.Preview.MaxPDFPages = 0
	cfg.Preview.MaxImageDim = 0

	limits := limitsFromConfig(cfg)
	defaults := preview.DefaultLimits()

	if limits != defaults {
		t.Errorf("limits = %+v, want defaults %+v", limits, defaults)
	}
}

func TestSortedMetaKeys(t *testing.T) {
	m := map[string]string{
		"width":  "640",
		"format": "png",
		"height": "480",
	}
	got := sortedMetaKeys(m)
	want := []string{"format", "height", "width"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sortedMetaKeys() = %v, want %v", got, want)
	}
}

func TestSortedMetaKeysEmpty(t *testing.T) {
	if got := sortedMetaKeys(nil); len(got) != 0 {
		t.Errorf("sortedMetaKeys(nil) = %v, want empty", got)
	}
}
