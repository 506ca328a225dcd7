package awsx

import (
	"context"
	"testing"

	"github.com/partshub/internal/config"
)

func TestLoadConfigAppliesRegionAndEndpoint(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	cfg, err := LoadConfig(context.Background(), config.AWSConfig{Region: "eu-west-1", Endpoint: "http://localhost:4566"})
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.Region != "eu-west-1" {
		t.Fatalf("expected region eu-west-1, got %s", cfg.Region)
	}
	if cfg.BaseEndpoint == nil || *cfg.BaseEndpoint != "http://localhost:4566" {
		t.Fatalf("expected endpoint override, got %v", cfg.BaseEndpoint)
	}
}

func TestLoadConfigDefaultsRegion(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	cfg, err := LoadConfig(context.Background(), config.AWSConfig{})
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.Region != defaultRegion {
		t.Fatalf("expected default region, got %s", cfg.Region)
	}
	if cfg.BaseEndpoint != nil {
		t.Fatalf("expected no endpoint override")
	}
}

func TestNewClientsDisabled(t *testing.T) {
	clients, err := NewClients(context.Background(), config.AWSConfig{Enabled: false})
	if err != nil || clients != nil {
		t.Fatalf("expected nil clients when disabled, got %v %v", clients, err)
	}
}
