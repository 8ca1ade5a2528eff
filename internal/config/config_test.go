package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.CDPAddress != "127.0.0.1" {
		t.Fatalf("CDPAddress = %q; want 127.0.0.1", cfg.CDPAddress)
	}
	if cfg.RenderTimeoutMS != 30000 {
		t.Fatalf("RenderTimeoutMS = %d; want 30000", cfg.RenderTimeoutMS)
	}
	if cfg.CDPURL() != "http://127.0.0.1:9224" {
		t.Fatalf("CDPURL() = %q; want http://127.0.0.1:9224", cfg.CDPURL())
	}
}

func TestLoadOverridesAndClamp(t *testing.T) {
	t.Setenv("BOKEHRENDER_CDP_PORT", "9333")
	t.Setenv("BOKEHRENDER_RENDER_TIMEOUT_MS", "10")
	t.Setenv("BOKEHRENDER_PORT_CANDIDATES", "127.0.0.1:9001, 127.0.0.1:9002")
	t.Setenv("BOKEHRENDER_LAUNCH_BROWSER", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.CDPPort != 9333 {
		t.Fatalf("CDPPort = %d; want 9333", cfg.CDPPort)
	}
	if cfg.RenderTimeoutMS != 1000 {
		t.Fatalf("RenderTimeoutMS = %d; want clamp to 1000", cfg.RenderTimeoutMS)
	}
	if len(cfg.PortCandidates) != 2 || cfg.PortCandidates[1] != "127.0.0.1:9002" {
		t.Fatalf("PortCandidates = %v; want two trimmed entries", cfg.PortCandidates)
	}
	if cfg.LaunchBrowser {
		t.Fatalf("LaunchBrowser = true; want false")
	}
}
