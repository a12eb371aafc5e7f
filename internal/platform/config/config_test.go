package config

import (
	"testing"
	"time"

	kit "topcrash/internal/platform/testkit"
)

func TestPrefixComposition(t *testing.T) {
	t.Setenv("CORE_API_PORT", "4100")

	cfg := New().Prefix("CORE_").Prefix("API_")
	if got := cfg.MustString("PORT"); got != "4100" {
		t.Fatalf("PORT = %q", got)
	}
}

func TestMustString_PanicsWhenMissing(t *testing.T) {
	kit.MustPanic(t, func() { New().MustString("TOPCRASH_TEST_NO_SUCH_KEY") })
}

func TestMustURL(t *testing.T) {
	t.Setenv("TC_URL", "https://crash-stats.mozilla.org")
	u := New().Prefix("TC_").MustURL("URL")
	if u.Host != "crash-stats.mozilla.org" {
		t.Fatalf("host = %q", u.Host)
	}

	t.Setenv("TC_URL", "not a url")
	kit.MustPanic(t, func() { New().Prefix("TC_").MustURL("URL") })
}

func TestMayString(t *testing.T) {
	cfg := New().Prefix("TC_")
	if got := cfg.MayString("MISSING", "fallback"); got != "fallback" {
		t.Fatalf("got %q", got)
	}
	t.Setenv("TC_NAME", "  padded  ")
	if got := cfg.MayString("NAME", "x"); got != "padded" {
		t.Fatalf("got %q", got)
	}
}

func TestMayInt(t *testing.T) {
	cfg := New().Prefix("TC_")
	if got := cfg.MayInt("MISSING", 7); got != 7 {
		t.Fatalf("got %d", got)
	}
	t.Setenv("TC_N", "42")
	if got := cfg.MayInt("N", 7); got != 42 {
		t.Fatalf("got %d", got)
	}
	t.Setenv("TC_N", "forty-two")
	if got := cfg.MayInt("N", 7); got != 7 {
		t.Fatalf("invalid value should fall back, got %d", got)
	}
}

func TestMayBool(t *testing.T) {
	cfg := New().Prefix("TC_")
	if cfg.MayBool("MISSING", true) != true {
		t.Fatal("missing should use default")
	}
	t.Setenv("TC_B", "false")
	if cfg.MayBool("B", true) != false {
		t.Fatal("explicit false ignored")
	}
	t.Setenv("TC_B", "nope")
	if cfg.MayBool("B", true) != true {
		t.Fatal("invalid value should fall back")
	}
}

func TestMayDuration(t *testing.T) {
	cfg := New().Prefix("TC_")
	if got := cfg.MayDuration("MISSING", time.Minute); got != time.Minute {
		t.Fatalf("got %v", got)
	}
	t.Setenv("TC_D", "30s")
	if got := cfg.MayDuration("D", time.Minute); got != 30*time.Second {
		t.Fatalf("got %v", got)
	}
	t.Setenv("TC_D", "soonish")
	if got := cfg.MayDuration("D", time.Minute); got != time.Minute {
		t.Fatalf("invalid value should fall back, got %v", got)
	}
}

func TestMayCSV(t *testing.T) {
	cfg := New().Prefix("TC_")
	def := []string{"a"}

	if got := cfg.MayCSV("MISSING", def); len(got) != 1 || got[0] != "a" {
		t.Fatalf("got %v", got)
	}

	t.Setenv("TC_LIST", "beta, release ,,nightly")
	got := cfg.MayCSV("LIST", def)
	if len(got) != 3 || got[0] != "beta" || got[1] != "release" || got[2] != "nightly" {
		t.Fatalf("got %v", got)
	}

	t.Setenv("TC_LIST", " , ,")
	if got := cfg.MayCSV("LIST", def); len(got) != 1 || got[0] != "a" {
		t.Fatalf("all-blank value should fall back, got %v", got)
	}
}
