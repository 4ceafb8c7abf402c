package main

import "testing"

// The root command runs convert directly, so both commands must carry
// the full convert flag set.
func TestConvertFlagsRegisteredOnRoot(t *testing.T) {
	names := []string{
		"output", "heading-style", "code-style", "link-style", "bullet",
		"base-url", "span-fill", "preserve-whitespace", "chunk-size",
		"group-budget", "cache-capacity", "stream",
	}
	for _, name := range names {
		if rootCmd.Flags().Lookup(name) == nil {
			t.Errorf("root command missing flag %q", name)
		}
		if convertCmd.Flags().Lookup(name) == nil {
			t.Errorf("convert command missing flag %q", name)
		}
	}
}

func TestFlagOptions_RootCommandBullet(t *testing.T) {
	if err := rootCmd.Flags().Set("bullet", "*"); err != nil {
		t.Fatalf("set bullet: %v", err)
	}
	defer rootCmd.Flags().Set("bullet", "-")

	opts, err := flagOptions(rootCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.BulletMarker != '*' {
		t.Errorf("expected bullet %q, got %q", '*', opts.BulletMarker)
	}
}
