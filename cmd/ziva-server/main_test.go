package main

import "testing"

func TestMigrateCmd_Subcommands(t *testing.T) {
	cmd := migrateCmd()
	want := map[string]bool{"up": false, "status": false, "down": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("migrate is missing the %q subcommand", name)
		}
	}
}

func TestTokenCmd_Flags(t *testing.T) {
	cmd := tokenCmd()
	for _, name := range []string{"subject", "roles", "ttl"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("token is missing the --%s flag", name)
		}
	}
}
