package visualization

import (
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantArgs []string
		wantErr  bool
	}{
		{"linux", []string{"xdg-open", "http://localhost:1"}, false},
		{"darwin", []string{"open", "http://localhost:1"}, false},
		{"windows", []string{"cmd", "/c", "start", "http://localhost:1"}, false},
		{"plan9", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cmd, err := browserCommand(tt.goos, "http://localhost:1")
			if (err != nil) != tt.wantErr {
				t.Fatalf("browserCommand(%q) error = %v, wantErr %v", tt.goos, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(cmd.Args) != len(tt.wantArgs) {
				t.Fatalf("Args = %v, want %v", cmd.Args, tt.wantArgs)
			}
			for i := range tt.wantArgs {
				if cmd.Args[i] != tt.wantArgs[i] {
					t.Errorf("Args[%d] = %q, want %q", i, cmd.Args[i], tt.wantArgs[i])
				}
			}
		})
	}
}
