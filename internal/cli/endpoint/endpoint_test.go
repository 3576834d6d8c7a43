package endpoint

import "testing"

func TestResolve(t *testing.T) {
	device := Environment{Platform: PlatformApp, Mode: ModeProduction, BaseURL: "http://192.168.31.84:8086/"}
	localWeb := Environment{Platform: PlatformH5, Mode: ModeDevelopment, BaseURL: "http://192.168.31.84:8086"}
	webProd := Environment{Platform: PlatformH5, Mode: ModeProduction, BaseURL: "https://notes.example.com"}

	tests := []struct {
		name string
		env  Environment
		raw  string
		want string
	}{
		{"relative path on device", device, "/notes", "http://192.168.31.84:8086/api/notes"},
		{"missing leading slash", device, "notes", "http://192.168.31.84:8086/api/notes"},
		{"already prefixed", device, "/api/auth/login", "http://192.168.31.84:8086/api/auth/login"},
		{"prefix must match a whole segment", device, "/apis", "http://192.168.31.84:8086/api/apis"},
		{"query string kept", device, "/notes?archived=true", "http://192.168.31.84:8086/api/notes?archived=true"},
		{"absolute URL untouched", device, "https://cdn.example.com/poster.jpg", "https://cdn.example.com/poster.jpg"},
		{"uppercase scheme untouched", device, "HTTP://example.com/x", "HTTP://example.com/x"},
		{"local web dev uses empty base", localWeb, "/notes", "/api/notes"},
		{"web production uses base", webProd, "/notes/1", "https://notes.example.com/api/notes/1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.env.Resolve(tt.raw); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestResolve_CustomPrefix(t *testing.T) {
	env := Environment{Platform: PlatformApp, Mode: ModeProduction, BaseURL: "http://host:1", APIPrefix: "v2/"}
	if got := env.Resolve("/movies"); got != "http://host:1/v2/movies" {
		t.Errorf("Resolve() = %q", got)
	}
}

func TestDispatchURL_LocalWebDev(t *testing.T) {
	env := Environment{Platform: PlatformH5, Mode: ModeDevelopment, PageOrigin: "http://localhost:3000"}

	u, err := env.DispatchURL("/notes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.String() != "http://localhost:3000/api/notes" {
		t.Errorf("DispatchURL() = %q", u.String())
	}

	env.PageOrigin = ""
	if _, err := env.DispatchURL("/notes"); err == nil {
		t.Error("expected error without page origin")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     Environment
		wantErr bool
	}{
		{"local web dev without base", Environment{Platform: PlatformH5, Mode: ModeDevelopment}, false},
		{"device needs base", Environment{Platform: PlatformApp, Mode: ModeDevelopment}, true},
		{"device with base", Environment{Platform: PlatformApp, Mode: ModeProduction, BaseURL: "http://h:1"}, false},
		{"bad platform", Environment{Platform: "desktop", Mode: ModeProduction, BaseURL: "http://h:1"}, true},
		{"bad mode", Environment{Platform: PlatformApp, Mode: "staging", BaseURL: "http://h:1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.env.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWithOverrides(t *testing.T) {
	t.Setenv(EnvPlatform, "H5")
	t.Setenv(EnvMode, "development")

	env := Environment{Platform: PlatformApp, Mode: ModeProduction, BaseURL: "http://h:1"}.WithOverrides()
	if !env.IsLocalWebDev() {
		t.Errorf("expected overrides to select local web dev, got %+v", env)
	}
	if env.ResolvedBaseURL() != "" {
		t.Errorf("ResolvedBaseURL() = %q, want empty", env.ResolvedBaseURL())
	}
}
