package config

import "time"

// Default locations of the rule and mapping directories, matching the
// layout the SMACK userspace tools have always used.
const (
	DefaultRulesDir = "/etc/smack/accesses.d"
	DefaultCipsoDir = "/etc/smack/cipso.d"
)

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Smackfs: SmackfsConfig{
			Path: "",
		},
		Rules: RulesConfig{
			Dir:           DefaultRulesDir,
			WatchDebounce: Duration{200 * time.Millisecond},
		},
		Cipso: CipsoConfig{
			Dir: DefaultCipsoDir,
		},
		Logging: LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}
