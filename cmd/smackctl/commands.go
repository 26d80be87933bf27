package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/smack-team/smack-go/internal/cipso"
	"github.com/smack-team/smack-go/internal/config"
	"github.com/smack-team/smack-go/internal/logging"
	"github.com/smack-team/smack-go/internal/rules"
	"github.com/smack-team/smack-go/internal/smackfs"
)

// loadConfig loads the configuration file, falling back to defaults
// when the default path has no file. An explicitly given path must
// exist.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(config.DefaultPath)
}

// newMount builds the control surface handle from the config and an
// optional command line override.
func newMount(cfg *config.Config, override string) *smackfs.Mount {
	path := cfg.Smackfs.Path
	if override != "" {
		path = override
	}
	if path != "" {
		return smackfs.NewAt(path)
	}
	return smackfs.New()
}

// newLogger builds the logger from the config and an optional level
// override.
func newLogger(cfg *config.Config, level string) logging.Logger {
	lc := cfg.Logging
	if level != "" {
		lc.Level = level
	}
	return logging.New(logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: lc.Output,
	})
}

// applyCmd handles the apply command.
func applyCmd(args []string) int {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	configPath := fs.String("config", "", "Path to configuration file")
	rulesDir := fs.String("rules", "", "Rules directory (overrides config)")
	cipsoDir := fs.String("cipso", "", "CIPSO directory (overrides config)")
	smackfsPath := fs.String("smackfs", "", "Control surface path (overrides discovery)")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *help || *helpLong {
		printApplyUsage(os.Stdout)
		return 0
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *rulesDir != "" {
		cfg.Rules.Dir = *rulesDir
	}
	if *cipsoDir != "" {
		cfg.Cipso.Dir = *cipsoDir
	}

	mount := newMount(cfg, *smackfsPath)
	defer mount.Close()

	if dirExists(cfg.Rules.Dir) {
		a, err := rules.LoadDir(cfg.Rules.Dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if err := a.Apply(mount); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Printf("Applied %d rules (%d labels) from %s\n",
			a.RuleCount(), a.LabelCount(), cfg.Rules.Dir)
	}

	if dirExists(cfg.Cipso.Dir) {
		t, err := cipso.LoadDir(cfg.Cipso.Dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if t.Len() > 0 {
			if err := t.Apply(mount); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return 1
			}
			fmt.Printf("Applied %d CIPSO mappings from %s\n", t.Len(), cfg.Cipso.Dir)
		}
	}

	return 0
}

// clearCmd handles the clear command.
func clearCmd(args []string) int {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	configPath := fs.String("config", "", "Path to configuration file")
	rulesDir := fs.String("rules", "", "Rules directory (overrides config)")
	smackfsPath := fs.String("smackfs", "", "Control surface path (overrides discovery)")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *help || *helpLong {
		printClearUsage(os.Stdout)
		return 0
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *rulesDir != "" {
		cfg.Rules.Dir = *rulesDir
	}

	mount := newMount(cfg, *smackfsPath)
	defer mount.Close()

	a, err := rules.LoadDir(cfg.Rules.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := a.Clear(mount); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("Cleared %d rules from %s\n", a.RuleCount(), cfg.Rules.Dir)
	return 0
}

// statusCmd handles the status command.
func statusCmd(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	configPath := fs.String("config", "", "Path to configuration file")
	smackfsPath := fs.String("smackfs", "", "Control surface path (overrides discovery)")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *help || *helpLong {
		printStatusUsage(os.Stdout)
		return 0
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	mount := newMount(cfg, *smackfsPath)
	defer mount.Close()

	if path, err := mount.Path(); err != nil {
		fmt.Printf("Control surface: not available (%v)\n", err)
	} else {
		fmt.Printf("Control surface: %s\n", path)
	}

	if self, err := smackfs.SelfLabel(); err == nil {
		fmt.Printf("Own label:       %s\n", self)
	}

	if dirExists(cfg.Rules.Dir) {
		if a, err := rules.LoadDir(cfg.Rules.Dir); err != nil {
			fmt.Printf("Rules:           %s: %v\n", cfg.Rules.Dir, err)
		} else {
			fmt.Printf("Rules:           %d rules, %d labels in %s\n",
				a.RuleCount(), a.LabelCount(), cfg.Rules.Dir)
		}
	} else {
		fmt.Printf("Rules:           %s does not exist\n", cfg.Rules.Dir)
	}

	if dirExists(cfg.Cipso.Dir) {
		if t, err := cipso.LoadDir(cfg.Cipso.Dir); err != nil {
			fmt.Printf("CIPSO:           %s: %v\n", cfg.Cipso.Dir, err)
		} else {
			fmt.Printf("CIPSO:           %d mappings in %s\n", t.Len(), cfg.Cipso.Dir)
		}
	} else {
		fmt.Printf("CIPSO:           %s does not exist\n", cfg.Cipso.Dir)
	}

	return 0
}

// loadCmd handles the load command.
func loadCmd(args []string) int {
	fs := flag.NewFlagSet("load", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	smackfsPath := fs.String("smackfs", "", "Control surface path (overrides discovery)")
	clear := fs.Bool("clear", false, "Revoke the rules instead of applying them")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *help || *helpLong {
		printLoadUsage(os.Stdout)
		return 0
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one rule file is required ('-' for stdin)")
		return 1
	}

	a := rules.New()
	for _, name := range fs.Args() {
		if name == "-" {
			if err := a.AddFromReader(bufio.NewReader(os.Stdin)); err != nil {
				fmt.Fprintf(os.Stderr, "Error: stdin: %v\n", err)
				return 1
			}
			continue
		}
		f, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		err = a.AddFromReader(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", name, err)
			return 1
		}
	}

	mount := newMount(config.Default(), *smackfsPath)
	defer mount.Close()

	if *clear {
		if err := a.Clear(mount); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Printf("Cleared %d rules\n", a.RuleCount())
		return 0
	}

	if err := a.Apply(mount); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Applied %d rules (%d labels)\n", a.RuleCount(), a.LabelCount())
	return 0
}

// cipsoCmd handles the cipso command.
func cipsoCmd(args []string) int {
	fs := flag.NewFlagSet("cipso", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	smackfsPath := fs.String("smackfs", "", "Control surface path (overrides discovery)")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *help || *helpLong {
		printCipsoUsage(os.Stdout)
		return 0
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one mapping file is required ('-' for stdin)")
		return 1
	}

	t := cipso.NewTable()
	for _, name := range fs.Args() {
		if name == "-" {
			if err := t.AddFromReader(bufio.NewReader(os.Stdin)); err != nil {
				fmt.Fprintf(os.Stderr, "Error: stdin: %v\n", err)
				return 1
			}
			continue
		}
		f, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		err = t.AddFromReader(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", name, err)
			return 1
		}
	}

	mount := newMount(config.Default(), *smackfsPath)
	defer mount.Close()

	if err := t.Apply(mount); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Applied %d CIPSO mappings\n", t.Len())
	return 0
}

// accessCmd handles the access command.
func accessCmd(args []string) int {
	fs := flag.NewFlagSet("access", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	smackfsPath := fs.String("smackfs", "", "Control surface path (overrides discovery)")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *help || *helpLong {
		printAccessUsage(os.Stdout)
		return 0
	}

	if fs.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "Error: access requires <subject> <object> <access>")
		return 1
	}

	mount := newMount(config.Default(), *smackfsPath)
	defer mount.Close()

	granted, err := rules.HaveAccess(mount, fs.Arg(0), fs.Arg(1), fs.Arg(2))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if granted {
		fmt.Println("yes")
		return 0
	}
	fmt.Println("no")
	return 0
}

// revokeCmd handles the revoke command.
func revokeCmd(args []string) int {
	fs := flag.NewFlagSet("revoke", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	smackfsPath := fs.String("smackfs", "", "Control surface path (overrides discovery)")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *help || *helpLong {
		printRevokeUsage(os.Stdout)
		return 0
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: revoke requires exactly one subject label")
		return 1
	}

	mount := newMount(config.Default(), *smackfsPath)
	defer mount.Close()

	if err := smackfs.RevokeSubject(mount, fs.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Revoked all rules for subject %s\n", fs.Arg(0))
	return 0
}

// watchCmd handles the watch command.
func watchCmd(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	configPath := fs.String("config", "", "Path to configuration file")
	rulesDir := fs.String("rules", "", "Rules directory (overrides config)")
	smackfsPath := fs.String("smackfs", "", "Control surface path (overrides discovery)")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *help || *helpLong {
		printWatchUsage(os.Stdout)
		return 0
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *rulesDir != "" {
		cfg.Rules.Dir = *rulesDir
	}

	logger := newLogger(cfg, *logLevel)
	mount := newMount(cfg, *smackfsPath)
	defer mount.Close()

	manager, err := rules.NewManager(&rules.ManagerConfig{
		Dir:    cfg.Rules.Dir,
		Mount:  mount,
		Logger: logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := manager.Apply(); err != nil {
		logger.Error("initial apply failed", "error", err)
	}

	watcher, err := rules.NewDirWatcher(&rules.WatcherConfig{
		Manager:  manager,
		Logger:   logger,
		Debounce: cfg.Rules.WatchDebounce.Duration,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	watcher.Start()
	defer watcher.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	return 0
}

// dirExists reports whether path exists and is a directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
