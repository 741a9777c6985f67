package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/zackiles/terminal-emulator/internal/realtime"
	"github.com/zackiles/terminal-emulator/internal/source"
	"github.com/zackiles/terminal-emulator/internal/terminal"

	"github.com/joho/godotenv"
)

// Config holds configuration, loaded from the environment (optionally
// seeded from a .env file).
type Config struct {
	User       string
	WorkDir    string
	ScriptFile string // when set, input comes from this file instead of stdin
	Port       int    // when non-zero, the realtime bridge is served here
}

func loadConfig() Config {
	cfg := Config{}

	if v := os.Getenv("TERM_USER"); v != "" {
		cfg.User = v
	}
	if v := os.Getenv("TERM_WORKDIR"); v != "" {
		cfg.WorkDir = v
	}
	if v := os.Getenv("SCRIPT_FILE"); v != "" {
		cfg.ScriptFile = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}

	return cfg
}

// runner is a line source that also drives a blocking read loop.
type runner interface {
	terminal.LineSource
	Run() error
}

func main() {
	godotenv.Load()
	cfg := loadConfig()

	var src runner
	if cfg.ScriptFile != "" {
		fileSrc, err := source.NewFile(cfg.ScriptFile)
		if err != nil {
			log.Fatalf("script file %s: %v", cfg.ScriptFile, err)
		}
		src = fileSrc
	} else {
		src = source.NewReader(os.Stdin)
	}

	// The handler closes over the session so the demo commands can
	// exercise the controller operations.
	var sess *terminal.Session
	handler := func(line string) terminal.Result {
		switch strings.TrimSpace(line) {
		case "":
			return terminal.Empty()
		case "exit":
			sess.Exit()
			return terminal.Empty()
		case "clear":
			sess.ClearTerminal()
			return terminal.Empty()
		case "fail":
			return terminal.Failure("This is an error message.")
		case "info":
			info := sess.Snapshot()
			return terminal.Structured(map[string]any{
				"id":               info.ID,
				"state":            string(info.State),
				"user":             info.User,
				"workingDirectory": info.WorkingDirectory,
				"createdAt":        info.CreatedAt,
			})
		default:
			return terminal.Text("You typed: " + line)
		}
	}

	sess = terminal.NewSession(terminal.Options{
		User:             cfg.User,
		WorkingDirectory: cfg.WorkDir,
		Handler:          handler,
		Source:           src,
	})

	// Interrupts redraw the prompt with the exit hint; Ctrl+D (EOF on
	// the line source) ends the session.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			sess.HandleInterrupt()
		}
	}()

	if cfg.Port != 0 {
		srv := realtime.New(sess)
		addr := fmt.Sprintf(":%d", cfg.Port)
		go func() {
			log.Printf("realtime bridge on http://localhost%s", addr)
			if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
				log.Printf("realtime bridge error: %v", err)
			}
		}()
	}

	sess.Start()
	if err := src.Run(); err != nil {
		log.Printf("line source error: %v", err)
	}
}
