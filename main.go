package main

import (
	"log"
	"os"
	"runtime"
	"runtime/debug"
	"strconv"

	"github.com/joho/godotenv"

	"danmaku-player/internal/cli"
)

func main() {
	// SDL and the UI loop must stay on the main OS thread
	runtime.LockOSThread()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	setupMemoryLimit()

	if err := cli.NewRootCommand().Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// setupMemoryLimit applies PLAYER_MEMORY_LIMIT_MB for small boards where
// decoded frames pile up faster than the default GC pacing frees them.
func setupMemoryLimit() {
	raw := os.Getenv("PLAYER_MEMORY_LIMIT_MB")
	if raw == "" {
		return
	}
	mb, err := strconv.Atoi(raw)
	if err != nil || mb <= 0 {
		log.Printf("Warning: ignoring PLAYER_MEMORY_LIMIT_MB=%q", raw)
		return
	}
	debug.SetMemoryLimit(int64(mb) << 20)
	log.Printf("Memory limit set to %d MiB", mb)
}
