// Command demoserver runs the demo audit API standalone. It speaks the same
// protocol as the real backend, so seoaudit can be pointed at it.
// Usage: go run ./cmd/demoserver [port]
// Default port: 8000
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/raysh454/seoaudit/internal/demo"
	"github.com/raysh454/seoaudit/internal/logging"
)

func main() {
	cfg := demo.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Addr = fmt.Sprintf(":%d", port)
	}

	fmt.Println("===========================================")
	fmt.Println("   seoaudit demo audit API")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Printf("Audit API base: http://localhost%s%s\n", cfg.Addr, demo.APIPrefix)
	fmt.Println()
	fmt.Println("Jobs report pending, then running, then a generated result.")
	fmt.Println("Submit a URL containing \"fail\" to see a failed job.")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := demo.NewServer(cfg, logging.NewStdoutLogger("demoserver"))
	if err := server.ListenAndServe(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
