package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"tinyao/host/serial"
)

var (
	device = flag.String("port", "/dev/ttyACM0", "Serial device path")
	baud   = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
)

const reconnectDelay = 2 * time.Second

func main() {
	flag.Parse()

	zl, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer zl.Sync()
	logger := zl.Sugar().Named("aomon")

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	// the board resets on flash and USB CDC drops with it, so the
	// monitor reconnects forever instead of exiting
	for {
		port, err := serial.Open(cfg)
		if err != nil {
			logger.Warnw("Open failed, retrying", "device", cfg.Device, "error", err)
			time.Sleep(reconnectDelay)
			continue
		}
		logger.Infow("Connected", "device", cfg.Device, "baud", cfg.Baud)

		scanner := bufio.NewScanner(port)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			logger.Infow("Board", "line", line)
		}
		if err := scanner.Err(); err != nil {
			logger.Warnw("Link lost", "error", err)
		} else {
			logger.Warn("Link closed")
		}
		port.Close()
		time.Sleep(reconnectDelay)
	}
}
