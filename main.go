// Package main implements sdrx, a software defined narrow band AM/FM
// receiver for R820T(2)/R860 based RTL-SDR and Airspy Mini/R2 dongles.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sdrxgo/sdrx/internal/config"
	"github.com/sdrxgo/sdrx/internal/device"
	"github.com/sdrxgo/sdrx/internal/logx"
)

func main() {
	log := logx.New("main")

	settings, err := config.Parse(os.Args[1:])
	if errors.Is(err, config.ErrListDevices) {
		listDevices()
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	dev, err := openDevice(settings)
	if err != nil {
		log.Errorf("opening device: %s", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipe, err := newPipeline(ctx, settings, dev)
	if err != nil {
		log.Errorf("building pipeline: %s", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGPIPE)
	go func() {
		sig := <-sigCh
		log.Infof("received %s, shutting down", sig)
		cancel()
	}()

	log.Infof("tuned to %d Hz, %s MS/s, %d channel(s)", settings.TunerFq, settings.Rate, len(settings.Channels))
	if err := pipe.Run(); err != nil {
		log.Errorf("pipeline exited with error: %s", err)
		os.Exit(1)
	}
}

// openDevice picks the first available RTL-SDR device, or the one matching
// settings.DeviceSerial if given. Airspy support exists in internal/device
// behind the injectable AirspyVendor seam, but no concrete vendor binding
// is wired here: see DESIGN.md.
func openDevice(settings *config.Settings) (device.Manager, error) {
	infos := device.List()

	serial := settings.DeviceSerial
	if serial == "" {
		for _, info := range infos {
			if info.Type == device.TypeRTL && info.Available {
				serial = info.Serial
				break
			}
		}
	}
	if serial == "" {
		return nil, fmt.Errorf("no available RTL-SDR device found")
	}

	return device.NewRTL(serial, settings.Rate.Hz(), settings.FqCorrPPM), nil
}

func listDevices() {
	infos := device.List()
	if len(infos) == 0 {
		fmt.Println("No devices found.")
		return
	}
	for _, info := range infos {
		state := "In use"
		if info.Available {
			state = "Available"
		}
		fmt.Printf("%-20s %-8s %-10s %s\n", info.Serial, info.Type, state, info.Description)
	}
}
