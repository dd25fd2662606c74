package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/cooldogedev/serialrw"
	"github.com/cooldogedev/serialrw/internal/capture"
)

func main() {
	name := flag.String("port", "", "serial device, e.g. /dev/ttyUSB0 or COM4")
	baud := flag.Int("baud", 9600, "baud rate")
	interval := flag.Duration("interval", time.Second, "time between writes")
	payload := flag.String("payload", "Test it.", "data written on every tick")
	list := flag.Bool("list", false, "list serial ports and exit")
	capturePath := flag.String("capture", "", "record line traffic to this file")
	captureFormat := flag.String("capture-format", "msgpack", "capture encoding: msgpack or cbor")
	flag.Parse()

	if *list {
		ports, err := serialrw.ListPorts()
		if err != nil {
			log.Fatal(err)
		}
		for _, port := range ports {
			log.Println(port)
		}
		return
	}

	cfg := serialrw.Config{BaudRate: *baud, Pace: true}
	if *capturePath != "" {
		format, err := capture.ParseFormat(*captureFormat)
		if err != nil {
			log.Fatal(err)
		}
		f, err := os.Create(*capturePath)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		cfg.Capture = f
		cfg.CaptureFormat = format
	}

	port, err := serialrw.Open(*name, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer port.Close()

	generator, err := serialrw.NewGenerator(port, *interval, []byte(*payload))
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := port.ReadContext(ctx, buf)
			if err != nil {
				return
			}
			log.Printf("Received: %q", buf[:n])
		}
	}()

	log.Printf("Writing %q to %s every %s", *payload, port.Name(), *interval)
	if err := generator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
	log.Printf("Sent %d payloads, average write %s", generator.Sent(), generator.Latency())
}
