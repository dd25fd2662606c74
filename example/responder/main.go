package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/cooldogedev/serialrw"
)

func main() {
	name := flag.String("port", "", "serial device, e.g. /dev/ttyUSB0 or COM4")
	baud := flag.Int("baud", 9600, "baud rate")
	queriesPath := flag.String("queries", "Queries.json", "request/response table")
	flag.Parse()

	queries, err := serialrw.ReadQueries(*queriesPath)
	if err != nil {
		log.Fatal(err)
	}

	port, err := serialrw.Open(*name, serialrw.Config{BaudRate: *baud})
	if err != nil {
		log.Fatal(err)
	}
	defer port.Close()

	responder, err := serialrw.NewResponder(port, queries)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	log.Printf("Answering %d queries on %s", len(queries), port.Name())
	if err := responder.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
	log.Printf("Matched %d requests", responder.Matched())
}
