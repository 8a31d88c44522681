package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/loomlang/loom/cache"
	"github.com/loomlang/loom/cache/bolt"
	"github.com/loomlang/loom/cache/noop"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

func main() {
	var (
		gramDir  = flag.String("g", "grammars", "grammar directory")
		dbFile   = flag.String("d", "", "compile-cache BoltDB filename (empty: in-memory cache)")
		httpAddr = flag.String("h", ":8090", "HTTP/WebSocket listen address")
		schedule = flag.String("cron", "* * * * *", "cron schedule for rescanning the grammar directory")

		broker = flag.String("mqtt-broker", "", "MQTT broker URL (empty: MQTT publish disabled)")
		topic  = flag.String("mqtt-topic", "gramd/compiled", "MQTT topic for compile summaries")

		verbose = flag.Bool("v", false, "trace compile activity")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var c cache.Cache
	if *dbFile != "" {
		b, err := bolt.NewStorage(*dbFile)
		if err != nil {
			log.Fatal(err)
		}
		if err := b.Open(); err != nil {
			log.Fatal(err)
		}
		defer b.Close()
		c = b
	} else {
		c = noop.NewStorage()
	}

	s := NewService(*gramDir, c)
	s.Tracing = *verbose

	if *broker != "" {
		opts := mqtt.NewClientOptions().AddBroker(*broker).SetClientID("gramd")
		client := mqtt.NewClient(opts)
		if tok := client.Connect(); tok.Wait() && tok.Error() != nil {
			log.Fatal(tok.Error())
		}
		s.MQTT = client
		s.Topic = *topic
		defer client.Disconnect(250)
	}

	go s.wsServer(ctx)
	go func() {
		if err := s.watch(ctx, *schedule); err != nil {
			log.Printf("gramd: watch error: %v", err)
		}
	}()

	go func() {
		log.Printf("gramd: HTTP/WS service on %s", *httpAddr)
		if err := s.httpServer(ctx, *httpAddr); err != nil {
			log.Fatal(err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	select {
	case <-sig:
	case <-ctx.Done():
	}
}
