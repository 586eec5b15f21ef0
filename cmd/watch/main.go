// Command watch tails the realtime change feed, mostly for debugging
// subscriptions from a terminal.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"fieldjobs/internal/logging"
	"fieldjobs/internal/realtime"
)

func main() {
	addr := flag.String("url", "http://localhost:8080/ws", "websocket endpoint")
	token := flag.String("token", os.Getenv("FIELDJOBS_TOKEN"), "access token")
	flag.Parse()

	log, err := logging.New("info", "text")
	if err != nil {
		logrus.Fatal(err)
	}
	if *token == "" {
		log.Fatal("a token is required (-token or FIELDJOBS_TOKEN)")
	}
	topics := flag.Args()
	if len(topics) == 0 {
		log.Fatal("usage: watch [-url URL] [-token TOKEN] topic...")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := realtime.Dial(ctx, *addr, *token, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	for _, t := range topics {
		if err := client.Subscribe(t); err != nil {
			log.Fatalf("subscribe %s: %v", t, err)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-client.Messages():
			if !ok {
				log.Warn("connection closed")
				return
			}
			if msg.Type == realtime.MessageError {
				log.WithFields(logrus.Fields{"code": msg.Code, "topic": msg.Topic}).Warn(msg.Message)
				continue
			}
			_ = enc.Encode(msg)
		}
	}
}
