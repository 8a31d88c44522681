package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// wsServer streams compile Results to any client as grammars are
// (re)compiled, mirroring cmd/mcrew/service-ws.go's firehose
// connection shape: one goroutine reads inbound compile requests,
// one writes outbound results, both torn down together.
func (s *Service) wsServer(ctx context.Context) {
	upgrader := websocket.Upgrader{}

	http.HandleFunc("/ws/compile", func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("gramd: ws upgrade error", err)
			return
		}
		defer c.Close()

		id := c.RemoteAddr().String()
		results := s.subscribe(id)
		defer s.unsubscribe(id)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				select {
				case <-ctx.Done():
					return
				case r, ok := <-results:
					if !ok {
						return
					}
					js, err := json.Marshal(r)
					if err != nil {
						log.Printf("gramd: ws marshal error %v", err)
						continue
					}
					if err := c.WriteMessage(websocket.TextMessage, js); err != nil {
						log.Println("gramd: ws write error", err)
						return
					}
				}
			}
		}()

		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				break
			}
			var req struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(message, &req); err != nil || req.Name == "" {
				continue
			}
			s.recompile(ctx, req.Name)
		}
		<-done
	})
}
