package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// httpServer exposes POST /compile?name=<grammar> (mirroring
// cmd/mcrew/main.go's single-endpoint "/api" JSON-in/JSON-out shape).
func (s *Service) httpServer(ctx context.Context, addr string) error {
	complain := func(w http.ResponseWriter, x interface{}, status int) {
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"error":"%s"}`+"\n", x)
	}

	http.HandleFunc("/compile", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			complain(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		name := strings.TrimPrefix(r.URL.Query().Get("name"), "/")
		if name == "" {
			complain(w, "missing name", http.StatusBadRequest)
			return
		}
		result := s.recompile(ctx, name)
		js, err := json.Marshal(result)
		if err != nil {
			complain(w, err, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(js)
	})

	return http.ListenAndServe(addr, nil)
}
