// Command gramd is a compile daemon: it watches a directory of
// grammar files, compiles each into a core.Machine, caches the
// result, and exposes the outcome over HTTP, WebSocket, and MQTT.
// Shaped after sheens' cmd/mcrew (a Service struct coordinating
// storage, interpreters, and several transports around one core
// value) with crew/spec replaced by cache/grammar.
package main

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/loomlang/loom/backend"
	"github.com/loomlang/loom/cache"
	"github.com/loomlang/loom/core"
	"github.com/loomlang/loom/gramfile"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Result is one grammar's compile outcome, used by every transport.
type Result struct {
	Name    string `json:"name"`
	Ok      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Nodes   int      `json:"nodes,omitempty"`
	Bitmaps int      `json:"bitmaps,omitempty"`
	Entries []string `json:"entries,omitempty"`
}

// Service owns the grammar directory, the compile cache, and the set
// of live subscribers (WebSocket connections) watching compile
// diagnostics, mirroring cmd/mcrew/service.go's Service.
type Service struct {
	GramDir string
	Cache   cache.Cache
	MQTT    mqtt.Client
	Topic   string

	Tracing bool

	mu     sync.Mutex
	subs   map[string]chan *Result
	lastAt map[string]int64 // name -> mtime last compiled, used by watch.go
}

// NewService makes a Service backed by c, watching dir.
func NewService(dir string, c cache.Cache) *Service {
	return &Service{
		GramDir: dir,
		Cache:   c,
		subs:    map[string]chan *Result{},
		lastAt:  map[string]int64{},
	}
}

func (s *Service) trf(format string, args ...interface{}) {
	if !s.Tracing {
		return
	}
	log.Printf("trace "+format, args...)
}

// Compile loads, digests, and (cache permitting) translates the named
// grammar, returning both the Machine and a back-end-ready
// Descriptor.
func (s *Service) Compile(ctx context.Context, name string) (*core.Machine, *backend.Descriptor, error) {
	path := s.GramDir + "/" + name + ".yaml"
	g, err := gramfile.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}

	key, err := core.GrammarDigest(g)
	if err != nil {
		return nil, nil, err
	}

	m, found, err := s.Cache.Get(key)
	if err != nil {
		return nil, nil, err
	}
	if found {
		s.trf("Compile %s: cache hit %s", name, key)
	} else {
		if m, err = core.Translate(g); err != nil {
			return nil, nil, err
		}
		if err := s.Cache.Put(key, m); err != nil {
			s.trf("Compile %s: cache put error %v", name, err)
		}
	}

	d, err := backend.NewDescriptor(m)
	if err != nil {
		return nil, nil, err
	}
	return m, d, nil
}

// CompileResult runs Compile and shapes the outcome as a Result,
// never returning a Go error: a failed compile is a Result with
// Ok=false, since a GrammarConflict/UnknownState is routine feedback
// to a grammar author, not a daemon fault.
func (s *Service) CompileResult(ctx context.Context, name string) *Result {
	m, d, err := s.Compile(ctx, name)
	if err != nil {
		return &Result{Name: name, Ok: false, Error: err.Error()}
	}
	entries := make([]string, 0, len(m.Mapper))
	for n := range m.Mapper {
		entries = append(entries, n)
	}
	return &Result{
		Name:    name,
		Ok:      true,
		Nodes:   len(m.Nodes),
		Bitmaps: len(d.Bitmaps),
		Entries: entries,
	}
}

// broadcast fans r out to every live WebSocket subscriber, dropping
// it for a subscriber whose channel is full rather than blocking the
// compiling goroutine (same non-blocking-send shape as
// cmd/mcrew/service-ws.go's op forwarding).
func (s *Service) broadcast(r *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.subs {
		select {
		case c <- r:
		default:
			log.Printf("gramd: subscriber %s blocked, dropping result", id)
		}
	}
}

func (s *Service) subscribe(id string) chan *Result {
	c := make(chan *Result, 32)
	s.mu.Lock()
	s.subs[id] = c
	s.mu.Unlock()
	return c
}

func (s *Service) unsubscribe(id string) {
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
}

func (s *Service) publishMQTT(r *Result) {
	if s.MQTT == nil {
		return
	}
	payload := fmt.Sprintf(`{"name":%q,"ok":%v,"nodes":%d,"bitmaps":%d}`, r.Name, r.Ok, r.Nodes, r.Bitmaps)
	tok := s.MQTT.Publish(s.Topic, 0, false, payload)
	tok.Wait()
	if err := tok.Error(); err != nil {
		log.Printf("gramd: mqtt publish error: %v", err)
	}
}

// recompile runs CompileResult, then fans the outcome to every
// transport: WebSocket subscribers and (if configured) MQTT.
func (s *Service) recompile(ctx context.Context, name string) *Result {
	r := s.CompileResult(ctx, name)
	s.broadcast(r)
	s.publishMQTT(r)
	return r
}
