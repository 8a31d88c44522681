package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"regexp"

	"github.com/loomlang/loom/backend"
	"github.com/loomlang/loom/core"
	"github.com/loomlang/loom/gramfile"
)

func compileDescriptor(path string) (*backend.Descriptor, error) {
	g, err := gramfile.LoadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := core.Translate(g)
	if err != nil {
		return nil, err
	}
	return backend.NewDescriptor(m)
}

func main() {
	var (
		gramDir  = flag.String("g", "grammars", "grammar directory")
		httpPort = flag.String("h", "", "HTTP port to serve /grammars/<name>.html (empty: render once and exit)")
		name     = flag.String("n", "", "grammar name to render once (ignored if -h is set)")
	)
	flag.Parse()

	if *httpPort != "" {
		p := regexp.MustCompile(`/grammars/([-a-zA-Z0-9_]+)\.html`)
		http.HandleFunc("/grammars/", func(w http.ResponseWriter, r *http.Request) {
			ss := p.FindStringSubmatch(r.RequestURI)
			if ss == nil {
				fmt.Fprintf(w, "no grammar name in %s; try /grammars/http.html", r.RequestURI)
				return
			}
			d, err := compileDescriptor(*gramDir + "/" + ss[1] + ".yaml")
			if err != nil {
				fmt.Fprintf(w, "compile error: %s", err)
				return
			}
			if err := RenderMachinePage(ss[1], d, nil, w); err != nil {
				fmt.Fprintf(w, "render error: %s", err)
			}
		})
		fmt.Printf("gramdoc serving on %s\n", *httpPort)
		if err := http.ListenAndServe(*httpPort, nil); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *name == "" {
		fmt.Fprintln(os.Stderr, "gramdoc: -n is required without -h")
		os.Exit(1)
	}
	d, err := compileDescriptor(*gramDir + "/" + *name + ".yaml")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := RenderMachinePage(*name, d, nil, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
