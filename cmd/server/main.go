package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/implica/implica"
	"github.com/implica/implica/internal/querybuilder"
	"github.com/implica/implica/internal/syntax"
)

var allowedOrigins = []string{
	"http://localhost:5173",
}

// constantConfig is a constant declaration's wire form: Schema is the
// surface syntax (e.g. "Person -> Company") rather than a
// schema.TypeSchema directly, since that's an interface and yaml.v3
// has no way to pick a concrete type for it on decode.
type constantConfig struct {
	Name   string `yaml:"name"`
	Schema string `yaml:"schema"`
}

// config is the optional startup configuration: a listen address and
// a set of constants every incoming query's graph is seeded with. The
// request body carries no constant declarations of its own.
type config struct {
	Addr      string           `yaml:"addr"`
	Constants []constantConfig `yaml:"constants"`
}

func loadConfig(path string) (config, error) {
	cfg := config{Addr: ":8080"}
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("opening config %s: %w", path, err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config %s: %w", path, err)
	}
	return cfg, nil
}

// resolveConstants parses each declaration's surface-syntax schema
// into an implica.Constant, failing fast on the first bad one.
func resolveConstants(decls []constantConfig) ([]implica.Constant, error) {
	out := make([]implica.Constant, 0, len(decls))
	for _, d := range decls {
		s, err := syntax.ParseTypeSchema(d.Schema)
		if err != nil {
			return nil, fmt.Errorf("constant %q: %w", d.Name, err)
		}
		out = append(out, implica.Constant{Name: d.Name, Schema: s})
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func corsMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if _, ok := allowed[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// queryRequest is a single MATCH...RETURN against a caller-supplied
// graph: the request carries its own state since this server has no
// persistence (implica.Graph is in-memory only, per spec's Non-goals).
type queryRequest struct {
	Graph json.RawMessage `json:"graph"`
	Match string          `json:"match"`
	Vars  []string        `json:"vars"`
}

func queryHandler(baseConstants []implica.Constant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Match == "" {
			writeError(w, http.StatusBadRequest, "missing field: match")
			return
		}

		var g *implica.Graph
		var err error
		if len(req.Graph) == 0 {
			g, err = implica.New(baseConstants)
		} else {
			g, err = implica.Load(bytes.NewReader(req.Graph))
			if err == nil {
				for _, c := range baseConstants {
					if decErr := g.Declare(c); decErr != nil {
						err = decErr
						break
					}
				}
			}
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid graph: %v", err))
			return
		}

		rows, err := g.Query().Match(req.Match).Return(r.Context(), req.Vars...)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, relationJSON(rows))
	}
}

// relationJSON projects a Relation into a JSON-friendly shape: each
// binding becomes its printable form (graph elements print as their
// UID-qualified String(), types/terms print their surface syntax).
func relationJSON(rel querybuilder.Relation) []map[string]string {
	out := make([]map[string]string, len(rel))
	for i, row := range rel {
		r := make(map[string]string, len(row))
		for k, v := range row {
			r[k] = v.String()
		}
		out[i] = r
	}
	return out
}

func main() {
	port := flag.Int("port", 0, "port to listen on (overrides config addr)")
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	constants, err := resolveConstants(cfg.Constants)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	addr := cfg.Addr
	if *port != 0 {
		addr = fmt.Sprintf(":%d", *port)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/query", queryHandler(constants))

	fmt.Printf("implica server listening on %s\n", addr)
	if err := http.ListenAndServe(addr, corsMiddleware(mux)); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
	}
}
