package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/implica/implica"
)

const helpText = `implica interactive REPL

Commands:
  new <name>           Create a new empty graph
  load <name> <file>   Load a graph from a JSON file
  unload <name>        Remove a loaded graph
  list                 List all loaded graphs
  use <name>           Set the active graph for queries
  save <file>          Save the active graph to a JSON file
  help                 Show this help message
  exit / quit          Exit the REPL

Any other input is treated as a single MATCH pattern against the
active graph, returning every variable it binds. For CREATE/SET/
REMOVE/ORDER BY or multi-clause queries, use the Go builder API
directly — the REPL only drives a single MATCH...RETURN.

Pattern examples:
  (n:Person)
  (p:Person)-[e:@worksAt()]->(c:Company)
`

func main() {
	graphs := make(map[string]*implica.Graph)
	var active string

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("implica — typed property-graph engine")
	fmt.Println(`Type "help" for available commands.`)
	fmt.Println()

	for {
		if active != "" {
			fmt.Printf("[%s]> ", active)
		} else {
			fmt.Print("> ")
		}

		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])

		switch cmd {
		case "exit", "quit":
			return

		case "help":
			fmt.Print(helpText)

		case "list":
			if len(graphs) == 0 {
				fmt.Println("(no graphs loaded)")
			} else {
				for name := range graphs {
					marker := " "
					if name == active {
						marker = "*"
					}
					fmt.Printf("  %s %s\n", marker, name)
				}
			}

		case "new":
			if len(parts) < 2 {
				fmt.Fprintln(os.Stderr, "usage: new <name>")
				continue
			}
			name := parts[1]
			g, err := implica.New(nil)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error creating graph: %v\n", err)
				continue
			}
			graphs[name] = g
			if active == "" {
				active = name
			}
			fmt.Printf("created empty graph %q\n", name)

		case "use":
			if len(parts) < 2 {
				fmt.Fprintln(os.Stderr, "usage: use <name>")
				continue
			}
			name := parts[1]
			if _, ok := graphs[name]; !ok {
				fmt.Fprintf(os.Stderr, "no graph named %q\n", name)
				continue
			}
			active = name
			fmt.Printf("active graph set to %q\n", name)

		case "load":
			if len(parts) < 3 {
				fmt.Fprintln(os.Stderr, "usage: load <name> <file>")
				continue
			}
			name, path := parts[1], parts[2]
			g, err := implica.LoadFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error loading %q: %v\n", path, err)
				continue
			}
			graphs[name] = g
			if active == "" {
				active = name
			}
			fmt.Printf("loaded %q (%d nodes)\n", name, len(g.Nodes()))

		case "save":
			if len(parts) < 2 {
				fmt.Fprintln(os.Stderr, "usage: save <file>")
				continue
			}
			if active == "" {
				fmt.Fprintln(os.Stderr, "no active graph — use 'load' or 'use' first")
				continue
			}
			if err := graphs[active].SaveFile(parts[1]); err != nil {
				fmt.Fprintf(os.Stderr, "error saving: %v\n", err)
				continue
			}
			fmt.Printf("saved %q to %s\n", active, parts[1])

		case "unload":
			if len(parts) < 2 {
				fmt.Fprintln(os.Stderr, "usage: unload <name>")
				continue
			}
			name := parts[1]
			if _, ok := graphs[name]; !ok {
				fmt.Fprintf(os.Stderr, "no graph named %q\n", name)
				continue
			}
			delete(graphs, name)
			if active == name {
				active = ""
			}
			fmt.Printf("unloaded %q\n", name)

		default:
			if active == "" {
				fmt.Fprintln(os.Stderr, "no active graph — use 'load' or 'use' first")
				continue
			}
			runMatch(graphs[active], line)
		}
	}
}

// runMatch treats line as a single MATCH pattern and prints every row
// it binds, projected onto every variable the pattern names.
func runMatch(g *implica.Graph, line string) {
	vars := patternVars(line)
	if len(vars) == 0 {
		fmt.Fprintln(os.Stderr, "pattern names no variables to return")
		return
	}
	rows, err := g.Query().Match(line).Return(context.Background(), vars...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query error: %v\n", err)
		return
	}
	if len(rows) == 0 {
		fmt.Println("(no matches)")
		return
	}
	for i, row := range rows {
		fmt.Printf("row %d:\n", i)
		for _, v := range vars {
			fmt.Printf("  %s = %s\n", v, row[v].String())
		}
	}
}

// patternVars extracts every "name:" binding occurrence from a raw
// pattern string, a REPL-only convenience; the builder API itself
// takes explicit variable names rather than scraping them back out.
func patternVars(pat string) []string {
	var vars []string
	seen := make(map[string]struct{})
	fields := strings.FieldsFunc(pat, func(r rune) bool {
		return r == '(' || r == ')' || r == '[' || r == ']' || r == '-' || r == '>' || r == '<'
	})
	for _, f := range fields {
		name, _, found := strings.Cut(f, ":")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" || name == "_" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		vars = append(vars, name)
	}
	return vars
}
