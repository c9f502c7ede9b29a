// Package console implements the text command language shared by the
// patchbay REPL and TUI.
package console

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-patchbay/pkg/algorithms"
	"github.com/dd0wney/cluso-patchbay/pkg/engine"
	"github.com/dd0wney/cluso-patchbay/pkg/params"
	"github.com/dd0wney/cluso-patchbay/pkg/ports"
	"github.com/dd0wney/cluso-patchbay/pkg/units"
	"github.com/dd0wney/cluso-patchbay/pkg/validation"
	"github.com/dd0wney/cluso-patchbay/pkg/visualization"
)

// ErrQuit is returned by Execute for "exit" and "quit".
var ErrQuit = errors.New("quit")

// ErrUsage marks a malformed command line.
var ErrUsage = errors.New("usage")

// Console runs commands against one engine and writes their output.
type Console struct {
	engine  *engine.Manager
	schemas *ports.Registry
	out     io.Writer
}

// New creates a console. schemas must be the registry the engine
// validates against.
func New(m *engine.Manager, schemas *ports.Registry, out io.Writer) *Console {
	return &Console{engine: m, schemas: schemas, out: out}
}

// SetOutput redirects subsequent output.
func (c *Console) SetOutput(w io.Writer) {
	c.out = w
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func usage(text string) error {
	return fmt.Errorf("%w: %s", ErrUsage, text)
}

// Execute runs one command line. Command failures are returned, not
// printed; empty lines do nothing.
func (c *Console) Execute(input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}
	args := parts[1:]

	switch strings.ToLower(parts[0]) {
	case "help", "?":
		c.showHelp()
		return nil
	case "exit", "quit":
		return ErrQuit
	case "create", "cn":
		return c.create(args)
	case "connect", "ce":
		return c.connect(args)
	case "disconnect", "dc":
		return c.disconnect(args)
	case "remove", "rm":
		return c.remove(args)
	case "set":
		return c.set(args)
	case "note":
		return c.note(args)
	case "validate":
		return c.validate(args)
	case "nodes", "ln":
		c.listNodes()
		return nil
	case "edges", "le":
		c.listEdges()
		return nil
	case "types":
		c.listTypes()
		return nil
	case "schema":
		return c.showSchema(args)
	case "coverage":
		c.showCoverage()
		return nil
	case "order":
		return c.showOrder()
	case "audit":
		c.showAudit()
		return nil
	case "loops":
		c.showLoops()
		return nil
	case "layout":
		return c.showLayout(args)
	case "demo":
		return c.runDemo()
	}
	return fmt.Errorf("unknown command %q (type 'help' for available commands)", parts[0])
}

func (c *Console) showHelp() {
	c.printf(`Available commands:

Nodes:
  create <type> [id] [key=value ...]   Create a node (cn)
  remove <id>                          Remove a node and its edges (rm)
  set <id> key=value ...               Update parameters
  note <id> <midi-note> [velocity]     Tune a node to a MIDI note

Edges:
  connect <src> <dst> [out] [in]       Connect two nodes (ce)
  disconnect <src> <dst>               Remove every edge src -> dst (dc)
  disconnect edge <edge-id>            Remove one edge
  validate <src> <dst> [out] [in]      Check a connection without making it

Inspection:
  nodes | edges | types                List nodes, edges or unit types
  schema <type>                        Show the port layout of a type
  coverage                             Types without a port schema
  order                                Processing order
  audit                                Re-check every edge
  loops                                Feedback loops in the patch
  layout [flow|circular] [json]        Canvas positions for a node editor

Other:
  demo                                 Build a small patch
  help                                 Show this help
  exit/quit                            Exit
`)
}

// ParseValue converts a command-line value: numbers become float64,
// true/false become bool, anything else stays a string.
func ParseValue(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// ParseAssignments parses key=value pairs.
func ParseAssignments(args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, a := range args {
		key, value, ok := strings.Cut(a, "=")
		if !ok || key == "" {
			return nil, usage(fmt.Sprintf("expected key=value, got %q", a))
		}
		out[key] = ParseValue(value)
	}
	return out, nil
}

func (c *Console) create(args []string) error {
	if len(args) == 0 {
		return usage("create <type> [id] [key=value ...]")
	}
	t, err := units.Parse(args[0])
	if err != nil {
		return err
	}

	id := ""
	rest := args[1:]
	if len(rest) > 0 && !strings.Contains(rest[0], "=") {
		id, rest = rest[0], rest[1:]
	}
	config, err := ParseAssignments(rest)
	if err != nil {
		return err
	}

	if id == "" {
		id, err = c.engine.NewNode(t, config)
	} else {
		_, err = c.engine.CreateNode(id, t, config)
	}
	if err != nil {
		return err
	}
	c.printf("created %s (%s)\n", id, t)
	return nil
}

func request(args []string) (validation.Request, error) {
	if len(args) < 2 || len(args) > 4 {
		return validation.Request{}, usage("<src> <dst> [out] [in]")
	}
	req := validation.Request{Source: args[0], Target: args[1]}
	if len(args) > 2 {
		req.SourcePort = args[2]
	}
	if len(args) > 3 {
		req.TargetPort = args[3]
	}
	return req, nil
}

func (c *Console) connect(args []string) error {
	req, err := request(args)
	if err != nil {
		return err
	}
	edge, err := c.engine.Connect(req)
	if err != nil {
		if res, ok := engine.Rejection(err); ok {
			return fmt.Errorf("rejected: %s", res.Reason)
		}
		return err
	}
	c.printf("connected %s [%s]\n", edge, edge.ID)
	return nil
}

func (c *Console) disconnect(args []string) error {
	if len(args) != 2 {
		return usage("disconnect <src> <dst> | disconnect edge <edge-id>")
	}
	if args[0] == "edge" {
		if err := c.engine.DisconnectEdge(args[1]); err != nil {
			return err
		}
		c.printf("disconnected edge %s\n", args[1])
		return nil
	}
	if err := c.engine.DisconnectNodes(args[0], args[1]); err != nil {
		return err
	}
	c.printf("disconnected %s -> %s\n", args[0], args[1])
	return nil
}

func (c *Console) remove(args []string) error {
	if len(args) != 1 {
		return usage("remove <id>")
	}
	g := c.engine.Graph()
	outgoing, incoming := len(g.EdgesFrom(args[0])), len(g.EdgesTo(args[0]))
	if err := c.engine.RemoveNode(args[0]); err != nil {
		return err
	}
	c.printf("removed %s (%d outgoing, %d incoming edges)\n", args[0], outgoing, incoming)
	return nil
}

func (c *Console) set(args []string) error {
	if len(args) < 2 {
		return usage("set <id> key=value ...")
	}
	p, err := ParseAssignments(args[1:])
	if err != nil {
		return err
	}
	if _, ok := c.engine.GetNode(args[0]); !ok {
		c.printf("no node %s; nothing changed\n", args[0])
		return nil
	}

	rep := c.engine.UpdateNodeParams(args[0], p)
	c.printf("applied: %s\n", joinOrDash(rep.Applied()))
	if len(rep.Ignored) > 0 {
		c.printf("ignored: %s\n", strings.Join(rep.Ignored, ", "))
	}
	keys := make([]string, 0, len(rep.Errors))
	for k := range rep.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.printf("  %s: %v\n", k, rep.Errors[k])
	}
	return nil
}

func (c *Console) note(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usage("note <id> <midi-note> [velocity]")
	}
	n := params.MIDINote{Velocity: 100}
	var err error
	if n.Note, err = strconv.Atoi(args[1]); err != nil {
		return usage("note must be an integer")
	}
	if len(args) == 3 {
		if n.Velocity, err = strconv.Atoi(args[2]); err != nil {
			return usage("velocity must be an integer")
		}
	}
	if err := c.engine.HandleMIDINote(args[0], n); err != nil {
		return err
	}
	c.printf("%s <- note %d (%.2f Hz)\n", args[0], n.Note, n.Frequency())
	return nil
}

func (c *Console) validate(args []string) error {
	req, err := request(args)
	if err != nil {
		return err
	}
	res := c.engine.ValidateConnection(req)
	switch {
	case !res.Valid:
		c.printf("%v\n", res.Err())
	case res.Fallback:
		c.printf("valid without port checks: %s\n", res.FallbackReason)
	default:
		c.printf("valid: %s -> %s\n", res.Source, res.Target)
	}
	return nil
}

func (c *Console) listNodes() {
	ids := c.engine.NodeIDs()
	c.printf("Nodes (%d)\n", len(ids))
	for _, id := range ids {
		n, _ := c.engine.Node(id)
		c.printf("  %-16s %-18s %s\n", id, n.Type, n.Type.Category())
	}
}

func (c *Console) listEdges() {
	edges := c.engine.Edges()
	c.printf("Edges (%d)\n", len(edges))
	for _, e := range edges {
		c.printf("  %s  [%s]\n", e, e.ID)
	}
}

func (c *Console) listTypes() {
	byCategory := make(map[units.Category][]string)
	var cats []units.Category
	for _, t := range c.engine.SupportedTypes() {
		cat := t.Category()
		if _, ok := byCategory[cat]; !ok {
			cats = append(cats, cat)
		}
		byCategory[cat] = append(byCategory[cat], string(t))
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	for _, cat := range cats {
		c.printf("%s: %s\n", cat, strings.Join(byCategory[cat], ", "))
	}

	auto := make([]string, 0)
	for _, t := range units.ContinuousSources() {
		auto = append(auto, string(t))
	}
	c.printf("Auto-started: %s\n", joinOrDash(auto))
}

func (c *Console) showSchema(args []string) error {
	if len(args) != 1 {
		return usage("schema <type>")
	}
	t, err := units.Parse(args[0])
	if err != nil {
		return err
	}
	s, ok := c.schemas.Lookup(t)
	if !ok {
		c.printf("%s has no schema; connections use a single audio input and output\n", t)
		s = ports.SinglePort(ports.Audio)
	}
	c.printf("%s\n", t)
	for _, group := range []struct {
		title string
		list  []ports.Port
	}{{"inputs", s.Inputs}, {"outputs", s.Outputs}} {
		c.printf("  %s:\n", group.title)
		if len(group.list) == 0 {
			c.printf("    -\n")
		}
		for _, p := range group.list {
			c.printf("    [%d] %s", p.Index, p)
			if p.BoundProperty != "" {
				c.printf(" -> %s", p.BoundProperty)
			}
			c.printf("\n")
		}
	}
	return nil
}

func (c *Console) showCoverage() {
	cov := c.schemas.Coverage()
	c.printf("%d of %d types have a port schema\n", cov.Defined, cov.Defined+len(cov.Missing))
	if len(cov.Missing) > 0 {
		names := make([]string, len(cov.Missing))
		for i, t := range cov.Missing {
			names[i] = string(t)
		}
		c.printf("missing: %s\n", strings.Join(names, ", "))
	}
}

func (c *Console) showOrder() error {
	order, err := c.engine.ProcessingOrder()
	if err != nil {
		return err
	}
	c.printf("%s\n", joinOrDash(order))
	return nil
}

func (c *Console) showAudit() {
	a := c.engine.Audit()
	c.printf("checked %d edges, %d without port metadata\n", a.Checked, a.Fallbacks)
	if a.Valid {
		c.printf("all edges valid\n")
		return
	}
	for _, v := range a.Violations {
		c.printf("  %s: %s\n", v.Edge, v.Result.Reason)
	}
}

func (c *Console) showLoops() {
	adj := algorithms.FromGraph(c.engine.Graph())
	if algorithms.IsDAG(adj) {
		c.printf("no feedback loops\n")
		return
	}
	for _, l := range algorithms.FeedbackLoops(adj) {
		c.printf("  %s\n", strings.Join(l, ", "))
	}
	stats := algorithms.AnalyzeCycles(algorithms.DetectCycles(adj))
	c.printf("%d cycles, shortest %d, longest %d, %d self loops\n",
		stats.TotalCycles, stats.ShortestCycle, stats.LongestCycle, stats.SelfLoops)
}

func (c *Console) showLayout(args []string) error {
	name, asJSON := "", false
	for _, a := range args {
		if a == "json" {
			asJSON = true
		} else {
			name = a
		}
	}
	l, err := visualization.ByName(name, visualization.DefaultConfig())
	if err != nil {
		return usage(err.Error())
	}

	v := visualization.New(c.engine.Graph(), l)
	if asJSON {
		b, err := v.ExportJSON()
		if err != nil {
			return err
		}
		c.printf("%s\n", b)
		return nil
	}
	for _, id := range v.Graph.NodeIDs() {
		p := v.Positions[id]
		c.printf("  %-12s %7.1f %7.1f\n", id, p.X, p.Y)
	}
	return nil
}

// runDemo builds oscillator -> filter -> channel with an LFO sweeping the
// filter cutoff.
func (c *Console) runDemo() error {
	steps := []string{
		"create Oscillator osc frequency=220 type=sawtooth",
		"create Filter filter frequency=800",
		"create LFO lfo frequency=0.5",
		"create Channel channel",
		"connect osc filter",
		"connect filter channel",
		"connect lfo filter output frequency",
	}
	for _, s := range steps {
		c.printf("> %s\n", s)
		if err := c.Execute(s); err != nil {
			return fmt.Errorf("demo step %q: %w", s, err)
		}
	}
	c.printf("\nTry: nodes, edges, order, connect filter osc\n")
	return nil
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
