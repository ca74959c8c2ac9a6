package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ndorder/pkg/api"
	"github.com/matzehuels/ndorder/pkg/cache"
	errs "github.com/matzehuels/ndorder/pkg/errors"
	pkgio "github.com/matzehuels/ndorder/pkg/io"
	"github.com/matzehuels/ndorder/pkg/sparse"
)

// captureStdout redirects status output to w until the returned function
// is called.
func captureStdout(w io.Writer) func() {
	prev := stdout
	stdout = w
	return func() { stdout = prev }
}

// isolate points the config and cache directories at fresh temp dirs.
func isolate(t *testing.T) (configHome, cacheHome string) {
	t.Helper()
	configHome, cacheHome = t.TempDir(), t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	return configHome, cacheHome
}

// writeMatrix stores a pattern as Matrix Market in dir.
func writeMatrix(t *testing.T, dir, name string, nrow, ncol int, entries [][2]int) string {
	t.Helper()
	es := make([]sparse.Entry, len(entries))
	for i, e := range entries {
		es[i] = sparse.Entry{Row: e[0], Col: e[1]}
	}
	p, err := sparse.FromEntries(nrow, ncol, es)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := pkgio.ExportMatrix(p, path); err != nil {
		t.Fatal(err)
	}
	return path
}

// pathMatrix writes the tridiagonal pattern of a path on n vertices.
func pathMatrix(t *testing.T, dir string, n int) string {
	var entries [][2]int
	for i := 0; i < n; i++ {
		entries = append(entries, [2]int{i, i})
		if i > 0 {
			entries = append(entries, [2]int{i, i - 1}, [2]int{i - 1, i})
		}
	}
	return writeMatrix(t, dir, "path.mtx", n, n, entries)
}

// run executes the root command with args and returns its standard output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func checkPermutation(t *testing.T, perm []int, n, base int) {
	t.Helper()
	if len(perm) != n {
		t.Fatalf("perm has %d entries, want %d", len(perm), n)
	}
	sorted := slices.Clone(perm)
	slices.Sort(sorted)
	for i, v := range sorted {
		if v != i+base {
			t.Fatalf("perm %v is not a permutation of %d..%d", perm, base, n-1+base)
		}
	}
}

// =============================================================================
// Paths and flags
// =============================================================================

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	for _, name := range []string{"order", "tree", "explore", "stats", "serve", "cache", "config", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestParseVector(t *testing.T) {
	v, err := parseVector("200, 1,0.5,")
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{200, 1, 0.5}; !slices.Equal(v, want) {
		t.Errorf("parseVector = %v, want %v", v, want)
	}
	if _, err := parseVector("1,x"); !errs.Is(err, errs.ErrCodeInvalidOptions) {
		t.Errorf("parseVector(1,x) error = %v, want INVALID_OPTIONS", err)
	}
}

func TestOrderFlagsPrecedence(t *testing.T) {
	isolate(t)
	c := New(io.Discard, LogInfo)
	small, quality := 3, 0.5
	c.Config.Ordering.Mode = "row"
	c.Config.Ordering.SmallThreshold = &small
	c.Config.Ordering.SeparatorQuality = &quality
	c.Config.Ordering.Workers = 4

	parse := func(args ...string) (*orderFlags, error) {
		f := &orderFlags{}
		cmd := &cobra.Command{}
		f.register(cmd)
		return f, cmd.Flags().Parse(args)
	}

	f, err := parse("--mode", "col", "--workers", "2")
	if err != nil {
		t.Fatal(err)
	}
	opts, err := f.options(c, "m.mtx")
	if err != nil {
		t.Fatal(err)
	}
	if opts.Mode != "col" || opts.Workers != 2 {
		t.Errorf("flags should override config: mode=%q workers=%d", opts.Mode, opts.Workers)
	}
	if opts.SmallThreshold == nil || *opts.SmallThreshold != 3 {
		t.Errorf("unset --small should keep config value 3, got %v", opts.SmallThreshold)
	}
	if opts.SeparatorQuality == nil || *opts.SeparatorQuality != 0.5 {
		t.Errorf("unset --quality should keep config value 0.5, got %v", opts.SeparatorQuality)
	}

	f, err = parse("--small", "10", "--opts", "64,1,0.8,0")
	if err != nil {
		t.Fatal(err)
	}
	opts, err = f.options(c, "m.mtx")
	if err != nil {
		t.Fatal(err)
	}
	if *opts.SmallThreshold != 64 || !opts.SplitComponents || *opts.SeparatorQuality != 0.8 || opts.LeafOrdering != "natural" {
		t.Errorf("vector not applied: small=%d split=%v quality=%v leaf=%q",
			*opts.SmallThreshold, opts.SplitComponents, *opts.SeparatorQuality, opts.LeafOrdering)
	}

	f, err = parse("--mode", "x")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.options(c, "m.mtx"); !errs.Is(err, errs.ErrCodeUnrecognizedMode) {
		t.Errorf("bad mode error = %v, want UNRECOGNIZED_MODE", err)
	}
}

func TestTreeFormat(t *testing.T) {
	tests := []struct {
		flag, output, want string
		wantErr            bool
	}{
		{"", "", formatDOT, false},
		{"", "tree.svg", formatSVG, false},
		{"", "tree.SVG", formatSVG, false},
		{"", "tree.gv", formatDOT, false},
		{"svg", "tree.dot", formatSVG, false},
		{"gv", "", formatDOT, false},
		{"png", "", "", true},
	}
	for _, tt := range tests {
		got, err := treeFormat(tt.flag, tt.output)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("treeFormat(%q, %q) = %q, %v; want %q (err %v)", tt.flag, tt.output, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:           "0 B",
		1023:        "1023 B",
		1024:        "1.0 KiB",
		1536:        "1.5 KiB",
		5 << 20:     "5.0 MiB",
		3 << 30 / 2: "1.5 GiB",
	}
	for n, want := range tests {
		if got := formatBytes(n); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}

// =============================================================================
// Commands
// =============================================================================

func TestOrderCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := pathMatrix(t, dir, 7)
	output := filepath.Join(dir, "path.json")

	if _, err := run(t, "order", input, "--small", "2", "-q", "-o", output); err != nil {
		t.Fatalf("order: %v", err)
	}
	doc, err := pkgio.ImportOrdering(output)
	if err != nil {
		t.Fatal(err)
	}
	if doc.N != 7 || doc.Mode != "sym" || doc.OneBased {
		t.Errorf("doc n=%d mode=%q one_based=%v", doc.N, doc.Mode, doc.OneBased)
	}
	checkPermutation(t, doc.Perm, 7, 0)
	if len(doc.Parent) != doc.NComp || len(doc.Membership) != 7 {
		t.Errorf("parent has %d entries, membership %d, ncomp %d", len(doc.Parent), len(doc.Membership), doc.NComp)
	}
	if doc.NComp < 2 {
		t.Errorf("small threshold 2 should dissect the path, got %d components", doc.NComp)
	}
	if doc.Options == nil || doc.Options.SmallThreshold != 2 {
		t.Errorf("options not recorded: %+v", doc.Options)
	}

	out, err := run(t, "order", input, "--small", "2", "--one-based", "--analyze")
	if err != nil {
		t.Fatalf("order to stdout: %v", err)
	}
	var one pkgio.Ordering
	if err := json.Unmarshal([]byte(out), &one); err != nil {
		t.Fatalf("stdout is not an ordering: %v\n%s", err, out)
	}
	checkPermutation(t, one.Perm, 7, 1)
	if one.Fill == nil || one.Baseline == nil {
		t.Fatal("--analyze should include fill statistics")
	}
	if one.Baseline.Fill != 0 {
		t.Errorf("natural order of a path has no fill, got %d", one.Baseline.Fill)
	}
}

func TestOrderCommandModes(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	// 3x4: rows 0,1 share column 1, rows 1,2 share column 3.
	input := writeMatrix(t, dir, "rect.mtx", 3, 4, [][2]int{{0, 0}, {0, 1}, {1, 1}, {1, 3}, {2, 2}, {2, 3}})

	_, err := run(t, "order", input, "-q")
	if !errs.Is(err, errs.ErrCodeInvalidShape) {
		t.Fatalf("sym mode on 3x4 error = %v, want INVALID_SHAPE", err)
	}

	for mode, n := range map[string]int{"row": 3, "col": 4} {
		out, err := run(t, "order", input, "--mode", mode, "--no-cache")
		if err != nil {
			t.Fatalf("%s mode: %v", mode, err)
		}
		var doc pkgio.Ordering
		if err := json.Unmarshal([]byte(out), &doc); err != nil {
			t.Fatal(err)
		}
		checkPermutation(t, doc.Perm, n, 0)
		if doc.Mode != mode {
			t.Errorf("mode = %q, want %q", doc.Mode, mode)
		}
	}

	if _, err := run(t, "order", input, "--mode", "", "-q"); !errs.Is(err, errs.ErrCodeUnrecognizedMode) {
		t.Errorf("empty mode error = %v, want UNRECOGNIZED_MODE", err)
	}
	if _, err := run(t, "order", input, "--mode", "row", "--opts", "1,0,0.5,7"); !errs.Is(err, errs.ErrCodeInvalidOptions) {
		t.Errorf("bad vector error = %v, want INVALID_OPTIONS", err)
	}
	if _, err := run(t, "order", filepath.Join(dir, "missing.mtx"), "-q"); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestOrderCommandRemote(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := pathMatrix(t, dir, 7)

	c := New(io.Discard, LogInfo)
	runner, err := c.newRunner(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.serve(ctx, ln, api.New(runner, nil, api.Options{}).Handler()) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("serve: %v", err)
		}
	}()

	out, err := run(t, "order", input, "--small", "2", "--remote", "http://"+ln.Addr().String())
	if err != nil {
		t.Fatalf("remote order: %v", err)
	}
	var doc pkgio.Ordering
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatal(err)
	}
	checkPermutation(t, doc.Perm, 7, 0)

	local, err := run(t, "order", input, "--small", "2", "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	var want pkgio.Ordering
	if err := json.Unmarshal([]byte(local), &want); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(doc.Perm, want.Perm) || !slices.Equal(doc.Parent, want.Parent) {
		t.Errorf("remote ordering %v/%v differs from local %v/%v", doc.Perm, doc.Parent, want.Perm, want.Parent)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	c := New(io.Discard, LogInfo)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	go func() { done <- c.serve(ctx, ln, handler) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestTreeCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := pathMatrix(t, dir, 7)

	out, err := run(t, "tree", input, "--small", "2", "--one-based")
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if !strings.HasPrefix(out, "digraph SeparatorTree {") {
		t.Errorf("tree output is not DOT:\n%s", out)
	}
	if !strings.Contains(out, "->") {
		t.Errorf("dissected path should have tree edges:\n%s", out)
	}

	var status bytes.Buffer
	defer captureStdout(&status)()
	output := filepath.Join(dir, "tree.dot")
	if _, err := run(t, "tree", input, "--small", "2", "-o", output); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("digraph")) {
		t.Errorf("tree file is not DOT: %q", data)
	}
}

func TestStatsCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	// Star with the center first: the natural order fills completely.
	var entries [][2]int
	for i := 0; i < 6; i++ {
		entries = append(entries, [2]int{i, i})
		if i > 0 {
			entries = append(entries, [2]int{i, 0}, [2]int{0, i})
		}
	}
	input := writeMatrix(t, dir, "star.mtx", 6, 6, entries)

	out, err := run(t, "stats", input, "--json")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var resp api.AnalyzeResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Baseline.Fill != 10 {
		t.Errorf("natural fill of a 6-star = %d, want 10", resp.Baseline.Fill)
	}
	if resp.Fill.N != 6 || resp.Fill.Fill > resp.Baseline.Fill {
		t.Errorf("ordering fill %+v should not exceed natural %+v", resp.Fill, resp.Baseline)
	}

	// Evaluate a hand-written ordering with the center last.
	permFile := filepath.Join(dir, "star.json")
	doc := &pkgio.Ordering{
		Mode: "sym", N: 6, NComp: 1,
		Perm: []int{1, 2, 3, 4, 5, 0}, Parent: []int{-1}, Membership: []int{0, 0, 0, 0, 0, 0},
	}
	if err := pkgio.ExportOrdering(doc, permFile); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, "stats", input, "--perm", permFile, "--json")
	if err != nil {
		t.Fatalf("stats --perm: %v", err)
	}
	resp = api.AnalyzeResponse{}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Fill.Fill != 0 || resp.Reduction <= 1 {
		t.Errorf("center-last ordering: fill=%d reduction=%v, want 0 and >1", resp.Fill.Fill, resp.Reduction)
	}

	out, err = run(t, "stats", input)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "nnz(L)") || !strings.Contains(out, "natural") {
		t.Errorf("table output missing columns:\n%s", out)
	}
}

func TestConfigCommands(t *testing.T) {
	configHome, _ := isolate(t)

	out, err := run(t, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(configHome, appName, "config.toml")
	if strings.TrimSpace(out) != want {
		t.Errorf("config path = %q, want %q", out, want)
	}

	var status bytes.Buffer
	defer captureStdout(&status)()
	if _, err := run(t, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if _, err := run(t, "config", "init"); err == nil {
		t.Error("second init without --force should fail")
	}
	if _, err := run(t, "config", "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}

	if err := os.WriteFile(want, []byte("[ordering]\nmode = \"row\"\nsmall_threshold = 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `mode = "row"`) || !strings.Contains(out, "small_threshold = 9") {
		t.Errorf("config show does not reflect the file:\n%s", out)
	}

	if err := os.WriteFile(want, []byte("[ordering]\nmdoe = \"row\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "config", "show"); !errs.Is(err, errs.ErrCodeInvalidOptions) {
		t.Errorf("unknown key error = %v, want INVALID_OPTIONS", err)
	}
}

func TestCacheCommands(t *testing.T) {
	_, cacheHome := isolate(t)
	dir := t.TempDir()
	input := pathMatrix(t, dir, 7)

	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(cacheHome, appName); strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}

	if _, err := run(t, "order", input, "-q", "--analyze"); err != nil {
		t.Fatal(err)
	}

	fc, err := cache.NewFileCache(filepath.Join(cacheHome, appName))
	if err != nil {
		t.Fatal(err)
	}
	if entries, _, _ := fc.Usage(); entries == 0 {
		t.Fatal("order should have populated the file cache")
	}

	var status bytes.Buffer
	defer captureStdout(&status)()
	if _, err := run(t, "cache", "info"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(status.String(), "Entries") {
		t.Errorf("cache info output = %q", status.String())
	}

	status.Reset()
	if _, err := run(t, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(status.String(), "Cleared") {
		t.Errorf("clear output = %q", status.String())
	}
	if entries, _, _ := fc.Usage(); entries != 0 {
		t.Errorf("%d entries left after clear", entries)
	}
}

func TestCacheCommandsRejectRemoteBackend(t *testing.T) {
	isolate(t)
	c := New(io.Discard, LogInfo)
	c.Config.Cache.Backend = "redis"
	if _, err := c.fileCacheDir(); err == nil {
		t.Error("remote backend should not resolve to a local directory")
	}
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)

	out, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "ndorder") {
		t.Error("bash completion should mention the program name")
	}

	if _, err := run(t, "completion", "tcsh"); err == nil {
		t.Error("unknown shell should fail")
	}

	out, err = run(t, "__complete", "order", "--mode", "")
	if err != nil {
		t.Fatal(err)
	}
	for _, mode := range []string{"sym", "row", "col"} {
		if !strings.Contains(out, mode+"\n") {
			t.Errorf("--mode completions %q lack %q", out, mode)
		}
	}
}
