// Command chartparam evaluates a scene script, parameterizes its mesh over
// its chart atlas, and prints the result as JSON.
//
//	chartparam -scene examples/grid.zy [-config opts.yaml] [-locate 0:0.5,0.5] [-v]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/chartparam/pkg/atlas"
	"github.com/chazu/chartparam/pkg/bake"
	"github.com/chazu/chartparam/pkg/param"
)

// locateFlag collects repeated -locate chart:s,t queries.
type locateFlag []atlas.ChartParamCoord

func (l *locateFlag) String() string {
	parts := make([]string, len(*l))
	for i, q := range *l {
		parts[i] = fmt.Sprintf("%d:%g,%g", q.Chart, q.Coord.S, q.Coord.T)
	}
	return strings.Join(parts, " ")
}

func (l *locateFlag) Set(v string) error {
	q, err := parseQuery(v)
	if err != nil {
		return err
	}
	*l = append(*l, q)
	return nil
}

// parseQuery reads "chart:s,t".
func parseQuery(v string) (atlas.ChartParamCoord, error) {
	chartStr, st, ok := strings.Cut(v, ":")
	if !ok {
		return atlas.ChartParamCoord{}, fmt.Errorf("query %q: want chart:s,t", v)
	}
	sStr, tStr, ok := strings.Cut(st, ",")
	if !ok {
		return atlas.ChartParamCoord{}, fmt.Errorf("query %q: want chart:s,t", v)
	}
	chart, err := strconv.Atoi(strings.TrimSpace(chartStr))
	if err != nil {
		return atlas.ChartParamCoord{}, fmt.Errorf("query %q: chart: %w", v, err)
	}
	s, err := strconv.ParseFloat(strings.TrimSpace(sStr), 64)
	if err != nil {
		return atlas.ChartParamCoord{}, fmt.Errorf("query %q: s: %w", v, err)
	}
	t, err := strconv.ParseFloat(strings.TrimSpace(tStr), 64)
	if err != nil {
		return atlas.ChartParamCoord{}, fmt.Errorf("query %q: t: %w", v, err)
	}
	return atlas.ChartParamCoord{Chart: chart, Coord: atlas.ParamCoord{S: s, T: t}}, nil
}

func main() {
	var queries locateFlag
	var (
		scenePath  = flag.String("scene", "", "Scene script (.zy).")
		configPath = flag.String("config", "", "YAML options file.")
		normals    = flag.String("normals", string(bake.NormalsFlat), "flat|smooth.")
		noBake     = flag.Bool("no-bake", false, "Skip render buffers in the output.")
		verbose    = flag.Bool("v", false, "Log diagnostics to stderr.")
	)
	flag.Var(&queries, "locate", "Point query chart:s,t (repeatable).")
	flag.Parse()

	if *scenePath == "" {
		fatalf("usage: chartparam -scene scene.zy [-config opts.yaml] [-normals flat|smooth] [-no-bake] [-locate chart:s,t]... [-v]")
	}

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	opts, err := loadOptions(*configPath)
	if err != nil {
		fatalf("config: %v", err)
	}
	if *verbose {
		opts.Logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	source, err := os.ReadFile(*scenePath)
	if err != nil {
		fatalf("scene: %v", err)
	}

	app := NewApp(opts)
	app.normals = bake.Normals(*normals)
	app.bake = !*noBake
	result := app.Evaluate(string(source), queries)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fatalf("encode: %v", err)
	}
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}

func loadOptions(path string) (param.Options, error) {
	if path == "" {
		return param.DefaultOptions(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return param.Options{}, err
	}
	defer f.Close()
	return param.LoadOptions(f)
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
