// Command marginalia-rulepacker
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"marginalia/internal/core/rulepack"
)

// These mirror the unexported raw types in rulepack/pack.go; keep in sync
type airline struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type streets struct {
	Suffixes     []string `json:"suffixes"`
	Units        []string `json:"units"`
	Directionals []string `json:"directionals"`
}

type region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type month struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
	Number  int      `json:"number"`
}

type weekday struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
	Number  int      `json:"number"`
}

type relative struct {
	Phrase  string `json:"phrase"`
	Seconds int64  `json:"seconds"`
}

type calendar struct {
	Months   []month    `json:"months"`
	Weekdays []weekday  `json:"weekdays"`
	Relative []relative `json:"relative"`
}

type zone struct {
	Abbr          string `json:"abbr"`
	Name          string `json:"name"`
	OffsetSeconds int    `json:"offset_seconds"`
}

type template struct {
	ID            string `json:"id"`
	Category      string `json:"category"`
	Pattern       string `json:"pattern"`
	CaseSensitive bool   `json:"case_sensitive,omitempty"`
}

type coreFile struct {
	Version   int            `json:"version"`
	Meta      map[string]any `json:"meta"`
	Templates []template     `json:"templates"`
}

// fragmentFile is one table file; any subset of fields may be present
type fragmentFile struct {
	Airlines    []airline  `json:"airlines,omitempty"`
	TLDs        []string   `json:"tlds,omitempty"`
	Streets     *streets   `json:"streets,omitempty"`
	Regions     []region   `json:"regions,omitempty"`
	Countries   []string   `json:"countries,omitempty"`
	OrgSuffixes []string   `json:"org_suffixes,omitempty"`
	JobTitles   []string   `json:"job_titles,omitempty"`
	Calendar    *calendar  `json:"calendar,omitempty"`
	Zones       []zone     `json:"zones,omitempty"`
	Templates   []template `json:"templates,omitempty"`
}

type outV1 struct {
	Version     int            `json:"version"`
	Meta        map[string]any `json:"meta,omitempty"`
	Airlines    []airline      `json:"airlines"`
	TLDs        []string       `json:"tlds"`
	Streets     streets        `json:"streets"`
	Regions     []region       `json:"regions"`
	Countries   []string       `json:"countries"`
	OrgSuffixes []string       `json:"org_suffixes"`
	JobTitles   []string       `json:"job_titles"`
	Calendar    calendar       `json:"calendar"`
	Zones       []zone         `json:"zones"`
	Templates   []template     `json:"templates"`
}

func readJSON[T any](path string, into *T) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, into); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func must(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// mergeStrings appends src onto dst, de-duping case-insensitively and
// keeping a sorted lowercase list
func mergeStrings(dst []string, src []string) []string {
	seen := make(map[string]bool, len(dst)+len(src))
	out := make([]string, 0, len(dst)+len(src))
	for _, s := range append(dst, src...) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func mergeStreets(dst *streets, src *streets) {
	if src == nil {
		return
	}
	dst.Suffixes = mergeStrings(dst.Suffixes, src.Suffixes)
	dst.Units = mergeStrings(dst.Units, src.Units)
	dst.Directionals = mergeStrings(dst.Directionals, src.Directionals)
}

func mergeCalendar(dst *calendar, src *calendar) {
	if src == nil {
		return
	}
	// months and weekdays key on number; aliases accumulate
	byMonth := map[int]*month{}
	for i := range dst.Months {
		byMonth[dst.Months[i].Number] = &dst.Months[i]
	}
	for _, m := range src.Months {
		if have, ok := byMonth[m.Number]; ok {
			have.Aliases = mergeStrings(have.Aliases, append([]string{m.Name}, m.Aliases...))
			continue
		}
		dst.Months = append(dst.Months, m)
		byMonth[m.Number] = &dst.Months[len(dst.Months)-1]
	}

	byDay := map[int]*weekday{}
	for i := range dst.Weekdays {
		byDay[dst.Weekdays[i].Number] = &dst.Weekdays[i]
	}
	for _, w := range src.Weekdays {
		if have, ok := byDay[w.Number]; ok {
			have.Aliases = mergeStrings(have.Aliases, append([]string{w.Name}, w.Aliases...))
			continue
		}
		dst.Weekdays = append(dst.Weekdays, w)
		byDay[w.Number] = &dst.Weekdays[len(dst.Weekdays)-1]
	}

	seenPh := map[string]bool{}
	for _, r := range dst.Relative {
		seenPh[strings.ToLower(strings.TrimSpace(r.Phrase))] = true
	}
	for _, r := range src.Relative {
		ph := strings.ToLower(strings.TrimSpace(r.Phrase))
		if ph == "" || seenPh[ph] {
			continue
		}
		seenPh[ph] = true
		dst.Relative = append(dst.Relative, r)
	}
}

func findFragmentFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		if d.IsDir() {
			if strings.HasPrefix(rel, "schema") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Base(path) == "core.json" && filepath.Dir(path) == root {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(path), ".json") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func hasCore(dir string) bool {
	return pathExists(filepath.Join(dir, "core.json"))
}

func latestNumericSubdir(dir string) (string, bool) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	var nums []int
	for _, e := range ents {
		if !e.IsDir() {
			continue
		}
		n, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		if hasCore(filepath.Join(dir, e.Name())) {
			nums = append(nums, n)
		}
	}
	if len(nums) == 0 {
		return "", false
	}
	sort.Ints(nums)
	best := nums[len(nums)-1]
	return filepath.Join(dir, strconv.Itoa(best)), true
}

// resolveRoot tries, in order: flag, env, common locations.
// - If you pass /app/rules, it picks the latest numeric subdir containing core.json.
// - If you pass /app/rules/1, it uses that.
// Returns chosen root and an ordered list of attempts (for error messages)
func resolveRoot(flagRoot string) (string, []string, error) {
	var attempts []string
	try := func(p string) (string, bool) {
		if p == "" {
			return "", false
		}
		attempts = append(attempts, p)
		// exact rules/<n>
		if hasCore(p) {
			return p, true
		}
		// parent rules/ (pick latest)
		if sub, ok := latestNumericSubdir(p); ok && hasCore(sub) {
			attempts = append(attempts, sub)
			return sub, true
		}
		return "", false
	}

	// explicit flag
	if root, ok := try(flagRoot); ok {
		return root, attempts, nil
	}
	// env
	if env := strings.TrimSpace(os.Getenv("MARGINALIA_RULES_ROOT")); env != "" {
		if root, ok := try(env); ok {
			return root, attempts, nil
		}
	}
	// common relative and absolute locations
	candidates := []string{
		"./rules/1",
		"./rules",
		"/app/rules/1",
		"/app/rules",
	}
	for _, c := range candidates {
		if root, ok := try(c); ok {
			return root, attempts, nil
		}
	}
	return "", attempts, errors.New("core.json not found in any known location")
}

func assemble(root string) (outV1, error) {
	corePath := filepath.Join(root, "core.json")
	var core coreFile
	if err := readJSON(corePath, &core); err != nil {
		return outV1{}, fmt.Errorf("read core.json: %w", err)
	}
	if core.Version != 1 {
		_, _ = fmt.Fprintf(os.Stderr, "warning: core.json version=%d (expected 1)\n", core.Version)
	}

	fragPaths, err := findFragmentFiles(root)
	if err != nil {
		return outV1{}, err
	}
	if len(fragPaths) == 0 {
		return outV1{}, errors.New("no fragment files found under " + root)
	}

	out := outV1{
		Version:   1,
		Meta:      core.Meta,
		Templates: append([]template(nil), core.Templates...),
	}

	for _, p := range fragPaths {
		var fr fragmentFile
		if err := readJSON(p, &fr); err != nil {
			return outV1{}, err
		}
		out.Airlines = append(out.Airlines, fr.Airlines...)
		out.TLDs = mergeStrings(out.TLDs, fr.TLDs)
		mergeStreets(&out.Streets, fr.Streets)
		out.Regions = append(out.Regions, fr.Regions...)
		out.Countries = mergeStrings(out.Countries, fr.Countries)
		out.OrgSuffixes = mergeStrings(out.OrgSuffixes, fr.OrgSuffixes)
		out.JobTitles = mergeStrings(out.JobTitles, fr.JobTitles)
		mergeCalendar(&out.Calendar, fr.Calendar)
		out.Zones = append(out.Zones, fr.Zones...)
		out.Templates = append(out.Templates, fr.Templates...)
	}

	// de-dupe airlines by code
	seenA := map[string]bool{}
	airlines := make([]airline, 0, len(out.Airlines))
	for _, a := range out.Airlines {
		code := strings.ToUpper(strings.TrimSpace(a.Code))
		if code == "" || strings.TrimSpace(a.Name) == "" || seenA[code] {
			continue
		}
		seenA[code] = true
		airlines = append(airlines, airline{Code: code, Name: strings.TrimSpace(a.Name)})
	}
	sort.Slice(airlines, func(i, j int) bool { return airlines[i].Code < airlines[j].Code })
	out.Airlines = airlines

	// de-dupe regions by code
	seenR := map[string]bool{}
	regions := make([]region, 0, len(out.Regions))
	for _, r := range out.Regions {
		code := strings.ToUpper(strings.TrimSpace(r.Code))
		if code == "" || strings.TrimSpace(r.Name) == "" || seenR[code] {
			continue
		}
		seenR[code] = true
		regions = append(regions, region{Code: code, Name: strings.TrimSpace(r.Name)})
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Code < regions[j].Code })
	out.Regions = regions

	// de-dupe zones by abbr
	seenZ := map[string]bool{}
	zones := make([]zone, 0, len(out.Zones))
	for _, z := range out.Zones {
		abbr := strings.ToLower(strings.TrimSpace(z.Abbr))
		if abbr == "" || strings.TrimSpace(z.Name) == "" || seenZ[abbr] {
			continue
		}
		seenZ[abbr] = true
		zones = append(zones, zone{Abbr: abbr, Name: z.Name, OffsetSeconds: z.OffsetSeconds})
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].Abbr < zones[j].Abbr })
	out.Zones = zones

	// de-dupe templates by id (duplicates are a packaging bug, warn and skip)
	seenT := map[string]bool{}
	templates := make([]template, 0, len(out.Templates))
	for _, t := range out.Templates {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			return outV1{}, fmt.Errorf("template without id (pattern %q)", t.Pattern)
		}
		if seenT[id] {
			_, _ = fmt.Fprintf(os.Stderr, "warning: duplicate template id %q skipped\n", id)
			continue
		}
		seenT[id] = true
		templates = append(templates, t)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	out.Templates = templates

	sort.Slice(out.Calendar.Months, func(i, j int) bool {
		return out.Calendar.Months[i].Number < out.Calendar.Months[j].Number
	})
	sort.Slice(out.Calendar.Weekdays, func(i, j int) bool {
		return out.Calendar.Weekdays[i].Number < out.Calendar.Weekdays[j].Number
	})
	sort.Slice(out.Calendar.Relative, func(i, j int) bool {
		return out.Calendar.Relative[i].Phrase < out.Calendar.Relative[j].Phrase
	})

	return out, nil
}

// check loads the embedded pack and prints what the binary would detect with.
// Exits nonzero when the pack does not compile
func check() {
	p, err := rulepack.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "embedded pack is broken: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("embedded pack ok: version=%d\n", p.Version)
	fmt.Printf("  airlines:      %d\n", len(p.Airlines))
	fmt.Printf("  tlds:          %d\n", len(p.TLDs))
	fmt.Printf("  regions:       %d\n", len(p.Regions))
	fmt.Printf("  countries:     %d\n", len(p.Countries))
	fmt.Printf("  org suffixes:  %d\n", len(p.OrgSuffixes))
	fmt.Printf("  job titles:    %d\n", len(p.JobTitles))
	fmt.Printf("  street tables: %d/%d/%d (suffix/unit/directional)\n",
		len(p.StreetSuffixes), len(p.UnitLabels), len(p.Directionals))
	fmt.Printf("  month names:   %d\n", len(p.MonthByName))
	fmt.Printf("  weekday names: %d\n", len(p.WeekdayByName))
	fmt.Printf("  relatives:     %d\n", len(p.Relatives))
	fmt.Printf("  zones:         %d\n", len(p.ZoneByAbbr))
	fmt.Printf("  templates:     %d\n", len(p.Templates))
	for _, t := range p.Templates {
		fmt.Printf("    %-28s %s\n", t.ID, t.Category)
	}
}

func main() {
	var (
		flagCheck = flag.Bool("check", false, "validate and print the embedded pack, then exit")
		flagRoot  = flag.String("root", "", "path to rules version directory (e.g., ./rules/1 or ./rules). If empty, auto-discover") //nolint:lll
		out       = flag.String("out", "./internal/core/rulepack/rules.json", "output path or '-' for stdout")
		pretty    = flag.Bool("pretty", true, "pretty-print JSON")
		verbose   = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *flagCheck {
		check()
		return
	}

	root, attempts, err := resolveRoot(strings.TrimSpace(*flagRoot))
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to locate rules root (looked in):\n")
		for _, a := range attempts {
			_, _ = fmt.Fprintf(os.Stderr, "  - %s\n", a)
		}
		_, _ = fmt.Fprintf(os.Stderr, "hint: mount ./rules into the container (e.g., - ./rules:/app/rules:ro) or set MARGINALIA_RULES_ROOT\n") //nolint:lll
		must(err)
	}
	if *verbose {
		_, _ = fmt.Fprintf(os.Stderr, "using rules root: %s\n", root)
	}

	obj, err := assemble(root)
	must(err)

	var enc []byte
	if *pretty {
		enc, err = json.MarshalIndent(obj, "", "  ")
	} else {
		enc, err = json.Marshal(obj)
	}
	must(err)

	// Run the candidate through the same compiler the binary embeds it with.
	// A pack that fails here never reaches disk
	if _, err := rulepack.Parse(enc); err != nil {
		must(fmt.Errorf("assembled pack does not compile: %w", err))
	}

	if *out == "-" {
		if _, err := os.Stdout.Write(enc); err != nil {
			must(err)
		}
		if _, err := os.Stdout.WriteString("\n"); err != nil {
			must(err)
		}
		return
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		must(err)
	}
	must(os.WriteFile(*out, enc, 0o644))
	if *verbose {
		_, _ = fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", *out, len(enc))
	}
}
