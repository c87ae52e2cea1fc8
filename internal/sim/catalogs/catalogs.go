package catalogs

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"guildsim.dev/internal/sim/dice"
	"guildsim.dev/internal/sim/model"
)

//go:embed defaults/*.json
var defaultFiles embed.FS

//go:embed schemas/*.schema.json
var schemaFiles embed.FS

const (
	FileClasses  = "classes.json"
	FileRaces    = "races.json"
	FileMissions = "missions.json"
	FileLoot     = "loot.json"
	FileNames    = "names.json"
	FileStaff    = "staff.json"
)

const schemaBaseURL = "https://guildsim.dev/schemas/"

var allFiles = []string{FileClasses, FileRaces, FileMissions, FileLoot, FileNames, FileStaff}

type Catalogs struct {
	Classes  ClassCatalog
	Races    RaceCatalog
	Missions MissionCatalog
	Loot     LootCatalog
	Names    NameCatalog
	Staff    StaffCatalog

	// Files maps each catalog file name to the sha256 of the bytes loaded.
	Files map[string]string
	// Sources records where each file came from ("embedded" or a path).
	Sources map[string]string
}

type ClassCatalog struct {
	ByClass map[model.Class]ClassDef
}

type ClassDef struct {
	Class     model.Class       `json:"class"`
	Title     string            `json:"title"`
	Primaries []model.Attribute `json:"primaries"`
}

type RaceCatalog struct {
	ByRace map[model.Race]RaceDef
}

type RaceDef struct {
	Race      model.Race              `json:"race"`
	Title     string                  `json:"title"`
	Modifiers map[model.Attribute]int `json:"modifiers"`
}

type MissionCatalog struct {
	ByType map[model.MissionType]MissionDef
}

type MissionDef struct {
	Type            model.MissionType          `json:"type"`
	Relevant        []model.Attribute          `json:"relevant"`
	CategoryWeights map[model.ItemCategory]int `json:"category_weights"`
	Titles          []string                   `json:"titles"`
}

type LootCatalog struct {
	Tiers []TierDef   `json:"tiers"`
	Items []ItemTable `json:"items"`

	byTier     map[model.LootTier]TierDef
	byCategory map[model.ItemCategory]ItemTable
}

type TierDef struct {
	Tier          model.LootTier       `json:"tier"`
	RarityWeights map[model.Rarity]int `json:"rarity_weights"`
}

type ItemTable struct {
	Category model.ItemCategory `json:"category"`
	Bases    []ItemBase         `json:"bases"`
}

type ItemBase struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type NameCatalog struct {
	Given   []string `json:"given"`
	Family  []string `json:"family"`
	Places  []string `json:"places"`
	Patrons []string `json:"patrons"`
}

type StaffCatalog struct {
	Roles  []StaffRole
	ByRole map[string]StaffRole
}

type StaffRole struct {
	Role   string `json:"role"`
	Title  string `json:"title"`
	Salary int    `json:"salary"`
}

// Default loads the embedded catalogs.
func Default() (*Catalogs, error) { return Load("") }

// MustDefault is Default for tests and tools that cannot recover.
func MustDefault() *Catalogs {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads every catalog file, preferring files found in overrideDir and
// falling back to the embedded defaults. Each file is validated against its
// schema before decoding.
func Load(overrideDir string) (*Catalogs, error) {
	c := Catalogs{Files: map[string]string{}, Sources: map[string]string{}}

	raw := map[string][]byte{}
	for _, name := range allFiles {
		b, src, err := readCatalogFile(overrideDir, name)
		if err != nil {
			return nil, err
		}
		if err := validateAgainstSchema(name, b); err != nil {
			return nil, err
		}
		raw[name] = b
		c.Files[name] = sha256Hex(b)
		c.Sources[name] = src
	}

	if err := loadClasses(raw[FileClasses], &c.Classes); err != nil {
		return nil, err
	}
	if err := loadRaces(raw[FileRaces], &c.Races); err != nil {
		return nil, err
	}
	if err := loadMissions(raw[FileMissions], &c.Missions); err != nil {
		return nil, err
	}
	if err := loadLoot(raw[FileLoot], &c.Loot); err != nil {
		return nil, err
	}
	if err := loadNames(raw[FileNames], &c.Names); err != nil {
		return nil, err
	}
	if err := loadStaff(raw[FileStaff], &c.Staff); err != nil {
		return nil, err
	}
	return &c, nil
}

// Digest folds the per-file digests into one value for snapshots and replay.
func (c *Catalogs) Digest() string {
	names := make([]string, 0, len(c.Files))
	for n := range c.Files {
		names = append(names, n)
	}
	sort.Strings(names)
	var buf bytes.Buffer
	for _, n := range names {
		buf.WriteString(n)
		buf.WriteByte(':')
		buf.WriteString(c.Files[n])
		buf.WriteByte('\n')
	}
	return sha256Hex(buf.Bytes())
}

func (c *Catalogs) Primaries(class model.Class) []model.Attribute {
	return c.Classes.ByClass[class].Primaries
}

func (c *Catalogs) Relevant(t model.MissionType) []model.Attribute {
	return c.Missions.ByType[t].Relevant
}

// CategoryWeights lists the mission type's item-category weights in
// category order.
func (c *Catalogs) CategoryWeights(t model.MissionType) []dice.Option[model.ItemCategory] {
	w := c.Missions.ByType[t].CategoryWeights
	out := make([]dice.Option[model.ItemCategory], 0, len(w))
	for _, cat := range model.AllItemCategories() {
		if n := w[cat]; n > 0 {
			out = append(out, dice.Option[model.ItemCategory]{Value: cat, Weight: n})
		}
	}
	return out
}

// RarityWeights lists the tier's rarity weights from common to legendary.
func (c *Catalogs) RarityWeights(t model.LootTier) []dice.Option[model.Rarity] {
	w := c.Loot.byTier[t].RarityWeights
	out := make([]dice.Option[model.Rarity], 0, len(w))
	for _, r := range model.AllRarities() {
		if n := w[r]; n > 0 {
			out = append(out, dice.Option[model.Rarity]{Value: r, Weight: n})
		}
	}
	return out
}

func (c *Catalogs) ItemBases(cat model.ItemCategory) []ItemBase {
	return c.Loot.byCategory[cat].Bases
}

// ApplyRace adds the race modifiers in attribute order.
func (c *Catalogs) ApplyRace(race model.Race, attrs *model.Attributes) {
	mods := c.Races.ByRace[race].Modifiers
	for _, a := range model.AllAttributes() {
		if d, ok := mods[a]; ok {
			attrs.Add(a, d)
		}
	}
}

func (c *Catalogs) MissionTitles(t model.MissionType) []string {
	return c.Missions.ByType[t].Titles
}

func readCatalogFile(overrideDir, name string) ([]byte, string, error) {
	if overrideDir != "" {
		p := filepath.Join(overrideDir, name)
		b, err := os.ReadFile(p)
		if err == nil {
			return b, p, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", err
		}
	}
	b, err := defaultFiles.ReadFile("defaults/" + name)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", name, err)
	}
	return b, "embedded", nil
}

func validateAgainstSchema(name string, raw []byte) error {
	schemaName := name[:len(name)-len(".json")] + ".schema.json"
	sb, err := schemaFiles.ReadFile("schemas/" + schemaName)
	if err != nil {
		return fmt.Errorf("%s: %w", schemaName, err)
	}
	url := schemaBaseURL + schemaName
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(url, bytes.NewReader(sb)); err != nil {
		return fmt.Errorf("%s: %w", schemaName, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return fmt.Errorf("%s: %w", schemaName, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func loadClasses(raw []byte, out *ClassCatalog) error {
	var defs []ClassDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("classes.json: %w", err)
	}
	out.ByClass = map[model.Class]ClassDef{}
	for _, d := range defs {
		if _, dup := out.ByClass[d.Class]; dup {
			return fmt.Errorf("classes.json: duplicate class %s", d.Class)
		}
		out.ByClass[d.Class] = d
	}
	for _, cl := range model.AllClasses() {
		if _, ok := out.ByClass[cl]; !ok {
			return fmt.Errorf("classes.json: missing class %s", cl)
		}
	}
	return nil
}

func loadRaces(raw []byte, out *RaceCatalog) error {
	var defs []RaceDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("races.json: %w", err)
	}
	out.ByRace = map[model.Race]RaceDef{}
	for _, d := range defs {
		out.ByRace[d.Race] = d
	}
	for _, r := range model.AllRaces() {
		if _, ok := out.ByRace[r]; !ok {
			return fmt.Errorf("races.json: missing race %s", r)
		}
	}
	return nil
}

func loadMissions(raw []byte, out *MissionCatalog) error {
	var defs []MissionDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("missions.json: %w", err)
	}
	out.ByType = map[model.MissionType]MissionDef{}
	for _, d := range defs {
		total := 0
		for _, w := range d.CategoryWeights {
			total += w
		}
		if total <= 0 {
			return fmt.Errorf("missions.json: %s has no category weight", d.Type)
		}
		out.ByType[d.Type] = d
	}
	for _, t := range model.AllMissionTypes() {
		if _, ok := out.ByType[t]; !ok {
			return fmt.Errorf("missions.json: missing mission type %s", t)
		}
	}
	return nil
}

func loadLoot(raw []byte, out *LootCatalog) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("loot.json: %w", err)
	}
	out.byTier = map[model.LootTier]TierDef{}
	for _, t := range out.Tiers {
		sum := 0
		for _, w := range t.RarityWeights {
			sum += w
		}
		if sum != 100 {
			return fmt.Errorf("loot.json: tier %s rarity weights sum to %d, want 100", t.Tier, sum)
		}
		out.byTier[t.Tier] = t
	}
	for _, t := range model.AllLootTiers() {
		if _, ok := out.byTier[t]; !ok {
			return fmt.Errorf("loot.json: missing tier %s", t)
		}
	}
	out.byCategory = map[model.ItemCategory]ItemTable{}
	for _, it := range out.Items {
		out.byCategory[it.Category] = it
	}
	for _, cat := range model.AllItemCategories() {
		if len(out.byCategory[cat].Bases) == 0 {
			return fmt.Errorf("loot.json: missing item bases for %s", cat)
		}
	}
	return nil
}

func loadNames(raw []byte, out *NameCatalog) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("names.json: %w", err)
	}
	return nil
}

func loadStaff(raw []byte, out *StaffCatalog) error {
	if err := json.Unmarshal(raw, &out.Roles); err != nil {
		return fmt.Errorf("staff.json: %w", err)
	}
	out.ByRole = make(map[string]StaffRole, len(out.Roles))
	for _, r := range out.Roles {
		out.ByRole[r.Role] = r
	}
	return nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
