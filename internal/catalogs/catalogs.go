package catalogs

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"satchel.ai/internal/inventory"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const schemaBaseURL = "https://satchel.ai/schemas/"

type Catalogs struct {
	Categories CategoryCatalog
	Items      ItemCatalog
}

// CategoryCatalog keeps categories in file order, which is the display order.
type CategoryCatalog struct {
	Order  []string
	Defs   map[string]*CategoryDef
	Digest string
}

// CategoryDef is interned per catalog, so categories compare by pointer.
type CategoryDef struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

type ItemCatalog struct {
	Defs   map[string]*ItemDef
	Digest string
}

// ItemDef implements inventory.Item. Defs are interned per catalog.
type ItemDef struct {
	id       string
	name     string
	weight   int
	category *CategoryDef
}

type itemJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
	Weight   int    `json:"weight"`
}

var _ inventory.Item = (*ItemDef)(nil)

func (d *ItemDef) ID() string  { return d.id }
func (d *ItemDef) Weight() int { return d.weight }

// Name is the display name, falling back to the id.
func (d *ItemDef) Name() string {
	if d.name == "" {
		return d.id
	}
	return d.name
}

func (d *ItemDef) Category() inventory.Category {
	if d.category == nil {
		return nil
	}
	return d.category
}

func (d *ItemDef) String() string { return d.id }

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadCategories(filepath.Join(configDir, "categories.json"), &c.Categories); err != nil {
		return nil, err
	}
	if err := loadItems(filepath.Join(configDir, "items.json"), &c.Categories, &c.Items); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalogs) Item(id string) (*ItemDef, bool) {
	d, ok := c.Items.Defs[id]
	return d, ok
}

func (c *Catalogs) Category(id string) (*CategoryDef, bool) {
	d, ok := c.Categories.Defs[id]
	return d, ok
}

// Resolve looks an item up by id for callers that only need inventory.Item.
func (c *Catalogs) Resolve(id string) (inventory.Item, error) {
	d, ok := c.Items.Defs[id]
	if !ok {
		return nil, fmt.Errorf("unknown item %q", id)
	}
	return d, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func compileSchema(name string) (*jsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, err
	}
	comp := jsonschema.NewCompiler()
	if err := comp.AddResource(schemaBaseURL+name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return comp.Compile(schemaBaseURL + name)
}

// readValidated reads a catalog file and checks it against its schema before
// it is decoded into Go types.
func readValidated(path, schemaName string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	schema, err := compileSchema(schemaName)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return raw, nil
}

func loadCategories(path string, out *CategoryCatalog) error {
	raw, err := readValidated(path, "categories.schema.json")
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []CategoryDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("categories.json: %w", err)
	}
	out.Defs = make(map[string]*CategoryDef, len(defs))
	out.Order = out.Order[:0]
	for i := range defs {
		d := defs[i]
		if _, dup := out.Defs[d.ID]; dup {
			return fmt.Errorf("categories.json: duplicate id %s", d.ID)
		}
		out.Defs[d.ID] = &d
		out.Order = append(out.Order, d.ID)
	}
	return nil
}

func loadItems(path string, cats *CategoryCatalog, out *ItemCatalog) error {
	raw, err := readValidated(path, "items.schema.json")
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []itemJSON
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("items.json: %w", err)
	}
	out.Defs = make(map[string]*ItemDef, len(defs))
	for _, d := range defs {
		if _, dup := out.Defs[d.ID]; dup {
			return fmt.Errorf("items.json: duplicate id %s", d.ID)
		}
		def := &ItemDef{id: d.ID, name: d.Name, weight: d.Weight}
		if d.Category != "" {
			cat, ok := cats.Defs[d.Category]
			if !ok {
				return fmt.Errorf("items.json: %s: unknown category %s", d.ID, d.Category)
			}
			def.category = cat
		}
		out.Defs[d.ID] = def
	}
	return nil
}
