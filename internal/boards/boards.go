// Package boards holds the catalog of category boards the site lists.
package boards

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"clubweb/internal/models"
)

//go:embed boards.yaml
var defaultCatalog []byte

//go:embed boards.schema.json
var catalogSchema string

const defaultEmptyMessage = "No posts yet."

// reserved paths are served by fixed site pages.
var reserved = map[string]bool{
	"": true, "/about": true, "/rule": true, "/gallery": true, "/library": true, "/fee": true,
	"/cleaning": true, "/login": true, "/register": true, "/logout": true, "/mypage": true,
	"/officer": true, "/healthz": true, "/static": true,
}

type Board struct {
	Key          string `yaml:"key"`
	Title        string `yaml:"title"`
	Path         string `yaml:"path"`
	CategoryID   int    `yaml:"category_id"`
	CategoryName string `yaml:"category_name"`
	WriteRole    string `yaml:"write_role"`
	EmptyMessage string `yaml:"empty_message"`
	Group        string `yaml:"group"`
}

// CanWrite reports whether a visitor may see and use the board's write form.
// An empty WriteRole admits any logged-in visitor.
func (b Board) CanWrite(loggedIn bool, role models.Role) bool {
	if !loggedIn {
		return false
	}
	return b.WriteRole == "" || models.Role(b.WriteRole) == models.RoleMember || models.Role(b.WriteRole) == role
}

func (b Board) DetailPath(id int) string { return b.Path + "/" + strconv.Itoa(id) }
func (b Board) WritePath() string        { return b.Path + "/write" }

type Group struct {
	Key   string `yaml:"key"`
	Title string `yaml:"title"`
	Path  string `yaml:"path"`
}

type Catalog struct {
	Groups []Group `yaml:"groups"`
	Boards []Board `yaml:"boards"`
}

// Load reads the catalog at path; an empty path selects the built-in catalog.
func Load(path string) (Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Parse(defaultCatalog)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, err
	}
	c, err := Parse(raw)
	if err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Default() Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("boards.schema.json", catalogSchema)
	})
	return schema, schemaErr
}

// Parse validates raw YAML against the catalog schema and decodes it.
func Parse(raw []byte) (Catalog, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Catalog{}, fmt.Errorf("boards: %w", err)
	}
	// the validator wants JSON-shaped values
	js, err := json.Marshal(doc)
	if err != nil {
		return Catalog{}, fmt.Errorf("boards: %w", err)
	}
	var jdoc any
	if err := json.Unmarshal(js, &jdoc); err != nil {
		return Catalog{}, fmt.Errorf("boards: %w", err)
	}
	sch, err := compiledSchema()
	if err != nil {
		return Catalog{}, fmt.Errorf("boards: schema: %w", err)
	}
	if err := sch.Validate(jdoc); err != nil {
		return Catalog{}, fmt.Errorf("boards: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Catalog{}, fmt.Errorf("boards: %w", err)
	}
	if err := c.normalize(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

func (c *Catalog) normalize() error {
	groups := map[string]bool{}
	paths := map[string]string{}
	for i := range c.Groups {
		g := &c.Groups[i]
		if g.Path == "" {
			g.Path = "/" + g.Key
		}
		g.Path = strings.TrimRight(g.Path, "/")
		if groups[g.Key] {
			return fmt.Errorf("boards: duplicate group %q", g.Key)
		}
		if reserved[g.Path] {
			return fmt.Errorf("boards: group %q uses reserved path %q", g.Key, g.Path)
		}
		groups[g.Key] = true
		paths[g.Path] = g.Key
	}
	keys := map[string]bool{}
	for i := range c.Boards {
		b := &c.Boards[i]
		if b.Path == "" {
			b.Path = "/" + b.Key
		}
		b.Path = strings.TrimRight(b.Path, "/")
		if b.CategoryName == "" {
			b.CategoryName = b.Title
		}
		if b.EmptyMessage == "" {
			b.EmptyMessage = defaultEmptyMessage
		}
		if keys[b.Key] {
			return fmt.Errorf("boards: duplicate board %q", b.Key)
		}
		if reserved[b.Path] {
			return fmt.Errorf("boards: board %q uses reserved path %q", b.Key, b.Path)
		}
		keys[b.Key] = true
		if other, ok := paths[b.Path]; ok {
			return fmt.Errorf("boards: board %q reuses path %s of %q", b.Key, b.Path, other)
		}
		paths[b.Path] = b.Key
		if b.Group != "" && !groups[b.Group] {
			return fmt.Errorf("boards: board %q names unknown group %q", b.Key, b.Group)
		}
	}
	return nil
}

func (c Catalog) Board(key string) (Board, bool) {
	for _, b := range c.Boards {
		if b.Key == key {
			return b, true
		}
	}
	return Board{}, false
}

func (c Catalog) Group(key string) (Group, bool) {
	for _, g := range c.Groups {
		if g.Key == key {
			return g, true
		}
	}
	return Group{}, false
}

// ByCategory finds the board listing category id.
func (c Catalog) ByCategory(id int) (Board, bool) {
	for _, b := range c.Boards {
		if b.CategoryID == id {
			return b, true
		}
	}
	return Board{}, false
}

// Members returns the boards of a group in catalog order.
func (c Catalog) Members(group string) []Board {
	var out []Board
	for _, b := range c.Boards {
		if b.Group == group {
			out = append(out, b)
		}
	}
	return out
}
