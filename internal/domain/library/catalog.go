// Package library holds the reading-level book catalog shown in reading mode.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sentinel kinds for catalog errors.
var (
	ErrLevelNotFound = errors.New("reading level not found")
	ErrBookNotFound  = errors.New("book not found")
	ErrInvalid       = errors.New("invalid catalog")
)

// Book is one downloadable title.
type Book struct {
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
	File   string `yaml:"file"`
}

// Shelf is a reading level and its books.
type Shelf struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Books []Book `yaml:"books"`
}

// Catalog is the full library. File paths of books are resolved against Root.
type Catalog struct {
	Root    string  `yaml:"root"`
	Shelves []Shelf `yaml:"levels"`
}

// DefaultShelves lists the six reading levels, without books.
func DefaultShelves() []Shelf {
	return []Shelf{
		{ID: "beginner", Name: "Beginner"},
		{ID: "elementary", Name: "Elementary"},
		{ID: "pre_intermediate", Name: "Pre-intermediate"},
		{ID: "intermediate", Name: "Intermediate"},
		{ID: "upper_intermediate", Name: "Upper-intermediate"},
		{ID: "advanced", Name: "Advanced"},
	}
}

// Empty returns a catalog with the default levels and no books.
func Empty() *Catalog {
	return &Catalog{Shelves: DefaultShelves()}
}

// Load reads a YAML catalog from path. A relative Root is resolved against
// the catalog file's directory.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(c.Root) {
		c.Root = filepath.Join(filepath.Dir(path), c.Root)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if len(c.Shelves) == 0 {
		c.Shelves = DefaultShelves()
	}
	seen := make(map[string]bool, len(c.Shelves))
	for i, s := range c.Shelves {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: level %d has no id", ErrInvalid, i)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("%w: duplicate level %q", ErrInvalid, s.ID)
		}
		seen[s.ID] = true
		if s.Name == "" {
			c.Shelves[i].Name = Title(s.ID)
		}
		for j, b := range s.Books {
			if b.Title == "" {
				return nil, fmt.Errorf("%w: level %q book %d has no title", ErrInvalid, s.ID, j)
			}
			if b.Author == "" {
				c.Shelves[i].Books[j].Author = "Unknown"
			}
		}
	}
	return &c, nil
}

// Shelf returns the level with id.
func (c *Catalog) Shelf(id string) (Shelf, error) {
	for _, s := range c.Shelves {
		if s.ID == id {
			return s, nil
		}
	}
	return Shelf{}, fmt.Errorf("%w: %s", ErrLevelNotFound, id)
}

// Book returns the index-th book of level id.
func (c *Catalog) Book(id string, index int) (Book, error) {
	s, err := c.Shelf(id)
	if err != nil {
		return Book{}, err
	}
	if index < 0 || index >= len(s.Books) {
		return Book{}, fmt.Errorf("%w: %s/%d", ErrBookNotFound, id, index)
	}
	return s.Books[index], nil
}

// Path returns the on-disk location of b.
func (c *Catalog) Path(b Book) string {
	if filepath.IsAbs(b.File) || c.Root == "" {
		return b.File
	}
	return filepath.Join(c.Root, b.File)
}

// Title turns a level id like "upper_intermediate" into "Upper Intermediate".
func Title(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
