package opc

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// RootSource is the source name of package-level relationships.
const RootSource = "/"

// Part is one named blob in a package.
type Part struct {
	Name        string // absolute part name, e.g. /Documents/1/Pages/1.fpage
	ContentType string
	Data        []byte
}

// Extension returns the lower-cased extension of the part name without
// the dot, or "" if there is none.
func (p *Part) Extension() string {
	return extension(p.Name)
}

// Relationship is a directed edge from a source part (or the package root)
// to a target part.
type Relationship struct {
	ID       string
	Source   string
	Target   string
	Type     string
	Implicit bool // carried by the source part's markup, not by a .rels part
	External bool // target lies outside the package
}

// Package is an in-memory OPC package.
type Package struct {
	startType string

	parts     []*Part
	index     map[string]*Part // keyed by lower-cased part name
	defaults  map[string]string
	overrides map[string]string
	rels      []Relationship
	nextID    map[string]int
}

// New creates an empty package whose single start part is reached from
// the root through a relationship of startType.
func New(startType string) *Package {
	return &Package{
		startType: startType,
		index:     make(map[string]*Part),
		defaults:  make(map[string]string),
		overrides: make(map[string]string),
		nextID:    make(map[string]int),
	}
}

// StartType returns the relationship type that identifies the start part.
func (p *Package) StartType() string { return p.startType }

// AddPart adds a part. The content type is registered as the default for
// the part's extension, or as an override when the extension already maps
// to a different type.
func (p *Package) AddPart(name, contentType string, data []byte) (*Part, error) {
	if err := checkPartName(name); err != nil {
		return nil, err
	}
	if contentType == "" {
		return nil, fmt.Errorf("part %s: empty content type", name)
	}

	key := strings.ToLower(name)
	if _, exists := p.index[key]; exists {
		return nil, fmt.Errorf("part %s: already exists", name)
	}

	part := &Part{Name: name, ContentType: contentType, Data: data}
	p.parts = append(p.parts, part)
	p.index[key] = part

	ext := extension(name)
	switch existing, ok := p.defaults[ext]; {
	case ext == "":
		p.overrides[name] = contentType
	case !ok:
		p.defaults[ext] = contentType
	case existing != contentType:
		p.overrides[name] = contentType
	}

	return part, nil
}

// Part returns the part with the given name, or nil.
func (p *Package) Part(name string) *Part {
	return p.index[strings.ToLower(name)]
}

// Parts returns the parts in insertion order.
func (p *Package) Parts() []*Part {
	out := make([]*Part, len(p.parts))
	copy(out, p.parts)
	return out
}

// Relate adds an explicit relationship, written to the source's .rels
// part, and returns its ID. Adding the same edge twice returns the
// existing ID.
func (p *Package) Relate(source, target, relType string) string {
	return p.addRel(Relationship{Source: source, Target: target, Type: relType})
}

// RelateExternal adds an explicit relationship to a target outside the
// package.
func (p *Package) RelateExternal(source, target, relType string) string {
	return p.addRel(Relationship{Source: source, Target: target, Type: relType, External: true})
}

// Reference records an implicit reference carried by the source part's
// markup.
func (p *Package) Reference(source, target, relType string) string {
	return p.addRel(Relationship{Source: source, Target: target, Type: relType, Implicit: true})
}

// addRel appends r, assigning the next free ID for its source when r.ID
// is empty.
func (p *Package) addRel(r Relationship) string {
	for _, existing := range p.rels {
		if existing.Source == r.Source && existing.Target == r.Target &&
			existing.Type == r.Type && existing.Implicit == r.Implicit {
			return existing.ID
		}
	}

	if r.ID == "" {
		for {
			p.nextID[r.Source]++
			r.ID = fmt.Sprintf("R%d", p.nextID[r.Source])
			if !p.hasID(r.Source, r.ID) {
				break
			}
		}
	}
	p.rels = append(p.rels, r)
	return r.ID
}

func (p *Package) hasID(source, id string) bool {
	for _, r := range p.rels {
		if r.Source == source && r.ID == id {
			return true
		}
	}
	return false
}

// Relationships returns all edges in insertion order.
func (p *Package) Relationships() []Relationship {
	out := make([]Relationship, len(p.rels))
	copy(out, p.rels)
	return out
}

// RelationshipsFrom returns the edges leaving source, in insertion order.
func (p *Package) RelationshipsFrom(source string) []Relationship {
	var out []Relationship
	for _, r := range p.rels {
		if r.Source == source {
			out = append(out, r)
		}
	}
	return out
}

// ContentTypes returns the manifest: default content types by extension
// and overrides by part name. The rels default is included whenever the
// package has explicit relationships.
func (p *Package) ContentTypes() (defaults map[string]string, overrides map[string]string) {
	defaults = make(map[string]string, len(p.defaults)+1)
	for k, v := range p.defaults {
		defaults[k] = v
	}
	if p.hasExplicitRels() {
		defaults["rels"] = ContentTypeRelationships
	}
	overrides = make(map[string]string, len(p.overrides))
	for k, v := range p.overrides {
		overrides[k] = v
	}
	return defaults, overrides
}

// ContentTypeOf returns the manifest content type for a part name.
func (p *Package) ContentTypeOf(name string) (string, bool) {
	if ct, ok := p.overrides[name]; ok {
		return ct, true
	}
	ct, ok := p.defaults[extension(name)]
	return ct, ok
}

func (p *Package) hasExplicitRels() bool {
	for _, r := range p.rels {
		if !r.Implicit {
			return true
		}
	}
	return false
}

// StartPart returns the target of the root relationship of the start type.
func (p *Package) StartPart() (*Part, error) {
	var targets []string
	for _, r := range p.rels {
		if r.Source == RootSource && r.Type == p.startType {
			targets = append(targets, r.Target)
		}
	}
	switch len(targets) {
	case 0:
		return nil, fmt.Errorf("no root relationship of type %s", p.startType)
	case 1:
	default:
		return nil, fmt.Errorf("%d root relationships of type %s", len(targets), p.startType)
	}

	part := p.Part(targets[0])
	if part == nil {
		return nil, fmt.Errorf("start part %s does not exist", targets[0])
	}
	return part, nil
}

// ValidationError lists every problem found by Validate.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid package: %s", strings.Join(e.Problems, "; "))
}

// Validate checks the package invariants: every relationship target
// exists, every part has a content type, there is exactly one start part,
// and every part is reachable from the root.
func (p *Package) Validate() error {
	var problems []string

	for _, r := range p.rels {
		if r.Source != RootSource && p.Part(r.Source) == nil {
			problems = append(problems, fmt.Sprintf("relationship %s has unknown source %s", r.ID, r.Source))
		}
		if !r.External && p.Part(r.Target) == nil {
			problems = append(problems, fmt.Sprintf("relationship %s from %s has dangling target %s", r.ID, r.Source, r.Target))
		}
	}

	for _, part := range p.parts {
		if _, ok := p.ContentTypeOf(part.Name); !ok {
			problems = append(problems, fmt.Sprintf("part %s has no content type", part.Name))
		}
	}

	if _, err := p.StartPart(); err != nil {
		problems = append(problems, err.Error())
	}

	reached := p.reachable()
	for _, part := range p.parts {
		if !reached[strings.ToLower(part.Name)] {
			problems = append(problems, fmt.Sprintf("part %s is not reachable from the root", part.Name))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// reachable walks every edge from the root and returns the lower-cased
// names of the parts it reaches.
func (p *Package) reachable() map[string]bool {
	seen := make(map[string]bool)
	queue := []string{RootSource}
	for len(queue) > 0 {
		src := queue[0]
		queue = queue[1:]
		for _, r := range p.rels {
			if r.External || !strings.EqualFold(r.Source, src) {
				continue
			}
			key := strings.ToLower(r.Target)
			if seen[key] {
				continue
			}
			seen[key] = true
			queue = append(queue, r.Target)
		}
	}
	return seen
}

// relsPartName returns the name of the .rels part holding the
// relationships of source.
func relsPartName(source string) string {
	if source == RootSource {
		return "/_rels/.rels"
	}
	dir, file := path.Split(source)
	return dir + "_rels/" + file + ".rels"
}

// sourceOfRels is the inverse of relsPartName.
func sourceOfRels(name string) (string, bool) {
	if !strings.HasSuffix(name, ".rels") {
		return "", false
	}
	dir, file := path.Split(name)
	if !strings.HasSuffix(dir, "/_rels/") {
		return "", false
	}
	parent := strings.TrimSuffix(dir, "_rels/")
	file = strings.TrimSuffix(file, ".rels")
	if file == "" {
		if parent == "/" {
			return RootSource, true
		}
		return "", false
	}
	return parent + file, true
}

func checkPartName(name string) error {
	switch {
	case name == "" || name[0] != '/':
		return fmt.Errorf("part name %q must be absolute", name)
	case strings.HasSuffix(name, "/"):
		return fmt.Errorf("part name %q must not end with a slash", name)
	case strings.EqualFold(name, contentTypesName):
		return fmt.Errorf("part name %q is reserved", name)
	case strings.Contains(strings.ToLower(name), "/_rels/"):
		return fmt.Errorf("part name %q is reserved for relationships", name)
	case path.Clean(name) != name:
		return fmt.Errorf("part name %q is not canonical", name)
	}
	return nil
}

func extension(name string) string {
	ext := path.Ext(name)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// sortedSources returns the distinct sources of explicit relationships,
// sorted.
func (p *Package) sortedSources() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range p.rels {
		if r.Implicit || seen[r.Source] {
			continue
		}
		seen[r.Source] = true
		out = append(out, r.Source)
	}
	sort.Strings(out)
	return out
}
