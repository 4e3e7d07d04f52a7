package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestName is the project file thornc looks for in a project root.
const ManifestName = "thorn.yml"

// Manifest is the parsed contents of thorn.yml.
type Manifest struct {
	Path    string
	Name    string
	Version string
	License string
	Authors []string

	// Targets preserves declaration order; the first executable target
	// is the default build target.
	Targets map[string]*TargetSpec
	Order   []string

	Dependencies      map[string]*DependencySpec
	DevDependencies   map[string]*DependencySpec
	BuildDependencies map[string]*DependencySpec

	// Workspace carries tool-specific settings verbatim; the driver never
	// interprets them.
	Workspace map[string]any
}

// TargetSpec is one buildable target of the project.
type TargetSpec struct {
	Name string
	Type TargetType
	// Main is the entry source file for executable and test targets.
	Main string
	// Sources lists additional source files or directories beyond Main.
	Sources      []string
	Defines      map[string]string
	Dependencies map[string]*DependencySpec
}

// TargetType enumerates supported target kinds.
type TargetType string

const (
	TargetTypeExecutable TargetType = "executable"
	TargetTypeLibrary    TargetType = "library"
	TargetTypeTest       TargetType = "test"
)

// IsValid reports whether the target type is recognised.
func (t TargetType) IsValid() bool {
	switch t {
	case TargetTypeExecutable, TargetTypeLibrary, TargetTypeTest:
		return true
	}
	return false
}

// RequiresMain reports if the target needs a main entry file.
func (t TargetType) RequiresMain() bool {
	return t == TargetTypeExecutable || t == TargetTypeTest
}

// DependencySpec is one dependency descriptor. A dependency comes from a
// registry version, a git source, or a local path, exactly one of them.
type DependencySpec struct {
	Version string
	Git     string
	Rev     string
	Tag     string
	Branch  string
	Path    string
}

// ValidationError aggregates manifest validation failures so a broken
// manifest reports every problem at once.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

var ErrNoExecutableTarget = errors.New("manifest: no executable targets defined")

// LoadManifest parses thorn.yml from disk and validates it.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", abs, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var raw manifestFile
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", abs)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", abs, err)
	}

	m := raw.toManifest(abs)
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// DefaultExecutableTarget returns the first executable target in
// declaration order.
func (m *Manifest) DefaultExecutableTarget() (*TargetSpec, error) {
	if m != nil {
		for _, name := range m.Order {
			if t := m.Targets[name]; t != nil && t.Type == TargetTypeExecutable {
				return t, nil
			}
		}
	}
	return nil, ErrNoExecutableTarget
}

// FindTarget looks a target up by name, case-insensitively.
func (m *Manifest) FindTarget(name string) (*TargetSpec, bool) {
	if m == nil {
		return nil, false
	}
	name = strings.TrimSpace(name)
	if t, ok := m.Targets[name]; ok {
		return t, true
	}
	for _, key := range m.Order {
		if strings.EqualFold(key, name) {
			return m.Targets[key], true
		}
	}
	return nil, false
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	} else if !projectNamePattern.MatchString(m.Name) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("name %q contains characters outside [A-Za-z0-9_-]", m.Name))
	}
	for i, a := range m.Authors {
		if a == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("authors[%d] must be a non-empty string", i))
		}
	}

	for _, name := range m.Order {
		t := m.Targets[name]
		if t == nil {
			continue
		}
		if t.Type == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q missing type", name))
		} else if !t.Type.IsValid() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q has unsupported type %q", name, t.Type))
		}
		if t.Type.RequiresMain() && t.Main == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q requires a main entry file", name))
		}
	}

	for _, name := range m.Order {
		t := m.Targets[name]
		if t == nil {
			continue
		}
		for depName, dep := range t.Dependencies {
			for _, issue := range dep.validate() {
				errs.Issues = append(errs.Issues, fmt.Sprintf("targets.%s.dependencies.%s: %s", name, depName, issue))
			}
		}
	}

	for group, deps := range map[string]map[string]*DependencySpec{
		"dependencies":       m.Dependencies,
		"dev_dependencies":   m.DevDependencies,
		"build_dependencies": m.BuildDependencies,
	} {
		for name, dep := range deps {
			for _, issue := range dep.validate() {
				errs.Issues = append(errs.Issues, fmt.Sprintf("%s.%s: %s", group, name, issue))
			}
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

var (
	projectNamePattern       = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	versionConstraintPattern = regexp.MustCompile(`^(~>|>=|<=|>|<|=|\^)?\s*[0-9]+(\.[0-9]+){0,2}([0-9A-Za-z\-\+\.]*)?$`)
)

func (d *DependencySpec) validate() []string {
	var errs []string
	if d == nil {
		return errs
	}
	if d.Path != "" && (d.Version != "" || d.Git != "") {
		errs = append(errs, "path overrides cannot specify version or git source")
	}
	if d.Git != "" && d.Version != "" {
		errs = append(errs, "git dependencies cannot also specify version")
	}
	selectors := 0
	for _, s := range []string{d.Rev, d.Tag, d.Branch} {
		if s != "" {
			selectors++
		}
	}
	if selectors > 0 && d.Git == "" {
		errs = append(errs, "rev, tag, and branch apply only to git dependencies")
	}
	if selectors > 1 {
		errs = append(errs, "rev, tag, and branch are mutually exclusive")
	}
	if d.Version == "" && d.Git == "" && d.Path == "" {
		errs = append(errs, "must specify version, git, or path")
	}
	if d.Version != "" && !isValidVersionConstraint(d.Version) {
		errs = append(errs, fmt.Sprintf("invalid version constraint %q", d.Version))
	}
	return errs
}

func isValidVersionConstraint(input string) bool {
	s := strings.TrimSpace(input)
	if s == "" {
		return false
	}
	if s == "*" {
		return true
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" || !versionConstraintPattern.MatchString(part) {
			return false
		}
	}
	return true
}

type manifestFile struct {
	Name              string         `yaml:"name"`
	Version           string         `yaml:"version"`
	License           string         `yaml:"license"`
	Authors           stringList     `yaml:"authors"`
	Targets           targetMap      `yaml:"targets"`
	Dependencies      dependencyMap  `yaml:"dependencies"`
	DevDependencies   dependencyMap  `yaml:"dev_dependencies"`
	BuildDependencies dependencyMap  `yaml:"build_dependencies"`
	Workspace         map[string]any `yaml:"workspace"`
}

func (mf manifestFile) toManifest(path string) *Manifest {
	m := &Manifest{
		Path:              path,
		Name:              strings.TrimSpace(mf.Name),
		Version:           strings.TrimSpace(mf.Version),
		License:           strings.TrimSpace(mf.License),
		Authors:           mf.Authors.clean(),
		Targets:           make(map[string]*TargetSpec, len(mf.Targets.items)),
		Order:             make([]string, 0, len(mf.Targets.items)),
		Dependencies:      map[string]*DependencySpec(mf.Dependencies),
		DevDependencies:   map[string]*DependencySpec(mf.DevDependencies),
		BuildDependencies: map[string]*DependencySpec(mf.BuildDependencies),
		Workspace:         mf.Workspace,
	}
	for _, item := range mf.Targets.items {
		if item.spec == nil {
			continue
		}
		spec := &TargetSpec{
			Name:         item.name,
			Type:         item.spec.Type,
			Main:         strings.TrimSpace(item.spec.Main),
			Sources:      item.spec.Sources.clean(),
			Defines:      item.spec.Defines,
			Dependencies: map[string]*DependencySpec(item.spec.Dependencies),
		}
		if _, dup := m.Targets[item.name]; !dup {
			m.Targets[item.name] = spec
			m.Order = append(m.Order, item.name)
		}
	}
	return m
}

type targetYAML struct {
	Type         TargetType        `yaml:"type"`
	Main         string            `yaml:"main"`
	Sources      stringList        `yaml:"sources"`
	Defines      map[string]string `yaml:"defines"`
	Dependencies dependencyMap     `yaml:"dependencies"`
}

// targetMap decodes the targets mapping while preserving key order,
// which plain map decoding loses.
type targetMap struct {
	items []targetMapEntry
}

type targetMapEntry struct {
	name string
	spec *targetYAML
}

func (tm *targetMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		tm.items = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: targets must be a mapping")
	}
	items := make([]targetMapEntry, 0, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: targets must not use empty keys")
		}
		entry := new(targetYAML)
		if err := value.Content[i+1].Decode(entry); err != nil {
			return fmt.Errorf("manifest: target %q: %w", key, err)
		}
		items = append(items, targetMapEntry{name: key, spec: entry})
	}
	tm.items = items
	return nil
}

type dependencyMap map[string]*DependencySpec

func (dm *dependencyMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		*dm = make(dependencyMap)
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: dependencies must be a mapping")
	}
	result := make(dependencyMap, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: dependency names must be non-empty")
		}
		var dep DependencySpec
		if err := dep.unmarshalYAML(value.Content[i+1]); err != nil {
			return fmt.Errorf("manifest: dependency %q: %w", key, err)
		}
		result[key] = &dep
	}
	*dm = result
	return nil
}

// A bare string is shorthand for a registry version constraint:
// `json: "^1.2"` and `json: {version: "^1.2"}` mean the same thing.
func (d *DependencySpec) unmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*d = DependencySpec{}
			return nil
		}
		*d = DependencySpec{Version: strings.TrimSpace(value.Value)}
		return nil
	case yaml.MappingNode:
		var raw struct {
			Version string `yaml:"version"`
			Git     string `yaml:"git"`
			Rev     string `yaml:"rev"`
			Tag     string `yaml:"tag"`
			Branch  string `yaml:"branch"`
			Path    string `yaml:"path"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*d = DependencySpec{
			Version: strings.TrimSpace(raw.Version),
			Git:     strings.TrimSpace(raw.Git),
			Rev:     strings.TrimSpace(raw.Rev),
			Tag:     strings.TrimSpace(raw.Tag),
			Branch:  strings.TrimSpace(raw.Branch),
			Path:    strings.TrimSpace(raw.Path),
		}
		return nil
	case yaml.AliasNode:
		return d.unmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("expected string or mapping, found %s", value.ShortTag())
	}
}

type stringList []string

func (l stringList) clean() []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, item := range l {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var s string
			if err := node.Decode(&s); err != nil {
				return err
			}
			if s = strings.TrimSpace(s); s != "" {
				items = append(items, s)
			}
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("manifest: expected string or sequence for list but found %s", value.ShortTag())
	}
}
