// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirseerhq/sirseer-board/internal/board"
	relaierrors "github.com/sirseerhq/sirseer-board/internal/errors"
	"gopkg.in/yaml.v3"
)

// Entity kinds understood by the catalog.
const (
	KindComponent = "Component"
	KindUser      = "User"
	KindGroup     = "Group"
)

// Annotations carrying GitHub identities.
const (
	AnnotationProjectSlug = "github.com/project-slug"
	AnnotationUserLogin   = "github.com/user-login"
	AnnotationTeamOrg     = "github.com/team-org"
)

const defaultNamespace = "default"

// Entity is one catalog entry.
type Entity struct {
	Kind     string   `yaml:"kind"`
	Metadata Metadata `yaml:"metadata"`
	Spec     Spec     `yaml:"spec"`
}

// Metadata names an entity and carries its annotations.
type Metadata struct {
	Name        string            `yaml:"name"`
	Namespace   string            `yaml:"namespace"`
	Annotations map[string]string `yaml:"annotations"`
}

// Spec holds the relations of an entity. Owner applies to components,
// MemberOf to users. Both take entity refs such as "group:default/platform"
// or a bare group name.
type Spec struct {
	Owner    string   `yaml:"owner"`
	MemberOf []string `yaml:"memberOf"`
}

// Ref returns the entity ref of e in kind:namespace/name form, lowercased.
func (e Entity) Ref() string {
	ns := e.Metadata.Namespace
	if ns == "" {
		ns = defaultNamespace
	}
	return strings.ToLower(e.Kind + ":" + ns + "/" + e.Metadata.Name)
}

// Filter selects entities related to a group. An entity matches when it is
// owned by OwnedBy or is a member of MemberOf; empty fields never match.
type Filter struct {
	OwnedBy  string
	MemberOf string
}

// Catalog is an in-memory set of entities.
type Catalog struct {
	entities []Entity
}

// New creates a Catalog from entities.
func New(entities ...Entity) *Catalog {
	return &Catalog{entities: entities}
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a multi-document YAML stream of entities. Documents without
// a kind are skipped.
func Parse(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	c := &Catalog{}
	for {
		var e Entity
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if e.Kind == "" {
			continue
		}
		c.entities = append(c.entities, e)
	}
	return c, nil
}

// GetEntities returns the entities matching filter, in catalog order.
func (c *Catalog) GetEntities(filter Filter) []Entity {
	ownedBy := normalizeRef(filter.OwnedBy)
	memberOf := normalizeRef(filter.MemberOf)

	var out []Entity
	for _, e := range c.entities {
		if ownedBy != "" && normalizeRef(e.Spec.Owner) == ownedBy {
			out = append(out, e)
			continue
		}
		if memberOf == "" {
			continue
		}
		for _, g := range e.Spec.MemberOf {
			if normalizeRef(g) == memberOf {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Group returns the group entity called name.
func (c *Catalog) Group(name string) (Entity, error) {
	ref := normalizeRef(name)
	for _, e := range c.entities {
		if e.Kind == KindGroup && e.Ref() == ref {
			return e, nil
		}
	}
	return Entity{}, fmt.Errorf("team %q: %w", name, relaierrors.ErrTeamNotFound)
}

// ResolveTeam builds the aggregation input for the group called name:
// project slugs of the components it owns, GitHub logins of its members
// and the organization its members' pull requests are searched in.
// Entities without the relevant annotation are skipped.
func (c *Catalog) ResolveTeam(name string) (board.Team, error) {
	group, err := c.Group(name)
	if err != nil {
		return board.Team{}, err
	}

	ref := group.Ref()
	var repositories, members []string
	for _, e := range c.GetEntities(Filter{OwnedBy: ref, MemberOf: ref}) {
		switch e.Kind {
		case KindComponent:
			repositories = appendUnique(repositories, e.Metadata.Annotations[AnnotationProjectSlug])
		case KindUser:
			members = appendUnique(members, e.Metadata.Annotations[AnnotationUserLogin])
		}
	}

	return board.Team{
		Name:         group.Metadata.Name,
		Repositories: repositories,
		Members:      members,
		Organization: group.Metadata.Annotations[AnnotationTeamOrg],
	}, nil
}

// Teams returns the names of all groups in the catalog.
func (c *Catalog) Teams() []string {
	var names []string
	for _, e := range c.entities {
		if e.Kind == KindGroup {
			names = append(names, e.Metadata.Name)
		}
	}
	return names
}

// normalizeRef turns "platform", "group:platform" or "group:default/platform"
// into the canonical lowercase group ref.
func normalizeRef(ref string) string {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return ""
	}
	kind := strings.ToLower(KindGroup)
	if k, rest, ok := strings.Cut(ref, ":"); ok {
		kind, ref = k, rest
	}
	if !strings.Contains(ref, "/") {
		ref = defaultNamespace + "/" + ref
	}
	return kind + ":" + ref
}

func appendUnique(values []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return values
	}
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}
