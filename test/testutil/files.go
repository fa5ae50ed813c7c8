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

package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirseerhq/sirseer-board/internal/catalog"
	"gopkg.in/yaml.v3"
)

// CreateTempFile creates a temporary file with the given content
func CreateTempFile(t *testing.T, dir, pattern, content string) string {
	t.Helper()

	file, err := os.CreateTemp(dir, pattern)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	if _, err := file.WriteString(content); err != nil {
		file.Close()
		t.Fatalf("Failed to write to temp file: %v", err)
	}

	if err := file.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	return file.Name()
}

// TeamFixture describes a team to be written into a catalog file.
type TeamFixture struct {
	Name         string
	Organization string
	Repositories []string
	Members      []string
}

// TeamEntities expands a fixture into the group, component and user
// entities a catalog holds for it.
func TeamEntities(team TeamFixture) []catalog.Entity {
	group := catalog.Entity{Kind: catalog.KindGroup, Metadata: catalog.Metadata{Name: team.Name}}
	if team.Organization != "" {
		group.Metadata.Annotations = map[string]string{catalog.AnnotationTeamOrg: team.Organization}
	}
	ref := "group:default/" + team.Name

	entities := []catalog.Entity{group}
	for i, slug := range team.Repositories {
		entities = append(entities, catalog.Entity{
			Kind: catalog.KindComponent,
			Metadata: catalog.Metadata{
				Name:        team.Name + "-component-" + string(rune('a'+i)),
				Annotations: map[string]string{catalog.AnnotationProjectSlug: slug},
			},
			Spec: catalog.Spec{Owner: ref},
		})
	}
	for _, login := range team.Members {
		entities = append(entities, catalog.Entity{
			Kind: catalog.KindUser,
			Metadata: catalog.Metadata{
				Name:        login,
				Annotations: map[string]string{catalog.AnnotationUserLogin: login},
			},
			Spec: catalog.Spec{MemberOf: []string{ref}},
		})
	}
	return entities
}

// WriteCatalog writes the teams as a multi-document YAML catalog in dir and
// returns its path.
func WriteCatalog(t *testing.T, dir string, teams ...TeamFixture) string {
	t.Helper()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for _, team := range teams {
		for _, e := range TeamEntities(team) {
			if err := enc.Encode(e); err != nil {
				t.Fatalf("Failed to encode catalog entity: %v", err)
			}
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Failed to finish catalog: %v", err)
	}

	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}
	return path
}

// WriteConfig marshals cfg as YAML into dir/.sirseer-board.yaml.
func WriteConfig(t *testing.T, dir string, cfg any) string {
	t.Helper()

	content, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	path := filepath.Join(dir, ".sirseer-board.yaml")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

// AssertFileExists checks that a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks that a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Expected file to not exist: %s", path)
	}
}
