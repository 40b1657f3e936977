package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/doodlesbykumbi/portcullis/pkg/model"
)

// Document is a parsed seed file
type Document struct {
	Groups            []string            `yaml:"groups"`
	Permissions       []string            `yaml:"permissions"`
	GroupPermissions  map[string][]string `yaml:"group_permissions"`
	ObjectPermissions map[string][]string `yaml:"object_permissions"`
	UserPermissions   map[string][]string `yaml:"user_permissions"`
}

// Parse reads a seed document. Unknown keys are rejected.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed document: %w", err)
	}

	doc := &Document{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse seed document: %w", err)
	}
	return doc, doc.Validate()
}

// Validate checks names without consulting the database
func (d *Document) Validate() error {
	var result *multierror.Error

	checkName := func(kind, name string) {
		switch {
		case strings.TrimSpace(name) == "":
			result = multierror.Append(result, fmt.Errorf("empty %s name", kind))
		case len(name) > model.MaxNameLength:
			result = multierror.Append(result, fmt.Errorf("%s name %q is longer than %d characters", kind, name, model.MaxNameLength))
		}
	}

	for _, name := range d.Groups {
		checkName("group", name)
	}
	for _, name := range d.Permissions {
		checkName("permission", name)
	}
	for _, group := range sortedKeys(d.GroupPermissions) {
		checkName("group", group)
		for _, perm := range d.GroupPermissions[group] {
			checkName("permission", perm)
		}
	}
	for _, path := range sortedKeys(d.ObjectPermissions) {
		switch {
		case strings.TrimSpace(path) == "":
			result = multierror.Append(result, errors.New("empty object path"))
		case len(path) > model.MaxObjectPathLength:
			result = multierror.Append(result, fmt.Errorf("object path %q is longer than %d characters", path, model.MaxObjectPathLength))
		}
		for _, perm := range d.ObjectPermissions[path] {
			checkName("permission", perm)
		}
	}
	for _, user := range sortedKeys(d.UserPermissions) {
		checkName("user", user)
		for _, perm := range d.UserPermissions[user] {
			checkName("permission", perm)
		}
	}

	return result.ErrorOrNil()
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
