package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/doodlesbykumbi/portcullis/pkg/server/store"
)

// errDryRun rolls back a dry run once everything has been applied
var errDryRun = errors.New("dry run")

// Result summarises an applied document
type Result struct {
	Groups         int  `json:"groups"`
	Permissions    int  `json:"permissions"`
	GroupBindings  int  `json:"group_bindings"`
	ObjectBindings int  `json:"object_bindings"`
	UserBindings   int  `json:"user_bindings"`
	DryRun         bool `json:"dry_run"`
}

// Loader applies seed documents through an AdminStore
type Loader struct {
	store  store.AdminStore
	logger hclog.Logger
	dryRun bool
}

// NewLoader creates a seed loader. A nil logger discards output.
func NewLoader(s store.AdminStore, logger hclog.Logger) *Loader {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Loader{store: s, logger: logger}
}

// WithDryRun sets whether to validate only without committing changes.
func (l *Loader) WithDryRun(dryRun bool) *Loader {
	l.dryRun = dryRun
	return l
}

// LoadFromFile parses and applies the document at path.
func (l *Loader) LoadFromFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return l.LoadFromReader(ctx, f)
}

// LoadFromReader parses and applies a document.
func (l *Loader) LoadFromReader(ctx context.Context, r io.Reader) (*Result, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return l.Apply(ctx, doc)
}

// Apply writes doc in a single transaction. Any unresolved reference rolls
// the whole document back.
func (l *Loader) Apply(ctx context.Context, doc *Document) (*Result, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	var result *Result
	err := l.store.Transaction(ctx, func(tx store.AdminStore) error {
		a := &applier{ctx: ctx, tx: tx, result: &Result{DryRun: l.dryRun}}
		if err := a.apply(doc); err != nil {
			return err
		}
		result = a.result
		if l.dryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return nil, err
	}

	l.logger.Info("seed applied",
		"groups", result.Groups,
		"permissions", result.Permissions,
		"group_bindings", result.GroupBindings,
		"object_bindings", result.ObjectBindings,
		"user_bindings", result.UserBindings,
		"dry_run", result.DryRun)
	return result, nil
}

// applier carries the state of one transaction
type applier struct {
	ctx    context.Context
	tx     store.AdminStore
	result *Result
}

func (a *applier) apply(doc *Document) error {
	for _, name := range doc.Groups {
		if _, err := a.tx.EnsureGroup(a.ctx, name); err != nil {
			return fmt.Errorf("failed to create group %q: %w", name, err)
		}
		a.result.Groups++
	}
	for _, name := range doc.Permissions {
		if _, err := a.tx.EnsurePermission(a.ctx, name); err != nil {
			return fmt.Errorf("failed to create permission %q: %w", name, err)
		}
		a.result.Permissions++
	}

	// Resolve every reference before writing any binding
	var unresolved *multierror.Error

	groupIDs := make(map[string]int64)
	for _, name := range sortedKeys(doc.GroupPermissions) {
		group, err := a.tx.GroupByName(a.ctx, name)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			unresolved = multierror.Append(unresolved, fmt.Errorf("group %q does not exist", name))
			continue
		}
		groupIDs[name] = group.ID
	}

	userIDs := make(map[string]int64)
	for _, name := range sortedKeys(doc.UserPermissions) {
		user, err := a.tx.UserByUsername(a.ctx, name)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			unresolved = multierror.Append(unresolved, fmt.Errorf("user %q does not exist", name))
			continue
		}
		userIDs[name] = user.ID
	}

	permIDs := make(map[string]int64)
	missingPerms := make(map[string]bool)
	resolvePerms := func(names []string) ([]int64, error) {
		ids := make([]int64, 0, len(names))
		for _, name := range names {
			if id, ok := permIDs[name]; ok {
				ids = append(ids, id)
				continue
			}
			if missingPerms[name] {
				continue
			}
			perm, err := a.tx.PermissionByName(a.ctx, name)
			if err != nil {
				if !errors.Is(err, store.ErrNotFound) {
					return nil, err
				}
				missingPerms[name] = true
				unresolved = multierror.Append(unresolved, fmt.Errorf("permission %q does not exist", name))
				continue
			}
			permIDs[name] = perm.ID
			ids = append(ids, perm.ID)
		}
		return ids, nil
	}

	groupBindings := make(map[string][]int64)
	for _, name := range sortedKeys(doc.GroupPermissions) {
		ids, err := resolvePerms(doc.GroupPermissions[name])
		if err != nil {
			return err
		}
		groupBindings[name] = ids
	}
	objectBindings := make(map[string][]int64)
	for _, path := range sortedKeys(doc.ObjectPermissions) {
		ids, err := resolvePerms(doc.ObjectPermissions[path])
		if err != nil {
			return err
		}
		objectBindings[path] = ids
	}
	userBindings := make(map[string][]int64)
	for _, name := range sortedKeys(doc.UserPermissions) {
		ids, err := resolvePerms(doc.UserPermissions[name])
		if err != nil {
			return err
		}
		userBindings[name] = ids
	}

	if err := unresolved.ErrorOrNil(); err != nil {
		return err
	}

	for _, name := range sortedKeys(doc.GroupPermissions) {
		if err := a.tx.ReplaceGroupPermissions(a.ctx, groupIDs[name], groupBindings[name]); err != nil {
			return fmt.Errorf("failed to bind permissions to group %q: %w", name, err)
		}
		a.result.GroupBindings += len(groupBindings[name])
	}
	for _, path := range sortedKeys(doc.ObjectPermissions) {
		if err := a.tx.ReplaceObjectPermissions(a.ctx, path, objectBindings[path]); err != nil {
			return fmt.Errorf("failed to bind permissions to %q: %w", path, err)
		}
		a.result.ObjectBindings += len(objectBindings[path])
	}
	for _, name := range sortedKeys(doc.UserPermissions) {
		for _, permID := range userBindings[name] {
			if err := a.tx.GrantUserPermission(a.ctx, userIDs[name], permID); err != nil {
				return fmt.Errorf("failed to bind permission to user %q: %w", name, err)
			}
			a.result.UserBindings++
		}
	}
	return nil
}
