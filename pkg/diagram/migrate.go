package diagram

import (
	errs "github.com/matzehuels/archboard/pkg/errors"
)

// MigrationFunc upgrades a diagram from one schema version to the next.
// It must not change d.Version; [Migrate] advances it.
type MigrationFunc func(d *Diagram) error

// migrations maps a stored version to the step that lifts it by one.
var migrations = map[int]MigrationFunc{
	0: migrateUnversioned,
}

// Migrate upgrades d in place to [SchemaVersion], one registered step per
// version. Documents from a newer schema, or from a version with no
// registered step, fail with UNSUPPORTED_VERSION and are left unchanged
// past the last successful step.
func Migrate(d *Diagram) error {
	if d.Version > SchemaVersion || d.Version < 0 {
		return errs.New(errs.ErrCodeUnsupportedVersion, "unsupported schema version %d (current %d)", d.Version, SchemaVersion)
	}
	for d.Version < SchemaVersion {
		step, ok := migrations[d.Version]
		if !ok {
			return errs.New(errs.ErrCodeUnsupportedVersion, "no migration from schema version %d", d.Version)
		}
		if err := step(d); err != nil {
			return errs.Wrap(errs.ErrCodeUnsupportedVersion, err, "migrate from version %d", d.Version)
		}
		d.Version++
	}
	d.normalize()
	return nil
}

// migrateUnversioned upgrades documents written without a version tag,
// which only ever held nodes and edges. Edges without a type get the
// default connection type.
func migrateUnversioned(d *Diagram) error {
	d.normalize()
	for i := range d.Edges {
		if d.Edges[i].Type == "" {
			d.Edges[i].Type = DefaultEdgeType
		}
	}
	return nil
}
