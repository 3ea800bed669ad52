package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/conn-castle/core-installer/internal/messages"
	"github.com/conn-castle/core-installer/internal/pkginfo"
)

const packageColumns = `name, pretty_name, version, type, source_type, source_url, source_reference, binaries`

type rowScanner interface {
	Scan(dest ...any) error
}

// Packages returns every recorded package ordered by name.
func (s *Store) Packages() ([]pkginfo.Package, error) {
	rows, err := s.db.Query(`SELECT ` + packageColumns + ` FROM packages ORDER BY name`)
	if err != nil {
		return nil, wrapErr(messages.StoreListPackagesFmt, err)
	}
	defer func() { _ = rows.Close() }()

	packages := []pkginfo.Package{}
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(messages.StoreListPackagesFmt, err)
	}
	return packages, nil
}

// FindPackage returns the recorded package with name, or nil when none is recorded.
func (s *Store) FindPackage(name string) (*pkginfo.Package, error) {
	row := s.db.QueryRow(`SELECT `+packageColumns+` FROM packages WHERE name = ?`, name)
	pkg, err := scanPackage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

// HasPackage reports whether the exact revision of pkg (name, version and reference) is recorded.
func (s *Store) HasPackage(pkg pkginfo.Package) (bool, error) {
	recorded, err := s.FindPackage(pkg.Name)
	if err != nil {
		return false, err
	}
	return recorded != nil && recorded.SameRevision(pkg), nil
}

// AddPackage records pkg, replacing any revision with the same name.
func (s *Store) AddPackage(pkg pkginfo.Package) error {
	binaries := pkg.Binaries
	if binaries == nil {
		binaries = []string{}
	}
	binariesJSON, err := json.Marshal(binaries)
	if err != nil {
		return fmt.Errorf(messages.StoreEncodeBinariesFmt, pkg.Name, err)
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO packages
		(`+packageColumns+`, installed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pkg.Name,
		pkg.PrettyName,
		pkg.Version,
		pkg.Type,
		pkg.Source.Type,
		pkg.Source.URL,
		pkg.Source.Reference,
		string(binariesJSON),
		s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return wrapErr(messages.StoreAddPackageFmt, pkg.Name, err)
	}
	return nil
}

// RemovePackage forgets pkg when the recorded revision matches it. Removing an
// unrecorded package is not an error.
func (s *Store) RemovePackage(pkg pkginfo.Package) error {
	_, err := s.db.Exec(
		`DELETE FROM packages WHERE name = ? AND version = ? AND source_reference = ?`,
		pkg.Name, pkg.Version, pkg.Source.Reference,
	)
	if err != nil {
		return wrapErr(messages.StoreRemovePackageFmt, pkg.Name, err)
	}
	return nil
}

func scanPackage(row rowScanner) (pkginfo.Package, error) {
	var pkg pkginfo.Package
	var binariesJSON string
	err := row.Scan(
		&pkg.Name,
		&pkg.PrettyName,
		&pkg.Version,
		&pkg.Type,
		&pkg.Source.Type,
		&pkg.Source.URL,
		&pkg.Source.Reference,
		&binariesJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return pkginfo.Package{}, err
	}
	if err != nil {
		return pkginfo.Package{}, wrapErr(messages.StoreScanPackageFmt, err)
	}
	if err := json.Unmarshal([]byte(binariesJSON), &pkg.Binaries); err != nil {
		return pkginfo.Package{}, fmt.Errorf(messages.StoreDecodeBinariesFmt, pkg.Name, err)
	}
	if len(pkg.Binaries) == 0 {
		pkg.Binaries = nil
	}
	return pkg, nil
}
