// Package sheets holds the ports of the spreadsheet mirror of the featured
// creators directory.
package sheets

import (
	"context"

	"kamai/internal/core"
)

// DirectoryMirror replaces the mirrored copy of the directory with rows.
// Implementations must be idempotent: the same rows twice leave the same
// sheet.
type DirectoryMirror interface {
	Mirror(ctx context.Context, rows []core.FeaturedCreator) error
}

// Header is the first row written by every mirror.
var Header = []string{"ID", "Name", "Followers", "Profile", "Listed at (UTC)"}
