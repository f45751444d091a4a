package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
)

// LastPlacement returns the destination of the newest non-dry-run outcome
// that copied or moved source into a client folder.
func (s *Store) LastPlacement(ctx context.Context, source string) (string, bool, error) {
	var dest string
	err := s.db.QueryRowContext(ctx,
		`SELECT o.destination FROM outcomes o JOIN runs r ON r.id = o.run_id
         WHERE o.source = ? AND r.dry_run = 0 AND o.kind IN ('FILENAME', 'CONTENT')
           AND o.destination IS NOT NULL
         ORDER BY o.id DESC LIMIT 1`, source).Scan(&dest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query placement: %w", err)
	}
	return dest, true, nil
}

// AlreadyPlaced reports whether source was copied by an earlier run and the
// copy still carries the source's size and modification time. Copies keep
// the source mtime, so any edit to either side since then reads as changed.
func (s *Store) AlreadyPlaced(ctx context.Context, source string) (bool, error) {
	dest, ok, err := s.LastPlacement(ctx, source)
	if err != nil || !ok {
		return false, err
	}
	srcInfo, err := os.Stat(source)
	if err != nil {
		return false, nil
	}
	destInfo, err := os.Stat(dest)
	if err != nil {
		return false, nil
	}
	return srcInfo.Size() == destInfo.Size() && srcInfo.ModTime().Equal(destInfo.ModTime()), nil
}
