package roster

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"golang.org/x/sync/errgroup"

	"legalconnect-engine/internal/domain"
	"legalconnect-engine/internal/store"
)

type Result struct {
	Files   int `json:"files"`
	Parsed  int `json:"parsed"`
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

func ParseFile(path string) ([]domain.Lawyer, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Parse(fh, f)
}

// LoadFiles parses every path concurrently and concatenates the records in
// argument order.
func LoadFiles(ctx context.Context, paths ...string) ([]domain.Lawyer, error) {
	parsed := make([][]domain.Lawyer, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ls, err := ParseFile(p)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			parsed[i] = ls
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []domain.Lawyer
	for _, ls := range parsed {
		out = append(out, ls...)
	}
	return out, nil
}

// Import writes lawyers into the store, skipping external ids already
// present.
func Import(ctx context.Context, db *sql.DB, lawyers []domain.Lawyer) (Result, error) {
	res := Result{Parsed: len(lawyers)}
	for _, l := range lawyers {
		if l.Name == "" || l.PracticeArea == "" {
			res.Skipped++
			continue
		}
		added, err := store.InsertLawyerIgnore(ctx, db, l)
		if err != nil {
			return res, err
		}
		if added {
			res.Added++
		} else {
			res.Skipped++
		}
	}
	return res, nil
}

// ImportFiles is LoadFiles followed by Import.
func ImportFiles(ctx context.Context, db *sql.DB, paths ...string) (Result, error) {
	lawyers, err := LoadFiles(ctx, paths...)
	if err != nil {
		return Result{}, err
	}
	res, err := Import(ctx, db, lawyers)
	res.Files = len(paths)
	return res, err
}

// Seed imports path only when the roster is empty. A missing file is not an
// error.
func Seed(ctx context.Context, db *sql.DB, path string) (Result, error) {
	if path == "" {
		return Result{}, nil
	}
	n, err := store.CountLawyers(ctx, db)
	if err != nil {
		return Result{}, err
	}
	if n > 0 {
		return Result{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("[roster] seed file %s not found; starting with an empty roster", path)
		return Result{}, nil
	}
	res, err := ImportFiles(ctx, db, path)
	if err != nil {
		return res, err
	}
	log.Printf("[roster] seeded from %s added=%d skipped=%d", path, res.Added, res.Skipped)
	return res, nil
}
