package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"appraiser_directory/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
func valText(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertLocation(ctx context.Context, l domain.LocationRow) error {
	_, err := r.db.ExecContext(ctx, upsertLocationSQL,
		l.Key,
		valStr(l.City),
		valStr(l.State),
		l.DisplayName,
		valStr(l.AreaServed),
		valJSON(l.SEO),
	)
	return err
}

func (r *Repo) UpsertAppraiser(ctx context.Context, a domain.AppraiserRow) error {
	_, err := r.db.ExecContext(ctx, upsertAppraiserSQL,
		a.ID,
		a.LocationKey,
		a.Slug,
		a.Name,
		valStr(a.City),
		valStr(a.State),
		valStr(a.Phone),
		valStr(a.Website),
		valStr(a.ImageURL),
		valF64(a.Rating),
		a.ReviewCount,
		a.InService,
		valJSON(a.Raw),
	)
	return err
}

// ReplaceReviews swaps an appraiser's review set in one transaction.
func (r *Repo) ReplaceReviews(ctx context.Context, appraiserID string, rs []domain.Review) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, deleteReviewsSQL, appraiserID); err != nil {
		return fmt.Errorf("delete reviews: %w", err)
	}
	if len(rs) > 0 {
		values := make([]string, 0, len(rs))
		args := make([]any, 0, len(rs)*5) // 5 params per row
		for _, rv := range rs {
			values = append(values, "(?,?,?,?,?)")
			args = append(args,
				appraiserID,
				valText(rv.Author),
				rv.Rating,
				valText(rv.Date),
				valText(rv.Content),
			)
		}
		if _, err = tx.ExecContext(ctx, insertReviewsPrefix+strings.Join(values, ","), args...); err != nil {
			return fmt.Errorf("insert reviews: %w", err)
		}
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAppraiser(s scanner) (domain.AppraiserRow, error) {
	var a domain.AppraiserRow
	var city, state, phone, website, image sql.NullString
	var rating sql.NullFloat64
	var raw []byte
	if err := s.Scan(
		&a.ID,
		&a.LocationKey,
		&a.Slug,
		&a.Name,
		&city, &state,
		&phone, &website,
		&image,
		&rating,
		&a.ReviewCount,
		&a.InService,
		&raw,
	); err != nil {
		return domain.AppraiserRow{}, err
	}
	a.City = nullStr(city)
	a.State = nullStr(state)
	a.Phone = nullStr(phone)
	a.Website = nullStr(website)
	a.ImageURL = nullStr(image)
	if rating.Valid {
		f := rating.Float64
		a.Rating = &f
	}
	if len(raw) > 0 {
		a.Raw = append([]byte(nil), raw...)
	}
	return a, nil
}

func nullStr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}

func (r *Repo) GetAppraiser(ctx context.Context, id string) (domain.AppraiserRow, error) {
	a, err := scanAppraiser(r.db.QueryRowContext(ctx, getAppraiserSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AppraiserRow{}, domain.ErrNotFound
	}
	return a, err
}

func (r *Repo) ListAppraisers(ctx context.Context, locationKey string, limit int) ([]domain.AppraiserRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, listAppraisersSQL, locationKey, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AppraiserRow
	for rows.Next() {
		a, err := scanAppraiser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
