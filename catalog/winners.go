package catalog

import (
	"context"
	"strings"

	"github.com/mbolis/promo-forms/errs"
	"github.com/mbolis/promo-forms/model"
)

func (c *Catalog) Winners(ctx context.Context, programID int64) ([]model.Winner, error) {
	winners := []model.Winner{}
	err := c.db.SelectContext(ctx, &winners, `
		SELECT id, program_id, name, photo_url
		FROM winner
		WHERE program_id = ?
		ORDER BY id`,
		programID,
	)
	if err != nil {
		return nil, errs.Storage("db.get_winners", err)
	}
	return winners, nil
}

// UpdateWinnerPhoto replaces the photo shown next to a lottery winner.
func (c *Catalog) UpdateWinnerPhoto(ctx context.Context, winnerID int64, photoURL string) error {
	photoURL = strings.TrimSpace(photoURL)
	if err := c.validate.Var(photoURL, "required,url"); err != nil {
		return errs.Validation("photo URL must be an absolute URL", "photoUrl")
	}

	res, err := c.db.ExecContext(ctx, `UPDATE winner SET photo_url = ? WHERE id = ?`, photoURL, winnerID)
	if err != nil {
		return errs.Storage("db.update_winner_photo", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errs.Storage("db.update_winner_photo.verify", err)
	}
	if n < 1 {
		return errs.NotFound("winner", winnerID)
	}
	return nil
}
