package forms

import (
	"context"
	"strings"

	"github.com/mbolis/promo-forms/errs"
	"github.com/mbolis/promo-forms/model"
)

func (r *Registry) CreateProgram(ctx context.Context, name string, sortOrder int) (model.Program, error) {
	p := model.Program{
		Name:      strings.TrimSpace(name),
		Status:    model.ProgramDraft,
		SortOrder: sortOrder,
		CreatedAt: r.now().UTC(),
	}
	if p.Name == "" {
		return p, errs.Validation("program name is required", "name")
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO program (name, status, sort_order, created_at)
		VALUES (?, ?, ?, ?)`,
		p.Name, p.Status, p.SortOrder, p.CreatedAt,
	)
	if err != nil {
		return p, errs.Storage("db.insert_program", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return p, errs.Storage("db.insert_program.id", err)
	}
	return p, nil
}

func (r *Registry) SetProgramStatus(ctx context.Context, programID int64, status model.ProgramStatus) error {
	if status != model.ProgramDraft && status != model.ProgramPublished {
		return errs.Validation("unknown program status "+string(status), "status")
	}

	res, err := r.db.ExecContext(ctx, `UPDATE program SET status = ? WHERE id = ?`, status, programID)
	if err != nil {
		return errs.Storage("db.update_program_status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errs.Storage("db.update_program_status.verify", err)
	}
	if n < 1 {
		return errs.NotFound("program", programID)
	}
	return nil
}

// PublishedPrograms lists the programs visible to the public, in display order.
func (r *Registry) PublishedPrograms(ctx context.Context) ([]model.Program, error) {
	programs := []model.Program{}
	err := r.db.SelectContext(ctx, &programs, `
		SELECT id, name, status, sort_order, created_at
		FROM program
		WHERE status = ?
		ORDER BY sort_order, id`,
		model.ProgramPublished,
	)
	if err != nil {
		return nil, errs.Storage("db.get_programs", err)
	}
	return programs, nil
}
