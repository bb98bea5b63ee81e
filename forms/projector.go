package forms

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/mbolis/promo-forms/errs"
	"github.com/mbolis/promo-forms/model"
)

type Projector struct {
	db *sqlx.DB
}

func NewProjector(db *sqlx.DB) *Projector {
	return &Projector{db: db}
}

// Values are ordered by the position of their field; values whose field
// has been removed come last, in insertion order.
const answerOrder = `f.position IS NULL, f.position, v.id`

// Project reads a submission back through the schema it was recorded
// against.
func (p *Projector) Project(ctx context.Context, submissionID int64) (proj model.Projection, err error) {
	err = p.db.GetContext(ctx, &proj.Submission, `
		SELECT id, form_id, status, period, created_at
		FROM form_submission
		WHERE id = ?`,
		submissionID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return proj, errs.NotFound("submission", submissionID)
	}
	if err != nil {
		return proj, errs.Storage("db.project_submission", err)
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT v.field_id, f.name, f.label, f.type, v.value
		FROM submission_value v
		LEFT OUTER JOIN form_field f ON (f.id = v.field_id)
		WHERE v.submission_id = ?
		ORDER BY `+answerOrder,
		submissionID,
	)
	if err != nil {
		return proj, errs.Storage("db.project_submission.values", err)
	}
	defer rows.Close()

	proj.Answers = []model.Answer{}
	for rows.Next() {
		var a answerRow
		err = rows.Scan(&a.fieldID, &a.name, &a.label, &a.fieldType, &a.value)
		if err != nil {
			return proj, errs.Storage("db.project_submission.values.scan", err)
		}
		proj.Answers = append(proj.Answers, a.answer())
	}
	if err = rows.Err(); err != nil {
		return proj, errs.Storage("db.project_submission.values.rows", err)
	}
	return proj, nil
}

// ProjectForm projects every submission of a form, oldest first.
func (p *Projector) ProjectForm(ctx context.Context, formID int64) ([]model.Projection, error) {
	var exists bool
	err := p.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM dynamic_form WHERE id = ?)`, formID)
	if err != nil {
		return nil, errs.Storage("db.project_form", err)
	}
	if !exists {
		return nil, errs.NotFound("form", formID)
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT
			s.id, s.form_id, s.status, s.period, s.created_at,
			v.field_id, f.name, f.label, f.type, v.value
		FROM form_submission s
		LEFT OUTER JOIN submission_value v ON (s.id = v.submission_id)
		LEFT OUTER JOIN form_field f ON (f.id = v.field_id)
		WHERE s.form_id = ?
		ORDER BY s.id, `+answerOrder,
		formID,
	)
	if err != nil {
		return nil, errs.Storage("db.project_form.values", err)
	}
	defer rows.Close()

	projections := []model.Projection{}
	for rows.Next() {
		var s model.FormSubmission
		var a answerRow
		err = rows.Scan(
			&s.ID, &s.FormID, &s.Status, &s.Period, &s.CreatedAt,
			&a.fieldID, &a.name, &a.label, &a.fieldType, &a.value,
		)
		if err != nil {
			return nil, errs.Storage("db.project_form.values.scan", err)
		}

		last := len(projections) - 1
		if last < 0 || projections[last].Submission.ID != s.ID {
			projections = append(projections, model.Projection{Submission: s, Answers: []model.Answer{}})
			last++
		}
		// a submission without any stored value still yields one row
		if a.fieldID.Valid {
			projections[last].Answers = append(projections[last].Answers, a.answer())
		}
	}
	if err = rows.Err(); err != nil {
		return nil, errs.Storage("db.project_form.values.rows", err)
	}
	return projections, nil
}

type answerRow struct {
	fieldID   sql.NullInt64
	name      sql.NullString
	label     sql.NullString
	fieldType sql.NullString
	value     sql.NullString
}

func (r answerRow) answer() model.Answer {
	a := model.Answer{
		FieldID:   r.fieldID.Int64,
		Name:      r.name.String,
		FieldType: model.FieldType(r.fieldType.String),
		Value:     r.value.String,
	}
	if r.label.Valid {
		label := r.label.String
		a.Label = &label
	}
	return a
}
