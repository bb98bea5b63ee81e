// Package forms holds the runtime form schemas of each program, records
// submissions against them as entity-attribute-value rows and projects
// those rows back through the schema.
package forms

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mbolis/promo-forms/errs"
	"github.com/mbolis/promo-forms/model"
)

type Registry struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewRegistry(db *sqlx.DB) *Registry {
	return &Registry{db: db, now: time.Now}
}

// DefineForm stores a new schema version for the program and makes it the
// only active one.
func (r *Registry) DefineForm(ctx context.Context, programID int64, specs []model.FieldSpec) (form model.DynamicForm, err error) {
	specs, err = normalizeSpecs(specs)
	if err != nil {
		return
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return form, errs.Storage("db.begin_tx", err)
	}
	defer tx.Rollback()

	var version int
	err = tx.GetContext(ctx, &version, `
		SELECT COALESCE(MAX(f.version), 0)
		FROM program p
		LEFT OUTER JOIN dynamic_form f ON (p.id = f.program_id)
		WHERE p.id = ?
		GROUP BY p.id`,
		programID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return form, errs.NotFound("program", programID)
	}
	if err != nil {
		return form, errs.Storage("db.define_form.version", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE dynamic_form
		SET is_active = 0
		WHERE program_id = ?
			AND is_active = 1`,
		programID,
	)
	if err != nil {
		return form, errs.Storage("db.define_form.deactivate", err)
	}

	form = model.DynamicForm{
		ProgramID: programID,
		Version:   version + 1,
		IsActive:  true,
		CreatedAt: r.now().UTC(),
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO dynamic_form (program_id, version, is_active, created_at)
		VALUES (?, ?, 1, ?)`,
		form.ProgramID,
		form.Version,
		form.CreatedAt,
	)
	if err != nil {
		return form, errs.Storage("db.define_form.insert", err)
	}
	if form.ID, err = res.LastInsertId(); err != nil {
		return form, errs.Storage("db.define_form.insert.id", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO form_field (form_id, position, type, name, label, required, options)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return form, errs.Storage("db.define_form.fields.prepare", err)
	}
	defer stmt.Close()

	names := fieldNames(specs)
	form.Fields = make([]model.FormField, len(specs))
	for i, spec := range specs {
		f := model.FormField{
			FormID:   form.ID,
			Position: i,
			Type:     spec.Type,
			Name:     names[i],
			Label:    spec.Label,
			Required: spec.Required,
			Options:  spec.Options,
		}

		var optionsJson []byte
		if len(f.Options) > 0 {
			optionsJson, err = json.Marshal(f.Options)
			if err != nil {
				return form, errs.Storage("db.define_form.fields.options", err)
			}
		}
		res, err = stmt.ExecContext(ctx, f.FormID, f.Position, f.Type, f.Name, f.Label, f.Required, string(optionsJson))
		if err != nil {
			return form, errs.Storage("db.define_form.fields.insert", err)
		}
		if f.ID, err = res.LastInsertId(); err != nil {
			return form, errs.Storage("db.define_form.fields.insert.id", err)
		}
		form.Fields[i] = f
	}

	if err = tx.Commit(); err != nil {
		return form, errs.Storage("db.define_form.commit", err)
	}
	return form, nil
}

// Form returns a schema version, active or not, with its ordered fields.
func (r *Registry) Form(ctx context.Context, formID int64) (model.DynamicForm, error) {
	return loadForm(ctx, r.db, formID)
}

func (r *Registry) ActiveForm(ctx context.Context, programID int64) (model.DynamicForm, error) {
	var formID int64
	err := r.db.GetContext(ctx, &formID, `
		SELECT id FROM dynamic_form
		WHERE program_id = ?
			AND is_active = 1`,
		programID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DynamicForm{}, errs.NotFound("active form for program", programID)
	}
	if err != nil {
		return model.DynamicForm{}, errs.Storage("db.active_form", err)
	}
	return loadForm(ctx, r.db, formID)
}

// DeleteField removes a field no submission has answered yet.
func (r *Registry) DeleteField(ctx context.Context, fieldID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errs.Storage("db.begin_tx", err)
	}
	defer tx.Rollback()

	var answered bool
	err = tx.GetContext(ctx, &answered, `
		SELECT EXISTS (SELECT 1 FROM submission_value WHERE field_id = f.id)
		FROM form_field f
		WHERE f.id = ?`,
		fieldID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.NotFound("field", fieldID)
	}
	if err != nil {
		return errs.Storage("db.delete_field.check", err)
	}
	if answered {
		return errs.Conflict("field %d has submitted answers", fieldID)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM form_field WHERE id = ?`, fieldID)
	if err != nil {
		return errs.Storage("db.delete_field", err)
	}

	if err = tx.Commit(); err != nil {
		return errs.Storage("db.delete_field.commit", err)
	}
	return nil
}

func loadForm(ctx context.Context, q sqlx.QueryerContext, formID int64) (form model.DynamicForm, err error) {
	err = sqlx.GetContext(ctx, q, &form, `
		SELECT id, program_id, version, is_active, created_at
		FROM dynamic_form
		WHERE id = ?`,
		formID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return form, errs.NotFound("form", formID)
	}
	if err != nil {
		return form, errs.Storage("db.get_form", err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, position, type, name, label, required, options
		FROM form_field
		WHERE form_id = ?
		ORDER BY position, id`,
		formID,
	)
	if err != nil {
		return form, errs.Storage("db.get_form.fields", err)
	}
	defer rows.Close()

	form.Fields = []model.FormField{}
	for rows.Next() {
		f := model.FormField{FormID: formID}
		var opts string
		err = rows.Scan(&f.ID, &f.Position, &f.Type, &f.Name, &f.Label, &f.Required, &opts)
		if err != nil {
			return form, errs.Storage("db.get_form.fields.scan", err)
		}

		if opts != "" {
			err = json.Unmarshal([]byte(opts), &f.Options)
			if err != nil {
				return form, errs.Storage("db.get_form.fields.parse_options", err)
			}
		}

		form.Fields = append(form.Fields, f)
	}
	if err = rows.Err(); err != nil {
		return form, errs.Storage("db.get_form.fields.rows", err)
	}
	return form, nil
}
