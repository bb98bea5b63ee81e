package forms

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mbolis/promo-forms/errs"
	"github.com/mbolis/promo-forms/metrics"
	"github.com/mbolis/promo-forms/model"
	"github.com/mbolis/promo-forms/notify"
)

// Dispatcher hands a notification off for asynchronous delivery.
type Dispatcher interface {
	Dispatch(msg notify.Message) bool
}

type Recorder struct {
	db         *sqlx.DB
	dispatcher Dispatcher
	now        func() time.Time
}

// NewRecorder builds a Recorder. dispatcher may be nil, in which case no
// notifications are sent.
func NewRecorder(db *sqlx.DB, dispatcher Dispatcher) *Recorder {
	return &Recorder{db: db, dispatcher: dispatcher, now: time.Now}
}

// Record validates answers against the form's current schema and stores the
// submission header and its values in one transaction. The notification is
// dispatched only after the commit.
func (r *Recorder) Record(ctx context.Context, formID int64, answers map[int64]string) (sub model.FormSubmission, err error) {
	defer func() {
		var ve *errs.ValidationError
		switch {
		case err == nil:
			metrics.Submission("recorded")
		case errors.As(err, &ve):
			metrics.Submission("invalid")
		default:
			metrics.Submission("failed")
		}
	}()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return sub, errs.Storage("db.begin_tx", err)
	}
	defer tx.Rollback()

	form, err := loadForm(ctx, tx, formID)
	if err != nil {
		return
	}
	if !form.IsActive {
		return sub, errs.NotFound("active form", formID)
	}

	values, msg, err := checkAnswers(form, answers)
	if err != nil {
		return
	}

	err = tx.GetContext(ctx, &msg.ProgramName, `SELECT name FROM program WHERE id = ?`, form.ProgramID)
	if err != nil {
		return sub, errs.Storage("db.insert_submission.program", err)
	}

	sub = model.FormSubmission{
		FormID:    formID,
		Status:    model.SubmissionPending,
		CreatedAt: r.now().UTC(),
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO form_submission (form_id, status, period, created_at)
		VALUES (?, ?, '', ?)`,
		sub.FormID,
		sub.Status,
		sub.CreatedAt,
	)
	if err != nil {
		return sub, errs.Storage("db.insert_submission", err)
	}
	if sub.ID, err = res.LastInsertId(); err != nil {
		return sub, errs.Storage("db.insert_submission.id", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO submission_value (submission_id, field_id, value)
		VALUES (?, ?, ?)`)
	if err != nil {
		return sub, errs.Storage("db.insert_submission.values.prepare", err)
	}
	defer stmt.Close()

	for i := range values {
		values[i].SubmissionID = sub.ID
		res, err = stmt.ExecContext(ctx, sub.ID, values[i].FieldID, values[i].Value)
		if err != nil {
			return sub, errs.Storage("db.insert_submission.values.insert", err)
		}
		if values[i].ID, err = res.LastInsertId(); err != nil {
			return sub, errs.Storage("db.insert_submission.values.insert.id", err)
		}
	}
	sub.Values = values

	if err = tx.Commit(); err != nil {
		return sub, errs.Storage("db.insert_submission.commit", err)
	}

	if r.dispatcher != nil && msg.Phone != "" {
		r.dispatcher.Dispatch(msg)
	}
	return sub, nil
}

// checkAnswers returns the values to store, in field order, and the
// notification contact found among them.
func checkAnswers(form model.DynamicForm, answers map[int64]string) ([]model.SubmissionValue, notify.Message, error) {
	var msg notify.Message

	known := make(map[int64]bool, len(form.Fields))
	var missing []int64
	for _, f := range form.Fields {
		known[f.ID] = true
		if f.Required && strings.TrimSpace(answers[f.ID]) == "" {
			missing = append(missing, f.ID)
		}
	}
	if len(missing) > 0 {
		return nil, msg, errs.Validation("missing required fields", idList(missing)...)
	}

	var unknown []int64
	for id := range answers {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return nil, msg, errs.Validation("unknown fields", idList(unknown)...)
	}

	values := []model.SubmissionValue{}
	var invalid []int64
	for _, f := range form.Fields {
		v := answers[f.ID]
		if strings.TrimSpace(v) == "" {
			continue
		}
		if !checkValue(f, v) {
			invalid = append(invalid, f.ID)
			continue
		}
		values = append(values, model.SubmissionValue{FieldID: f.ID, Value: v})

		switch {
		case f.Type == model.FieldPhone && msg.Phone == "":
			msg.Phone = phoneStrip.Replace(v)
		case f.Type == model.FieldText && msg.Name == "":
			msg.Name = v
		}
	}
	if len(invalid) > 0 {
		return nil, msg, errs.Validation("invalid values", idList(invalid)...)
	}
	return values, msg, nil
}

func (r *Recorder) Submission(ctx context.Context, submissionID int64) (sub model.FormSubmission, err error) {
	err = r.db.GetContext(ctx, &sub, `
		SELECT id, form_id, status, period, created_at
		FROM form_submission
		WHERE id = ?`,
		submissionID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return sub, errs.NotFound("submission", submissionID)
	}
	if err != nil {
		return sub, errs.Storage("db.get_submission", err)
	}

	sub.Values = []model.SubmissionValue{}
	err = r.db.SelectContext(ctx, &sub.Values, `
		SELECT id, submission_id, field_id, value
		FROM submission_value
		WHERE submission_id = ?
		ORDER BY id`,
		submissionID,
	)
	if err != nil {
		return sub, errs.Storage("db.get_submission.values", err)
	}
	return sub, nil
}

// UpdateSubmission applies an admin review. A pending submission may become
// approved or rejected once; the period tag can change at any time.
func (r *Recorder) UpdateSubmission(ctx context.Context, submissionID int64, patch model.SubmissionPatch) (sub model.FormSubmission, err error) {
	if patch.Status != nil {
		switch *patch.Status {
		case model.SubmissionPending, model.SubmissionApproved, model.SubmissionRejected:
		default:
			return sub, errs.Validation("unknown submission status "+string(*patch.Status), "status")
		}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return sub, errs.Storage("db.begin_tx", err)
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, &sub, `
		SELECT id, form_id, status, period, created_at
		FROM form_submission
		WHERE id = ?`,
		submissionID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return sub, errs.NotFound("submission", submissionID)
	}
	if err != nil {
		return sub, errs.Storage("db.update_submission.get", err)
	}

	if patch.Status != nil && *patch.Status != sub.Status {
		if sub.Status != model.SubmissionPending || *patch.Status == model.SubmissionPending {
			return sub, errs.Conflict("submission %d is already %s", submissionID, sub.Status)
		}
		sub.Status = *patch.Status
	}
	if patch.Period != nil {
		sub.Period = strings.TrimSpace(*patch.Period)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE form_submission
		SET status = ?, period = ?
		WHERE id = ?`,
		sub.Status,
		sub.Period,
		submissionID,
	)
	if err != nil {
		return sub, errs.Storage("db.update_submission", err)
	}

	if err = tx.Commit(); err != nil {
		return sub, errs.Storage("db.update_submission.commit", err)
	}
	return sub, nil
}
